package saldo

// LinkStats summarizes the linking pass.
type LinkStats struct {
	PrimaryEdges   int
	SecondaryEdges int
	RootSkipped    int
}

// link resolves the pending references of raw into bidirectional edges,
// visiting entries in input order. The first failure aborts.
func link(raw *rawLexicon, root EntryID) (LinkStats, error) {
	var stats LinkStats

	for _, id := range raw.ids {
		entry := raw.entries[id]

		if target, ok := raw.primary[id]; ok {
			parent, ok := raw.entries[target]
			if !ok {
				return stats, &LoadError{Kind: ErrUnresolvedReference, ID: string(id), Target: string(target)}
			}
			parent.addInversePrimary(id)
			entry.setPrimary(target)
			stats.PrimaryEdges++
		} else if id != root {
			return stats, &LoadError{Kind: ErrMissingPrimaryReference, ID: string(id)}
		}

		for _, target := range raw.secondary[id] {
			if target == root {
				stats.RootSkipped++
				continue
			}
			descriptor, ok := raw.entries[target]
			if !ok {
				return stats, &LoadError{Kind: ErrUnresolvedReference, ID: string(id), Target: string(target)}
			}
			descriptor.addInverseSecondary(id)
			entry.addSecondary(target)
			stats.SecondaryEdges++
		}
	}

	return stats, nil
}
