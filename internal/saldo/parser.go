package saldo

import (
	"fmt"
	"log/slog"

	"github.com/spraakbanken/saldowsd/internal/xmlreader"
)

// Element and attribute names of the SALDO LMF dialect.
const (
	elemLexicalEntry       = "LexicalEntry"
	elemSense              = "Sense"
	elemSenseRelation      = "SenseRelation"
	elemFormRepresentation = "FormRepresentation"
	elemFeat               = "feat"

	attrID      = "id"
	attrTargets = "targets"
	attrAtt     = "att"
	attrVal     = "val"

	featLabel          = "label"
	featLanguage       = "language"
	featLanguageCoding = "languageCoding"
	featLemgram        = "lemgram"
	featParadigm       = "paradigm"
	featPartOfSpeech   = "partOfSpeech"
	featWrittenForm    = "writtenForm"

	labelPrimary   = "primary"
	labelSecondary = "secondary"
)

type parseState int

const (
	stateOutsideRecord parseState = iota
	stateInRecord
	stateInSense
	stateInRelation
	stateInForm
)

func (s parseState) String() string {
	switch s {
	case stateOutsideRecord:
		return "outside-record"
	case stateInRecord:
		return "in-record"
	case stateInSense:
		return "in-sense"
	case stateInRelation:
		return "in-relation"
	case stateInForm:
		return "in-form-representation"
	default:
		return fmt.Sprintf("parseState(%d)", int(s))
	}
}

// ParseStats summarizes one streaming pass.
type ParseStats struct {
	Records          int
	Lemgrams         int
	PrimaryRefs      int
	SecondaryRefs    int
	IgnoredLabels    int
	DiscardedTargets int
}

// rawLexicon holds the collections built during the streaming pass, before
// references are linked.
type rawLexicon struct {
	ids        []EntryID
	entries    map[EntryID]*Entry
	primary    map[EntryID]EntryID
	secondary  map[EntryID][]EntryID
	lemgrams   map[LemgramID]*Lemgram
	lemgramIDs []LemgramID
	byForm     map[string][]LemgramID
}

func newRawLexicon() *rawLexicon {
	return &rawLexicon{
		entries:   make(map[EntryID]*Entry),
		primary:   make(map[EntryID]EntryID),
		secondary: make(map[EntryID][]EntryID),
		lemgrams:  make(map[LemgramID]*Lemgram),
		byForm:    make(map[string][]LemgramID),
	}
}

// recordRefs collects the relation candidates of the record under construction.
type recordRefs struct {
	primary    EntryID
	hasPrimary bool
	secondary  []EntryID
	seen       map[EntryID]struct{}
}

func (r *recordRefs) addSecondary(id EntryID) bool {
	if r.seen == nil {
		r.seen = make(map[EntryID]struct{})
	}
	if _, ok := r.seen[id]; ok {
		return false
	}
	r.seen[id] = struct{}{}
	r.secondary = append(r.secondary, id)
	return true
}

// formSlots are filled by feat elements and consumed when a
// FormRepresentation closes.
type formSlots struct {
	lemgram     *string
	paradigm    *string
	pos         *string
	writtenForm *string
}

// parser is the xmlreader.ContentHandler that turns SALDO LMF events into a
// rawLexicon.
type parser struct {
	log   *slog.Logger
	state parseState

	builder        *EntryBuilder
	refs           recordRefs
	relationTarget *string
	form           formSlots

	raw   *rawLexicon
	stats ParseStats
}

var _ xmlreader.ContentHandler = (*parser)(nil)

func newParser(log *slog.Logger) *parser {
	return &parser{log: log, raw: newRawLexicon()}
}

func (p *parser) StartElement(name string, attrs xmlreader.Attributes) error {
	switch name {
	case elemLexicalEntry:
		if p.state != stateOutsideRecord {
			return p.misplaced(elemLexicalEntry)
		}
		p.builder = NewEntryBuilder()
		p.refs = recordRefs{}
		p.relationTarget = nil
		p.form = formSlots{}
		p.state = stateInRecord
	case elemSense:
		return p.openSense(attrs)
	case elemSenseRelation:
		if p.state != stateInSense {
			return p.misplaced(elemSenseRelation)
		}
		target, ok := attrs.Get(attrTargets)
		if !ok {
			return malformedf("%s without %s attribute", elemSenseRelation, attrTargets)
		}
		p.relationTarget = &target
		p.state = stateInRelation
	case elemFormRepresentation:
		if p.state != stateInRecord {
			return p.misplaced(elemFormRepresentation)
		}
		p.form = formSlots{}
		p.state = stateInForm
	case elemFeat:
		return p.feat(attrs)
	}
	return nil
}

func (p *parser) EndElement(name string) error {
	switch name {
	case elemLexicalEntry:
		return p.commitRecord()
	case elemSense:
		p.state = stateInRecord
	case elemSenseRelation:
		if p.relationTarget != nil {
			p.stats.DiscardedTargets++
			p.log.Debug("relation target without label discarded", slog.String("target", *p.relationTarget))
			p.relationTarget = nil
		}
		p.state = stateInSense
	case elemFormRepresentation:
		err := p.closeForm()
		p.form = formSlots{}
		p.state = stateInRecord
		return err
	}
	return nil
}

// misplaced reports an element opened in a state that does not allow it.
func (p *parser) misplaced(what string) *LoadError {
	return malformedf("%s in %s state", what, p.state)
}

func (p *parser) openSense(attrs xmlreader.Attributes) error {
	if p.state != stateInRecord {
		return p.misplaced(elemSense)
	}
	id, ok := attrs.Get(attrID)
	if !ok {
		return malformedf("%s without %s attribute", elemSense, attrID)
	}
	if err := p.builder.SetID(EntryID(id)); err != nil {
		return err
	}
	p.state = stateInSense
	return nil
}

func (p *parser) feat(attrs xmlreader.Attributes) error {
	att, ok := attrs.Get(attrAtt)
	if !ok {
		return malformedf("%s without %s attribute", elemFeat, attrAtt)
	}

	switch att {
	case featLanguage, featLanguageCoding:
		return nil
	case featLabel, featLemgram, featParadigm, featPartOfSpeech, featWrittenForm:
	default:
		return malformedf("unknown %s %s=%q", elemFeat, attrAtt, att)
	}

	val, ok := attrs.Get(attrVal)
	if !ok {
		return malformedf("%s %s=%q without %s attribute", elemFeat, attrAtt, att, attrVal)
	}

	if att == featLabel {
		return p.label(val)
	}
	if p.state != stateInForm {
		return p.misplaced(elemFeat + " " + att)
	}

	switch att {
	case featLemgram:
		p.form.lemgram = &val
	case featParadigm:
		p.form.paradigm = &val
	case featPartOfSpeech:
		p.form.pos = &val
	case featWrittenForm:
		p.form.writtenForm = &val
	}
	return nil
}

func (p *parser) label(val string) error {
	if p.state != stateInRelation {
		return p.misplaced(elemFeat + " " + featLabel)
	}
	id, _ := p.builder.ID()
	if p.relationTarget == nil {
		return malformedf("%s %s without pending %s target in %q", featLabel, elemFeat, elemSenseRelation, id)
	}
	target := EntryID(*p.relationTarget)
	p.relationTarget = nil

	switch val {
	case labelPrimary:
		if p.refs.hasPrimary {
			return &LoadError{
				Kind: ErrDuplicatePrimaryReference,
				ID:   string(id),
				Err:  fmt.Errorf("already has %q, found %q", p.refs.primary, target),
			}
		}
		p.refs.primary = target
		p.refs.hasPrimary = true
	case labelSecondary:
		p.refs.addSecondary(target)
	default:
		p.stats.IgnoredLabels++
		p.log.Debug("relation label ignored",
			slog.String("entry", string(id)),
			slog.String("label", val),
			slog.String("target", string(target)),
		)
	}
	return nil
}

func (p *parser) closeForm() error {
	if p.form.lemgram == nil {
		return missingField("", featLemgram)
	}
	lemgramID := LemgramID(*p.form.lemgram)
	if p.form.pos == nil {
		return missingField(string(lemgramID), featPartOfSpeech)
	}
	pos := *p.form.pos

	if existing, ok := p.raw.lemgrams[lemgramID]; ok {
		if existing.pos != pos {
			return &LoadError{
				Kind: ErrIncompatiblePartOfSpeech,
				ID:   string(lemgramID),
				Err:  fmt.Errorf("registered as %q, found %q", existing.pos, pos),
			}
		}
		p.builder.AddLemgram(lemgramID)
		return nil
	}

	if p.form.writtenForm == nil {
		return missingField(string(lemgramID), featWrittenForm)
	}
	wf := *p.form.writtenForm

	p.raw.lemgrams[lemgramID] = newLemgram(lemgramID, pos, p.form.paradigm, wf)
	p.raw.lemgramIDs = append(p.raw.lemgramIDs, lemgramID)
	p.raw.byForm[wf] = append(p.raw.byForm[wf], lemgramID)
	p.stats.Lemgrams++
	p.builder.AddLemgram(lemgramID)
	return nil
}

func (p *parser) commitRecord() error {
	b := p.builder
	refs := p.refs
	p.builder = nil
	p.refs = recordRefs{}
	p.relationTarget = nil
	p.state = stateOutsideRecord

	if b == nil {
		return nil
	}

	entry, err := b.Build()
	if err != nil {
		return err
	}
	if _, dup := p.raw.entries[entry.id]; dup {
		return &LoadError{
			Kind: ErrDuplicateIdentity,
			ID:   string(entry.id),
			Err:  fmt.Errorf("entry defined by an earlier %s", elemLexicalEntry),
		}
	}

	p.raw.ids = append(p.raw.ids, entry.id)
	p.raw.entries[entry.id] = entry
	if refs.hasPrimary {
		p.raw.primary[entry.id] = refs.primary
		p.stats.PrimaryRefs++
	}
	if len(refs.secondary) > 0 {
		p.raw.secondary[entry.id] = refs.secondary
		p.stats.SecondaryRefs += len(refs.secondary)
	}
	for _, lg := range entry.lemgrams {
		p.raw.lemgrams[lg].addEntry(entry.id)
	}
	p.stats.Records++
	return nil
}
