package corpus

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraakbanken/saldowsd/internal/saldo"
)

func testdataPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

func openExample(t *testing.T) *Reader {
	t.Helper()
	f, err := os.Open(testdataPath("example.tsv"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return NewReader(f)
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want LemmaToken
	}{
		{
			name: "single sense",
			line: "1\tHunden\t_\t_\thund\thund..1",
			want: LemmaToken{Word: "Hunden", PossibleLemmas: []string{"hund"}, PossibleSenses: []string{"hund..1"}},
		},
		{
			name: "alternatives",
			line: "2\tskäller\t_\t_\tskälla\tskälla..1|skälla..2",
			want: LemmaToken{Word: "skäller", PossibleLemmas: []string{"skälla"}, PossibleSenses: []string{"skälla..1", "skälla..2"}},
		},
		{
			name: "unannotated",
			line: "3\t.\t_\t_\t_\t_",
			want: LemmaToken{Word: "."},
		},
		{
			name: "prefix",
			line: "1\tung-\t(pfx)\t_\tung\tung..1",
			want: LemmaToken{Word: "ung-", IsPrefix: true, PossibleLemmas: []string{"ung"}, PossibleSenses: []string{"ung..1"}},
		},
		{
			name: "extra columns",
			line: "1\tsov\t_\t_\tsova\tsova..1\textra",
			want: LemmaToken{Word: "sov", PossibleLemmas: []string{"sova"}, PossibleSenses: []string{"sova..1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLine_TooFewColumns(t *testing.T) {
	t.Parallel()

	_, err := ParseLine("1\thund\t_\t_")
	assert.ErrorIs(t, err, ErrMalformedLine)
}

func TestLemmaToken_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_\t_\t_\t_\tskälla\tskälla..1|skälla..2", LemmaToken{
		Word:           "skäller",
		PossibleLemmas: []string{"skälla"},
		PossibleSenses: []string{"skälla..1", "skälla..2"},
	}.String())
	assert.Equal(t, "_\t_\t(sfx)\t_\t_\t_", LemmaToken{IsSuffix: true}.String())
}

func TestReader_ReadSentence(t *testing.T) {
	t.Parallel()

	r := openExample(t)

	s1, err := r.ReadSentence()
	require.NoError(t, err)
	assert.Len(t, s1, 3)

	s2, err := r.ReadSentence()
	require.NoError(t, err)
	require.Len(t, s2, 2)
	assert.Equal(t, "Vi", s2[0].Word)

	s3, err := r.ReadSentence()
	require.NoError(t, err, "trailing sentence without blank line")
	require.Len(t, s3, 1)
	assert.True(t, s3[0].IsPrefix)

	_, err = r.ReadSentence()
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadSentence()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_ReadSentences_Batches(t *testing.T) {
	t.Parallel()

	r := openExample(t)

	batch, err := r.ReadSentences(2)
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	batch, err = r.ReadSentences(2)
	require.NoError(t, err)
	assert.Len(t, batch, 1)

	batch, err = r.ReadSentences(2)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestReader_MalformedLine(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("1\ta\t_\t_\ta\ta..1\n2\tb\n"))
	_, err := r.ReadSentence()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.Contains(t, err.Error(), "line 2")
}

type senseSet map[saldo.EntryID]bool

func (s senseSet) Contains(id saldo.EntryID) bool { return s[id] }

func TestCheck(t *testing.T) {
	t.Parallel()

	idx := senseSet{"hund..1": true, "skälla..1": true, "sova..1": true, "ung..1": true}

	rep, err := Check(context.Background(), openExample(t), idx, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Sentences)
	assert.Equal(t, 6, rep.Tokens)
	assert.Equal(t, 5, rep.AnnotatedTokens)
	assert.Equal(t, 4, rep.KnownSenses)
	assert.Equal(t, 3, rep.UnknownSenses)
	assert.Equal(t, []UnknownSense{
		{ID: "skälla..2", Count: 1},
		{ID: "ung..9", Count: 1},
		{ID: "vi..1", Count: 1},
	}, rep.Unknown)
}

func TestCheck_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Check(ctx, openExample(t), senseSet{}, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
