package saldo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryBuilder_Build(t *testing.T) {
	t.Parallel()

	b := NewEntryBuilder()
	require.NoError(t, b.SetID("hund..1"))
	b.AddLemgram("hund..nn.1")
	b.AddLemgram("hund..nn.1")
	b.AddLemgram("hundkex..nn.1")

	e, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, EntryID("hund..1"), e.ID())
	assert.Equal(t, []LemgramID{"hund..nn.1", "hundkex..nn.1"}, e.Lemgrams())
	_, ok := e.Primary()
	assert.False(t, ok)
}

func TestEntryBuilder_MissingID(t *testing.T) {
	t.Parallel()

	_, err := NewEntryBuilder().Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	le, ok := err.(*LoadError)
	require.True(t, ok)
	assert.Equal(t, "id", le.Field)
}

func TestEntryBuilder_SetIDTwice(t *testing.T) {
	t.Parallel()

	b := NewEntryBuilder()
	require.NoError(t, b.SetID("a..1"))
	err := b.SetID("a..2")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	id, ok := b.ID()
	assert.True(t, ok)
	assert.Equal(t, EntryID("a..1"), id)
}

func TestLoadError_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *LoadError
		want string
	}{
		{
			name: "unresolved",
			err:  &LoadError{Kind: ErrUnresolvedReference, ID: "C..1", Target: "Z..1"},
			want: `saldo: unresolved reference: "C..1" references unknown "Z..1"`,
		},
		{
			name: "missing field with line",
			err:  &LoadError{Kind: ErrMissingRequiredField, ID: "x..nn.1", Field: "writtenForm", Line: 12},
			want: `saldo: missing required field at line 12: "x..nn.1" (field writtenForm)`,
		},
		{
			name: "missing primary",
			err:  &LoadError{Kind: ErrMissingPrimaryReference, ID: "D..1"},
			want: `saldo: missing primary reference: "D..1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
