package googledrive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Build(t *testing.T) {
	q, err := NewQuery().
		NameEquals("Wedding 2024").
		MimeTypeEquals(folderMimeType).
		NotTrashed().
		InParents("1AbC_d-9").
		Build()

	require.NoError(t, err)
	assert.Equal(t,
		"name = 'Wedding 2024' and mimeType = 'application/vnd.google-apps.folder' and trashed = false and '1AbC_d-9' in parents",
		q)
}

func TestQuery_EscapesNames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single quote", input: "Anna's party", expected: `name = 'Anna\'s party'`},
		{name: "backslash", input: `a\b`, expected: `name = 'a\\b'`},
		{name: "injection attempt", input: "x' or name != '", expected: `name = 'x\' or name != \''`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuery().NameEquals(tt.input).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, q)
		})
	}
}

func TestQuery_RejectsInvalidFolderID(t *testing.T) {
	for _, id := range []string{"", "abc' in parents or '", "a b", "../etc"} {
		t.Run(id, func(t *testing.T) {
			_, err := NewQuery().NotTrashed().InParents(id).Build()
			assert.ErrorIs(t, err, ErrInvalidFolderID)
		})
	}
}

func TestQuery_RejectsInvalidName(t *testing.T) {
	_, err := NewQuery().NameEquals("   ").Build()
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewQuery().NameEquals("a\nb").Build()
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestQuery_Empty(t *testing.T) {
	_, err := NewQuery().Build()
	assert.Error(t, err)
}
