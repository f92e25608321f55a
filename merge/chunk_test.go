package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuiteChunk(t *testing.T) {
	content := "header\n# Planter Suite: alpha\nalpha body\n# Planter Suite: beta\nbeta body\n"

	t.Run("bounded by next suite marker", func(t *testing.T) {
		chunk, err := SuiteChunk(content, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "\nalpha body\n# ", chunk.Content)
		assert.Equal(t, content[:chunk.Start]+chunk.Content+content[chunk.End:], content)
	})

	t.Run("bounded by end of file", func(t *testing.T) {
		chunk, err := SuiteChunk(content, "beta")
		require.NoError(t, err)
		assert.Equal(t, "\nbeta body\n", chunk.Content)
		assert.Equal(t, len(content), chunk.End)
	})

	t.Run("missing marker", func(t *testing.T) {
		_, err := SuiteChunk(content, "gamma")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gamma")
	})
}

func TestChunkSpliceInto(t *testing.T) {
	content := "before\n# Planter Suite: alpha\nold\n"
	chunk, err := SuiteChunk(content, "alpha")
	require.NoError(t, err)

	chunk.Content = "\nnew body\n"
	spliced := chunk.SpliceInto(content)
	assert.Equal(t, "before\n# Planter Suite: alpha\nnew body\n", spliced)
}

func TestExistingGroups(t *testing.T) {
	content := "# Planter Group: first\nbody\n// Planter Group: second  \n"
	assert.Equal(t, []string{"first", "second"}, ExistingGroups(content))

	assert.Empty(t, ExistingGroups("no markers here"))
}

func TestContainsSuite(t *testing.T) {
	content := "# Planter Suite: smoke\n"
	assert.True(t, ContainsSuite(content, "smoke"))
	assert.False(t, ContainsSuite(content, "integration"))
}

func TestInsertAfterKeyword(t *testing.T) {
	t.Run("inserts after first occurrence", func(t *testing.T) {
		got := InsertAfterKeyword("a MARK b MARK c", "+X", "MARK")
		assert.Equal(t, "a MARK+X b MARK c", got)
	})

	t.Run("panics when keyword is absent", func(t *testing.T) {
		assert.Panics(t, func() {
			InsertAfterKeyword("no anchor here", "text", "MARK")
		})
	})
}
