package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlternativesLongestFirst(t *testing.T) {
	t.Parallel()

	got := Alternatives([]string{"set", " Set Up ", "set", ""})
	assert.Equal(t, `set\s+up|set`, got)
}

func TestWordsToleratesInflections(t *testing.T) {
	t.Parallel()

	re, err := Words([]string{"test", "refactor", "fix"})
	require.NoError(t, err)

	assert.Equal(t, []string{"refactor", "test", "fix"}, Distinct(re, "refactoring the tests then fixed one test"))
	assert.False(t, re.MatchString("attestation"))
}

func TestEmptyListNeverMatches(t *testing.T) {
	t.Parallel()

	re, err := Pattern(`\b(?:`, `)\b`, nil)
	require.NoError(t, err)
	assert.False(t, re.MatchString(""))
	assert.False(t, re.MatchString("anything"))
}
