package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	out, err := Render(IntentClassifier, map[string]string{"text": "socrates is mortal"})
	require.NoError(t, err)
	assert.Contains(t, out, `Statement: "socrates is mortal"`)
	assert.NotContains(t, out, "{text}")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("nonexistent", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRegistryIsClosed(t *testing.T) {
	want := []string{IntentClassifier, FactTranslation, RuleTranslation, QueryTranslation, ResultSummary}
	assert.Len(t, templates, len(want))
	for _, name := range want {
		_, ok := templates[name]
		assert.True(t, ok, "missing template %s", name)
	}
}

func TestQueryTranslationForbidsAnonymousVariable(t *testing.T) {
	out, err := Render(QueryTranslation, map[string]string{
		"question": "Who is the mother of Anne?",
		"schema":   SchemaSection([]string{"mother/2", "parent/2"}),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "NEVER use the anonymous variable _")
	assert.Contains(t, out, "% KB contains: mother/2, parent/2")
}

func TestSchemaSection(t *testing.T) {
	assert.Equal(t, "", SchemaSection(nil))
	assert.Equal(t, "", SchemaSection([]string{}))

	got := SchemaSection([]string{"parent/2", "female/1"})
	assert.True(t, strings.HasPrefix(got, "--- SCHEMA ---\n"))
	assert.Contains(t, got, "% KB contains: parent/2, female/1")
	assert.True(t, strings.HasSuffix(got, "\n"))
}
