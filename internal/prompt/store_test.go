package prompt_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/prompt"
)

func TestStore_EmbeddedTemplates(t *testing.T) {
	store, err := prompt.NewStore("")
	require.NoError(t, err)

	for _, name := range []string{prompt.SystemPreamble, prompt.IntentExtraction, prompt.ItineraryGeneration} {
		for _, locale := range []string{"en", "zh"} {
			body := store.Template(name, locale)
			require.NotEmpty(t, body, "template %s/%s", locale, name)
		}
	}
}

func TestStore_LocaleFallback(t *testing.T) {
	store, err := prompt.NewStore("")
	require.NoError(t, err)

	// An unknown locale falls back to a populated one rather than
	// returning nothing.
	body := store.Template(prompt.SystemPreamble, "fr")
	require.NotEmpty(t, body)
}

func TestStore_UnknownNameFallback(t *testing.T) {
	store, err := prompt.NewStore("")
	require.NoError(t, err)

	body := store.Template("no_such_template", "en")
	require.NotEmpty(t, body)
}

func TestStore_Render(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "en", "greeting", "Hello {{name}}, topics: {{topics}}. Missing: {{unknown}}")

	store, err := prompt.NewStore(dir)
	require.NoError(t, err)

	rendered := store.Render("greeting", map[string]any{
		"name":   "Ada",
		"topics": []string{"food", "hiking"},
	}, "en")

	require.Equal(t, "Hello Ada, topics: food, hiking. Missing: {{unknown}}", rendered)
}

func TestStore_OverridesAndReload(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "en", prompt.SystemPreamble, "override v1")

	store, err := prompt.NewStore(dir)
	require.NoError(t, err)
	require.Equal(t, "override v1", store.Template(prompt.SystemPreamble, "en"))

	writeTemplate(t, dir, "en", prompt.SystemPreamble, "override v2")
	require.NoError(t, store.Reload())
	require.Equal(t, "override v2", store.Template(prompt.SystemPreamble, "en"))
}

func writeTemplate(t *testing.T, dir, locale, name, body string) {
	t.Helper()

	localeDir := filepath.Join(dir, locale)
	require.NoError(t, os.MkdirAll(localeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(localeDir, name+".txt"), []byte(body), 0o644))
}
