// Package prompt loads and renders locale-specific prompt templates.
// Templates are embedded at build time; an optional override directory is
// re-read on Reload for live updates. No per-request I/O happens.
package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

//go:embed templates
var builtinTemplates embed.FS

// Template names known to the store.
const (
	SystemPreamble      = "system_preamble"
	IntentExtraction    = "intent_extraction"
	ItineraryGeneration = "itinerary_generation"
)

// Locales; en is authoritative and acts as the fallback source.
const (
	localeEN = "en"
	localeZH = "zh"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Hard-coded minimal fallbacks used when a template is absent from the
// loaded set entirely.
var fallbacks = map[string]string{
	SystemPreamble:      "You are a helpful bilingual travel planning assistant.",
	IntentExtraction:    "Classify the user's travel query into an intent and extract parameters. Respond in JSON.",
	ItineraryGeneration: "Create a detailed day-by-day travel itinerary for the given request. Respond in JSON.",
}

// Store holds the loaded template set. Loading happens once at
// construction; the set is immutable between Reload calls.
type Store struct {
	mu          sync.RWMutex
	overrideDir string
	templates   map[string]map[string]string // locale -> name -> body
}

// NewStore loads the embedded templates, plus overrides from dir when it is
// non-empty.
func NewStore(overrideDir string) (*Store, error) {
	s := &Store{overrideDir: overrideDir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload clears and re-reads the backing template set.
func (s *Store) Reload() error {
	templates := map[string]map[string]string{
		localeEN: {},
		localeZH: {},
	}

	if err := loadFS(templates, builtinTemplates, "templates"); err != nil {
		return fmt.Errorf("failed to load embedded templates: %w", err)
	}

	if s.overrideDir != "" {
		if err := loadFS(templates, os.DirFS(s.overrideDir), "."); err != nil {
			return fmt.Errorf("failed to load template overrides from %s: %w", s.overrideDir, err)
		}
	}

	s.mu.Lock()
	s.templates = templates
	s.mu.Unlock()

	return nil
}

// Template returns the locale-specific template body. A template missing in
// the requested locale is substituted from the other locale; a name missing
// everywhere yields its hard-coded minimal fallback.
func (s *Store) Template(name, locale string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if body, ok := s.templates[locale][name]; ok {
		return body
	}

	for otherLocale, set := range s.templates {
		if otherLocale == locale {
			continue
		}
		if body, ok := set[name]; ok {
			return body
		}
	}

	if fallback, ok := fallbacks[name]; ok {
		return fallback
	}

	return fallbacks[SystemPreamble]
}

// Render substitutes {{key}} placeholders in the named template with
// stringified values. Slices are joined with ", "; unmatched placeholders
// are left verbatim.
func (s *Store) Render(name string, vars map[string]any, locale string) string {
	body := s.Template(name, locale)

	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := vars[key]
		if !ok {
			return match
		}
		return stringify(value)
	})
}

// loadFS merges <root>/<locale>/<name>.txt files into the template set.
func loadFS(templates map[string]map[string]string, fsys fs.FS, root string) error {
	for locale := range templates {
		dir := filepath.Join(root, locale)

		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			// A locale directory may be absent; the other locale covers it.
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
				continue
			}

			body, readErr := fs.ReadFile(fsys, filepath.Join(dir, entry.Name()))
			if readErr != nil {
				return fmt.Errorf("failed to read template %s: %w", entry.Name(), readErr)
			}

			name := strings.TrimSuffix(entry.Name(), ".txt")
			templates[locale][name] = strings.TrimSpace(string(body))
		}
	}

	return nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
