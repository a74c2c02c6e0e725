// internal/recommend/knowledge.go
package recommend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gift-finder-backend/internal/models"
)

// GiftTemplate is a knowledge-base gift entry. Templates have no catalog
// identity; they back the fallback path when scoring finds nothing.
type GiftTemplate struct {
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
	AgeMin   int    `yaml:"age_min" json:"ageMin"`
	Image    string `yaml:"image,omitempty" json:"image,omitempty"`
}

// Gift materializes the template as a catalog-shaped item.
func (t GiftTemplate) Gift() models.Gift {
	return models.Gift{
		Name:     t.Name,
		Category: t.Category,
		AgeMin:   t.AgeMin,
		AgeMax:   100,
		Image:    t.Image,
	}
}

// KnowledgeBase maps canonical interests to template gifts. It is loaded
// once at startup and immutable afterwards, so concurrent reads need no
// locking. Key order is the declaration order of the source file and is
// the deterministic iteration order for fuzzy matching and fallback.
type KnowledgeBase struct {
	keys    []string
	entries map[string][]GiftTemplate
}

type knowledgeFile struct {
	Interests []struct {
		Key   string         `yaml:"key"`
		Gifts []GiftTemplate `yaml:"gifts"`
	} `yaml:"interests"`
}

// LoadKnowledgeBase reads the YAML knowledge base at path.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}

	var file knowledgeFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}

	kb := &KnowledgeBase{entries: make(map[string][]GiftTemplate, len(file.Interests))}
	for _, entry := range file.Interests {
		if entry.Key == "" {
			continue
		}
		if _, dup := kb.entries[entry.Key]; dup {
			return nil, fmt.Errorf("duplicate knowledge base key %q", entry.Key)
		}
		kb.keys = append(kb.keys, entry.Key)
		kb.entries[entry.Key] = entry.Gifts
	}
	return kb, nil
}

// NewKnowledgeBase builds a knowledge base from ordered key/template
// pairs. Used by tests and the built-in default.
func NewKnowledgeBase(keys []string, entries map[string][]GiftTemplate) *KnowledgeBase {
	return &KnowledgeBase{keys: keys, entries: entries}
}

// Keys returns the canonical interests in declaration order.
func (kb *KnowledgeBase) Keys() []string {
	return kb.keys
}

// Lookup returns the templates for a canonical interest.
func (kb *KnowledgeBase) Lookup(key string) ([]GiftTemplate, bool) {
	templates, ok := kb.entries[key]
	return templates, ok
}

// Empty reports whether the knowledge base has no entries. An empty base
// is a valid configuration state; callers surface it as an empty result,
// never an error.
func (kb *KnowledgeBase) Empty() bool {
	return kb == nil || len(kb.keys) == 0
}
