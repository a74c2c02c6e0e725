// internal/recommend/knowledge_test.go
package recommend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKnowledgeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge_base.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadKnowledgeBase(t *testing.T) {
	path := writeTestKnowledgeFile(t, `
interests:
  - key: drawing
    gifts:
      - name: Professional Sketch Pad
        category: art
        age_min: 8
        image: https://example.com/sketchpad.jpg
  - key: gaming
    gifts:
      - name: Gaming Headset
        category: gaming
        age_min: 12
`)

	kb, err := LoadKnowledgeBase(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"drawing", "gaming"}, kb.Keys())
	assert.False(t, kb.Empty())

	templates, ok := kb.Lookup("drawing")
	require.True(t, ok)
	require.Len(t, templates, 1)
	assert.Equal(t, "Professional Sketch Pad", templates[0].Name)
	assert.Equal(t, "art", templates[0].Category)
	assert.Equal(t, 8, templates[0].AgeMin)

	_, ok = kb.Lookup("spelunking")
	assert.False(t, ok)
}

func TestLoadKnowledgeBase_DuplicateKey(t *testing.T) {
	path := writeTestKnowledgeFile(t, `
interests:
  - key: gaming
    gifts:
      - name: Gaming Headset
        category: gaming
  - key: gaming
    gifts:
      - name: Gaming Mouse
        category: gaming
`)

	_, err := LoadKnowledgeBase(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadKnowledgeBase_MissingFile(t *testing.T) {
	_, err := LoadKnowledgeBase(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGiftTemplate_Gift(t *testing.T) {
	tmpl := GiftTemplate{Name: "Gaming Headset", Category: "gaming", AgeMin: 12, Image: "img.jpg"}

	gift := tmpl.Gift()
	assert.Equal(t, "Gaming Headset", gift.Name)
	assert.Equal(t, "gaming", gift.Category)
	assert.Equal(t, 12, gift.AgeMin)
	assert.Equal(t, 100, gift.AgeMax)
	assert.Equal(t, "img.jpg", gift.Image)
}
