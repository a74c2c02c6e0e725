// internal/catalog/index.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/models"
)

// Index is the optional Elasticsearch keyword index over the catalog.
// It narrows the candidate set before scoring; when it is disabled or
// unreachable the service scores the full catalog snapshot instead, so
// every method here degrades rather than blocks a search.
type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

// NewIndex wraps an Elasticsearch client for the given index name.
func NewIndex(client *elasticsearch.Client, name string, log logger.Logger) *Index {
	return &Index{
		client: client,
		name:   name,
		logger: log.WithFields(map[string]interface{}{"component": "gift-index"}),
	}
}

// IndexGifts bulk-indexes the catalog. Called after seeding and on
// catalog reloads.
func (ix *Index) IndexGifts(ctx context.Context, gifts []models.Gift) error {
	if len(gifts) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, g := range gifts {
		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, ix.name, g.ID)
		doc, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal gift %s: %w", g.ID, err)
		}
		buf.WriteString(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := ix.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		ix.client.Bulk.WithContext(ctx),
		ix.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index gifts: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index gifts: %s", res.Status())
	}

	ix.logger.Info("indexed gifts", map[string]interface{}{"count": len(gifts)})
	return nil
}

// Candidates runs a keyword match over name, description and category
// and returns the matching gifts. An empty result means no match, not
// an error.
func (ix *Index) Candidates(ctx context.Context, terms []string, size int) ([]models.Gift, error) {
	text := strings.TrimSpace(strings.Join(terms, " "))
	if text == "" {
		return nil, nil
	}

	query := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"name^2", "description", "category"},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal candidate query: %w", err)
	}

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.name),
		ix.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search gift index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search gift index: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Gift `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode gift index response: %w", err)
	}

	gifts := make([]models.Gift, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		gifts = append(gifts, hit.Source)
	}
	return gifts, nil
}

// DeleteIndex drops the index. Used by catalog reload tooling; a missing
// index is not an error.
func (ix *Index) DeleteIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Delete(
		[]string{ix.name},
		ix.client.Indices.Delete.WithContext(ctx),
		ix.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete gift index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("delete gift index: %s", res.Status())
	}
	return nil
}
