// internal/catalog/index_test.go
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type recordedRequest struct {
	method string
	path   string
	query  string
	body   []byte
}

func createTestIndex(t *testing.T, status int, payload string) (*Index, *[]recordedRequest) {
	t.Helper()
	seen := &[]recordedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*seen = append(*seen, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   body,
		})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndex(client, "gifts", logger.NewTestLogger(t)), seen
}

// ==========================
// Core Functionality Tests
// ==========================

func TestIndex_Candidates(t *testing.T) {
	payload := `{"hits":{"hits":[{"_source":{"id":"g1","name":"Gaming Headset","category":"gaming"}}]}}`
	ix, seen := createTestIndex(t, http.StatusOK, payload)

	gifts, err := ix.Candidates(context.Background(), []string{"gaming", "headset"}, 10)
	require.NoError(t, err)
	require.Len(t, gifts, 1)
	assert.Equal(t, "Gaming Headset", gifts[0].Name)

	require.Len(t, *seen, 1)
	assert.Equal(t, "/gifts/_search", (*seen)[0].path)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal((*seen)[0].body, &sent))
	match := sent["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "gaming headset", match["query"])
}

func TestIndex_Candidates_EmptyTerms(t *testing.T) {
	ix, seen := createTestIndex(t, http.StatusOK, `{}`)

	gifts, err := ix.Candidates(context.Background(), []string{"  ", ""}, 10)
	require.NoError(t, err)
	assert.Empty(t, gifts)
	assert.Empty(t, *seen)
}

func TestIndex_Candidates_ServerError(t *testing.T) {
	ix, _ := createTestIndex(t, http.StatusInternalServerError, `{"error":{}}`)

	_, err := ix.Candidates(context.Background(), []string{"gaming"}, 10)
	assert.Error(t, err)
}

func TestIndex_IndexGifts(t *testing.T) {
	ix, seen := createTestIndex(t, http.StatusOK, `{"errors":false}`)

	gifts := []models.Gift{
		{ID: "g1", Name: "Gaming Headset", Category: "gaming"},
		{ID: "g2", Name: "Crystal Growing Kit", Category: "science"},
	}
	require.NoError(t, ix.IndexGifts(context.Background(), gifts))

	require.Len(t, *seen, 1)
	assert.Equal(t, "/_bulk", (*seen)[0].path)

	// One action line and one document line per gift.
	lines := strings.Split(strings.TrimSpace(string((*seen)[0].body)), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"_id":"g1"`)
}

func TestIndex_IndexGifts_Empty(t *testing.T) {
	ix, seen := createTestIndex(t, http.StatusOK, `{}`)

	require.NoError(t, ix.IndexGifts(context.Background(), nil))
	assert.Empty(t, *seen)
}

func TestIndex_DeleteIndex(t *testing.T) {
	ix, seen := createTestIndex(t, http.StatusOK, `{"acknowledged":true}`)

	require.NoError(t, ix.DeleteIndex(context.Background()))

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodDelete, (*seen)[0].method)
	assert.Equal(t, "/gifts", (*seen)[0].path)
	assert.Contains(t, (*seen)[0].query, "ignore_unavailable=true")
}

func TestIndex_DeleteIndex_ServerError(t *testing.T) {
	ix, _ := createTestIndex(t, http.StatusForbidden, `{"error":{}}`)

	assert.Error(t, ix.DeleteIndex(context.Background()))
}
