// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-finder-backend/internal/cache"
	"gift-finder-backend/internal/common/config"
	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/models"
	"gift-finder-backend/internal/nlp"
	"gift-finder-backend/internal/recommend"
	"gift-finder-backend/internal/search"
	"gift-finder-backend/internal/server"
)

// memoryStore stands in for the Postgres catalog so the whole request
// path can run in-process.
type memoryStore struct {
	gifts      []models.Gift
	categories []models.Category
}

func (m *memoryStore) ListGifts(ctx context.Context) ([]models.Gift, error) {
	return m.gifts, nil
}

func (m *memoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return m.categories, nil
}

func buildTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.NewNoOpLogger()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	kb := recommend.NewKnowledgeBase(
		[]string{"drawing", "dinosaurs", "science", "gaming", "cooking"},
		map[string][]recommend.GiftTemplate{
			"drawing":   {{Name: "Professional Sketch Pad", Category: "art", AgeMin: 8}},
			"dinosaurs": {{Name: "Dinosaur Fossil Dig Kit", Category: "science", AgeMin: 6}},
			"science":   {{Name: "Crystal Growing Kit", Category: "science", AgeMin: 8}},
			"gaming":    {{Name: "Gaming Headset", Category: "gaming", AgeMin: 12}},
			"cooking":   {{Name: "Electric Mixer", Category: "kitchen", AgeMin: 18}},
		},
	)

	store := &memoryStore{
		gifts: []models.Gift{
			{ID: "g1", Name: "Gaming Headset", Category: "gaming", AgeMin: 12, AgeMax: 100, Price: 59.99},
			{ID: "g2", Name: "Crystal Growing Kit", Category: "science", AgeMin: 8, AgeMax: 100, Price: 24.99},
			{ID: "g3", Name: "Cookbook", Category: "kitchen", AgeMin: 18, AgeMax: 100, Price: 29.99},
		},
		categories: []models.Category{
			{ID: "c1", Name: "gaming", Interests: []string{"gaming"}},
			{ID: "c2", Name: "science", Interests: []string{"dinosaurs", "science"}},
		},
	}

	extractor := nlp.NewExtractor(nil, nlp.NewVaderScorer(), log)
	ranker := recommend.NewRanker(recommend.NewScorer(recommend.DefaultWeights()), kb, log)
	cacheSvc := cache.New(redisClient, config.CacheConfig{SearchTTL: 1800, IntentTTL: 3600, CategoriesTTL: 3600}, log)

	svc := search.New(extractor, ranker, store, nil, cacheSvc, nil, log).
		WithClock(func() time.Time { return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC) })

	handler := server.NewHandler(svc, map[string]server.HealthCheck{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}, log, "gift-finder-backend", "e2e")

	ts := httptest.NewServer(server.NewRouter(config.ServerConfig{}, handler, log))
	t.Cleanup(ts.Close)
	return ts
}

func postSearch(t *testing.T, ts *httptest.Server, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/search", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestEndToEnd_SearchPipeline(t *testing.T) {
	ts := buildTestServer(t)

	body := postSearch(t, ts, map[string]interface{}{
		"query": "gaming gift for my 12 year old nephew",
	})

	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["fallback"])

	intent := body["intent"].(map[string]interface{})
	assert.Equal(t, 12.0, intent["age"])
	assert.Equal(t, "nephew", intent["relationship"])

	recommendations := body["recommendations"].([]interface{})
	require.NotEmpty(t, recommendations)
	top := recommendations[0].(map[string]interface{})
	assert.Equal(t, "Gaming Headset", top["gift"].(map[string]interface{})["name"])
	assert.NotEmpty(t, top["reasons"])

	// Identical requests are answered from the cache with the same body.
	again := postSearch(t, ts, map[string]interface{}{
		"query": "gaming gift for my 12 year old nephew",
	})
	assert.Equal(t, body["recommendations"], again["recommendations"])
}

func TestEndToEnd_FallbackPath(t *testing.T) {
	ts := buildTestServer(t)

	body := postSearch(t, ts, map[string]interface{}{
		"query": "qqqq dinosaurs",
	})

	assert.Equal(t, true, body["fallback"])
	recommendations := body["recommendations"].([]interface{})
	require.NotEmpty(t, recommendations)
	top := recommendations[0].(map[string]interface{})
	assert.Equal(t, "Dinosaur Fossil Dig Kit", top["gift"].(map[string]interface{})["name"])
}

func TestEndToEnd_SupportingEndpoints(t *testing.T) {
	ts := buildTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/api/categories")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var categories map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&categories))
	assert.Len(t, categories["categories"], 2)

	resp3, err := http.Get(ts.URL + "/api/filters")
	require.NoError(t, err)
	defer resp3.Body.Close()
	var filters map[string]interface{}
	require.NoError(t, json.NewDecoder(resp3.Body).Decode(&filters))
	assert.Equal(t, true, filters["success"])
}
