// internal/workers/team/search-position-slots/handler_test.go
package searchpositionslots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/models"
	"teamfit-workers/internal/workers/team/search-position-slots/queries"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Index:           "position_slots",
		DefaultPageSize: 20,
		MaxPageSize:     100,
		Timeout:         5 * time.Second,
	}
}

type capturedRequest struct {
	Path  string
	From  string
	Size  string
	Query map[string]interface{}
}

// newFakeElasticsearch serves a canned search response and records the last request.
func newFakeElasticsearch(t *testing.T, status int, response interface{}) (*elasticsearch.Client, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.From = r.URL.Query().Get("from")
		captured.Size = r.URL.Query().Get("size")
		_ = json.NewDecoder(r.Body).Decode(&captured.Query)

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, captured
}

func searchResponse(docs ...queries.SlotDocument) map[string]interface{} {
	hits := make([]interface{}, 0, len(docs))
	for i, doc := range docs {
		hits = append(hits, map[string]interface{}{
			"_id":     doc.ID,
			"_score":  2.0 - float64(i)*0.5,
			"_source": doc,
		})
	}
	return map[string]interface{}{
		"took": 3,
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": len(docs), "relation": "eq"},
			"max_score": 2.0,
			"hits":      hits,
		},
	}
}

func createTestDocuments() []queries.SlotDocument {
	frontend := models.RoleTypeFrontend
	return []queries.SlotDocument{
		queries.NewSlotDocument(models.PositionSlot{
			ID: "slot-1", TeamID: "team-1", Role: models.RoleDeveloper, RoleType: &frontend,
			MinLevel: 2, MaxCount: 2,
			RequiredSkillLevels: []models.SkillRequirement{{SkillName: "React", MinLevel: 3}},
		}),
		queries.NewSlotDocument(models.PositionSlot{
			ID: "slot-2", TeamID: "team-2", Role: models.RoleDeveloper, RoleType: &frontend,
			MinLevel: 1, CurrentCount: 1, MaxCount: 3,
		}),
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Search(t *testing.T) {
	client, captured := newFakeElasticsearch(t, http.StatusOK, searchResponse(createTestDocuments()...))
	handler := NewHandler(createTestConfig(), client, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Role:     "developer",
		RoleType: "frontend",
		Skills:   []string{"React"},
		OpenOnly: true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, 2.0, output.MaxScore)
	require.Len(t, output.Slots, 2)
	assert.Equal(t, "slot-1", output.Slots[0].Slot.ID)
	assert.Equal(t, 2.0, output.Slots[0].Score)
	require.Len(t, output.Slots[0].Slot.RequiredSkillLevels, 1)
	assert.Equal(t, "React", output.Slots[0].Slot.RequiredSkillLevels[0].SkillName)
	assert.True(t, output.Slots[1].Slot.Available())

	assert.Equal(t, "/position_slots/_search", captured.Path)
	assert.Equal(t, "0", captured.From)
	assert.Equal(t, "20", captured.Size)

	boolQuery := captured.Query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["filter"], 4)
}

func TestHandler_Execute_Pagination(t *testing.T) {
	tests := []struct {
		name         string
		pagination   Pagination
		expectedFrom string
		expectedSize string
	}{
		{name: "defaults", pagination: Pagination{}, expectedFrom: "0", expectedSize: "20"},
		{name: "custom", pagination: Pagination{From: 40, Size: 10}, expectedFrom: "40", expectedSize: "10"},
		{name: "oversized page", pagination: Pagination{Size: 500}, expectedFrom: "0", expectedSize: "100"},
		{name: "negative offset", pagination: Pagination{From: -5, Size: 5}, expectedFrom: "0", expectedSize: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, captured := newFakeElasticsearch(t, http.StatusOK, searchResponse())
			handler := NewHandler(createTestConfig(), client, nil, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{Pagination: tt.pagination})

			require.NoError(t, err)
			assert.Empty(t, output.Slots)
			assert.Equal(t, tt.expectedFrom, captured.From)
			assert.Equal(t, tt.expectedSize, captured.Size)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_IndexNotFound(t *testing.T) {
	client, _ := newFakeElasticsearch(t, http.StatusNotFound, map[string]interface{}{
		"error":  map[string]interface{}{"type": "index_not_found_exception"},
		"status": 404,
	})
	handler := NewHandler(createTestConfig(), client, nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})

	assert.ErrorIs(t, err, ErrIndexNotFound)
	assert.Equal(t, apperrors.ErrCodeIndexNotFound, handler.toStandardError(err).Code)
}

func TestHandler_Execute_QueryFailed(t *testing.T) {
	client, _ := newFakeElasticsearch(t, http.StatusBadRequest, map[string]interface{}{
		"error":  map[string]interface{}{"type": "parsing_exception"},
		"status": 400,
	})
	handler := NewHandler(createTestConfig(), client, nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})

	assert.ErrorIs(t, err, ErrSearchQueryFailed)
	stdErr := handler.toStandardError(err)
	assert.Equal(t, apperrors.ErrCodeSearchQueryFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_UnknownSort(t *testing.T) {
	client, _ := newFakeElasticsearch(t, http.StatusOK, searchResponse())
	handler := NewHandler(createTestConfig(), client, nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{SortBy: "popularity"})

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, handler.toStandardError(err).Code)
}

func TestHandler_Execute_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{addr},
		DisableRetry: true,
	})
	require.NoError(t, err)
	handler := NewHandler(createTestConfig(), client, nil, logger.NewTestLogger(t))

	_, err = handler.Execute(context.Background(), &Input{})

	assert.ErrorIs(t, err, ErrElasticsearchConnectionFailed)
	assert.Equal(t, apperrors.ErrCodeElasticsearchConnectionFailed, handler.toStandardError(err).Code)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), nil)

	assert.ErrorIs(t, err, ErrInvalidInput)
}
