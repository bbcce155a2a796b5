// internal/workers/team/search-position-slots/queries/search.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrTransport     = errors.New("elasticsearch unreachable")
	ErrSearchFailed  = errors.New("search failed")
)

type Hit struct {
	ID       string
	Score    float64
	Document SlotDocument
}

type Result struct {
	Hits      []Hit
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string       `json:"_id"`
			Score  *float64     `json:"_score"`
			Source SlotDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Execute runs sq against transport, normally an *elasticsearch.Client.
func Execute(ctx context.Context, transport esapi.Transport, sq SlotQuery) (*Result, error) {
	req, err := BuildQuery(sq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, transport)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, sq.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var decoded searchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	result := &Result{
		Hits:      make([]Hit, 0, len(decoded.Hits.Hits)),
		TotalHits: decoded.Hits.Total.Value,
		Took:      time.Since(start).Milliseconds(),
	}
	if decoded.Hits.MaxScore != nil {
		result.MaxScore = *decoded.Hits.MaxScore
	}
	for _, h := range decoded.Hits.Hits {
		hit := Hit{ID: h.ID, Document: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		if hit.Document.ID == "" {
			hit.Document.ID = h.ID
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}
