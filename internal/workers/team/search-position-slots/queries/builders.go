// internal/workers/team/search-position-slots/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"teamfit-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex  = errors.New("index name is required")
	ErrUnknownSortBy = errors.New("unknown sort field")
)

// openSlotScript keeps slots with remaining capacity.
const openSlotScript = "doc['currentCount'].value < doc['maxCount'].value"

// SlotQuery is a resolved search request; pagination is already clamped.
type SlotQuery struct {
	Index          string
	Keywords       string
	TeamID         string
	Role           string
	RoleType       string
	Skills         []string
	CandidateLevel *int
	OpenOnly       bool
	SortBy         string
	From           int
	Size           int
}

// SlotDocument is the shape of a position slot in the search index.
// SkillNames holds the lower-cased required skill names for term filters.
type SlotDocument struct {
	models.PositionSlot
	SkillNames []string `json:"skillNames"`
}

func NewSlotDocument(slot models.PositionSlot) SlotDocument {
	names := make([]string, 0, len(slot.RequiredSkillLevels))
	for _, req := range slot.RequiredSkillLevels {
		names = append(names, strings.ToLower(strings.TrimSpace(req.SkillName)))
	}
	return SlotDocument{PositionSlot: slot, SkillNames: names}
}

// BuildQuery builds the search request for sq.
func BuildQuery(sq SlotQuery) (*esapi.SearchRequest, error) {
	if sq.Index == "" {
		return nil, ErrMissingIndex
	}

	body, err := BuildBody(sq)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	from, size := sq.From, sq.Size
	return &esapi.SearchRequest{
		Index: []string{sq.Index},
		Body:  bytes.NewReader(raw),
		From:  &from,
		Size:  &size,
	}, nil
}

// BuildBody returns the query DSL for sq.
func BuildBody(sq SlotQuery) (map[string]interface{}, error) {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if kw := strings.TrimSpace(sq.Keywords); kw != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  kw,
				"fields": []string{"role^3", "roleType^2", "skillNames^2", "questions.text"},
				"type":   "best_fields",
			},
		})
	}

	if sq.TeamID != "" {
		filterClauses = append(filterClauses, term("teamId", sq.TeamID))
	}
	if sq.Role != "" {
		filterClauses = append(filterClauses, term("role", sq.Role))
	}
	if sq.RoleType != "" {
		filterClauses = append(filterClauses, term("roleType", sq.RoleType))
	}

	if skills := normalizeSkills(sq.Skills); len(skills) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"skillNames": skills},
		})
	}

	if sq.CandidateLevel != nil {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"minLevel": map[string]interface{}{"lte": *sq.CandidateLevel},
			},
		})
	}

	if sq.OpenOnly {
		filterClauses = append(filterClauses, map[string]interface{}{
			"script": map[string]interface{}{
				"script": map[string]interface{}{
					"source": openSlotScript,
					"lang":   "painless",
				},
			},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}

	switch sq.SortBy {
	case "", "relevance":
	case "minLevel":
		query["sort"] = []map[string]interface{}{{"minLevel": "asc"}, {"_score": "desc"}}
	case "role":
		query["sort"] = []map[string]interface{}{{"role": "asc"}, {"_score": "desc"}}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSortBy, sq.SortBy)
	}

	return query, nil
}

func term(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

// normalizeSkills lower-cases and de-duplicates skill names, dropping blanks.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
