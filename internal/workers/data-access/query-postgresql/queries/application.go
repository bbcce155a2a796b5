// internal/workers/data-access/query-postgresql/queries/application.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"teamfit-workers/internal/models"
)

const selectCandidateApplications = `
	SELECT id, candidate_id, team_id, slot_id, role, role_type,
	       introduction, answers, fit_score, status, created_at
	FROM team_applications
	WHERE candidate_id = $1 AND ($2::text = '' OR status = $2)
	ORDER BY created_at DESC`

// CandidateApplications lists a candidate's applications, newest first.
// An optional filters.status narrows the list.
func CandidateApplications(ctx context.Context, deps Deps, params map[string]interface{}) (interface{}, int, error) {
	candidateID, err := stringParam(params, "candidateId")
	if err != nil {
		return nil, 0, err
	}
	status := ""
	if filters, ok := params["filters"].(map[string]interface{}); ok {
		status, _ = filters["status"].(string)
	}

	rows, err := deps.DB.QueryContext(ctx, selectCandidateApplications, candidateID, status)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []models.Application{}
	for rows.Next() {
		var (
			app      models.Application
			roleType sql.NullString
			answers  []byte
		)
		err := rows.Scan(
			&app.ID, &app.CandidateID, &app.TeamID, &app.SlotID, &app.Role, &roleType,
			&app.Introduction, &answers, &app.FitScore, &app.Status, &app.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		if roleType.Valid {
			rt := models.RoleType(roleType.String)
			app.RoleType = &rt
		}
		if len(answers) > 0 {
			if err := json.Unmarshal(answers, &app.Answers); err != nil {
				return nil, 0, fmt.Errorf("decode answers for %s: %w", app.ID, err)
			}
		}
		results = append(results, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return results, len(results), nil
}
