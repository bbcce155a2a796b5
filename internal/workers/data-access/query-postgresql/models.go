// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "teamfit-workers/internal/models"

type Input struct {
	QueryType   string                 `json:"queryType"`
	CandidateID string                 `json:"candidateId,omitempty"`
	TeamID      string                 `json:"teamId,omitempty"`
	SlotID      string                 `json:"slotId,omitempty"`
	Filters     map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeCandidateProfile      = models.QueryTypeCandidateProfile
	QueryTypeCandidateSkills       = models.QueryTypeCandidateSkills
	QueryTypeTeamSlots             = models.QueryTypeTeamSlots
	QueryTypeSlotDetails           = models.QueryTypeSlotDetails
	QueryTypeCandidateApplications = models.QueryTypeCandidateApplications
)
