// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeCandidateProfile      QueryType = "candidate_profile"
	QueryTypeCandidateSkills       QueryType = "candidate_skills"
	QueryTypeTeamSlots             QueryType = "team_slots"
	QueryTypeSlotDetails           QueryType = "slot_details"
	QueryTypeCandidateApplications QueryType = "candidate_applications"
)
