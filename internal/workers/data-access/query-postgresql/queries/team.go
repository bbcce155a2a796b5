// internal/workers/data-access/query-postgresql/queries/team.go
package queries

import (
	"context"
)

func CandidateProfile(ctx context.Context, deps Deps, params map[string]interface{}) (interface{}, int, error) {
	candidateID, err := stringParam(params, "candidateId")
	if err != nil {
		return nil, 0, err
	}
	profile, err := deps.Reader.CandidateProfile(ctx, candidateID)
	if err != nil {
		return nil, 0, err
	}
	return profile, 1, nil
}

func CandidateSkills(ctx context.Context, deps Deps, params map[string]interface{}) (interface{}, int, error) {
	candidateID, err := stringParam(params, "candidateId")
	if err != nil {
		return nil, 0, err
	}
	skills, err := deps.Reader.CandidateSkills(ctx, candidateID)
	if err != nil {
		return nil, 0, err
	}
	return skills, len(skills), nil
}

func TeamSlots(ctx context.Context, deps Deps, params map[string]interface{}) (interface{}, int, error) {
	teamID, err := stringParam(params, "teamId")
	if err != nil {
		return nil, 0, err
	}
	slots, err := deps.Reader.PositionSlots(ctx, teamID)
	if err != nil {
		return nil, 0, err
	}
	return slots, len(slots), nil
}

func SlotDetails(ctx context.Context, deps Deps, params map[string]interface{}) (interface{}, int, error) {
	slotID, err := stringParam(params, "slotId")
	if err != nil {
		return nil, 0, err
	}
	slot, err := deps.Reader.PositionSlot(ctx, slotID)
	if err != nil {
		return nil, 0, err
	}
	return slot, 1, nil
}
