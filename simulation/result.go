package simulation

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/traingen/core"
	"github.com/poiesic/traingen/roleplay"
)

// Details carries type-specific result data.
type Details struct {
	ScenarioPath       []string             `json:"scenarioPath,omitempty"`
	RoleplayEvaluation *roleplay.Evaluation `json:"roleplayEvaluation,omitempty"`
}

// Result is the record of one completed simulation session. Score is a
// percentage regardless of simulation type.
type Result struct {
	ID           string              `json:"id"`
	SimulationID string              `json:"simulationId"`
	UserID       string              `json:"userId"`
	Type         core.SimulationType `json:"type"`
	StartedAt    time.Time           `json:"startedAt"`
	CompletedAt  time.Time           `json:"completedAt"`
	Score        int                 `json:"score"`
	Passed       bool                `json:"passed"`
	Duration     time.Duration       `json:"duration"`
	Details      Details             `json:"details"`
}

func newResult(simulationID, userID string, simType core.SimulationType, startedAt time.Time) Result {
	now := time.Now()
	return Result{
		ID:           "result-" + uuid.NewString(),
		SimulationID: simulationID,
		UserID:       userID,
		Type:         simType,
		StartedAt:    startedAt,
		CompletedAt:  now,
		Duration:     now.Sub(startedAt),
	}
}

// NewScenarioResult builds the result of a branching scenario session.
func NewScenarioResult(simulationID, userID string, startedAt time.Time, state State, passingScore int) Result {
	result := newResult(simulationID, userID, core.SimulationScenarioBranching, startedAt)

	if state.MaxScore > 0 {
		result.Score = int(math.Round(float64(state.Score) / float64(state.MaxScore) * 100))
	}
	result.Passed = result.Score >= passingScore

	path := make([]string, len(state.History))
	for i, choice := range state.History {
		path[i] = choice.NodeID
	}
	result.Details.ScenarioPath = path
	return result
}

// NewRoleplayResult builds the result of a roleplay session from its
// evaluation.
func NewRoleplayResult(simulationID, userID string, startedAt time.Time, evaluation *roleplay.Evaluation) Result {
	result := newResult(simulationID, userID, core.SimulationAIRoleplay, startedAt)

	if evaluation != nil {
		result.Score = evaluation.OverallScore
		result.Passed = evaluation.Passed
		result.Details.RoleplayEvaluation = evaluation
	}
	return result
}
