package domain

import (
	"encoding/json"
	"time"
)

// EvaluationRequest is the envelope POSTed to the flag service.
// A nil Context is left out of the JSON body; an empty one is sent as {}.
type EvaluationRequest struct {
	TeamID  string         `json:"teamId"`
	FlagKey string         `json:"flagKey"`
	Context map[string]any `json:"context,omitempty"`
}

// NewEvaluationRequest builds the envelope for one flag key.
func NewEvaluationRequest(teamID, flagKey string, evalCtx map[string]any) EvaluationRequest {
	return EvaluationRequest{
		TeamID:  teamID,
		FlagKey: flagKey,
		Context: evalCtx,
	}
}

func (r EvaluationRequest) MarshalJSON() ([]byte, error) {
	type envelope struct {
		TeamID  string          `json:"teamId"`
		FlagKey string          `json:"flagKey"`
		Context *map[string]any `json:"context,omitempty"`
	}

	e := envelope{TeamID: r.TeamID, FlagKey: r.FlagKey}
	if r.Context != nil {
		e.Context = &r.Context
	}
	return json.Marshal(e)
}

// Outcome is the result of a single remote evaluation attempt.
// Value is only meaningful when Succeeded is true.
type Outcome struct {
	FlagKey   string
	Value     bool
	Succeeded bool
	RequestID string
	Duration  time.Duration
	Err       error
}

// Kind returns the failure kind of an unsuccessful outcome.
func (o Outcome) Kind() FailureKind {
	if o.Succeeded {
		return ""
	}
	return KindOf(o.Err)
}
