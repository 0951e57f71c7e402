package model

import "time"

// SimulationRequest is everything a caller supplies to simulate a draft.
type SimulationRequest struct {
	Pool        []Candidate      `json:"pool"`
	Weights     Weights          `json:"weights"`
	DraftYear   int              `json:"draft_year"`
	Rounds      int              `json:"rounds"`
	HumanTeams  []string         `json:"human_teams,omitempty"`
	Unfulfilled UnfulfilledNeeds `json:"unfulfilled,omitempty"`
	History     []Pick           `json:"history,omitempty"`
	// Lottery resolves round 1 by nomination and draw before simulating.
	Lottery bool  `json:"lottery,omitempty"`
	Seed    int64 `json:"seed,omitempty"`
}

// SimulationJob is a queued simulation run.
type SimulationJob struct {
	RunID       string            `json:"run_id"`
	Request     SimulationRequest `json:"request"`
	SubmittedAt time.Time         `json:"submitted_at"`
}
