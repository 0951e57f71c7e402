// Package repository holds the in-memory stores backing the draft service:
// vote aggregates per draft year and simulation runs.
package repository

import (
	"time"

	"github.com/okian/draftsim/internal/domain/model"
)

// RunStatus is the lifecycle state of a simulation run.
type RunStatus string

// Run states.
const (
	StatusQueued       RunStatus = "queued"
	StatusRunning      RunStatus = "running"
	StatusAwaitingPick RunStatus = "awaiting_pick"
	StatusCompleted    RunStatus = "completed"
	StatusFailed       RunStatus = "failed"
)

// Terminal reports whether no further updates are expected.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Awaiting describes a human-controlled team that must submit a pick.
type Awaiting struct {
	TeamID   string    `json:"team_id"`
	Round    int       `json:"round"`
	Deadline time.Time `json:"deadline"`
	// Top lists the best ranked candidate ids as a hint.
	Top []int64 `json:"top,omitempty"`
}

// Run is the stored state of one simulation.
type Run struct {
	ID              string               `json:"id"`
	Status          RunStatus            `json:"status"`
	Rounds          int                  `json:"rounds"`
	CompletedRounds int                  `json:"completed_rounds"`
	Picks           []model.Pick         `json:"picks"`
	Summaries       []model.PickSummary  `json:"summaries"`
	Remaining       int                  `json:"remaining"`
	Lottery         []model.LotteryEntry `json:"lottery,omitempty"`
	Awaiting        *Awaiting            `json:"awaiting,omitempty"`
	Error           string               `json:"error,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func (r Run) clone() Run {
	out := r
	out.Picks = append([]model.Pick(nil), r.Picks...)
	out.Summaries = append([]model.PickSummary(nil), r.Summaries...)
	out.Lottery = append([]model.LotteryEntry(nil), r.Lottery...)
	if r.Awaiting != nil {
		a := *r.Awaiting
		a.Top = append([]int64(nil), r.Awaiting.Top...)
		out.Awaiting = &a
	}
	return out
}
