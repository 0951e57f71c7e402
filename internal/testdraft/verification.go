package testdraft

import (
	"fmt"

	"github.com/okian/draftsim/internal/adapters/repository"
	"github.com/okian/draftsim/internal/domain/model"
)

// VerifyRun checks a finished simulation against the pool it drafted from.
// It returns one error per violated property.
func VerifyRun(run RunRecord, pool []model.Candidate) []error {
	var errs []error
	if run.Status != repository.StatusCompleted {
		return append(errs, fmt.Errorf("run %s ended %s: %s", run.ID, run.Status, run.Error))
	}

	inPool := make(map[int64]struct{}, len(pool))
	for _, c := range pool {
		inPool[c.ID] = struct{}{}
	}

	drafted := make(map[int64]struct{}, len(run.Picks))
	perRound := make(map[int]map[string]struct{})
	for i, p := range run.Picks {
		if _, ok := inPool[p.PlayerID]; !ok {
			errs = append(errs, fmt.Errorf("pick %d: player %d is not in the pool", i, p.PlayerID))
		}
		if _, dup := drafted[p.PlayerID]; dup {
			errs = append(errs, fmt.Errorf("pick %d: player %d drafted twice", i, p.PlayerID))
		}
		drafted[p.PlayerID] = struct{}{}

		teams := perRound[p.Round]
		if teams == nil {
			teams = make(map[string]struct{})
			perRound[p.Round] = teams
		}
		if _, again := teams[p.TeamID]; again {
			errs = append(errs, fmt.Errorf("pick %d: %s picked twice in round %d", i, p.TeamID, p.Round))
		}
		teams[p.TeamID] = struct{}{}
	}

	if got, want := len(run.Picks)+run.Remaining, len(pool); got != want {
		errs = append(errs, fmt.Errorf("picks plus remaining is %d, pool was %d", got, want))
	}
	if len(run.Summaries) != len(run.Picks) {
		errs = append(errs, fmt.Errorf("%d summaries for %d picks", len(run.Summaries), len(run.Picks)))
	}
	if run.Remaining > 0 && run.Rounds > 0 {
		if want := run.Rounds * teamCount; len(run.Picks) != want {
			errs = append(errs, fmt.Errorf("pool not exhausted but %d picks over %d rounds", len(run.Picks), run.Rounds))
		}
	}
	return errs
}
