package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/draftsim/internal/testdraft"
)

// printRun writes a run as one table row per pick.
func printRun(w io.Writer, run testdraft.RunRecord) {
	fmt.Fprintf(w, "run %s: %s, %d/%d rounds, %d picks, %d left in pool\n",
		run.ID, run.Status, run.CompletedRounds, run.Rounds, len(run.Picks), run.Remaining)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tTEAM\tPLAYER\tPOSITIONS\tSOURCE\tSCORE\tNOTE")
	for i, p := range run.Picks {
		var source, score string
		if i < len(run.Summaries) {
			source = string(run.Summaries[i].Source)
			score = fmt.Sprintf("%.1f", run.Summaries[i].Breakdown.Composite)
		}
		note := p.Label
		if p.Development {
			note = strings.TrimSpace(note + " development")
		}
		if p.Contested {
			note = strings.TrimSpace(note + " contested:" + strings.Join(p.ContestingTeams, ","))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Round, p.TeamID, p.PlayerName, strings.Join(p.Positions, "/"), source, score, note)
	}
	_ = tw.Flush()
}
