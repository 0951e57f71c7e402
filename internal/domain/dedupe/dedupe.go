// Package dedupe detects likely duplicate player registrations by name.
package dedupe

import (
	"context"
	"sort"
	"strings"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/pkg/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// DefaultThreshold is the similarity at or above which names are reported.
const DefaultThreshold = 80.0

const fullSimilarity = 100.0

// separators are dropped before comparing names.
var separators = strings.NewReplacer(" ", "", "　", "", "・", "", "･", "", "\t", "")

// Match is an existing player whose name resembles the query.
type Match struct {
	Candidate  model.Candidate `json:"candidate"`
	Similarity float64         `json:"similarity"`
	Exact      bool            `json:"exact"`
}

// Detector finds existing players with similar names.
type Detector struct {
	threshold float64
}

// NewDetector creates a detector with configuration options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Threshold returns the minimum similarity reported as a duplicate.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// FindDuplicates returns existing players whose similarity to name reaches
// the threshold, most similar first.
func (d *Detector) FindDuplicates(ctx context.Context, name string, existing []model.Candidate) []Match {
	query := normalize(name)
	if query == "" {
		return nil
	}
	var out []Match
	for _, c := range existing {
		if ctx.Err() != nil {
			break
		}
		other := normalize(c.Name)
		sim := similarity(query, other)
		if sim < d.threshold {
			continue
		}
		out = append(out, Match{Candidate: c, Similarity: sim, Exact: query == other})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	metrics.RecordDuplicateCheck(len(out))
	return out
}

// Normalize canonicalizes a player name for comparison: compatibility
// composition, width folding, case folding and separator removal.
func Normalize(name string) string {
	return normalize(name)
}

// Similarity returns the edit-distance similarity of two names as a percentage.
func Similarity(a, b string) float64 {
	return similarity(normalize(a), normalize(b))
}

// normalize builds a fresh Caser per call; Casers are stateful.
func normalize(name string) string {
	s := norm.NFKC.String(name)
	s = width.Fold.String(s)
	s = separators.Replace(strings.TrimSpace(s))
	return cases.Fold().String(s)
}

func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return fullSimilarity
	}
	dist := levenshtein(ra, rb)
	return (1 - float64(dist)/float64(longest)) * fullSimilarity
}

// levenshtein computes the edit distance using two rolling rows.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
