// Package order provides the team pick order for each draft round.
package order

import "github.com/okian/draftsim/internal/domain/types"

// DefaultFirstRound is the resolved first-round lottery order.
var DefaultFirstRound = []string{
	types.Lions, types.Dragons, types.Marines, types.Swallows, types.Eagles, types.Carp,
	types.Fighters, types.Giants, types.Buffaloes, types.BayStars, types.Hawks, types.Tigers,
}

// DefaultWaiver is the odd-round waiver order; even rounds use its reverse.
var DefaultWaiver = []string{
	types.Swallows, types.Lions, types.Dragons, types.Eagles, types.Carp, types.Marines,
	types.Giants, types.Fighters, types.BayStars, types.Buffaloes, types.Tigers, types.Hawks,
}

// Provider maps a round number to the order in which teams pick.
type Provider struct {
	first  []string
	waiver []string
}

// Option applies a configuration option to the Provider.
type Option func(*Provider)

// WithFirstRound overrides the first-round order.
func WithFirstRound(teams []string) Option {
	return func(p *Provider) {
		if len(teams) > 0 {
			p.first = append([]string(nil), teams...)
		}
	}
}

// WithWaiver overrides the waiver order used by odd rounds from round 3.
func WithWaiver(teams []string) Option {
	return func(p *Provider) {
		if len(teams) > 0 {
			p.waiver = append([]string(nil), teams...)
		}
	}
}

// New creates a Provider with the default twelve-team orders.
func New(opts ...Option) *Provider {
	p := &Provider{
		first:  append([]string(nil), DefaultFirstRound...),
		waiver: append([]string(nil), DefaultWaiver...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Order returns the pick order for round. Rounds below 1 are treated as round 1.
// The returned slice is owned by the caller.
func (p *Provider) Order(round int) []string {
	if round <= 1 {
		return append([]string(nil), p.first...)
	}
	if round%2 == 1 {
		return append([]string(nil), p.waiver...)
	}
	out := make([]string, len(p.waiver))
	for i, t := range p.waiver {
		out[len(p.waiver)-1-i] = t
	}
	return out
}

// Teams returns every team that appears in either order, first-round order first.
func (p *Provider) Teams() []string {
	seen := make(map[string]struct{}, len(p.first))
	var out []string
	for _, list := range [][]string{p.first, p.waiver} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
