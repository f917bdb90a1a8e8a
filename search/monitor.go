package search

import (
	"time"

	"github.com/poiesic/hydrive/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implementations must be safe for concurrent use; SectionFailed may be
// called from scoring workers.
type SearchMonitor interface {
	Start(query string, requested core.Mode)
	AfterTokenize(tokens []string)
	ModeResolved(requested, used core.Mode, reason error)
	SectionFailed(section *core.Section, recovered any)
	Finish(results []*core.SearchResult, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Mode)                    {}
func (n *noopMonitor) AfterTokenize(_ []string)                       {}
func (n *noopMonitor) ModeResolved(_, _ core.Mode, _ error)           {}
func (n *noopMonitor) SectionFailed(_ *core.Section, _ any)           {}
func (n *noopMonitor) Finish(_ []*core.SearchResult, _ time.Duration) {}

// multiMonitor fans every hook out to several monitors.
type multiMonitor []SearchMonitor

var _ SearchMonitor = (multiMonitor)(nil)

func combineMonitors(monitors ...SearchMonitor) SearchMonitor {
	var out multiMonitor
	for _, m := range monitors {
		if m != nil {
			out = append(out, m)
		}
	}
	switch len(out) {
	case 0:
		return &noopMonitor{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiMonitor) Start(query string, requested core.Mode) {
	for _, mon := range m {
		mon.Start(query, requested)
	}
}

func (m multiMonitor) AfterTokenize(tokens []string) {
	for _, mon := range m {
		mon.AfterTokenize(tokens)
	}
}

func (m multiMonitor) ModeResolved(requested, used core.Mode, reason error) {
	for _, mon := range m {
		mon.ModeResolved(requested, used, reason)
	}
}

func (m multiMonitor) SectionFailed(section *core.Section, recovered any) {
	for _, mon := range m {
		mon.SectionFailed(section, recovered)
	}
}

func (m multiMonitor) Finish(results []*core.SearchResult, elapsed time.Duration) {
	for _, mon := range m {
		mon.Finish(results, elapsed)
	}
}
