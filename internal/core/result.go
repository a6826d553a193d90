package core

import (
	"time"

	"github.com/bionetlab/interactome/internal/core/model"
)

// SourceSummary is the externally visible view of one source's progress
// through the state machine.
type SourceSummary struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Raw     int    `json:"raw_records"`
	Pairs   int    `json:"pairs"`
	Dropped int    `json:"dropped"`
	Error   string `json:"error,omitempty"`
}

// Result summarizes one completed build. MergedSources and Skipped keep
// "nothing merged" distinguishable from "everything merged": an empty
// dataset with skipped sources is a degraded build, not an empty network.
type Result struct {
	Organism      string          `json:"organism,omitempty"`
	Sources       []SourceSummary `json:"sources"`
	MergedSources []string        `json:"merged_sources"`
	Skipped       []string        `json:"skipped_sources,omitempty"`
	Pairs         int             `json:"pairs"`
	Nodes         int             `json:"nodes"`
	Edges         int             `json:"edges"`
	Communities   int             `json:"communities"`
	Duration      string          `json:"duration"`
}

// Statuses snapshots the per-source state machine; safe to call while a
// build is running.
func (p *Pipeline) Statuses() []SourceSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]SourceSummary, 0, len(p.order))
	for _, name := range p.order {
		st := p.statuses[name]
		s := SourceSummary{Name: name, State: st.State.String()}
		if st.Raw != nil {
			s.Raw = len(st.Raw.Records)
		}
		if st.Dataset != nil {
			s.Pairs = len(st.Dataset.Records)
			s.Dropped = st.Dataset.Dropped
		}
		if st.Err != nil {
			s.Error = st.Err.Error()
		}
		out = append(out, s)
	}
	return out
}

func (p *Pipeline) result(merged model.MergedDataset, took time.Duration) *Result {
	folded := make(map[string]struct{}, len(merged.Sources))
	for _, name := range merged.Sources {
		folded[name] = struct{}{}
	}

	var skipped []string
	for _, name := range p.sourceOrder() {
		if _, ok := folded[name]; !ok {
			skipped = append(skipped, name)
		}
	}

	return &Result{
		Organism:      p.Config.Pipeline.Organism,
		Sources:       p.Statuses(),
		MergedSources: merged.Sources,
		Skipped:       skipped,
		Pairs:         len(merged.Records),
		Nodes:         len(p.Nodes()),
		Edges:         len(p.Edges()),
		Communities:   len(p.communities),
		Duration:      took.Round(time.Millisecond).String(),
	}
}
