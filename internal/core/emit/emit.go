package emit

import (
	"strings"

	"github.com/bionetlab/interactome/internal/core/common"
	"github.com/bionetlab/interactome/internal/core/model"
)

// listSep marks aggregated values that become ordered list properties.
const listSep = "|"

// Prefixer builds a CURIE from a prefix and a bare identifier.
type Prefixer func(prefix, id string) string

// Options configure edge projection over a merged dataset.
type Options struct {
	// Label is the relationship label stamped on every edge.
	Label string
	// Prefix is the CURIE prefix applied to both endpoints.
	Prefix string
	// Prefixer normalizes prefixed identifiers. Nil leaves identifiers bare.
	Prefixer Prefixer
}

// EdgeStream walks a merged dataset once, yielding one Edge per record.
// Records whose endpoints are absent are skipped. The stream is single-pass
// and not restartable.
type EdgeStream struct {
	opts   Options
	fields []string
	recs   []model.Record
	pos    int
	cur    model.Edge
}

func NewEdgeStream(merged model.MergedDataset, opts Options) *EdgeStream {
	if opts.Prefixer == nil {
		opts.Prefixer = func(_, id string) string { return id }
	}
	return &EdgeStream{
		opts:   opts,
		fields: merged.Fields,
		recs:   merged.Records,
	}
}

// Next advances to the next projectable record, returning false once the
// dataset is exhausted.
func (s *EdgeStream) Next() bool {
	for s.pos < len(s.recs) {
		rec := s.recs[s.pos]
		s.pos++

		a, okA := rec.Text(model.FieldIDA)
		b, okB := rec.Text(model.FieldIDB)
		if !okA || !okB {
			continue
		}

		s.cur = model.Edge{
			SourceID: s.opts.Prefixer(s.opts.Prefix, a),
			TargetID: s.opts.Prefixer(s.opts.Prefix, b),
			Label:    s.opts.Label,
			Props:    s.props(rec),
		}
		return true
	}
	return false
}

// Edge returns the edge produced by the last successful Next.
func (s *EdgeStream) Edge() model.Edge {
	return s.cur
}

// props copies every non-identity, non-absent field into the property map.
// Aggregated values split into ordered string lists; scalar strings are
// sanitized for downstream serialization.
func (s *EdgeStream) props(rec model.Record) map[string]interface{} {
	props := make(map[string]interface{}, len(s.fields))
	for _, f := range s.fields {
		if f == model.FieldIDA || f == model.FieldIDB {
			continue
		}
		v, ok := rec.Text(f)
		if !ok {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(f, " ", "_"))
		v = common.SanitizeValue(v)
		if strings.Contains(v, listSep) {
			props[key] = strings.Split(v, listSep)
		} else {
			props[key] = v
		}
	}
	return props
}
