package dedupe

import (
	"sort"
	"strings"

	"github.com/bionetlab/interactome/internal/core/common"
	"github.com/bionetlab/interactome/internal/core/model"
)

// aggSep joins the set-union of a multivalued column's values.
const aggSep = "|"

// Options control one deduplication pass over one source's dataset.
type Options struct {
	// PairFields names the two endpoint columns records are keyed on.
	// Empty means the canonical identity columns.
	PairFields [2]string
	// PriorityField, when present in the dataset, orders records descending
	// by its numeric value before grouping so the highest-scored record
	// wins per-field conflicts. Records whose value is absent or not
	// numeric sort last.
	PriorityField string
	// Multivalued lists the columns aggregated across a group by set union.
	Multivalued []string
}

// Deduplicator collapses duplicate and order-reciprocal endpoint pairs into
// one record per unordered pair.
type Deduplicator struct {
	opts  Options
	multi map[string]struct{}
}

func NewDeduplicator(opts Options) *Deduplicator {
	if opts.PairFields[0] == "" && opts.PairFields[1] == "" {
		opts.PairFields = [2]string{model.FieldIDA, model.FieldIDB}
	}
	multi := make(map[string]struct{}, len(opts.Multivalued))
	for _, f := range opts.Multivalued {
		multi[f] = struct{}{}
	}
	return &Deduplicator{opts: opts, multi: multi}
}

// Deduplicate produces exactly one record per unordered endpoint pair.
// The result is deterministic, does not mutate the input, and is a fixed
// point: deduplicating the output again returns it unchanged.
func (d *Deduplicator) Deduplicate(ds model.SourceDataset) (model.DeduplicatedDataset, error) {
	pa, pb := d.opts.PairFields[0], d.opts.PairFields[1]
	if !hasField(ds.Fields, pa) || !hasField(ds.Fields, pb) {
		return model.DeduplicatedDataset{}, model.NewConfigurationError("dedupe",
			"pair fields %q/%q not in dataset %s", pa, pb, ds.Source)
	}

	out := model.DeduplicatedDataset{
		Source: ds.Source,
		Fields: append([]string(nil), ds.Fields...),
	}

	// 1. Drop records that cannot be keyed because an endpoint is absent.
	keyable := make([]model.Record, 0, len(ds.Records))
	for _, rec := range ds.Records {
		if _, ok := rec.Text(pa); !ok {
			out.Dropped++
			continue
		}
		if _, ok := rec.Text(pb); !ok {
			out.Dropped++
			continue
		}
		keyable = append(keyable, rec)
	}

	// 2. Stable-sort descending by priority so "first" in a group is the
	// highest-priority record. Ties and non-numeric values keep their
	// original relative order.
	if d.opts.PriorityField != "" && hasField(ds.Fields, d.opts.PriorityField) {
		sort.SliceStable(keyable, func(i, j int) bool {
			vi, oki := keyable[i].Number(d.opts.PriorityField)
			vj, okj := keyable[j].Number(d.opts.PriorityField)
			if oki && okj {
				return vi > vj
			}
			return oki && !okj
		})
	}

	// 3. Group by the unordered endpoint pair, first-seen group order.
	groups := make(map[model.PairKey][]model.Record, len(keyable))
	order := make([]model.PairKey, 0, len(keyable))
	for _, rec := range keyable {
		a, _ := rec.Text(pa)
		b, _ := rec.Text(pb)
		key := model.NewPairKey(a, b)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	// 4. Collapse each group to one record, then 5. drop any group whose
	// output ties another group across the pair and every other column.
	seen := make(map[string]struct{}, len(order))
	for _, key := range order {
		row := d.collapse(key, groups[key], pa, pb, ds.Fields)
		fp := fingerprint(row, pa, pb, ds.Fields)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		out.Records = append(out.Records, row)
	}

	return out, nil
}

// collapse aggregates one group: multivalued columns union their values,
// every other column takes the first non-absent value in priority order.
// Endpoints are stored in canonical pair order.
func (d *Deduplicator) collapse(key model.PairKey, group []model.Record, pa, pb string, fields []string) model.Record {
	row := make(model.Record, len(fields))
	row[pa] = key.A
	row[pb] = key.B

	for _, f := range fields {
		if f == pa || f == pb {
			continue
		}
		if _, multi := d.multi[f]; multi {
			var values []string
			for _, rec := range group {
				if v, ok := rec.Text(f); ok {
					values = append(values, v)
				}
			}
			values = common.UniqueStable(values)
			if len(values) > 0 {
				row[f] = strings.Join(values, aggSep)
			}
			continue
		}
		for _, rec := range group {
			if _, present := rec.Text(f); present {
				row[f] = rec[f]
				break
			}
		}
	}
	return row
}

// fingerprint renders a collapsed record for the cross-group tie check.
func fingerprint(row model.Record, pa, pb string, fields []string) string {
	var b strings.Builder
	a, _ := row.Text(pa)
	bb, _ := row.Text(pb)
	b.WriteString(a)
	b.WriteByte(0x1f)
	b.WriteString(bb)
	for _, f := range fields {
		if f == pa || f == pb {
			continue
		}
		b.WriteByte(0x1f)
		if v, ok := row.Text(f); ok {
			b.WriteString(v)
		} else {
			b.WriteByte(0x1e)
		}
	}
	return b.String()
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
