package merge

import (
	"strings"

	"github.com/bionetlab/interactome/internal/core/common"
	"github.com/bionetlab/interactome/internal/core/model"
)

// aggSep separates aggregated values in reconciled columns.
const aggSep = "|"

// placeholder is the citation token some upstreams emit instead of a real
// accession; union reconciliation discards it.
const placeholder = "unassigned"

// RuleKind selects how two sources' values for the same concept combine
// when both sides of a join are present.
type RuleKind int

const (
	// KindJoin concatenates the two values with "|" (provenance and method
	// columns).
	KindJoin RuleKind = iota
	// KindUnion splits both values on "|", set-unions the tokens and drops
	// placeholder tokens (citation columns).
	KindUnion
)

// Rule reconciles one shared concept across sources. Columns names the
// per-source column carrying the concept; each fold replaces it with the
// single Merged column.
type Rule struct {
	Merged  string
	Kind    RuleKind
	Columns map[string]string
}

// Options configure the cross-source fold.
type Options struct {
	Rules []Rule
	// IntegerColumns lists columns whose values must stay integral: any
	// "1200.0"-style text is truncated at the decimal point after each fold.
	IntegerColumns []string
}

// Merger folds deduplicated per-source datasets into one dataset with a
// left-to-right outer join on the unordered endpoint pair.
type Merger struct {
	opts     Options
	integers []string
}

func NewMerger(opts Options) *Merger {
	return &Merger{opts: opts, integers: opts.IntegerColumns}
}

// MergeAll folds the datasets in encounter order. Each source folds at most
// once; zero datasets yield an empty result and a single dataset is passed
// through with only the reconciliation renames applied.
func (m *Merger) MergeAll(datasets []model.DeduplicatedDataset) (model.MergedDataset, error) {
	var acc model.MergedDataset
	folded := make(map[string]struct{}, len(datasets))

	for _, ds := range datasets {
		if _, dup := folded[ds.Source]; dup {
			continue
		}
		folded[ds.Source] = struct{}{}

		var err error
		if len(acc.Sources) == 0 {
			acc, err = m.lift(ds)
		} else {
			acc, err = m.fold(acc, ds)
		}
		if err != nil {
			return model.MergedDataset{}, err
		}
		acc.Sources = append(acc.Sources, ds.Source)
	}

	return acc, nil
}

// columnRule returns the rule reconciling a source column, or nil when the
// column passes through under its own name.
func (m *Merger) columnRule(source, col string) *Rule {
	for i := range m.opts.Rules {
		if c, ok := m.opts.Rules[i].Columns[source]; ok && c == col {
			return &m.opts.Rules[i]
		}
	}
	return nil
}

// lift starts the fold: the first dataset is carried over unchanged except
// that reconciled columns take their canonical merged names.
func (m *Merger) lift(ds model.DeduplicatedDataset) (model.MergedDataset, error) {
	out := model.MergedDataset{}

	rename := make(map[string]string, len(ds.Fields))
	for _, f := range ds.Fields {
		name := f
		if f != model.FieldIDA && f != model.FieldIDB {
			if rule := m.columnRule(ds.Source, f); rule != nil {
				name = rule.Merged
			}
		}
		if hasField(out.Fields, name) {
			return model.MergedDataset{}, model.NewConfigurationError("merge",
				"source %s maps two columns to %q", ds.Source, name)
		}
		rename[f] = name
		out.Fields = append(out.Fields, name)
	}

	for _, rec := range ds.Records {
		row := make(model.Record, len(rec))
		for k, v := range rec {
			if name, ok := rename[k]; ok {
				row[name] = v
			}
		}
		out.Records = append(out.Records, row)
	}

	m.restoreIntegers(out)
	return out, nil
}

// fold outer-joins one more source into the accumulator on the canonical
// endpoint pair and applies the reconciliation rules.
func (m *Merger) fold(acc model.MergedDataset, ds model.DeduplicatedDataset) (model.MergedDataset, error) {
	type mapped struct {
		name string
		rule *Rule
	}

	// Resolve every incoming column to its output name up front so a
	// malformed reconciliation table fails before any row is touched.
	cols := make([]string, 0, len(ds.Fields))
	colMap := make(map[string]mapped, len(ds.Fields))
	outNames := make(map[string]struct{}, len(ds.Fields))
	for _, f := range ds.Fields {
		if f == model.FieldIDA || f == model.FieldIDB {
			continue
		}
		rule := m.columnRule(ds.Source, f)
		name := f
		if rule != nil {
			name = rule.Merged
		} else if hasField(acc.Fields, f) {
			return model.MergedDataset{}, model.NewConfigurationError("merge",
				"column %q from source %s collides with an existing column and has no reconciliation rule", f, ds.Source)
		}
		if _, dup := outNames[name]; dup {
			return model.MergedDataset{}, model.NewConfigurationError("merge",
				"source %s maps two columns to %q", ds.Source, name)
		}
		outNames[name] = struct{}{}
		cols = append(cols, f)
		colMap[f] = mapped{name: name, rule: rule}
	}

	out := model.MergedDataset{
		Fields: append([]string(nil), acc.Fields...),
	}
	for _, f := range cols {
		if !hasField(out.Fields, colMap[f].name) {
			out.Fields = append(out.Fields, colMap[f].name)
		}
	}

	// Index the incoming side by pair key.
	rightIdx := make(map[model.PairKey]model.Record, len(ds.Records))
	rightOrder := make([]model.PairKey, 0, len(ds.Records))
	for _, rec := range ds.Records {
		a, _ := rec.Text(model.FieldIDA)
		b, _ := rec.Text(model.FieldIDB)
		key := model.NewPairKey(a, b)
		if _, ok := rightIdx[key]; !ok {
			rightIdx[key] = rec
			rightOrder = append(rightOrder, key)
		}
	}

	matched := make(map[model.PairKey]struct{}, len(rightIdx))
	for _, accRec := range acc.Records {
		a, _ := accRec.Text(model.FieldIDA)
		b, _ := accRec.Text(model.FieldIDB)
		key := model.NewPairKey(a, b)

		row := accRec.Clone()
		if right, ok := rightIdx[key]; ok {
			matched[key] = struct{}{}
			for _, f := range cols {
				mc := colMap[f]
				if mc.rule == nil {
					if v, present := right[f]; present {
						row[f] = v
					}
					continue
				}
				leftV, leftOk := row.Text(mc.name)
				rightV, rightOk := right.Text(f)
				if v, ok := reconcile(mc.rule.Kind, leftV, leftOk, rightV, rightOk); ok {
					row[mc.name] = v
				} else {
					delete(row, mc.name)
				}
			}
		}
		out.Records = append(out.Records, row)
	}

	// Pairs only the incoming side knows about.
	for _, key := range rightOrder {
		if _, ok := matched[key]; ok {
			continue
		}
		right := rightIdx[key]
		row := make(model.Record, len(right))
		row[model.FieldIDA] = key.A
		row[model.FieldIDB] = key.B
		for _, f := range cols {
			if v, present := right[f]; present {
				row[colMap[f].name] = v
			}
		}
		out.Records = append(out.Records, row)
	}

	m.restoreIntegers(out)
	return out, nil
}

// reconcile combines the two sides of one rule column. A single present
// side is kept verbatim under the merged name.
func reconcile(kind RuleKind, left string, leftOk bool, right string, rightOk bool) (string, bool) {
	switch {
	case !leftOk && !rightOk:
		return "", false
	case leftOk && !rightOk:
		return left, true
	case !leftOk && rightOk:
		return right, true
	}

	if kind == KindUnion {
		tokens := common.SplitNonEmpty(left, aggSep)
		tokens = append(tokens, common.SplitNonEmpty(right, aggSep)...)
		kept := tokens[:0]
		for _, tok := range tokens {
			if tok != placeholder {
				kept = append(kept, tok)
			}
		}
		kept = common.UniqueStable(kept)
		if len(kept) == 0 {
			return "", false
		}
		return strings.Join(kept, aggSep), true
	}

	return left + aggSep + right, true
}

// restoreIntegers undoes decimal-point drift on integer columns in place.
func (m *Merger) restoreIntegers(out model.MergedDataset) {
	for _, col := range m.integers {
		if !hasField(out.Fields, col) {
			continue
		}
		for _, rec := range out.Records {
			if v, ok := rec.Text(col); ok {
				if t := common.TruncateDecimal(v); t != v {
					rec[col] = t
				}
			}
		}
	}
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
