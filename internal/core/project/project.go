package project

import (
	"fmt"
	"strings"

	"github.com/bionetlab/interactome/internal/core/model"
)

// listSep flattens list-valued source fields into a single string at
// projection time; downstream stages treat the value as one token.
const listSep = ";"

// placeholder marks citation values some upstreams emit instead of a real
// accession. Columns listed in Options.DropUnassigned are blanked to absent
// when they contain it.
const placeholder = "unassigned"

// Options control one projection pass over one source's raw records.
type Options struct {
	// Source is the provenance tag stored on the output dataset.
	Source string
	// Selected lists the source-native fields to keep, in output order.
	Selected []string
	// Rename maps each selected field to its canonical column name. When
	// nil, Defaults supplies the names. When present it must cover exactly
	// the selected fields.
	Rename map[string]string
	// Defaults is the per-source fallback naming table.
	Defaults map[string]string
	// IdentityA and IdentityB name the raw fields carrying the endpoint
	// identifiers. They are always mapped to model.FieldIDA/FieldIDB,
	// regardless of Rename.
	IdentityA string
	IdentityB string
	// Allow, when non-nil, keeps only records whose endpoints are both
	// members (the reviewed-accession filter). Nil admits every record.
	Allow map[string]struct{}
	// DropUnassigned lists canonical columns whose values are blanked when
	// they contain the placeholder token.
	DropUnassigned []string
}

// Projector reshapes one source's RawRecordSet into canonical columns.
type Projector struct {
	opts Options
}

func NewProjector(opts Options) *Projector {
	return &Projector{opts: opts}
}

// Project selects and renames fields, flattens list values, force-maps the
// endpoint identifiers and applies the allow-set filter. The input is never
// mutated.
func (p *Projector) Project(raw model.RawRecordSet) (model.SourceDataset, error) {
	rename, err := p.ColumnNames()
	if err != nil {
		return model.SourceDataset{}, err
	}

	// Canonical column order: selected fields first, endpoints last.
	fields := make([]string, 0, len(p.opts.Selected)+2)
	for _, f := range p.opts.Selected {
		if f == p.opts.IdentityA || f == p.opts.IdentityB {
			continue
		}
		fields = append(fields, rename[f])
	}
	fields = append(fields, model.FieldIDA, model.FieldIDB)

	scrub := make(map[string]struct{}, len(p.opts.DropUnassigned))
	for _, f := range p.opts.DropUnassigned {
		scrub[f] = struct{}{}
	}

	out := model.SourceDataset{
		Source: p.opts.Source,
		Fields: fields,
	}

	for _, rec := range raw.Records {
		idA, okA := rec.Text(p.opts.IdentityA)
		idB, okB := rec.Text(p.opts.IdentityB)

		if p.opts.Allow != nil {
			if !okA || !okB {
				continue
			}
			if _, ok := p.opts.Allow[idA]; !ok {
				continue
			}
			if _, ok := p.opts.Allow[idB]; !ok {
				continue
			}
		}

		row := make(model.Record, len(fields))
		for _, f := range p.opts.Selected {
			if f == p.opts.IdentityA || f == p.opts.IdentityB {
				continue
			}
			v, ok := flatten(rec[f])
			if !ok {
				continue
			}
			col := rename[f]
			if _, drop := scrub[col]; drop && strings.Contains(v, placeholder) {
				continue
			}
			row[col] = v
		}
		if okA {
			row[model.FieldIDA] = idA
		}
		if okB {
			row[model.FieldIDB] = idB
		}
		out.Records = append(out.Records, row)
	}

	return out, nil
}

// ColumnNames resolves the selected-field naming, enforcing that an explicit
// rename map covers exactly the selection. Callers use it to translate
// source-native field references into canonical column names.
func (p *Projector) ColumnNames() (map[string]string, error) {
	rename := make(map[string]string, len(p.opts.Selected))

	if p.opts.Rename != nil {
		if len(p.opts.Rename) != len(p.opts.Selected) {
			return nil, model.NewConfigurationError("project",
				"rename map has %d entries for %d selected fields", len(p.opts.Rename), len(p.opts.Selected))
		}
		for _, f := range p.opts.Selected {
			name, ok := p.opts.Rename[f]
			if !ok {
				return nil, model.NewConfigurationError("project", "rename map is missing selected field %q", f)
			}
			rename[f] = name
		}
		return rename, nil
	}

	for _, f := range p.opts.Selected {
		name, ok := p.opts.Defaults[f]
		if !ok {
			return nil, model.NewConfigurationError("project", "no default canonical name for field %q", f)
		}
		rename[f] = name
	}
	return rename, nil
}

// flatten turns list values into a single ";"-joined string. Empty strings
// and empty lists report ok=false so the field stays absent.
func flatten(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case []string:
		joined := strings.Join(t, listSep)
		return joined, joined != ""
	default:
		return fmt.Sprint(t), true
	}
}
