package model

// FieldSpec declares how one source-native field behaves through the
// pipeline: the canonical column it becomes, whether repeated values are
// aggregated during deduplication, whether its numeric text is integral,
// and whether it is one of the pair identity columns.
type FieldSpec struct {
	Name        string
	Canonical   string
	Multivalued bool
	Integer     bool
	Identity    bool
}

// FieldTable is the static per-source field catalog, built once and passed
// by reference into each pipeline stage.
type FieldTable []FieldSpec

// SelectedFields returns the non-identity source-native field names in
// declaration order.
func (t FieldTable) SelectedFields() []string {
	var out []string
	for _, f := range t {
		if !f.Identity {
			out = append(out, f.Name)
		}
	}
	return out
}

// Defaults returns the default canonical name per non-identity field.
func (t FieldTable) Defaults() map[string]string {
	out := make(map[string]string, len(t))
	for _, f := range t {
		if !f.Identity {
			out[f.Name] = f.Canonical
		}
	}
	return out
}

// MultivaluedColumns returns the canonical names aggregated by set union.
func (t FieldTable) MultivaluedColumns() []string {
	var out []string
	for _, f := range t {
		if f.Multivalued {
			out = append(out, f.Canonical)
		}
	}
	return out
}

// IntegerColumns returns the canonical names whose values must stay
// integral after the merge step stringifies them.
func (t FieldTable) IntegerColumns() []string {
	var out []string
	for _, f := range t {
		if f.Integer {
			out = append(out, f.Canonical)
		}
	}
	return out
}

// Identity returns the source-native names of the two endpoint fields.
func (t FieldTable) Identity() (a, b string) {
	ids := make([]string, 0, 2)
	for _, f := range t {
		if f.Identity {
			ids = append(ids, f.Name)
		}
	}
	if len(ids) > 0 {
		a = ids[0]
	}
	if len(ids) > 1 {
		b = ids[1]
	}
	return a, b
}
