package model

// SourceDataset is the output of field projection for one source: records
// reduced to canonical columns, endpoint identifiers under FieldIDA/FieldIDB.
type SourceDataset struct {
	Source  string   `json:"source"`
	Fields  []string `json:"fields"`
	Records []Record `json:"records"`
}

// DeduplicatedDataset holds exactly one record per unordered endpoint pair.
// Dropped counts input records that could not be keyed because an endpoint
// was absent.
type DeduplicatedDataset struct {
	Source  string   `json:"source"`
	Fields  []string `json:"fields"`
	Records []Record `json:"records"`
	Dropped int      `json:"dropped"`
}

// MergedDataset is the accumulator of the cross-source outer-join fold.
// Sources lists the folded source names in encounter order.
type MergedDataset struct {
	Fields  []string `json:"fields"`
	Records []Record `json:"records"`
	Sources []string `json:"sources"`
}
