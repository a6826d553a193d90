package model

// Edge is one relationship ready for loading. SourceID and TargetID are
// prefixed CURIE identifiers; Props carries the reconciled evidence fields.
// ID is optional and only set for relationships that carry their own
// accession (e.g. a drug-drug interaction id).
type Edge struct {
	ID       string                 `json:"id,omitempty"`
	SourceID string                 `json:"source_id"`
	TargetID string                 `json:"target_id"`
	Label    string                 `json:"label"`
	Props    map[string]interface{} `json:"props,omitempty"`
}
