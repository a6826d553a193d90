package model

// Node is one graph vertex ready for loading: a prefixed CURIE identifier,
// a label such as "protein" or "gene", and typed properties.
type Node struct {
	ID    string                 `json:"id"`
	Label string                 `json:"label"`
	Props map[string]interface{} `json:"props,omitempty"`
}
