package model

// Canonical column names every projected interaction dataset keys on. The
// projector force-maps each source's endpoint identifier fields to these.
const (
	FieldIDA = "uniprot_a"
	FieldIDB = "uniprot_b"
)

// PairKey identifies an interaction by its unordered endpoint pair:
// NewPairKey("P2","P1") and NewPairKey("P1","P2") compare equal.
type PairKey struct {
	A string
	B string
}

func NewPairKey(a, b string) PairKey {
	if b < a {
		return PairKey{A: b, B: a}
	}
	return PairKey{A: a, B: b}
}
