package source

import (
	"bufio"
	"context"
	"io"

	"github.com/bionetlab/interactome/internal/core/model"
)

// Client fetches and describes one upstream interaction database.
type Client interface {
	// Name returns the provenance tag recorded on every record, e.g. "IntAct".
	Name() string
	// Fetch downloads and parses the source's interaction table.
	Fetch(ctx context.Context) (model.RawRecordSet, error)
	// Spec returns the source's static pipeline configuration.
	Spec() Spec
}

// Spec is a source's static pipeline configuration. Field references use
// source-native names; the pipeline resolves them through the active rename
// map before handing them to the core stages.
type Spec struct {
	// Fields is the projection catalog: selected fields, default canonical
	// names and the dedupe/merge flags.
	Fields model.FieldTable
	// Priority names the field whose numeric value ranks duplicate pairs.
	// Empty means first-seen wins.
	Priority string
	// Provenance, Citations and Method name the fields reconciled across
	// sources (joined, token-unioned and joined respectively). Empty means
	// the source does not carry the concept.
	Provenance string
	Citations  string
	Method     string
	// ScrubCitations blanks citation values containing the unassigned
	// placeholder during projection.
	ScrubCitations bool
	// FilterReviewed restricts endpoints to the reviewed allow set during
	// projection.
	FilterReviewed bool
}

// ScanLines returns a line scanner sized for the multi-megabyte rows some
// upstream dumps contain.
func ScanLines(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return sc
}
