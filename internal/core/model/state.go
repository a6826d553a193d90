package model

// SourceState tracks how far one upstream source has made it through the
// pipeline. Merge only folds sources that reached StateProcessed.
type SourceState int

const (
	StateNotFetched SourceState = iota
	StateFetched
	StateProcessed
)

func (s SourceState) String() string {
	switch s {
	case StateFetched:
		return "fetched"
	case StateProcessed:
		return "processed"
	default:
		return "not_fetched"
	}
}

// SourceStatus is the per-source slot of the pipeline state machine. Raw is
// populated by a successful fetch, Dataset by successful processing; Err
// records the last failure without advancing the state.
type SourceStatus struct {
	Name    string
	State   SourceState
	Raw     *RawRecordSet
	Dataset *DeduplicatedDataset
	Err     error
}

func (s *SourceStatus) MarkFetched(raw RawRecordSet) {
	s.Raw = &raw
	s.State = StateFetched
	s.Err = nil
}

func (s *SourceStatus) MarkProcessed(ds DeduplicatedDataset) {
	s.Dataset = &ds
	s.State = StateProcessed
	s.Err = nil
}

func (s *SourceStatus) MarkFailed(err error) {
	s.Err = err
}
