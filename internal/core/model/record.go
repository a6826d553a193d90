package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one row of tabular source data keyed by field name. Values are
// strings or []string; a missing key means the field is absent for that row.
type Record map[string]interface{}

// Text returns the string form of the value stored under field. ok is false
// when the field is absent or holds an empty string.
func (r Record) Text(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case []string:
		if len(t) == 0 {
			return "", false
		}
		return strings.Join(t, ";"), true
	default:
		return fmt.Sprint(t), true
	}
}

// Number parses the value stored under field as a float for priority
// ordering. ok is false when the field is absent or not numeric.
func (r Record) Number(field string) (float64, bool) {
	s, ok := r.Text(field)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RawRecordSet is the unprocessed tabular output of one upstream source:
// the ordered field universe plus one Record per row.
type RawRecordSet struct {
	Source  string   `json:"source"`
	Fields  []string `json:"fields"`
	Records []Record `json:"records"`
}

func (rs RawRecordSet) Empty() bool {
	return len(rs.Records) == 0
}
