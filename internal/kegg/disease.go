package kegg

import (
	"context"
	"regexp"
	"strings"
)

// DiseaseEntry is the cross-reference part of one disease flat-file entry:
// the DBLINKS section and the PMID tokens of its REFERENCE sections.
type DiseaseEntry struct {
	DBLinks    map[string][]string
	References []string
}

var (
	dbLinkLine    = regexp.MustCompile(`(?:DBLINKS)?\s*([^:\s]+)\s*:\s*(.+)`)
	referenceLine = regexp.MustCompile(`REFERENCE\s*(\S+)`)
)

// GetDiseases fetches disease entries and parses their DBLINKS and
// REFERENCE sections.
func (c *Client) GetDiseases(ctx context.Context, ids ...string) ([]DiseaseEntry, error) {
	lines, err := c.Get(ctx, ids...)
	if err != nil {
		return nil, err
	}

	return ParseDiseaseEntries(lines), nil
}

// ParseDiseaseEntries walks flat-file lines. Entries end at "///"; DBLINKS
// values continue on indented lines until the next section header.
func ParseDiseaseEntries(lines []string) []DiseaseEntry {
	var entries []DiseaseEntry

	entry := newDiseaseEntry()
	inDBLinks := false

	for _, line := range lines {
		line = strings.TrimLeft(line, " ")

		switch {
		case strings.HasPrefix(line, "///"):
			entries = append(entries, entry)
			entry = newDiseaseEntry()
			inDBLinks = false

		case strings.HasPrefix(line, "DBLINKS"):
			inDBLinks = true
			entry.addDBLink(line)

		case strings.HasPrefix(line, "REFERENCE"):
			inDBLinks = false
			if m := referenceLine.FindStringSubmatch(line); m != nil {
				entry.References = append(entry.References, m[1])
			}

		case isSectionHeader(line):
			inDBLinks = false

		case inDBLinks:
			entry.addDBLink(line)
		}
	}

	return entries
}

func newDiseaseEntry() DiseaseEntry {
	return DiseaseEntry{DBLinks: map[string][]string{}}
}

func (e DiseaseEntry) addDBLink(line string) {
	m := dbLinkLine.FindStringSubmatch(line)
	if m == nil {
		return
	}

	e.DBLinks[m[1]] = strings.Fields(m[2])
}

// isSectionHeader reports whether a flat-file line starts a new top-level
// section (an all-caps keyword in the first column).
func isSectionHeader(line string) bool {
	if line == "" {
		return false
	}
	head, _, _ := strings.Cut(line, " ")
	if head == "" {
		return false
	}
	for _, r := range head {
		if r < 'A' || r > 'Z' {
			return false
		}
	}

	return true
}
