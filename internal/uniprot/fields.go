package uniprot

import "strings"

// sanitizer rewrites characters the graph loaders treat as delimiters: "|"
// separates array values and single quotes break Cypher string literals.
var sanitizer = strings.NewReplacer("|", ",", "'", "^")

func sanitize(value string) string {
	return strings.TrimSpace(sanitizer.Replace(value))
}

// splitOn splits a sanitized value and drops empty items.
func splitOn(value, sep string) []string {
	var items []string
	for _, item := range strings.Split(sanitize(value), sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

// splitList splits the ";"-separated multi-value fields.
func splitList(value string) []string {
	return splitOn(value, ";")
}

// firstListItem keeps the first value of a ";"-separated field, the way the
// GeneID xref is reduced to a single gene identifier.
func firstListItem(value string) string {
	items := splitList(value)
	if len(items) == 0 {
		return ""
	}

	return items[0]
}

// splitPrefixedList splits ";"-separated "db:id" xrefs and keeps the id
// part, e.g. "hsa:7157;" -> ["7157"].
func splitPrefixedList(value string) []string {
	var ids []string
	for _, item := range splitList(value) {
		if i := strings.Index(item, ":"); i >= 0 {
			item = item[i+1:]
		}
		if item = strings.TrimSpace(item); item != "" {
			ids = append(ids, item)
		}
	}

	return ids
}

// splitTranscripts splits the Ensembl xref field and strips the isoform
// suffix, e.g. "ENST00000269305.9 [P04637-1]" -> "ENST00000269305.9".
func splitTranscripts(value string) []string {
	var ids []string
	for _, item := range splitList(value) {
		if i := strings.Index(item, " ["); i >= 0 {
			item = item[:i]
		}
		if item = strings.TrimSpace(item); item != "" {
			ids = append(ids, item)
		}
	}

	return ids
}

// SplitProteinNames explodes the protein names field into the recommended
// name and its alternatives. EC numbers, fragment markers and the cleaved or
// included subsections are discarded:
//
//	"Acetate kinase (EC 2.7.2.1) (Acetokinase)" -> ["Acetate kinase", "Acetokinase"]
func SplitProteinNames(value string) []string {
	value = sanitize(value)
	if value == "" {
		return nil
	}

	// Names of cleavage products and included domains describe other
	// entities; keep only the leading name block.
	for _, marker := range []string{"[Cleaved", "[Includes"} {
		if i := strings.Index(value, marker); i >= 0 {
			value = value[:i]
		}
	}
	value = strings.TrimSpace(strings.ReplaceAll(value, "(Fragment)", ""))

	if !strings.Contains(value, " (") {
		if value == "" {
			return nil
		}
		return []string{value}
	}

	var names []string
	for _, part := range strings.Split(value, " (") {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ")"))
		if name == "" || strings.HasPrefix(name, "EC ") || strings.HasPrefix(name, "EC:") || strings.HasPrefix(name, "Fragm") {
			continue
		}
		names = append(names, name)
	}

	return names
}

// SplitVirusHosts extracts the host taxonomy ids from values like
// "Pyrobaculum arsenaticum [TaxID: 121277]; Pyrobaculum oguniense [TaxID: 99007]".
func SplitVirusHosts(value string) []string {
	var taxa []string
	for _, host := range splitList(value) {
		open := strings.Index(host, "[")
		end := strings.Index(host, "]")
		if open < 0 || end <= open {
			continue
		}
		id := host[open+1 : end]
		if i := strings.Index(id, ":"); i >= 0 {
			id = id[i+1:]
		}
		if id = strings.TrimSpace(id); id != "" {
			taxa = append(taxa, id)
		}
	}

	return taxa
}
