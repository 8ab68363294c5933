package power

import "strings"

// Lookup resolves query against records. An exact, case-sensitive match wins;
// otherwise the first record (in catalog order) whose name contains the query
// case-insensitively is returned. An empty query never matches.
func Lookup(records []Record, query string) (Record, bool) {
	if query == "" {
		return Record{}, false
	}
	for _, r := range records {
		if r.Name == query {
			return r, true
		}
	}
	q := strings.ToLower(query)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) {
			return r, true
		}
	}
	return Record{}, false
}

func watts(records []Record, query string) int {
	if r, ok := Lookup(records, query); ok {
		return r.Watts
	}
	return 0
}
