package search

import "strings"

// extensionMarker separates the substring filter from the extension filter
const extensionMarker = " extension:"

// Query is a parsed search request
type Query struct {
	// Substring is matched case-insensitively against the relative path
	Substring string
	// Extension is lower-cased and stored without a leading dot
	Extension    string
	HasExtension bool
}

// ParseQuery splits a raw query into a substring and an optional extension filter.
// Input such as `report extension:.PDF` yields Substring "report", Extension "pdf".
func ParseQuery(raw string) Query {
	before, after, found := strings.Cut(raw, extensionMarker)
	if !found {
		return Query{Substring: raw}
	}

	ext := strings.TrimSpace(after)
	ext = strings.TrimPrefix(ext, ".")
	return Query{
		Substring:    before,
		Extension:    strings.ToLower(ext),
		HasExtension: true,
	}
}

// String renders the query back into its raw form
func (q Query) String() string {
	if !q.HasExtension {
		return q.Substring
	}
	return q.Substring + extensionMarker + q.Extension
}
