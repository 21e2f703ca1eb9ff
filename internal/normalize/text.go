// Package normalize holds the pure, idempotent string transforms the
// criterion family uses to canonicalize company fields before comparison.
package normalize

import "strings"

// Text lowercases and trims a field. It is the baseline normalizer every
// other normalizer in this package builds on.
func Text(field string) string {
	return strings.ToLower(strings.TrimSpace(field))
}

// PostalCode normalizes a postal code, additionally stripping a trailing
// ".0" left behind when the source column was typed numeric rather than
// text (a common artifact of spreadsheet and CSV exports).
func PostalCode(field string) string {
	return strings.TrimSuffix(Text(field), ".0")
}

// Domain extracts and normalizes the registrable domain from a website
// field: strip any scheme prefix, drop everything from the first path
// separator, then keep the last two dot-separated labels.
//
// This is deliberately the simplistic two-label heuristic: multi-label
// public suffixes such as "co.uk" collapse onto themselves rather than
// being recognized as a suffix. That is an accepted, documented limitation,
// not a bug — see scenario coverage in text_test.go.
func Domain(field string) string {
	normalized := Text(field)
	if idx := strings.Index(normalized, "//"); idx >= 0 {
		normalized = normalized[idx+2:]
	}
	if idx := strings.IndexByte(normalized, '/'); idx >= 0 {
		normalized = normalized[:idx]
	}
	labels := strings.Split(normalized, ".")
	if len(labels) <= 2 {
		return normalized
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
