// Package bankformat classifies statement header rows against known UK
// bank export layouts and proposes column mappings from them. Both jobs
// are pure functions over the header list; neither can fail. An export
// we do not recognize is FormatGeneric, not an error.
package bankformat

import "strings"

// Format names a known bank CSV export layout.
type Format string

const (
	// FormatSantander: separate money-in/money-out columns plus a
	// free-text description or details column.
	FormatSantander Format = "santander"
	// FormatLloyds: "transaction type" and "account name" columns.
	FormatLloyds Format = "lloyds"
	// FormatHSBC: a "type" column alongside a running "balance".
	FormatHSBC Format = "hsbc"
	// FormatGeneric: anything else. Still importable, the operator
	// just gets a weaker default mapping.
	FormatGeneric Format = "generic"
)

// Detect classifies a header row. Signatures are checked most specific
// first, so an export carrying both in/out columns and a balance column
// is read as the in/out layout.
func Detect(headers []string) Format {
	hs := lowered(headers)

	hasIn := anyHeader(hs, "money in", "paid in") || exactHeader(hs, "in")
	hasOut := anyHeader(hs, "money out", "paid out") || exactHeader(hs, "out")
	hasDesc := anyHeader(hs, "description", "details")
	if hasIn && hasOut && hasDesc {
		return FormatSantander
	}

	if anyHeader(hs, "transaction type") && anyHeader(hs, "account name") {
		return FormatLloyds
	}

	if anyHeader(hs, "type") && anyHeader(hs, "balance") {
		return FormatHSBC
	}

	return FormatGeneric
}

func lowered(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// anyHeader reports whether any header contains any candidate.
func anyHeader(headers []string, candidates ...string) bool {
	for _, h := range headers {
		for _, c := range candidates {
			if strings.Contains(h, c) {
				return true
			}
		}
	}
	return false
}

// exactHeader reports whether any header equals any candidate.
func exactHeader(headers []string, candidates ...string) bool {
	for _, h := range headers {
		for _, c := range candidates {
			if h == c {
				return true
			}
		}
	}
	return false
}
