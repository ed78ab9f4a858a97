package garage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Attribute ids extracted from the upstream's categoryAttributeId UUIDs.
// The site does not expose attribute labels in its server-rendered state,
// labels load dynamically after hydration, so only values behind ids we can
// definitively identify get formatted. Everything else shows the raw value.
const (
	MileageAttributeId = "7d794d55-f1dd-4b5d-90ab-b277e202ceed"
	ModelAttributeId   = "e6f0b2ab-3c94-45d1-9a8f-2f60d1c7e40b"
)

const specsSeparator = " • "

var allDigits = regexp.MustCompile(`^\d+$`)

// years between 1900 and 2099 only
var yearToken = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// FormatAttribute formats a single attribute value for display. The second
// return is false when the value should be omitted: empty/whitespace values,
// the literal "0" (a placeholder for unset), and boolean tokens whose meaning
// is unknown. Recognized values are returned verbatim rather than guessed at.
func FormatAttribute(attributeId string, value string) (string, bool) {
	if value == "0" {
		return "", false
	}
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	if value == "true" || value == "false" {
		return "", false
	}

	if attributeId == MileageAttributeId && allDigits.MatchString(value) {
		n, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return humanize.Comma(n) + " miles", true
		}
	}

	return value, true
}

// formatSpecs runs every attribute through FormatAttribute, drops omitted
// values and case-insensitive duplicates (first seen wins), and joins the
// rest with a fixed separator.
func formatSpecs(attrs []rawAttribute) string {
	var parts []string
	seen := map[string]bool{}
	for _, attr := range attrs {
		formatted, ok := FormatAttribute(attr.CategoryAttributeId, attr.Value)
		if !ok {
			continue
		}
		key := strings.ToLower(formatted)
		if seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, formatted)
	}
	return strings.Join(parts, specsSeparator)
}

// yearFromTitle pulls the first 4-digit token shaped like a calendar year
// (1900-2099) out of a listing title, 0 when there is none.
func yearFromTitle(title string) int {
	match := yearToken.FindString(title)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return year
}

// mileageFromAttributes reads the known mileage attribute, but only when its
// value is purely numeric.
func mileageFromAttributes(attrs []rawAttribute) int {
	for _, attr := range attrs {
		if attr.CategoryAttributeId != MileageAttributeId {
			continue
		}
		if !allDigits.MatchString(attr.Value) {
			return 0
		}
		n, err := strconv.Atoi(attr.Value)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

var alphabetic = regexp.MustCompile(`^[A-Za-z ]+$`)

// modelFromAttributes reads the known model attribute. When it is absent it
// falls back to the first alphabetic value of plausible length. That fallback
// is a best-effort heuristic against an undocumented schema and should not be
// trusted beyond display purposes.
func modelFromAttributes(attrs []rawAttribute) string {
	for _, attr := range attrs {
		if attr.CategoryAttributeId == ModelAttributeId && attr.Value != "" {
			return attr.Value
		}
	}
	for _, attr := range attrs {
		v := strings.TrimSpace(attr.Value)
		if v == "true" || v == "false" {
			continue
		}
		if len(v) >= 3 && len(v) <= 24 && alphabetic.MatchString(v) {
			return v
		}
	}
	return ""
}
