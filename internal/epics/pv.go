package epics

import "strings"

// Well-known record field suffixes.
const (
	// FieldValue is the default value field of a record.
	FieldValue = ".VAL"

	// FieldDesc is the description field of a record.
	FieldDesc = ".DESC"

	// FieldEGU is the engineering-units field of a record.
	FieldEGU = ".EGU"
)

// Join composes a PV name from a prefix and a suffix.
//
// EPICS prefixes conventionally end in ":"; Join inserts one if the prefix
// is non-empty and does not already end with ":" or ".". Field suffixes
// (starting with ".") attach directly.
//
// Examples:
//
//	Join("8idi:", "cam1:Acquire")  // "8idi:cam1:Acquire"
//	Join("8idi", "cam1:Acquire")   // "8idi:cam1:Acquire"
//	Join("8idi:m1", ".DESC")       // "8idi:m1.DESC"
//	Join("", "cam1:Acquire")       // "cam1:Acquire"
func Join(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if strings.HasPrefix(suffix, ".") {
		return strings.TrimSuffix(prefix, ":") + suffix
	}
	if strings.HasSuffix(prefix, ":") || strings.HasSuffix(prefix, ".") {
		return prefix + suffix
	}
	return prefix + ":" + suffix
}
