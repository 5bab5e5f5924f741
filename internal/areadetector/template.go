package areadetector

import (
	"fmt"
	"strings"
)

// formatFileName renders an ADCore FileTemplate, a C printf template the
// IOC applies as sprintf(template, path, name, number). The same string
// works under Go's fmt: "%4.4d" zero-pads exactly like C.
//
// Templates with the number verb omitted (two verbs) are accepted; anything
// else is ErrBadTemplate.
func formatFileName(template, path, name string, number int) (string, error) {
	switch countVerbs(template) {
	case 3:
		return fmt.Sprintf(template, path, name, number), nil
	case 2:
		return fmt.Sprintf(template, path, name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadTemplate, template)
	}
}

// countVerbs counts printf conversion verbs in template, ignoring the
// literal "%%".
func countVerbs(template string) int {
	n := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}

// ensureTrailingSlash appends "/" when path lacks it. ADCore requires the
// write path to end with the separator before it will report the path as
// existing.
func ensureTrailingSlash(path string) string {
	if path == "" || strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}
