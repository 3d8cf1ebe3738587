package importer

import "strings"

// truthyValues are the strings the permissive boolean parser accepts as
// true. Anything else is false; there is no error case.
var truthyValues = map[string]bool{
	"1":       true,
	"y":       true,
	"yes":     true,
	"true":    true,
	"on":      true,
	"enable":  true,
	"enabled": true,
}

// Truthy coerces a raw CSV value to a boolean. Matching is case-insensitive
// and whitespace-tolerant.
func Truthy(s string) bool {
	return truthyValues[strings.ToLower(strings.TrimSpace(s))]
}
