package instrumentation

import (
	"slices"
	"strings"
)

// Label values never carry raw participant emails or free-form strings:
// emails are reduced to their domain and enumerations are clamped to their
// known values.

// labelOther replaces values outside a known set.
const labelOther = "other"

// provisionOutcomes are the values RecordProvision accepts.
var provisionOutcomes = []string{"existing", "created", "recreated", "repaired", "failed"}

// eventOutcomes are the values RecordEvent accepts.
var eventOutcomes = []string{EventOutcomeProvisioned, EventOutcomeSkipped, EventOutcomeFailed}

// EmailDomain returns the lower-cased domain of an email address, or
// "unknown" when there is none.
//
//	EmailDomain("Jane@Example.com")  // "example.com"
//	EmailDomain("invalid")           // "unknown"
func EmailDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return "unknown"
	}
	return strings.ToLower(email[i+1:])
}

// boundedLabel returns value when it is one of allowed and labelOther
// otherwise.
func boundedLabel(value string, allowed []string) string {
	if slices.Contains(allowed, value) {
		return value
	}
	return labelOther
}
