// Package secrets detects credential-shaped strings in places they must
// never appear. The same pattern set backs both the template generator
// (pre-write) and the review rule sets (post-write): whatever the generator
// refuses to serialize, the reviewer flags on sight.
package secrets

import (
	"fmt"
	"regexp"
	"strings"
)

var suspectPatterns = []string{
	`\bsk-[A-Za-z0-9]{20,}\b`,                   // OpenAI-style API key
	`\bya29\.[A-Za-z0-9\-_]+\b`,                 // Google OAuth access token
	`\bAIza[0-9A-Za-z\-_]{20,}\b`,               // Google API key
	`\bghp_[A-Za-z0-9]{20,}\b`,                  // GitHub personal access token
	`-----BEGIN (?:RSA |EC |)PRIVATE KEY-----`, // PEM private key header
}

var suspectRe = regexp.MustCompile(strings.Join(suspectPatterns, "|"))

// PolicyViolationError reports a secret-shaped value found in a field where
// only plain configuration is allowed.
type PolicyViolationError struct {
	Field string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("%s contains a value that looks like a secret; "+
		"do not store secrets in config templates, use Secret Manager references instead", e.Field)
}

// Scan reports whether the value matches any known credential shape.
func Scan(value string) bool {
	return suspectRe.MatchString(value)
}

// AssertNoSecret returns a *PolicyViolationError naming the field when the
// value looks like a secret. Empty values pass.
func AssertNoSecret(value, field string) error {
	if value == "" {
		return nil
	}
	if Scan(value) {
		return &PolicyViolationError{Field: field}
	}
	return nil
}
