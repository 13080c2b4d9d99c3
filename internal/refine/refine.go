// Package refine provides interchangeable strategies for cleaning up a raw
// dialogue transcript before note generation.
package refine

import (
	"context"
	"regexp"
	"strings"
)

// Refiner rewrites a transcript into a tidier dialogue. Implementations must
// leave the input untouched on error.
type Refiner interface {
	Refine(ctx context.Context, transcript string) (string, error)
}

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Deterministic cleanup substitutions: normalize speaker marker casing,
// drop spoken fillers, and collapse runaway whitespace.
var defaultRules = []rule{
	{regexp.MustCompile(`(?im)^[ \t]*dokter[ \t]*:`), "Dokter:"},
	{regexp.MustCompile(`(?im)^[ \t]*pasien[ \t]*:`), "Pasien:"},
	{regexp.MustCompile(`(?i)\b(eee+|emm+|hmm+|eh)\b[,.]?[ \t]?`), ""},
	{regexp.MustCompile(`[ \t]{2,}`), " "},
	{regexp.MustCompile(`[ \t]+\n`), "\n"},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Rules is an offline Refiner that applies deterministic substitutions until
// the text reaches a fixed point.
type Rules struct {
	rules     []rule
	loopLimit int
}

// NewRules returns a Rules refiner with the built-in substitution set.
func NewRules() *Rules {
	return &Rules{rules: defaultRules, loopLimit: 30}
}

// Refine applies every rule repeatedly until no rule changes the text or the
// loop limit is reached. The result is trimmed.
func (r *Rules) Refine(ctx context.Context, transcript string) (string, error) {
	result := transcript
	for i := 0; i < r.loopLimit; i++ {
		if err := ctx.Err(); err != nil {
			return transcript, err
		}

		changed := false
		for _, rule := range r.rules {
			next := rule.re.ReplaceAllString(result, rule.replacement)
			if next != result {
				result = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return strings.TrimSpace(result), nil
}
