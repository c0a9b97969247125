package domain

import (
	"time"

	"github.com/dlclark/regexp2"
)

const patternMatchTimeout = time.Second

// scriptPattern is a regular expression written by a test script. It follows
// JavaScript syntax rather than RE2.
type scriptPattern struct {
	re *regexp2.Regexp
}

func compilePattern(pattern string) (*scriptPattern, error) {
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}

	re.MatchTimeout = patternMatchTimeout

	return &scriptPattern{re: re}, nil
}

// MatchString reports a match. A match that times out counts as no match.
func (p *scriptPattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)

	return err == nil && ok
}
