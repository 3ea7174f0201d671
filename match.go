package surlex

import "regexp"

// Matcher applies a translated pattern to subjects.
type Matcher struct {
	regex  string
	prefix *regexp.Regexp
	exact  *regexp.Regexp
}

// NewMatcher compiles a regular expression produced by translation. Match
// anchors it at the start of the subject, MatchExact at both ends.
func NewMatcher(regex string) (*Matcher, error) {
	prefix, err := regexp.Compile("^(?:" + regex + ")")
	if err != nil {
		return nil, err
	}

	exact, err := regexp.Compile("^(?:" + regex + ")$")
	if err != nil {
		return nil, err
	}

	return &Matcher{regex: regex, prefix: prefix, exact: exact}, nil
}

func captures(rx *regexp.Regexp, subject string) (map[string]string, bool) {
	loc := rx.FindStringSubmatchIndex(subject)
	if loc == nil {
		return nil, false
	}

	m := make(map[string]string)
	for i, name := range rx.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}

		m[name] = subject[loc[2*i]:loc[2*i+1]]
	}

	return m, true
}

// Match matches the beginning of the subject, and returns the values of the
// named captures. Captures in optional groups that did not participate in
// the match are absent from the result. The second return value is false
// when the subject does not match.
func (m *Matcher) Match(subject string) (map[string]string, bool) {
	return captures(m.prefix, subject)
}

// MatchExact is like Match, but the whole subject needs to match.
func (m *Matcher) MatchExact(subject string) (map[string]string, bool) {
	return captures(m.exact, subject)
}

// MatchString reports whether the beginning of the subject matches.
func (m *Matcher) MatchString(subject string) bool {
	return m.prefix.MatchString(subject)
}

// Names returns the names of the capture groups, in order of appearance.
func (m *Matcher) Names() []string {
	var names []string
	for _, n := range m.prefix.SubexpNames() {
		if n != "" {
			names = append(names, n)
		}
	}

	return names
}

// String returns the translated regular expression.
func (m *Matcher) String() string { return m.regex }
