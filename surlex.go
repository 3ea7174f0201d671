package surlex

import (
	"sync"

	"github.com/zalando/surlex/macros"
)

// ErrMacroNotFound is returned when a macro tag references an unknown macro.
var ErrMacroNotFound = macros.ErrNotFound

// Options for creating a Surlex.
type Options struct {

	// Registry used to resolve macros. When nil, a registry on top of the
	// global macro table is used, with Macros as its overrides.
	Registry *macros.Registry

	// Instance scoped macros, used only when Registry is nil.
	Macros map[string]string

	// Escaping of literal text.
	Escape EscapePolicy
}

// Surlex is a compiled surlex pattern. The parsed nodes, the regular
// expression and the matcher are computed on first use and cached. A Surlex
// is safe for concurrent use.
type Surlex struct {
	pattern  string
	registry *macros.Registry
	escape   EscapePolicy

	mu            sync.Mutex
	parsed        bool
	parseErr      error
	nodes         []Node
	translated    bool
	err           error
	regex         string
	captureMacros map[string]string
	matcher       *Matcher
	compileErr    error
}

// New creates a Surlex using the global macros.
func New(pattern string) *Surlex {
	return NewWithOptions(pattern, Options{})
}

// NewWithOptions creates a Surlex with custom macros or escaping.
func NewWithOptions(pattern string, o Options) *Surlex {
	r := o.Registry
	if r == nil {
		r = macros.New(o.Macros)
	}

	return &Surlex{pattern: pattern, registry: r, escape: o.Escape}
}

// Pattern returns the surlex source.
func (s *Surlex) Pattern() string { return s.pattern }

// Registry returns the macro registry used for translation.
func (s *Surlex) Registry() *macros.Registry { return s.registry }

func collectCaptureMacros(nodes []Node) map[string]string {
	m := make(map[string]string)
	Walk(nodes, func(n Node) {
		if mt, ok := n.(*MacroTagNode); ok {
			m[mt.Name] = mt.Macro
		}
	})

	return m
}

func (s *Surlex) parse() error {
	if !s.parsed {
		s.parsed = true
		s.nodes, s.parseErr = Parse(s.pattern)
	}

	return s.parseErr
}

func (s *Surlex) translate() error {
	if err := s.parse(); err != nil {
		return err
	}

	if s.translated {
		return s.err
	}

	s.translated = true
	sc := &Scribe{Macros: s.registry, Escape: s.escape}
	s.regex, s.err = sc.Translate(s.nodes)
	if s.err != nil {
		return s.err
	}

	s.captureMacros = collectCaptureMacros(s.nodes)
	return nil
}

// Translate returns the regular expression equivalent of the pattern.
// Repeated calls return the same result.
func (s *Surlex) Translate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.translate(); err != nil {
		return "", err
	}

	return s.regex, nil
}

// Nodes returns the parsed pattern.
func (s *Surlex) Nodes() ([]Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.parse(); err != nil {
		return nil, err
	}

	return s.nodes, nil
}

// CaptureMacros maps capture names to the macros they were resolved with,
// including captures inside optional groups. Captures without a macro are
// not included. A macro tag without a name is reported under the empty key.
func (s *Surlex) CaptureMacros() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.translate(); err != nil {
		return nil, err
	}

	m := make(map[string]string, len(s.captureMacros))
	for k, v := range s.captureMacros {
		m[k] = v
	}

	return m, nil
}

// Compile translates the pattern and compiles the result.
func (s *Surlex) Compile() (*Matcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.translate(); err != nil {
		return nil, err
	}

	if s.matcher == nil && s.compileErr == nil {
		s.matcher, s.compileErr = NewMatcher(s.regex)
	}

	return s.matcher, s.compileErr
}

// Match matches the beginning of the subject, and returns the named
// captures. The second return value is false when the subject does not
// match, which is not an error.
func (s *Surlex) Match(subject string) (map[string]string, bool, error) {
	m, err := s.Compile()
	if err != nil {
		return nil, false, err
	}

	c, ok := m.Match(subject)
	return c, ok, nil
}

// MatchExact is like Match, but the whole subject needs to match.
func (s *Surlex) MatchExact(subject string) (map[string]string, bool, error) {
	m, err := s.Compile()
	if err != nil {
		return nil, false, err
	}

	c, ok := m.MatchExact(subject)
	return c, ok, nil
}

func (s *Surlex) String() string { return s.pattern }

// ToRegex translates a surlex pattern using the global macros.
func ToRegex(pattern string) (string, error) {
	return New(pattern).Translate()
}

// Parsed returns a translated Surlex.
func Parsed(pattern string) (*Surlex, error) {
	s := New(pattern)
	if _, err := s.Translate(); err != nil {
		return nil, err
	}

	return s, nil
}

// MustCompile returns a compiled Surlex, and panics if the pattern cannot be
// translated or compiled.
func MustCompile(pattern string) *Surlex {
	s := New(pattern)
	if _, err := s.Compile(); err != nil {
		panic("surlex: " + pattern + ": " + err.Error())
	}

	return s
}

// Match matches a subject against a surlex pattern using the global macros.
func Match(pattern, subject string) (map[string]string, bool, error) {
	return New(pattern).Match(subject)
}

// RegisterMacro adds a macro to the global macro table.
func RegisterMacro(name, pattern string) {
	macros.Register(name, pattern)
}
