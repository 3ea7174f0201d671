package surlex

import (
	"fmt"
	"regexp"
	"strings"
)

// EscapePolicy selects which regular expression metacharacters are escaped
// in literal text.
type EscapePolicy int

const (
	// EscapeStrict escapes . [ ] { } + | ? ( ) * ^ $ and the backslash.
	EscapeStrict EscapePolicy = iota

	// EscapeDot escapes only the dot.
	EscapeDot

	// EscapeMeta escapes every metacharacter, see regexp.QuoteMeta.
	EscapeMeta
)

const (
	defaultTagPattern = ".+"
	wildcardPattern   = ".*"
	strictMetaChars   = `.[]{}+|?()*^$\`
)

// MacroResolver resolves macro names to patterns. *macros.Registry
// implements it.
type MacroResolver interface {
	Get(name string) (string, error)
}

// Scribe renders parsed nodes as a regular expression.
type Scribe struct {
	Macros MacroResolver
	Escape EscapePolicy
}

func escapeChars(s, chars string) string {
	if !strings.ContainsAny(s, chars) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(chars, s[i]) >= 0 {
			b.WriteByte('\\')
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

func (p EscapePolicy) escape(s string) string {
	switch p {
	case EscapeDot:
		return escapeChars(s, ".")
	case EscapeMeta:
		return regexp.QuoteMeta(s)
	default:
		return escapeChars(s, strictMetaChars)
	}
}

// ParseEscapePolicy accepts "strict", "dot" and "meta".
func ParseEscapePolicy(s string) (EscapePolicy, error) {
	switch s {
	case "", "strict":
		return EscapeStrict, nil
	case "dot":
		return EscapeDot, nil
	case "meta":
		return EscapeMeta, nil
	default:
		return 0, fmt.Errorf("invalid escape policy: %q", s)
	}
}

func (p EscapePolicy) String() string {
	switch p {
	case EscapeDot:
		return "dot"
	case EscapeMeta:
		return "meta"
	default:
		return "strict"
	}
}

func capture(name, pattern string) string {
	if name == "" {
		return pattern
	}

	return "(?P<" + name + ">" + pattern + ")"
}

func (s *Scribe) write(b *strings.Builder, nodes []Node) error {
	for _, n := range nodes {
		switch v := n.(type) {
		case *TextNode:
			b.WriteString(s.Escape.escape(v.Token))
		case *WildcardNode:
			b.WriteString(wildcardPattern)
		case *OptionalNode:
			b.WriteByte('(')
			if err := s.write(b, v.Children); err != nil {
				return err
			}

			b.WriteString(")?")
		case *TagNode:
			b.WriteString(capture(v.Name, defaultTagPattern))
		case *RegexTagNode:
			b.WriteString(capture(v.Name, v.Pattern))
		case *MacroTagNode:
			if s.Macros == nil {
				return fmt.Errorf("%w: %q", ErrMacroNotFound, v.Macro)
			}

			p, err := s.Macros.Get(v.Macro)
			if err != nil {
				return err
			}

			b.WriteString(capture(v.Name, p))
		default:
			return fmt.Errorf("unsupported node: %T", n)
		}
	}

	return nil
}

// Translate renders the nodes as a regular expression with named capture
// groups in the (?P<name>...) form. Macro references are resolved with
// s.Macros, and an unknown macro fails the translation with an error wrapping
// ErrMacroNotFound.
func (s *Scribe) Translate(nodes []Node) (string, error) {
	var b strings.Builder
	if err := s.write(&b, nodes); err != nil {
		return "", err
	}

	return b.String(), nil
}

// Translate renders nodes with the strict escape policy.
func Translate(nodes []Node, m MacroResolver) (string, error) {
	s := &Scribe{Macros: m}
	return s.Translate(nodes)
}
