package surlex

import (
	"errors"
	"fmt"
	"strings"
)

const (
	escapeChar    = '\\'
	tagOpen       = '<'
	tagClose      = '>'
	wildcardChar  = '*'
	optionalOpen  = '('
	optionalClose = ')'
	regexSep      = '='
	macroSep      = ':'
)

// ErrMalformedPattern is returned when a pattern ends while the closing
// '>' of a tag is expected.
var ErrMalformedPattern = errors.New("malformed surlex")

type parser struct {
	input string
	pos   int
}

func (p *parser) malformed(expected string) error {
	return fmt.Errorf("%w: expected %s at position %d", ErrMalformedPattern, expected, p.pos)
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) next() byte {
	c := p.input[p.pos]
	p.pos++
	return c
}

// readUntil consumes the input up to and including the first unescaped
// delimiter. Only the delimiter itself is unescaped, other escape sequences
// are kept as they are.
func (p *parser) readUntil(delimiter byte) (string, error) {
	var b strings.Builder
	for {
		if p.eof() {
			return "", p.malformed(fmt.Sprintf("%q", delimiter))
		}

		c := p.next()
		switch {
		case c == delimiter:
			return b.String(), nil
		case c == escapeChar:
			if p.eof() {
				return "", p.malformed(fmt.Sprintf("%q", delimiter))
			}

			escaped := p.next()
			if escaped != delimiter {
				b.WriteByte(escapeChar)
			}

			b.WriteByte(escaped)
		default:
			b.WriteByte(c)
		}
	}
}

func parseTag(content string) Node {
	i := strings.IndexAny(content, string([]byte{regexSep, macroSep}))
	if i < 0 {
		return &TagNode{Name: content}
	}

	if content[i] == regexSep {
		return &RegexTagNode{Name: content[:i], Pattern: content[i+1:]}
	}

	return &MacroTagNode{Name: content[:i], Macro: content[i+1:]}
}

// parseSequence parses until the end of the input or an unescaped closing
// parenthesis, which is consumed.
func (p *parser) parseSequence() ([]Node, error) {
	var (
		nodes []Node
		text  strings.Builder
	)

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &TextNode{Token: text.String()})
			text.Reset()
		}
	}

	for !p.eof() {
		c := p.next()
		switch c {
		case escapeChar:
			// a trailing backslash is literal
			if p.eof() {
				text.WriteByte(escapeChar)
				continue
			}

			text.WriteByte(p.next())
		case tagOpen:
			flush()
			content, err := p.readUntil(tagClose)
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, parseTag(content))
		case wildcardChar:
			flush()
			nodes = append(nodes, &WildcardNode{})
		case optionalOpen:
			flush()
			children, err := p.parseSequence()
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, &OptionalNode{Children: children})
		case optionalClose:
			flush()
			return nodes, nil
		default:
			text.WriteByte(c)
		}
	}

	flush()
	return nodes, nil
}

// Parse parses a surlex pattern into a sequence of nodes.
//
// Backslash escapes the next character. Tags are enclosed in < and >, and
// they take the forms <name>, <name=regexp> and <name:macro>, where the name
// can be empty. The * character is a wildcard, and ( and ) enclose an
// optional group. Optional groups can be nested. A closing parenthesis
// without a matching opening one ends the parsing, and the rest of the input
// is ignored.
func Parse(pattern string) ([]Node, error) {
	p := &parser{input: pattern}
	return p.parseSequence()
}
