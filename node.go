package surlex

import (
	"strings"
)

// Node is an element of a parsed surlex pattern. The implementations are
// TextNode, WildcardNode, OptionalNode, TagNode, RegexTagNode and
// MacroTagNode. String renders the node in surlex syntax.
type Node interface {
	String() string
	node()
}

// TextNode is literal text, matched verbatim.
type TextNode struct {
	Token string
}

// WildcardNode matches anything, including nothing. Written as *.
type WildcardNode struct{}

// OptionalNode is a group that may be absent in the subject. Written as
// (...).
type OptionalNode struct {
	Children []Node
}

// TagNode captures one or more characters of any kind. Written as <name>.
type TagNode struct {
	Name string
}

// RegexTagNode captures with an explicit regular expression. Written as
// <name=regexp>. When Name is empty, the expression is inserted without a
// capture group.
type RegexTagNode struct {
	Name    string
	Pattern string
}

// MacroTagNode captures with the pattern of a named macro. Written as
// <name:macro>. When Name is empty, the macro pattern is inserted without a
// capture group.
type MacroTagNode struct {
	Name  string
	Macro string
}

func (*TextNode) node()     {}
func (*WildcardNode) node() {}
func (*OptionalNode) node() {}
func (*TagNode) node()      {}
func (*RegexTagNode) node() {}
func (*MacroTagNode) node() {}

const structuralChars = `\<>*()`

func escapeText(s string) string {
	if !strings.ContainsAny(s, structuralChars) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(structuralChars, s[i]) >= 0 {
			b.WriteByte(escapeChar)
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

func escapeTagContent(s string) string {
	return strings.ReplaceAll(s, string(tagClose), `\`+string(tagClose))
}

func (n *TextNode) String() string     { return escapeText(n.Token) }
func (n *WildcardNode) String() string { return "*" }
func (n *OptionalNode) String() string { return "(" + Render(n.Children) + ")" }
func (n *TagNode) String() string      { return "<" + escapeTagContent(n.Name) + ">" }

func (n *RegexTagNode) String() string {
	return "<" + escapeTagContent(n.Name) + "=" + escapeTagContent(n.Pattern) + ">"
}

func (n *MacroTagNode) String() string {
	return "<" + escapeTagContent(n.Name) + ":" + escapeTagContent(n.Macro) + ">"
}

// Render prints nodes in surlex syntax. Parsing the output of Render results
// in nodes equal to the input.
func Render(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.String())
	}

	return b.String()
}

// Walk calls fn for every node, depth first, including the children of
// optional groups.
func Walk(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		if o, ok := n.(*OptionalNode); ok {
			Walk(o.Children, fn)
		}
	}
}

func eqNode(left, right Node) bool {
	switch l := left.(type) {
	case *TextNode:
		r, ok := right.(*TextNode)
		return ok && l.Token == r.Token
	case *WildcardNode:
		_, ok := right.(*WildcardNode)
		return ok
	case *OptionalNode:
		r, ok := right.(*OptionalNode)
		return ok && Equal(l.Children, r.Children)
	case *TagNode:
		r, ok := right.(*TagNode)
		return ok && l.Name == r.Name
	case *RegexTagNode:
		r, ok := right.(*RegexTagNode)
		return ok && l.Name == r.Name && l.Pattern == r.Pattern
	case *MacroTagNode:
		r, ok := right.(*MacroTagNode)
		return ok && l.Name == r.Name && l.Macro == r.Macro
	default:
		return false
	}
}

// Equal compares two node sequences structurally.
func Equal(left, right []Node) bool {
	if len(left) != len(right) {
		return false
	}

	for i := range left {
		if !eqNode(left[i], right[i]) {
			return false
		}
	}

	return true
}
