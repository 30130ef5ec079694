package gles

import (
	"fmt"
	"io"
	"strings"
)

// NodeKind distinguishes nonterminal and terminal parse tree nodes.
type NodeKind uint8

const (
	// NonTerminal nodes hold an ordered, possibly empty list of children.
	NonTerminal NodeKind = iota
	// Terminal nodes hold exactly one token and never have children.
	Terminal
)

// Node is a concrete parse tree node. Every token the parser consumes,
// punctuation and keywords included, ends up in a Terminal.
type Node struct {
	Kind     NodeKind
	Token    Token
	Children []*Node
}

// NewNonTerminal creates a nonterminal owning the given children.
func NewNonTerminal(children ...*Node) *Node {
	return &Node{Kind: NonTerminal, Children: children}
}

// NewTerminal creates a terminal for tok.
func NewTerminal(tok Token) *Node {
	return &Node{Kind: Terminal, Token: tok}
}

// IsTerminal reports whether n is a terminal.
func (n *Node) IsTerminal() bool {
	return n.Kind == Terminal
}

// Empty reports whether n is a nonterminal without children.
func (n *Node) Empty() bool {
	return n.Kind == NonTerminal && len(n.Children) == 0
}

// Is reports whether n is a terminal of the given kind.
func (n *Node) Is(kind TokenKind) bool {
	return n != nil && n.Kind == Terminal && n.Token.Kind == kind
}

// Add appends child as the last child of n.
func (n *Node) Add(child *Node) {
	n.Children = append(n.Children, child)
}

// Append splices other into n: a nonterminal contributes its children,
// a terminal is added as is.
func (n *Node) Append(other *Node) {
	if other.IsTerminal() {
		n.Add(other)
		return
	}
	n.Children = append(n.Children, other.Children...)
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// String returns the dump of the tree rooted at n.
func (n *Node) String() string {
	var sb strings.Builder
	_ = Dump(&sb, n)
	return sb.String()
}

// Dump writes one line per node, indented three spaces per depth level:
// "E<depth>" for nonterminals and "T<depth>: <token>" for terminals.
func Dump(w io.Writer, root *Node) error {
	return dump(w, root, 0)
}

func dump(w io.Writer, n *Node, depth int) error {
	indent := strings.Repeat("   ", depth)
	if n.IsTerminal() {
		_, err := fmt.Fprintf(w, "%sT%d: %s\n", indent, depth, n.Token)
		return err
	}
	if _, err := fmt.Fprintf(w, "%sE%d\n", indent, depth); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := dump(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
