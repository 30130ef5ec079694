package ast

// Scope links a node that can define struct types to its enclosing scope.
// Scopes live only while the tree is being built; nodes do not point back
// at them.
type Scope struct {
	parent *Scope
	node   *Node
}

// NewScope creates a scope for node nested inside parent, which may be nil.
func NewScope(parent *Scope, node *Node) *Scope {
	return &Scope{parent: parent, node: node}
}

// LookupType resolves a struct name in this scope, then outward.
// It returns nil when no enclosing scope defines the name.
func (s *Scope) LookupType(name string) *Node {
	for sc := s; sc != nil; sc = sc.parent {
		for _, t := range sc.node.Types {
			if t.Name == name {
				return t
			}
		}
	}
	return nil
}
