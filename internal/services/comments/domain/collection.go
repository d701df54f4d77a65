package domain

import "encoding/json"

// Node is a comment with its direct replies attached
type Node struct {
	Comment
	Children []Node `json:"children"`
}

// Collection is an assembled thread set for one page or author
// it is built once and never mutated; filters return a new collection
type Collection struct {
	order    []int64
	byID     map[int64]Comment
	roots    []int64
	children map[int64][]int64
}

// NewCollection indexes comments and links replies to their parents
// replies whose parent is absent from the input are dropped
// when an id repeats, the first occurrence is kept
func NewCollection(comments []Comment) *Collection {
	c := &Collection{
		order:    make([]int64, 0, len(comments)),
		byID:     make(map[int64]Comment, len(comments)),
		children: map[int64][]int64{},
	}

	for _, cm := range comments {
		if _, dup := c.byID[cm.ID]; dup {
			continue
		}
		c.byID[cm.ID] = cm
		c.order = append(c.order, cm.ID)
	}

	// link after indexing so a reply may precede its parent in the input
	for _, id := range c.order {
		cm := c.byID[id]
		if cm.ParentID == nil {
			c.roots = append(c.roots, id)
			continue
		}
		if _, ok := c.byID[*cm.ParentID]; ok {
			c.children[*cm.ParentID] = append(c.children[*cm.ParentID], id)
		}
	}

	c.prune()
	return c
}

// prune forgets everything not reachable from a root: orphans, their
// descendants and parent cycles
func (c *Collection) prune() {
	seen := make(map[int64]bool, len(c.order))
	stack := append([]int64(nil), c.roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, c.children[id]...)
	}

	kept := make([]int64, 0, len(seen))
	for _, id := range c.order {
		if seen[id] {
			kept = append(kept, id)
			continue
		}
		delete(c.byID, id)
		delete(c.children, id)
	}
	c.order = kept
}

// WithoutDeleted rebuilds the collection from live comments only
// replies under a deleted parent go with it
func (c *Collection) WithoutDeleted() *Collection {
	live := make([]Comment, 0, len(c.order))
	for _, id := range c.order {
		if cm := c.byID[id]; !cm.IsDeleted() {
			live = append(live, cm)
		}
	}
	return NewCollection(live)
}

// Len is the number of comments reachable from a root
func (c *Collection) Len() int { return len(c.order) }

// Get returns the comment with id when it is part of the collection
func (c *Collection) Get(id int64) (Comment, bool) {
	cm, ok := c.byID[id]
	return cm, ok
}

// Comments returns every kept comment in encounter order
func (c *Collection) Comments() []Comment {
	out := make([]Comment, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Roots returns top level comments with replies nested in encounter order
func (c *Collection) Roots() []Node {
	out := make([]Node, 0, len(c.roots))
	for _, id := range c.roots {
		out = append(out, c.node(id))
	}
	return out
}

func (c *Collection) node(id int64) Node {
	kids := c.children[id]
	n := Node{Comment: c.byID[id], Children: make([]Node, 0, len(kids))}
	for _, k := range kids {
		n.Children = append(n.Children, c.node(k))
	}
	return n
}

// MarshalJSON renders the root forest; an empty collection is []
func (c *Collection) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Roots())
}
