package index

import (
	"fmt"
	"sync"

	"github.com/samirrijal/geoext/internal/core/geometry"
)

const minFanout = 4

// RTree is an in-memory R-tree over identified boxes. Subtrees are chosen by
// least Penalty, overflowing nodes are split with PickSplit and queries are
// answered with Consistent. Deletion does not rebalance. It is safe for
// concurrent use.
type RTree struct {
	mu         sync.RWMutex
	root       *rnode
	maxEntries int
	boxes      map[string]geometry.Box
}

type rnode struct {
	leaf    bool
	entries []rentry
}

type rentry struct {
	box   geometry.Box
	id    string
	child *rnode
}

// NewRTree returns an empty tree with at most maxEntries per node.
func NewRTree(maxEntries int) *RTree {
	if maxEntries < minFanout {
		maxEntries = minFanout
	}
	return &RTree{
		root:       &rnode{leaf: true},
		maxEntries: maxEntries,
		boxes:      make(map[string]geometry.Box),
	}
}

// Len is the number of stored ids.
func (t *RTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.boxes)
}

// Bounds covers every stored box.
func (t *RTree) Bounds() (geometry.Box, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root.bounds()
}

// Insert stores box under id, replacing any previous box for id.
func (t *RTree) Insert(id string, box geometry.Box) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.boxes[id]; ok {
		t.remove(t.root, id, old)
	}
	t.boxes[id] = box

	if sibling := t.insert(t.root, rentry{box: box, id: id}); sibling != nil {
		left, _ := t.root.bounds()
		right, _ := sibling.bounds()
		t.root = &rnode{entries: []rentry{
			{box: left, child: t.root},
			{box: right, child: sibling},
		}}
	}
}

// Delete removes id. It reports whether id was present.
func (t *RTree) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	box, ok := t.boxes[id]
	if !ok {
		return false
	}
	delete(t.boxes, id)
	t.remove(t.root, id, box)

	for !t.root.leaf && len(t.root.entries) == 1 {
		t.root = t.root.entries[0].child
	}
	if !t.root.leaf && len(t.root.entries) == 0 {
		t.root = &rnode{leaf: true}
	}
	return true
}

// Search returns the ids whose boxes satisfy strategy against query.
func (t *RTree) Search(query geometry.Box, strategy Strategy) ([]string, error) {
	if _, ok := leafPredicates[strategy]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint16(strategy))
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	err := t.search(t.root, query, strategy, &out)
	return out, err
}

func (t *RTree) search(n *rnode, query geometry.Box, strategy Strategy, out *[]string) error {
	for _, e := range n.entries {
		ok, err := Consistent(e.box, query, strategy, n.leaf)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if n.leaf {
			*out = append(*out, e.id)
			continue
		}
		if err := t.search(e.child, query, strategy, out); err != nil {
			return err
		}
	}
	return nil
}

// insert adds e below n and returns a new sibling when n had to split.
func (t *RTree) insert(n *rnode, e rentry) *rnode {
	if n.leaf {
		n.entries = append(n.entries, e)
	} else {
		i := chooseSubtree(n, e.box)
		child := n.entries[i].child
		sibling := t.insert(child, e)
		n.entries[i].box, _ = child.bounds()
		if sibling != nil {
			sb, _ := sibling.bounds()
			n.entries = append(n.entries, rentry{box: sb, child: sibling})
		}
	}

	if len(n.entries) <= t.maxEntries {
		return nil
	}
	return split(n)
}

func chooseSubtree(n *rnode, box geometry.Box) int {
	best := 0
	bestPenalty, bestArea := Penalty(n.entries[0].box, box), n.entries[0].box.Area()
	for i := 1; i < len(n.entries); i++ {
		p, a := Penalty(n.entries[i].box, box), n.entries[i].box.Area()
		if p < bestPenalty || (p == bestPenalty && a < bestArea) {
			best, bestPenalty, bestArea = i, p, a
		}
	}
	return best
}

// split keeps the left group in n and returns the right group as a new node.
func split(n *rnode) *rnode {
	boxes := make([]geometry.Box, len(n.entries))
	for i, e := range n.entries {
		boxes[i] = e.box
	}
	left, right := PickSplit(boxes)

	all := n.entries
	n.entries = make([]rentry, 0, len(left))
	for _, i := range left {
		n.entries = append(n.entries, all[i])
	}
	sibling := &rnode{leaf: n.leaf, entries: make([]rentry, 0, len(right))}
	for _, i := range right {
		sibling.entries = append(sibling.entries, all[i])
	}
	return sibling
}

// remove deletes id from the subtree, pruning emptied children. It reports
// whether the entry was found.
func (t *RTree) remove(n *rnode, id string, box geometry.Box) bool {
	if n.leaf {
		for i, e := range n.entries {
			if e.id == id {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				return true
			}
		}
		return false
	}

	for i := range n.entries {
		e := &n.entries[i]
		if !e.box.Contains(box) || !t.remove(e.child, id, box) {
			continue
		}
		if len(e.child.entries) == 0 {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
		} else {
			e.box, _ = e.child.bounds()
		}
		return true
	}
	return false
}

func (n *rnode) bounds() (geometry.Box, bool) {
	boxes := make([]geometry.Box, len(n.entries))
	for i, e := range n.entries {
		boxes[i] = e.box
	}
	return Union(boxes...)
}
