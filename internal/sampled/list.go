package sampled

import (
	"iter"
	"math"

	"github.com/hupe1980/sdci/internal/packed"
	"github.com/hupe1980/sdci/persistence"
)

// NoNode marks the end of a bucket.
const NoNode = math.MaxUint64

// minNodes is the node capacity allocated by the first growth step.
const minNodes = 16

// List maps keys in [0, Keys) to buckets of node numbers.
type List struct {
	nodes uint64
	heads packed.Array
	next  packed.Array
}

// New creates a list with keys empty buckets and room for reserve nodes.
func New(keys, reserve uint64) (*List, error) {
	l := &List{}
	if err := l.Initialize(keys, reserve); err != nil {
		return nil, err
	}
	return l, nil
}

// Initialize empties the list and resizes it to keys buckets with room for
// reserve nodes. On failure the list is left with no buckets.
func (l *List) Initialize(keys, reserve uint64) error {
	w := packed.WidthFor(reserve + 2)
	l.nodes = 0
	l.heads.Reset()
	l.next.Reset()
	if err := l.heads.Resize(w, keys); err != nil {
		return err
	}
	if err := l.next.Resize(w, reserve); err != nil {
		l.heads.Reset()
		return err
	}
	return nil
}

// Reserve makes room for n nodes. The head width is widened together with
// the node width so that every stored link stays representable.
func (l *List) Reserve(n uint64) error {
	if n <= l.nodes {
		return nil
	}
	w := packed.WidthFor(n + 2)
	if w > l.heads.Width() {
		oldWidth, oldLen := l.next.Width(), l.next.Len()
		if err := l.next.Resize(w, n); err != nil {
			return err
		}
		if err := l.heads.Resize(w, l.heads.Len()); err != nil {
			_ = l.next.Resize(oldWidth, oldLen)
			return err
		}
		return nil
	}
	if n > l.next.Len() {
		return l.next.Resize(l.next.Width(), n)
	}
	return nil
}

// PushFront allocates a new node at the front of key's bucket.
// Capacity grows geometrically. On failure the list is unchanged.
func (l *List) PushFront(key uint64) error {
	if l.nodes+1 >= l.next.Len() {
		want := uint64(math.MaxUint64 - 2)
		if l.nodes <= want/2 {
			want = l.nodes * 2
		}
		if err := l.Reserve(max(want, minNodes)); err != nil {
			return err
		}
	}
	l.next.Set(l.nodes, l.heads.Get(key))
	l.nodes++
	l.heads.Set(key, l.nodes)
	return nil
}

// First returns the newest node of key's bucket, or NoNode.
func (l *List) First(key uint64) uint64 {
	if key >= l.heads.Len() {
		return NoNode
	}
	return l.heads.Get(key) - 1
}

// Next returns the node following node in its bucket, or NoNode.
func (l *List) Next(node uint64) uint64 {
	if node >= l.nodes {
		return NoNode
	}
	return l.next.Get(node) - 1
}

// Bucket yields the nodes of key's bucket, newest first.
func (l *List) Bucket(key uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for nd := l.First(key); nd != NoNode; nd = l.Next(nd) {
			if !yield(nd) {
				return
			}
		}
	}
}

// Keys returns the number of buckets.
func (l *List) Keys() uint64 {
	return l.heads.Len()
}

// Nodes returns the number of allocated nodes.
func (l *List) Nodes() uint64 {
	return l.nodes
}

// Width returns the bit width shared by the link arrays.
func (l *List) Width() uint64 {
	return l.heads.Width()
}

// Clear empties every bucket. Capacity is kept.
func (l *List) Clear() {
	if l.nodes > 0 {
		l.heads.Zero()
		l.nodes = 0
	}
}

// ShrinkToFit re-derives the narrowest link width for the current node count
// and releases spare node capacity.
func (l *List) ShrinkToFit() error {
	w := packed.WidthFor(l.nodes + 2)
	if err := l.next.Resize(w, l.nodes); err != nil {
		return err
	}
	if err := l.heads.Resize(w, l.heads.Len()); err != nil {
		return err
	}
	l.heads.ShrinkToFit()
	l.next.ShrinkToFit()
	return nil
}

// Swap exchanges the contents of l and other in O(1).
func (l *List) Swap(other *List) {
	*l, *other = *other, *l
}

// Clone returns a deep copy of l.
func (l *List) Clone() List {
	return List{nodes: l.nodes, heads: l.heads.Clone(), next: l.next.Clone()}
}

// HeapUsage returns the bytes held by both link arrays.
func (l *List) HeapUsage() uint64 {
	return l.heads.HeapUsage() + l.next.HeapUsage()
}

// Encode writes the node count, the head array and the used prefix of the
// node array.
func (l *List) Encode(w *persistence.Writer) {
	w.Uint64(l.nodes)
	l.heads.Encode(w, l.heads.Len())
	l.next.Encode(w, l.nodes)
}

// Decode replaces l with a list read from r. Links must point backwards
// within the node range. On failure l is left empty.
func (l *List) Decode(r *persistence.Reader) error {
	var d List
	d.nodes = r.Uint64()
	if r.Err() == nil {
		_ = d.heads.Decode(r)
	}
	if r.Err() == nil {
		_ = d.next.Decode(r)
	}
	if r.Err() == nil {
		d.validate(r)
	}
	if err := r.Err(); err != nil {
		*l = List{}
		return err
	}
	*l = d
	return nil
}

func (l *List) validate(r *persistence.Reader) {
	if l.heads.Width() != l.next.Width() {
		r.Failf("sampled list: head width %d differs from node width %d", l.heads.Width(), l.next.Width())
		return
	}
	if l.next.Len() != l.nodes {
		r.Failf("sampled list: %d node links for %d nodes", l.next.Len(), l.nodes)
		return
	}
	for key := range l.heads.Len() {
		if h := l.heads.Get(key); h > l.nodes {
			r.Failf("sampled list: bucket %d points at node %d of %d", key, h, l.nodes)
			return
		}
	}
	for nd := range l.nodes {
		if link := l.next.Get(nd); link > nd {
			r.Failf("sampled list: node %d links forward to %d", nd, link-1)
			return
		}
	}
}
