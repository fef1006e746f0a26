package betree

import (
	"bytes"
	"sort"
)

// InternalNode holds len(children)-1 sorted pivots, one child id per
// pivot gap, and an unsorted buffer of pending messages awaiting flush
// toward a child. pivots[i] is the inclusive lower bound of children[i+1]:
// children[0] covers keys below pivots[0], children[i] (0<i<len(pivots))
// covers [pivots[i-1], pivots[i]), and the last child covers everything
// at or above the last pivot.
type InternalNode struct {
	level    int
	pivots   []ByteSlice
	children []uint64
	buffer   []OwnedMessage
}

// NewInternal returns an internal node at the given tree level with the
// given pivots and children. len(children) must equal len(pivots)+1.
func NewInternal(level int, pivots []ByteSlice, children []uint64) *InternalNode {
	return &InternalNode{level: level, pivots: pivots, children: children}
}

// Level reports the node's distance above the leaf layer (leaves are
// level 0).
func (n *InternalNode) Level() int { return n.level }

// Pivots returns the node's separator keys.
func (n *InternalNode) Pivots() []ByteSlice { return n.pivots }

// Children returns the node's child ids, one more than len(Pivots()).
func (n *InternalNode) Children() []uint64 { return n.children }

// BufferLen reports the number of messages currently pending flush.
func (n *InternalNode) BufferLen() int { return len(n.buffer) }

// childIndexForKey returns the index into Children() that owns key.
func (n *InternalNode) childIndexForKey(key ByteSlice) int {
	return sort.Search(len(n.pivots), func(i int) bool {
		return n.pivots[i].Compare(key) > 0
	})
}

// ChildFor returns the child id that owns key.
func (n *InternalNode) ChildFor(key []byte) uint64 {
	return n.children[n.childIndexForKey(Borrowed(key))]
}

// Buffer appends msg to the pending-message buffer.
func (n *InternalNode) Buffer(msg OwnedMessage) {
	n.buffer = append(n.buffer, msg)
}

// BufferBatch appends msgs to the pending-message buffer in order.
func (n *InternalNode) BufferBatch(msgs []OwnedMessage) {
	n.buffer = append(n.buffer, msgs...)
}

// NeedsFlush reports whether the buffer has grown large enough to flush.
func (n *InternalNode) NeedsFlush(maxBuffer int) bool {
	return len(n.buffer) >= maxBuffer
}

// NeedsSplit reports whether the node holds too many pivots and must
// split before (or after) its next flush.
func (n *InternalNode) NeedsSplit(maxPivots int) bool {
	return len(n.pivots) >= maxPivots
}

// SelectFlushRun sorts the buffer by key, finds the longest run of
// messages destined for the same child (ties broken toward the leftmost
// run by maxRun), detaches that run from the buffer, and returns which
// child it targets along with the detached messages in sorted order.
// Returns childIdx -1 if the buffer is empty.
func (n *InternalNode) SelectFlushRun() (childIdx int, run []OwnedMessage) {
	if len(n.buffer) == 0 {
		return -1, nil
	}
	sort.SliceStable(n.buffer, func(i, j int) bool {
		return bytes.Compare(n.buffer[i].Key, n.buffer[j].Key) < 0
	})

	targets := make([]int, len(n.buffer))
	for i, m := range n.buffer {
		targets[i] = n.childIndexForKey(Borrowed(m.Key))
	}

	start, length, value := maxRun(targets)

	run = append([]OwnedMessage(nil), n.buffer[start:start+length]...)
	rest := make([]OwnedMessage, 0, len(n.buffer)-length)
	rest = append(rest, n.buffer[:start]...)
	rest = append(rest, n.buffer[start+length:]...)
	n.buffer = rest

	return value, run
}

// UpdateChild replaces the id stored at child index idx, used after a
// copy-on-write reassigns a child's id.
func (n *InternalNode) UpdateChild(idx int, id uint64) {
	n.children[idx] = id
}

// InsertChild links a new sibling into the node immediately to the right
// of the child at afterIdx, under separator key. Used after a child
// flush or split produces a new sibling node.
func (n *InternalNode) InsertChild(key []byte, childID uint64, afterIdx int) {
	pivot := Borrowed(key).ToOwned()

	n.pivots = append(n.pivots, ByteSlice{})
	copy(n.pivots[afterIdx+1:], n.pivots[afterIdx:])
	n.pivots[afterIdx] = pivot

	n.children = append(n.children, 0)
	copy(n.children[afterIdx+2:], n.children[afterIdx+1:])
	n.children[afterIdx+1] = childID
}

// maxRun finds the longest run of equal adjacent values in values,
// breaking ties toward the leftmost (earliest-starting) run. It returns
// the run's start index, its length, and the repeated value. An empty
// input returns (0, 0, 0).
func maxRun(values []int) (start, length, value int) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	bestStart, bestLen := 0, 1
	curStart, curLen := 0, 1
	for i := 1; i < len(values); i++ {
		if values[i] == values[i-1] {
			curLen++
		} else {
			curStart, curLen = i, 1
		}
		if curLen > bestLen {
			bestStart, bestLen = curStart, curLen
		}
	}
	return bestStart, bestLen, values[bestStart]
}

// split divides the node at its median pivot: the promoted pivot becomes
// the separator returned to the caller, the right half of pivots and
// children becomes a new sibling node, and any buffered messages are
// partitioned between self and the sibling by comparing against the
// separator. self is truncated to its left half in place.
func (n *InternalNode) split() ([]byte, *InternalNode) {
	mid := len(n.pivots) / 2
	separator := append([]byte(nil), n.pivots[mid].Bytes()...)
	sep := Borrowed(separator)

	sibPivots := append([]ByteSlice(nil), n.pivots[mid+1:]...)
	sibChildren := append([]uint64(nil), n.children[mid+1:]...)

	n.pivots = n.pivots[:mid]
	n.children = n.children[:mid+1]

	var keepBuf, sibBuf []OwnedMessage
	for _, m := range n.buffer {
		if Borrowed(m.Key).Compare(sep) >= 0 {
			sibBuf = append(sibBuf, m)
		} else {
			keepBuf = append(keepBuf, m)
		}
	}
	n.buffer = keepBuf

	return separator, &InternalNode{level: n.level, pivots: sibPivots, children: sibChildren, buffer: sibBuf}
}

// Serialize encodes the node as: u32 level, u64 pivot count, u64 buffer
// count, u64 pivot lengths, u64 child ids, u32 buffered message ops, u64
// buffered key lengths, u64 buffered value lengths, pivot bytes,
// buffered key bytes, buffered value bytes, all little-endian.
func (n *InternalNode) Serialize() []byte {
	out := make([]byte, 0, 64)
	out = writeU32(out, uint32(n.level))
	out = writeU64(out, uint64(len(n.pivots)))
	out = writeU64(out, uint64(len(n.buffer)))

	for _, p := range n.pivots {
		out = writeU64(out, uint64(p.Len()))
	}
	for _, c := range n.children {
		out = writeU64(out, c)
	}
	for _, m := range n.buffer {
		out = writeU32(out, uint32(m.Op))
	}
	for _, m := range n.buffer {
		out = writeU64(out, uint64(len(m.Key)))
	}
	for _, m := range n.buffer {
		out = writeU64(out, uint64(len(m.Data)))
	}
	for _, p := range n.pivots {
		out = append(out, p.Bytes()...)
	}
	for _, m := range n.buffer {
		out = append(out, m.Key...)
	}
	for _, m := range n.buffer {
		out = append(out, m.Data...)
	}
	return out
}

// DeserializeInternal decodes a buffer produced by Serialize. Pivot
// slices are Borrowed views into buf; buffered message key/value slices
// are copied into owned byte vectors since they must survive being
// detached and moved by a later flush.
func DeserializeInternal(buf []byte) (*InternalNode, error) {
	r := newFrameReader(buf)

	level32, err := r.u32()
	if err != nil {
		return nil, err
	}
	numPivots, err := r.u64()
	if err != nil {
		return nil, err
	}
	numBuffered, err := r.u64()
	if err != nil {
		return nil, err
	}

	if err := checkCount(numPivots, 8, r.remaining()); err != nil {
		return nil, err
	}
	pivotLens := make([]uint64, numPivots)
	for i := range pivotLens {
		if pivotLens[i], err = r.u64(); err != nil {
			return nil, err
		}
	}
	if err := checkCount(numPivots+1, 8, r.remaining()); err != nil {
		return nil, err
	}
	children := make([]uint64, numPivots+1)
	for i := range children {
		if children[i], err = r.u64(); err != nil {
			return nil, err
		}
	}
	if err := checkCount(numBuffered, 4, r.remaining()); err != nil {
		return nil, err
	}
	ops := make([]uint32, numBuffered)
	for i := range ops {
		if ops[i], err = r.u32(); err != nil {
			return nil, err
		}
	}
	if err := checkCount(numBuffered, 8, r.remaining()); err != nil {
		return nil, err
	}
	keyLens := make([]uint64, numBuffered)
	for i := range keyLens {
		if keyLens[i], err = r.u64(); err != nil {
			return nil, err
		}
	}
	if err := checkCount(numBuffered, 8, r.remaining()); err != nil {
		return nil, err
	}
	valLens := make([]uint64, numBuffered)
	for i := range valLens {
		if valLens[i], err = r.u64(); err != nil {
			return nil, err
		}
	}

	pivots := make([]ByteSlice, numPivots)
	for i, l := range pivotLens {
		b, err := r.take(l)
		if err != nil {
			return nil, err
		}
		pivots[i] = Borrowed(b)
	}

	buffer := make([]OwnedMessage, numBuffered)
	for i, l := range keyLens {
		b, err := r.take(l)
		if err != nil {
			return nil, err
		}
		buffer[i].Op = Operation(ops[i])
		buffer[i].Key = append([]byte(nil), b...)
	}
	for i, l := range valLens {
		b, err := r.take(l)
		if err != nil {
			return nil, err
		}
		buffer[i].Data = append([]byte(nil), b...)
	}

	return &InternalNode{level: int(level32), pivots: pivots, children: children, buffer: buffer}, nil
}
