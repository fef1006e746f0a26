package betree

import "sort"

// LeafNode is a sorted array of (key, value) pairs. Keys are stored
// strictly increasing; a leaf deserialized from a blob holds every key
// and value as a Borrowed view into that blob until a mutation converts
// an individual slot to Owned.
type LeafNode struct {
	keys []ByteSlice
	vals []ByteSlice
}

// NewLeaf returns an empty leaf.
func NewLeaf() *LeafNode {
	return &LeafNode{}
}

// search returns the index of key in l.keys (found=true) or the
// insertion point that keeps the slice sorted (found=false).
func (l *LeafNode) search(key ByteSlice) (idx int, found bool) {
	idx = sort.Search(len(l.keys), func(i int) bool {
		return l.keys[i].Compare(key) >= 0
	})
	found = idx < len(l.keys) && l.keys[idx].Equal(key)
	return idx, found
}

// Get performs a point lookup. The returned ByteSlice aliases the leaf's
// internal storage and must not be retained past the leaf's lifetime if
// the leaf is later mutated.
func (l *LeafNode) Get(key []byte) (ByteSlice, bool) {
	idx, found := l.search(Borrowed(key))
	if !found {
		return ByteSlice{}, false
	}
	return l.vals[idx], true
}

// Upsert applies msg to the leaf: on a key hit, the message is applied
// in place to the existing value slot; on a miss, the key and value are
// inserted at the sorted position.
func (l *LeafNode) Upsert(msg Message) {
	idx, found := l.search(msg.Key)
	if found {
		msg.Apply(&l.vals[idx])
		return
	}
	key, val := msg.Create()
	l.keys = append(l.keys, ByteSlice{})
	copy(l.keys[idx+1:], l.keys[idx:])
	l.keys[idx] = key.ToOwned()

	l.vals = append(l.vals, ByteSlice{})
	copy(l.vals[idx+1:], l.vals[idx:])
	l.vals[idx] = val.ToOwned()
}

// UpsertBatch folds Upsert over msgs in order.
func (l *LeafNode) UpsertBatch(msgs []OwnedMessage) {
	for _, m := range msgs {
		l.Upsert(m.IntoMessage())
	}
}

// Len reports the number of keys currently held.
func (l *LeafNode) Len() int {
	return len(l.keys)
}

// split divides the leaf at its median index: the right half becomes a
// freshly packed sibling leaf (bytes concatenated in serialized order,
// its ByteSlices Borrowed into that new blob), and self is truncated to
// the left half. Returns the sibling's separator key (its first key)
// and the sibling node itself.
func (l *LeafNode) split() ([]byte, *LeafNode) {
	mid := len(l.keys) / 2

	total := 0
	for i := mid; i < len(l.keys); i++ {
		total += l.keys[i].Len() + l.vals[i].Len()
	}

	blob := make([]byte, 0, total)
	sibKeys := make([]ByteSlice, 0, len(l.keys)-mid)
	sibVals := make([]ByteSlice, 0, len(l.keys)-mid)

	for i := mid; i < len(l.keys); i++ {
		b := l.keys[i].Bytes()
		start := len(blob)
		blob = append(blob, b...)
		sibKeys = append(sibKeys, Borrowed(blob[start : start+len(b)]))
	}
	for i := mid; i < len(l.vals); i++ {
		b := l.vals[i].Bytes()
		start := len(blob)
		blob = append(blob, b...)
		sibVals = append(sibVals, Borrowed(blob[start : start+len(b)]))
	}

	l.keys = l.keys[:mid]
	l.vals = l.vals[:mid]

	separator := append([]byte(nil), sibKeys[0].Bytes()...)
	return separator, &LeafNode{keys: sibKeys, vals: sibVals}
}

// Serialize encodes the leaf as: u64 count, u64 key lengths, u64
// value lengths, key bytes, value bytes, all little-endian.
func (l *LeafNode) Serialize() []byte {
	n := len(l.keys)
	out := make([]byte, 0, 8+16*n)
	out = writeU64(out, uint64(n))
	for _, k := range l.keys {
		out = writeU64(out, uint64(k.Len()))
	}
	for _, v := range l.vals {
		out = writeU64(out, uint64(v.Len()))
	}
	for _, k := range l.keys {
		out = append(out, k.Bytes()...)
	}
	for _, v := range l.vals {
		out = append(out, v.Bytes()...)
	}
	return out
}

// DeserializeLeaf decodes a buffer produced by Serialize. All key and
// value slices are Borrowed views into buf, a zero-copy decode.
func DeserializeLeaf(buf []byte) (*LeafNode, error) {
	r := newFrameReader(buf)
	n, err := r.u64()
	if err != nil {
		return nil, err
	}
	if err := checkCount(n, 8, r.remaining()); err != nil {
		return nil, err
	}

	keyLens := make([]uint64, n)
	for i := range keyLens {
		if keyLens[i], err = r.u64(); err != nil {
			return nil, err
		}
	}
	valLens := make([]uint64, n)
	for i := range valLens {
		if valLens[i], err = r.u64(); err != nil {
			return nil, err
		}
	}

	keys := make([]ByteSlice, n)
	for i, l := range keyLens {
		b, err := r.take(l)
		if err != nil {
			return nil, err
		}
		keys[i] = Borrowed(b)
	}
	vals := make([]ByteSlice, n)
	for i, l := range valLens {
		b, err := r.take(l)
		if err != nil {
			return nil, err
		}
		vals[i] = Borrowed(b)
	}

	return &LeafNode{keys: keys, vals: vals}, nil
}
