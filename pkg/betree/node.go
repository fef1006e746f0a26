package betree

const (
	tagLeaf     byte = 0
	tagInternal byte = 1
)

// NodeHeader identifies a node's on-disk slot and write generation. A
// node's id is its key in the Store; its epoch is the transaction epoch
// that last wrote it, used to decide whether a touch must copy-on-write.
type NodeHeader struct {
	ID    uint64
	Epoch uint64
}

// Body holds exactly one of a leaf or an internal node. Using a struct
// with two pointer fields instead of an interface keeps Serialize's tag
// dispatch a simple nil check, matching the Rust original's enum body.
type Body struct {
	Leaf     *LeafNode
	Internal *InternalNode
}

// LeafBody wraps a leaf node as a Body.
func LeafBody(l *LeafNode) Body { return Body{Leaf: l} }

// InternalBody wraps an internal node as a Body.
func InternalBody(n *InternalNode) Body { return Body{Internal: n} }

// IsLeaf reports whether the body holds a leaf.
func (b Body) IsLeaf() bool { return b.Leaf != nil }

// Node is the tagged-union envelope persisted at a single Store id: a
// header plus one of a leaf or internal body.
type Node struct {
	Header NodeHeader
	Body   Body
}

// NewSibling describes a node produced by a split that still needs to be
// linked into its parent: the id it was written under, the separator key
// under which it should be filed, and the node itself.
type NewSibling struct {
	ID   uint64
	Key  []byte
	Body Body
}

// Serialize encodes the full node: header (id, epoch), a one-byte body
// tag, then the body's own encoding.
func (n *Node) Serialize() []byte {
	out := make([]byte, 0, 17)
	out = writeU64(out, n.Header.ID)
	out = writeU64(out, n.Header.Epoch)
	if n.Body.IsLeaf() {
		out = append(out, tagLeaf)
		out = append(out, n.Body.Leaf.Serialize()...)
	} else {
		out = append(out, tagInternal)
		out = append(out, n.Body.Internal.Serialize()...)
	}
	return out
}

// DeserializeNode decodes a buffer produced by Serialize. The leaf or
// internal body is decoded zero-copy against buf. Any decode failure is
// returned as a *TreeError of kind ErrCorruption.
func DeserializeNode(buf []byte) (*Node, error) {
	r := newFrameReader(buf)
	id, err := r.u64()
	if err != nil {
		return nil, newErr(ErrCorruption, "decode node header: %v", err)
	}
	epoch, err := r.u64()
	if err != nil {
		return nil, newErr(ErrCorruption, "decode node header: %v", err)
	}
	tagBuf, err := r.take(1)
	if err != nil {
		return nil, newErr(ErrCorruption, "decode node header: %v", err)
	}

	rest := buf[r.off:]
	var body Body
	switch tagBuf[0] {
	case tagLeaf:
		leaf, err := DeserializeLeaf(rest)
		if err != nil {
			return nil, newErr(ErrCorruption, "decode leaf node %d: %v", id, err)
		}
		body = LeafBody(leaf)
	case tagInternal:
		internal, err := DeserializeInternal(rest)
		if err != nil {
			return nil, newErr(ErrCorruption, "decode internal node %d: %v", id, err)
		}
		body = InternalBody(internal)
	default:
		return nil, newErr(ErrCorruption, "unknown node tag %d", tagBuf[0])
	}

	return &Node{Header: NodeHeader{ID: id, Epoch: epoch}, Body: body}, nil
}

// Upsert applies msg directly to a leaf body, or buffers it in an
// internal body. Internal-node flush is driven separately by the tree,
// since it needs access to the Store and id allocator.
func (n *Node) Upsert(msg Message) {
	if n.Body.IsLeaf() {
		n.Body.Leaf.Upsert(msg)
		return
	}
	n.Body.Internal.Buffer(msg.IntoOwned())
}
