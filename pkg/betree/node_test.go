package betree

import "testing"

func TestNodeRoundtripLeaf(t *testing.T) {
	leaf := NewLeaf()
	leaf.Upsert(Message{Op: OpAssign, Key: Borrowed([]byte("a")), Data: Owned([]byte("1"))})

	n := &Node{Header: NodeHeader{ID: 7, Epoch: 3}, Body: LeafBody(leaf)}
	buf := n.Serialize()

	got, err := DeserializeNode(buf)
	if err != nil {
		t.Fatalf("DeserializeNode() error = %v", err)
	}
	if got.Header.ID != 7 || got.Header.Epoch != 3 {
		t.Fatalf("Header = %+v", got.Header)
	}
	if !got.Body.IsLeaf() {
		t.Fatal("decoded body is not a leaf")
	}
	val, found := got.Body.Leaf.Get([]byte("a"))
	if !found || string(val.Bytes()) != "1" {
		t.Fatalf("Get(a) = %q, %v", val.Bytes(), found)
	}
}

func TestNodeRoundtripInternal(t *testing.T) {
	internal := NewInternal(1, pivotsOf("m"), []uint64{10, 20})
	n := &Node{Header: NodeHeader{ID: 2, Epoch: 1}, Body: InternalBody(internal)}
	buf := n.Serialize()

	got, err := DeserializeNode(buf)
	if err != nil {
		t.Fatalf("DeserializeNode() error = %v", err)
	}
	if got.Body.IsLeaf() {
		t.Fatal("decoded body is a leaf, want internal")
	}
	if got.Body.Internal.ChildFor([]byte("z")) != 20 {
		t.Fatal("decoded internal node lost its pivot/children mapping")
	}
}

func TestNodeDeserializeUnknownTag(t *testing.T) {
	buf := make([]byte, 0)
	buf = writeU64(buf, 1)
	buf = writeU64(buf, 1)
	buf = append(buf, 9)

	if _, err := DeserializeNode(buf); err == nil {
		t.Fatal("DeserializeNode() accepted an unknown body tag")
	}
}

func TestNodeUpsertDispatchesToLeaf(t *testing.T) {
	n := &Node{Header: NodeHeader{ID: 1}, Body: LeafBody(NewLeaf())}
	n.Upsert(Message{Op: OpAssign, Key: Borrowed([]byte("k")), Data: Owned([]byte("v"))})

	if n.Body.Leaf.Len() != 1 {
		t.Fatalf("leaf Len() = %d, want 1", n.Body.Leaf.Len())
	}
}

func TestNodeUpsertDispatchesToInternalBuffer(t *testing.T) {
	internal := NewInternal(1, pivotsOf("m"), []uint64{10, 20})
	n := &Node{Header: NodeHeader{ID: 1}, Body: InternalBody(internal)}
	n.Upsert(Message{Op: OpAssign, Key: Borrowed([]byte("k")), Data: Owned([]byte("v"))})

	if internal.BufferLen() != 1 {
		t.Fatalf("BufferLen() = %d, want 1", internal.BufferLen())
	}
}
