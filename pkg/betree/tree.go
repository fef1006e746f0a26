package betree

import (
	"bytes"
	"sort"
)

// Tree holds the mutable root pointer and id/epoch allocators for a
// Bε-tree. A Tree does not itself hold node contents; every read and
// write goes through a caller-supplied Store, which keeps Tree cheap to
// pass around and lets callers checkpoint or relocate the Store
// independently of the tree's in-memory bookkeeping.
type Tree struct {
	epoch     uint64
	nextID    uint64
	maxPivots int
	maxBuffer int
	rootID    uint64
	txn       *Transaction

	// Metrics, if set, receives flush/split observations. Nil by default.
	Metrics *Metrics
}

// New creates a fresh, empty tree backed by store: a single empty leaf
// node is allocated and written as the root. maxPivots bounds how many
// separator keys an internal node may hold before it splits; maxBuffer
// bounds how many messages an internal node buffers before flushing. A
// leaf splits once it holds maxPivots+maxBuffer keys.
func New(maxPivots, maxBuffer int, store Store) (*Tree, error) {
	if maxPivots < 1 {
		return nil, newErr(ErrConfig, "maxPivots must be >= 1, got %d", maxPivots)
	}
	if maxBuffer < 1 {
		return nil, newErr(ErrConfig, "maxBuffer must be >= 1, got %d", maxBuffer)
	}

	t := &Tree{maxPivots: maxPivots, maxBuffer: maxBuffer}
	rootID := t.allocID()
	node := &Node{Header: NodeHeader{ID: rootID, Epoch: t.epoch}, Body: LeafBody(NewLeaf())}
	if err := store.Write(rootID, node.Serialize()); err != nil {
		return nil, err
	}
	t.rootID = rootID
	return t, nil
}

// Meta is the small piece of Tree state that must be persisted
// alongside a Store for a tree to be reopened across process restarts:
// the Store itself only holds node content, keyed by id, with no
// notion of which id is currently the root.
type Meta struct {
	Epoch     uint64 `yaml:"epoch"`
	NextID    uint64 `yaml:"next_id"`
	RootID    uint64 `yaml:"root_id"`
	MaxPivots int    `yaml:"max_pivots"`
	MaxBuffer int    `yaml:"max_buffer"`
}

// Meta snapshots the tree's current bookkeeping for persistence. It
// must only be called between transactions.
func (t *Tree) Meta() Meta {
	return Meta{
		Epoch:     t.epoch,
		NextID:    t.nextID,
		RootID:    t.rootID,
		MaxPivots: t.maxPivots,
		MaxBuffer: t.maxBuffer,
	}
}

// Open reconstructs a Tree from a previously saved Meta, without
// touching store. The caller is responsible for ensuring store
// actually holds the nodes that meta's root chain references.
func Open(meta Meta) *Tree {
	return &Tree{
		epoch:     meta.Epoch,
		nextID:    meta.NextID,
		rootID:    meta.RootID,
		maxPivots: meta.MaxPivots,
		maxBuffer: meta.MaxBuffer,
	}
}

func (t *Tree) allocID() uint64 {
	id := t.nextID
	t.nextID++
	return id
}

func (t *Tree) leafCapacity() int { return t.maxPivots + t.maxBuffer }

// cowID returns the id a node should be written under given its stored
// epoch: reused if the node was already touched in the current
// transaction's epoch, otherwise a fresh id, with the old id recorded
// in txn for deletion once the transaction ends.
func (t *Tree) cowID(txn *Transaction, oldID uint64, oldEpoch uint64) uint64 {
	if oldEpoch == txn.Epoch {
		return oldID
	}
	txn.markDeleted(oldID)
	return t.allocID()
}

// Stats reports a point-in-time summary of the tree, useful for a CLI
// status command or a debug endpoint. KeyCount is computed by a full
// scan and so is O(n) in the tree's size.
type Stats struct {
	KeyCount  int
	Epoch     uint64
	NextID    uint64
	MaxPivots int
	MaxBuffer int
}

// Stats computes a Stats snapshot of the tree.
func (t *Tree) Stats(store Store) (Stats, error) {
	count := 0
	err := t.Scan(store, func(key, value []byte) error {
		count++
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		KeyCount:  count,
		Epoch:     t.epoch,
		NextID:    t.nextID,
		MaxPivots: t.maxPivots,
		MaxBuffer: t.maxBuffer,
	}, nil
}

// BeginTxn opens a new write transaction on the tree. Only one
// transaction may be open at a time.
func (t *Tree) BeginTxn() (*Transaction, error) {
	if t.txn != nil {
		return nil, ErrTxnAlreadyOpen
	}
	t.epoch++
	t.txn = newTransaction(t.epoch)
	return t.txn, nil
}

// EndTxn closes txn, flushing its deferred-delete set to store. It
// returns the first deletion error encountered, if any, but attempts
// every deletion regardless so a single bad id doesn't leak the rest.
func (t *Tree) EndTxn(store Store, txn *Transaction) error {
	if t.txn == nil {
		return ErrTxnClosed
	}
	if t.txn != txn {
		return ErrTxnMismatch
	}
	var firstErr error
	for _, id := range txn.Delete {
		if err := store.ScheduleDelete(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	t.txn = nil
	return firstErr
}

func (t *Tree) checkTxn(txn *Transaction) error {
	if t.txn == nil {
		return ErrTxnClosed
	}
	if t.txn != txn {
		return ErrTxnMismatch
	}
	return nil
}

// Upsert writes a single key/value assignment within txn.
func (t *Tree) Upsert(store Store, txn *Transaction, key, value []byte) error {
	return t.UpsertBatch(store, txn, []OwnedMessage{{Op: OpAssign, Key: key, Data: value}})
}

// UpsertBatch applies msgs to the tree within txn, growing the root if
// the recursive apply reports the root itself split.
func (t *Tree) UpsertBatch(store Store, txn *Transaction, msgs []OwnedMessage) error {
	if err := t.checkTxn(txn); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	newRootID, sibling, level, err := t.applyMsgs(store, txn, t.rootID, msgs)
	if err != nil {
		return err
	}
	if sibling == nil {
		t.rootID = newRootID
		return nil
	}

	grownID := t.allocID()
	grown := NewInternal(level+1, []ByteSlice{Borrowed(sibling.Key).ToOwned()}, []uint64{newRootID, sibling.ID})
	node := &Node{Header: NodeHeader{ID: grownID, Epoch: txn.Epoch}, Body: InternalBody(grown)}
	if err := store.Write(grownID, node.Serialize()); err != nil {
		return err
	}
	t.rootID = grownID
	return nil
}

// applyMsgs applies msgs to the subtree rooted at id, copy-on-writing
// the node if it was last touched in an earlier epoch. It returns the
// id the node was (re)written under, the node's level (0 for a leaf),
// and a NewSibling if applying msgs (and any resulting flush) caused
// this node itself to overflow and split.
func (t *Tree) applyMsgs(store Store, txn *Transaction, id uint64, msgs []OwnedMessage) (newID uint64, sibling *NewSibling, level int, err error) {
	buf, err := store.Read(id)
	if err != nil {
		return 0, nil, 0, err
	}
	node, err := DeserializeNode(buf)
	if err != nil {
		return 0, nil, 0, err
	}

	newID = t.cowID(txn, id, node.Header.Epoch)

	if node.Body.IsLeaf() {
		leaf := node.Body.Leaf
		leaf.UpsertBatch(msgs)

		if leaf.Len() >= t.leafCapacity() {
			sepKey, sibLeaf := leaf.split()
			sibID := t.allocID()
			sibNode := &Node{Header: NodeHeader{ID: sibID, Epoch: txn.Epoch}, Body: LeafBody(sibLeaf)}
			if err := store.Write(sibID, sibNode.Serialize()); err != nil {
				return 0, nil, 0, err
			}
			sibling = &NewSibling{ID: sibID, Key: sepKey, Body: LeafBody(sibLeaf)}
			t.Metrics.observeSplit()
		}

		node.Header = NodeHeader{ID: newID, Epoch: txn.Epoch}
		if err := store.Write(newID, node.Serialize()); err != nil {
			return 0, nil, 0, err
		}
		return newID, sibling, 0, nil
	}

	internal := node.Body.Internal
	internal.BufferBatch(msgs)

	for internal.NeedsFlush(t.maxBuffer) {
		childIdx, run := internal.SelectFlushRun()
		if childIdx < 0 {
			break
		}
		t.Metrics.observeFlush(len(run))
		oldChildID := internal.Children()[childIdx]
		newChildID, childSibling, _, ferr := t.applyMsgs(store, txn, oldChildID, run)
		if ferr != nil {
			return 0, nil, 0, ferr
		}
		internal.UpdateChild(childIdx, newChildID)
		if childSibling != nil {
			internal.InsertChild(childSibling.Key, childSibling.ID, childIdx)
		}
	}
	t.Metrics.setBufferedMsgs(internal.BufferLen())

	if internal.NeedsSplit(t.maxPivots) {
		sepKey, sibInternal := internal.split()
		sibID := t.allocID()
		sibNode := &Node{Header: NodeHeader{ID: sibID, Epoch: txn.Epoch}, Body: InternalBody(sibInternal)}
		if err := store.Write(sibID, sibNode.Serialize()); err != nil {
			return 0, nil, 0, err
		}
		sibling = &NewSibling{ID: sibID, Key: sepKey, Body: InternalBody(sibInternal)}
		t.Metrics.observeSplit()
	}

	node.Header = NodeHeader{ID: newID, Epoch: txn.Epoch}
	if err := store.Write(newID, node.Serialize()); err != nil {
		return 0, nil, 0, err
	}
	return newID, sibling, internal.Level(), nil
}

// Get looks up key, checking each internal node's pending buffer on the
// way down before descending further: a buffered message always
// post-dates anything already flushed below it, since messages only
// ever move from a node's buffer toward its children, never back up.
func (t *Tree) Get(store Store, key []byte) (ByteSlice, bool, error) {
	id := t.rootID
	for {
		buf, err := store.Read(id)
		if err != nil {
			return ByteSlice{}, false, err
		}
		node, err := DeserializeNode(buf)
		if err != nil {
			return ByteSlice{}, false, err
		}
		if node.Body.IsLeaf() {
			val, found := node.Body.Leaf.Get(key)
			return val, found, nil
		}

		internal := node.Body.Internal
		if val, found := bufferedValue(internal, key); found {
			return val, true, nil
		}
		id = internal.ChildFor(key)
	}
}

// bufferedValue returns the most recently buffered value for key in n,
// if any. Later entries in n.buffer were appended more recently, so the
// last match wins.
func bufferedValue(n *InternalNode, key []byte) (ByteSlice, bool) {
	var found bool
	var data []byte
	for _, m := range n.buffer {
		if bytes.Equal(m.Key, key) {
			data, found = m.Data, true
		}
	}
	if !found {
		return ByteSlice{}, false
	}
	return Owned(data), true
}

type kv struct {
	key, val []byte
}

// Scan visits every key in the tree in ascending order, merging each
// internal node's buffered overrides with its children's contents as it
// descends. visit errors abort the scan and are returned to the caller.
func (t *Tree) Scan(store Store, visit func(key, value []byte) error) error {
	pairs, err := t.collect(store, t.rootID)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := visit(p.key, p.val); err != nil {
			return err
		}
	}
	return nil
}

// collect materializes the fully merged, sorted contents of the subtree
// rooted at id. It trades memory for simplicity: a production-scale
// scan would stream the merge instead, but the visitor-callback contract
// above is unaffected by that choice.
func (t *Tree) collect(store Store, id uint64) ([]kv, error) {
	buf, err := store.Read(id)
	if err != nil {
		return nil, err
	}
	node, err := DeserializeNode(buf)
	if err != nil {
		return nil, err
	}

	if node.Body.IsLeaf() {
		leaf := node.Body.Leaf
		out := make([]kv, len(leaf.keys))
		for i := range leaf.keys {
			out[i] = kv{leaf.keys[i].Bytes(), leaf.vals[i].Bytes()}
		}
		return out, nil
	}

	internal := node.Body.Internal
	msgs := append([]OwnedMessage(nil), internal.buffer...)
	sort.SliceStable(msgs, func(i, j int) bool {
		return bytes.Compare(msgs[i].Key, msgs[j].Key) < 0
	})
	deduped := dedupeLast(msgs)

	var out []kv
	mi := 0
	for ci, childID := range internal.children {
		childKV, err := t.collect(store, childID)
		if err != nil {
			return nil, err
		}
		var overrides []OwnedMessage
		for mi < len(deduped) && internal.childIndexForKey(Borrowed(deduped[mi].Key)) == ci {
			overrides = append(overrides, deduped[mi])
			mi++
		}
		out = append(out, mergeKV(childKV, overrides)...)
	}
	return out, nil
}

// dedupeLast collapses runs of equal keys in a key-sorted, stably
// ordered slice, keeping the last (most recently appended, hence most
// recent) message for each key.
func dedupeLast(msgs []OwnedMessage) []OwnedMessage {
	out := make([]OwnedMessage, 0, len(msgs))
	for i := 0; i < len(msgs); {
		j := i
		for j+1 < len(msgs) && bytes.Equal(msgs[j+1].Key, msgs[i].Key) {
			j++
		}
		out = append(out, msgs[j])
		i = j + 1
	}
	return out
}

// mergeKV merges base (sorted leaf/subtree contents) with overrides
// (sorted, deduped buffered messages destined for that subtree), with
// overrides winning on key collision.
func mergeKV(base []kv, overrides []OwnedMessage) []kv {
	out := make([]kv, 0, len(base)+len(overrides))
	i, j := 0, 0
	for i < len(base) && j < len(overrides) {
		c := bytes.Compare(base[i].key, overrides[j].Key)
		switch {
		case c < 0:
			out = append(out, base[i])
			i++
		case c > 0:
			out = append(out, kv{overrides[j].Key, overrides[j].Data})
			j++
		default:
			out = append(out, kv{overrides[j].Key, overrides[j].Data})
			i++
			j++
		}
	}
	out = append(out, base[i:]...)
	for ; j < len(overrides); j++ {
		out = append(out, kv{overrides[j].Key, overrides[j].Data})
	}
	return out
}
