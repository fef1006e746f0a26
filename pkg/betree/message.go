package betree

// Operation identifies the kind of mutation a Message carries. It is
// encoded as a u32 on disk so future kinds (Delete, Upsert-with-merge)
// can be added without breaking the wire format.
type Operation uint32

const (
	// OpAssign replaces the target value with the message's data.
	OpAssign Operation = 1
)

func (op Operation) String() string {
	switch op {
	case OpAssign:
		return "assign"
	default:
		return "unknown"
	}
}

// Message is the view form of a mutation: key and data are usually
// Borrowed views into a caller-supplied or flushed buffer. Messages flow
// from Tree.Upsert down to whichever leaf owns the key.
type Message struct {
	Op   Operation
	Key  ByteSlice
	Data ByteSlice
}

// Apply applies the message to a value slot in place. For OpAssign: if
// target is currently Owned, its content is replaced (reusing the
// backing array when possible). If target is Borrowed and its length
// equals the new data's length, the copy happens in place, preserving
// sharing into the node's backing blob; otherwise target becomes an
// Owned copy of the message's data. This keeps same-size overwrites
// allocation-free.
func (m Message) Apply(target *ByteSlice) {
	switch m.Op {
	case OpAssign:
		applyAssign(target, m.Data.Bytes())
	}
}

func applyAssign(target *ByteSlice, data []byte) {
	if target.isOwned {
		target.owned = append(target.owned[:0], data...)
		return
	}
	if len(target.borrowed) == len(data) {
		copy(target.borrowed, data)
		return
	}
	*target = OwnedCopy(data)
}

// Create yields the (key, value) pair to insert when a message targets a
// key that is not yet present in a leaf.
func (m Message) Create() (ByteSlice, ByteSlice) {
	switch m.Op {
	default: // OpAssign
		return m.Key, m.Data
	}
}

// IntoOwned converts a view-form Message into an OwnedMessage, copying
// any Borrowed fields. Used when a message must outlive the buffer it
// was read from, e.g. when detaching a flush run.
func (m Message) IntoOwned() OwnedMessage {
	return OwnedMessage{
		Op:   m.Op,
		Key:  m.Key.ToOwned().Bytes(),
		Data: m.Data.ToOwned().Bytes(),
	}
}

// OwnedMessage is the ownership-transfer form of a Message: key and data
// are owned byte vectors, suitable for moving across node boundaries
// during a flush without keeping the source buffer pinned.
type OwnedMessage struct {
	Op   Operation
	Key  []byte
	Data []byte
}

// IntoMessage converts an OwnedMessage back into the view form, wrapping
// its byte vectors as Owned ByteSlices.
func (m OwnedMessage) IntoMessage() Message {
	return Message{Op: m.Op, Key: Owned(m.Key), Data: Owned(m.Data)}
}

// Create yields the (key, value) pair to insert for a brand-new key.
func (m OwnedMessage) Create() ([]byte, []byte) {
	switch m.Op {
	default: // OpAssign
		return m.Key, m.Data
	}
}

// Apply applies the owned message to a value slot in place, following
// the same same-size-in-place rule as Message.Apply.
func (m OwnedMessage) Apply(target *ByteSlice) {
	switch m.Op {
	case OpAssign:
		applyAssign(target, m.Data)
	}
}
