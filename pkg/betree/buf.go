package betree

import "bytes"

// ByteSlice is a uniform carrier for keys, values, and message payloads.
// It is either a Borrowed view into a larger backing blob, or an Owned
// byte vector. While any Borrowed view is alive, its backing blob must
// stay pinned. The only write through a Borrowed view is a same-length
// Assign (see Message.Apply), which overwrites just that slot's bytes in
// the blob; any other mutation converts the slot to Owned first.
type ByteSlice struct {
	owned    []byte
	borrowed []byte
	isOwned  bool
}

// Borrowed returns a ByteSlice viewing into b without copying it.
func Borrowed(b []byte) ByteSlice {
	return ByteSlice{borrowed: b}
}

// Owned returns a ByteSlice that owns a copy-free reference to b. The
// caller must not mutate b afterward through any other alias; use
// OwnedCopy if that's not guaranteed.
func Owned(b []byte) ByteSlice {
	return ByteSlice{owned: b, isOwned: true}
}

// OwnedCopy returns an Owned ByteSlice backed by a fresh copy of b.
func OwnedCopy(b []byte) ByteSlice {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Owned(cp)
}

// Len returns the byte length of the slice.
func (b ByteSlice) Len() int {
	return len(b.Bytes())
}

// Bytes returns the underlying bytes, regardless of variant.
func (b ByteSlice) Bytes() []byte {
	if b.isOwned {
		return b.owned
	}
	return b.borrowed
}

// ToOwned returns an Owned ByteSlice with the same content, copying only
// if this slice is currently Borrowed.
func (b ByteSlice) ToOwned() ByteSlice {
	if b.isOwned {
		return b
	}
	return OwnedCopy(b.borrowed)
}

// Compare orders two ByteSlices lexicographically on their byte content;
// the variant (Borrowed/Owned) is immaterial.
func (b ByteSlice) Compare(other ByteSlice) int {
	return bytes.Compare(b.Bytes(), other.Bytes())
}

// Equal reports whether two ByteSlices have identical byte content.
func (b ByteSlice) Equal(other ByteSlice) bool {
	return bytes.Equal(b.Bytes(), other.Bytes())
}
