// Package betree implements a write-optimized, on-disk ordered key-value
// index organized as a Bε-tree (buffered-messages tree).
//
// Point writes are buffered as messages inside internal-node buffers and
// flushed toward leaves in large same-child runs, amortizing I/O over many
// keys. The target workload is sustained high-throughput blind writes
// (Assign of byte-string values keyed by byte strings) with range scans
// over leaves.
//
// # On-disk format
//
// Every node is a small header (id, epoch) plus a tagged body (leaf or
// internal), all little-endian. Leaves hold sorted parallel key/value
// arrays. Internal nodes hold sorted pivots, a child id per pivot gap, and
// an unsorted pending-message buffer. See leaf.go and internal.go for the
// exact byte layouts.
//
// # Transactions
//
// Writes happen inside a single open Transaction, which carries the write
// epoch and a deferred-delete set. Nodes touched for the first time in a
// new epoch are copied to a fresh id (copy-on-write); their old id is
// scheduled for deletion when the transaction ends. Only one transaction
// may be open at a time; betree assumes a single writer. Readers (Get,
// Scan) may run concurrently with each other but not with a writer.
package betree
