package betree

import "github.com/segmentio/ksuid"

// Transaction tracks the single open write epoch on a Tree, plus the set
// of node ids that copy-on-write reassignment has orphaned during that
// epoch. Those ids are only safe to delete once every node reachable
// from the new root has been durably written, which is why deletion is
// deferred to EndTxn rather than happening as each id is orphaned.
//
// Token is a ksuid correlation id, useful for tying a transaction to log
// lines or traces emitted while it was open; it plays no role in the
// tree's own consistency protocol.
type Transaction struct {
	Epoch  uint64
	Delete []uint64
	Token  ksuid.KSUID
}

func newTransaction(epoch uint64) *Transaction {
	return &Transaction{Epoch: epoch, Token: ksuid.New()}
}

// markDeleted records id as orphaned by this transaction's writes.
func (t *Transaction) markDeleted(id uint64) {
	t.Delete = append(t.Delete, id)
}
