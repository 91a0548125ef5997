package mdbxx

import (
	"runtime"
	"sync"

	"github.com/erigontech/mdbx-go/mdbx"
)

type txnState uint8

const (
	txnActive txnState = iota
	txnReset           // read-only, snapshot released, handle kept
	txnDone            // committed or aborted, terminal
)

// Txn is a unit of atomic, isolated access to the store, read-only or
// read-write, optionally nested under a parent. A Txn must stay on the
// goroutine that began it. Once committed or aborted it is terminal;
// any further operation fails with a logic error rather than reaching
// the released engine handle.
type Txn struct {
	mu       sync.Mutex
	env      *Env
	raw      *mdbx.Txn
	parent   *Txn
	readonly bool
	locked   bool // holds an OS-thread lock taken at begin
	state    txnState
	cursors  []*Cursor
}

// Env returns the environment this transaction runs against.
func (txn *Txn) Env() *Env {
	return txn.env
}

// IsReadOnly reports whether the transaction was begun with
// TxnReadOnly.
func (txn *Txn) IsReadOnly() bool {
	return txn.readonly
}

// ID returns the engine's transaction identifier, 0 once the
// transaction has ended.
func (txn *Txn) ID() uint64 {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if txn.state == txnDone {
		return 0
	}
	return txn.raw.ID()
}

// active must be called with txn.mu held.
func (txn *Txn) active(op string) error {
	if txn.state != txnActive {
		return logicErr(op, ErrBadTxn)
	}
	return nil
}

// finish must be called with txn.mu held. It marks the transaction
// terminal and releases the OS-thread lock exactly once.
func (txn *Txn) finish() {
	txn.state = txnDone
	if txn.locked {
		runtime.UnlockOSThread()
		txn.locked = false
	}
	runtime.SetFinalizer(txn, nil)
}

// Commit makes this transaction's effects durable, or folds them into
// the parent if nested. The handle is terminal afterwards even when
// the commit fails; a failed commit is not resumable.
func (txn *Txn) Commit() error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_txn_commit"); err != nil {
		return err
	}
	txn.releaseCursors()
	_, err := txn.raw.Commit()
	txn.finish()
	return operr("mdbx_txn_commit", err)
}

// Abort discards all effects since begin. It is best-effort and safe
// on cleanup paths: aborting an already-ended transaction is a no-op,
// and no failure is observable beyond the handle becoming terminal.
func (txn *Txn) Abort() {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if txn.state == txnDone {
		return
	}
	txn.releaseCursors()
	txn.raw.Abort()
	txn.finish()
}

// Reset suspends a read-only transaction: the snapshot and its reader
// slot are released while the handle stays allocated for cheap reuse
// via Renew.
func (txn *Txn) Reset() error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_txn_reset"); err != nil {
		return err
	}
	if !txn.readonly {
		return logicErr("mdbx_txn_reset", ErrIncompatible)
	}
	txn.raw.Reset()
	txn.state = txnReset
	return nil
}

// Renew reacquires a fresh snapshot on a reset handle. The renewed
// transaction behaves like a fresh read-only begin.
func (txn *Txn) Renew() error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if txn.state != txnReset {
		return logicErr("mdbx_txn_renew", ErrBadTxn)
	}
	if err := txn.raw.Renew(); err != nil {
		return operr("mdbx_txn_renew", err)
	}
	txn.state = txnActive
	return nil
}

// Sub runs fn inside a child transaction nested under txn. The child
// commits into txn when fn returns nil and is aborted otherwise;
// aborting the child leaves txn untouched.
func (txn *Txn) Sub(fn TxnOp) error {
	child, err := txn.env.BeginTxn(txn, TxnReadWrite)
	if err != nil {
		return err
	}
	if err := fn(child); err != nil {
		child.Abort()
		return err
	}
	return child.Commit()
}

// adoptCursor registers a cursor opened against this transaction.
func (txn *Txn) adoptCursor(c *Cursor) {
	txn.cursors = append(txn.cursors, c)
}

// removeCursor forgets a cursor that was closed while the transaction
// is still active.
func (txn *Txn) removeCursor(c *Cursor) {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	for i, cur := range txn.cursors {
		if cur == c {
			txn.cursors[i] = txn.cursors[len(txn.cursors)-1]
			txn.cursors = txn.cursors[:len(txn.cursors)-1]
			return
		}
	}
}

// releaseCursors must be called with txn.mu held. Cursors still open
// when the transaction ends keep their engine handle for Renew but can
// no longer navigate.
func (txn *Txn) releaseCursors() {
	for _, c := range txn.cursors {
		c.release()
	}
	txn.cursors = nil
}
