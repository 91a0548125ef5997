package mdbxx

import (
	"runtime"
	"sync"

	"github.com/erigontech/mdbx-go/mdbx"
)

type cursorState uint8

const (
	curOpen     cursorState = iota
	curReleased             // owning txn ended; handle kept for Renew
	curClosed               // handle freed, terminal
)

// Cursor is a stateful iterator over the ordered keys of one key
// space, bound to exactly one transaction at a time. Its position is
// undefined until the first successful Get or Find. When the owning
// transaction ends with the cursor still open, the cursor becomes
// released: it can no longer navigate, but its engine handle is kept
// so Renew can rebind it to a fresh read-only transaction without
// reallocation. Close is idempotent and terminal.
type Cursor struct {
	mu    sync.Mutex
	txn   *Txn
	dbi   DBI
	raw   *mdbx.Cursor
	state cursorState
}

// OpenCursor allocates a cursor bound to (txn, dbi), unpositioned
// until first navigated.
func (txn *Txn) OpenCursor(dbi DBI) (*Cursor, error) {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_cursor_open"); err != nil {
		return nil, err
	}
	raw, err := txn.raw.OpenCursor(mdbx.DBI(dbi))
	if err != nil {
		return nil, operr("mdbx_cursor_open", err)
	}
	c := &Cursor{txn: txn, dbi: dbi, raw: raw}
	txn.adoptCursor(c)
	// A leaked cursor handle would otherwise outlive everything; free
	// it when the wrapper is collected.
	runtime.SetFinalizer(c, (*Cursor).Close)
	return c, nil
}

// Txn returns the transaction the cursor is currently bound to, nil
// once released or closed.
func (c *Cursor) Txn() *Txn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txn
}

// DBI returns the key space the cursor iterates.
func (c *Cursor) DBI() DBI {
	return c.dbi
}

// usable must be called with c.mu held.
func (c *Cursor) usable(op string) error {
	if c.state != curOpen {
		return logicErr(op, ErrBadTxn)
	}
	return nil
}

// Get positions the cursor according to op and returns the record it
// lands on. setKey and setVal seed the operations that take them (Set,
// SetKey, SetRange, GetBoth, GetBothRange). A position with no
// matching record is reported as found=false, never as an error. The
// returned bytes view the memory map and are valid only within the
// owning transaction.
func (c *Cursor) Get(setKey, setVal []byte, op CursorOp) (key, val []byte, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable("mdbx_cursor_get"); err != nil {
		return nil, nil, false, err
	}
	k, v, err := c.raw.Get(setKey, setVal, uint(op))
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, nil, false, nil
		}
		return nil, nil, false, operr("mdbx_cursor_get", err)
	}
	return k, v, true, nil
}

// Find positions the cursor exactly on key, returning the stored value
// and whether the key exists.
func (c *Cursor) Find(key []byte) (val []byte, found bool, err error) {
	_, v, found, err := c.Get(key, nil, SetKey)
	return v, found, err
}

// Put stores a key/value pair at or around the cursor's position. The
// owning transaction must be a writer.
func (c *Cursor) Put(key, val []byte, flags uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable("mdbx_cursor_put"); err != nil {
		return err
	}
	return operr("mdbx_cursor_put", c.raw.Put(key, val, flags))
}

// Del deletes the record at the cursor's position. With AllDups it
// deletes every duplicate of the current key.
func (c *Cursor) Del(flags uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable("mdbx_cursor_del"); err != nil {
		return err
	}
	return operr("mdbx_cursor_del", c.raw.Del(flags))
}

// Count returns how many values share the cursor's current key in a
// DupSort key space.
func (c *Cursor) Count() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable("mdbx_cursor_count"); err != nil {
		return 0, err
	}
	n, err := c.raw.Count()
	if err != nil {
		return 0, operr("mdbx_cursor_count", err)
	}
	return n, nil
}

// Renew rebinds a released cursor to a fresh read-only transaction
// over the same key space, avoiding reallocation. It is the sole way
// back from the released state; the renewed cursor is unpositioned.
func (c *Cursor) Renew(txn *Txn) error {
	txn.mu.Lock()
	if err := txn.active("mdbx_cursor_renew"); err != nil {
		txn.mu.Unlock()
		return err
	}
	if !txn.readonly {
		txn.mu.Unlock()
		return logicErr("mdbx_cursor_renew", ErrIncompatible)
	}
	c.mu.Lock()
	if c.state != curReleased {
		c.mu.Unlock()
		txn.mu.Unlock()
		return logicErr("mdbx_cursor_renew", ErrBadTxn)
	}
	if err := c.raw.Renew(txn.raw); err != nil {
		c.mu.Unlock()
		txn.mu.Unlock()
		return operr("mdbx_cursor_renew", err)
	}
	c.txn = txn
	c.state = curOpen
	c.mu.Unlock()
	txn.adoptCursor(c)
	txn.mu.Unlock()
	return nil
}

// Close releases the cursor handle. It is idempotent and safe in any
// state.
func (c *Cursor) Close() {
	c.mu.Lock()
	if c.state == curClosed {
		c.mu.Unlock()
		return
	}
	var owner *Txn
	if c.state == curOpen {
		owner = c.txn
	}
	c.state = curClosed
	c.txn = nil
	raw := c.raw
	c.mu.Unlock()

	if owner != nil {
		owner.removeCursor(c)
	}
	raw.Close()
	runtime.SetFinalizer(c, nil)
}

// release parks the cursor when its transaction ends. Called with the
// owning transaction's lock held.
func (c *Cursor) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == curOpen {
		c.state = curReleased
		c.txn = nil
	}
}
