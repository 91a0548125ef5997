package mdbxx

import (
	"os"
	"runtime"
	"sync"

	"github.com/erigontech/mdbx-go/mdbx"
)

type envState uint8

const (
	envUnopened envState = iota
	envOpen
	envClosed
)

// Env owns a handle to a memory-mapped store. It is created unopened,
// configured, opened against a filesystem path exactly once, and closed
// exactly once. Every operation on a closed Env fails with a logic
// error instead of reaching the released engine handle.
type Env struct {
	mu    sync.Mutex
	raw   *mdbx.Env
	state envState

	path       string
	flags      uint
	maxDBs     uint64
	maxReaders uint64
}

// NewEnv allocates a fresh, unopened environment and applies flags.
// On any failure the partially-constructed engine handle is released
// before returning.
func NewEnv(flags uint) (*Env, error) {
	raw, err := mdbx.NewEnv(mdbx.Label("mdbxx"))
	if err != nil {
		return nil, operr("mdbx_env_create", err)
	}
	if flags != 0 {
		if err := raw.SetFlags(flags); err != nil {
			raw.Close()
			return nil, operr("mdbx_env_set_flags", err)
		}
	}
	return &Env{raw: raw, flags: flags}, nil
}

// guard returns a logic error unless the environment is in want.
func (e *Env) guard(op string, want envState) error {
	if e.state != want {
		return logicErr(op, ErrInvalid)
	}
	return nil
}

// Open binds the environment to a backing store at path. It must be
// called at most once, before any transaction is begun.
func (e *Env) Open(path string, flags uint, mode os.FileMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard("mdbx_env_open", envUnopened); err != nil {
		return err
	}
	if err := e.raw.Open(path, flags, mode); err != nil {
		return operr("mdbx_env_open", err)
	}
	e.state = envOpen
	e.path = path
	e.flags |= flags
	return nil
}

// SetMapSize sets the upper size limit of the memory map. Call before
// Open; growing the map after open follows engine semantics that this
// layer does not special-case.
func (e *Env) SetMapSize(size int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == envClosed {
		return logicErr("mdbx_env_set_geometry", ErrInvalid)
	}
	return operr("mdbx_env_set_geometry",
		e.raw.SetGeometry(-1, -1, int(size), -1, -1, -1))
}

// SetGeometry exposes the engine's full geometry control. Use -1 to
// keep the engine default for any parameter.
func (e *Env) SetGeometry(sizeLower, sizeNow, sizeUpper, growthStep, shrinkThreshold, pageSize int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == envClosed {
		return logicErr("mdbx_env_set_geometry", ErrInvalid)
	}
	return operr("mdbx_env_set_geometry",
		e.raw.SetGeometry(sizeLower, sizeNow, sizeUpper, growthStep, shrinkThreshold, pageSize))
}

// SetMaxReaders sets the maximum number of concurrent reader slots.
// Call before Open.
func (e *Env) SetMaxReaders(count uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == envClosed {
		return logicErr("mdbx_env_set_maxreaders", ErrInvalid)
	}
	if err := e.raw.SetOption(mdbx.OptMaxReaders, count); err != nil {
		return operr("mdbx_env_set_maxreaders", err)
	}
	e.maxReaders = count
	return nil
}

// SetMaxDBs sets the maximum number of named databases. Call before
// Open.
func (e *Env) SetMaxDBs(count uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == envClosed {
		return logicErr("mdbx_env_set_maxdbs", ErrInvalid)
	}
	if err := e.raw.SetOption(mdbx.OptMaxDB, count); err != nil {
		return operr("mdbx_env_set_maxdbs", err)
	}
	e.maxDBs = count
	return nil
}

// SetFlags sets (on=true) or clears (on=false) environment flags.
func (e *Env) SetFlags(flags uint, on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == envClosed {
		return logicErr("mdbx_env_set_flags", ErrInvalid)
	}
	var err error
	if on {
		err = e.raw.SetFlags(flags)
	} else {
		err = e.raw.UnsetFlags(flags)
	}
	if err != nil {
		return operr("mdbx_env_set_flags", err)
	}
	if on {
		e.flags |= flags
	} else {
		e.flags &^= flags
	}
	return nil
}

// Sync flushes buffered writes to stable storage, blocking until the
// data is durable when force is true.
func (e *Env) Sync(force bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard("mdbx_env_sync", envOpen); err != nil {
		return err
	}
	return operr("mdbx_env_sync", e.raw.Sync(force, false))
}

// Close releases the memory map and invalidates the handle. It is
// idempotent: the second and later calls are no-ops. Transactions and
// cursors must be resolved before Close.
func (e *Env) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == envClosed {
		return
	}
	e.state = envClosed
	e.raw.Close()
}

// Path returns the filesystem location this environment was opened
// against, or "" before Open.
func (e *Env) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// Flags returns the accumulated environment flags.
func (e *Env) Flags() uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flags
}

// MaxDBs returns the configured named-database limit, 0 if never set.
func (e *Env) MaxDBs() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxDBs
}

// MaxReaders returns the configured reader-slot limit, 0 if never set.
func (e *Env) MaxReaders() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxReaders
}

// BeginTxn starts a transaction. A non-nil parent nests the new
// transaction under it: the child sees the parent's uncommitted writes
// plus its own, and commits fold into the parent. Write transactions
// lock the calling goroutine to its OS thread until they end; all
// operations on a transaction must stay on the goroutine that began it.
func (e *Env) BeginTxn(parent *Txn, flags uint) (*Txn, error) {
	e.mu.Lock()
	if err := e.guard("mdbx_txn_begin", envOpen); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	readonly := flags&TxnReadOnly != 0
	var rawParent *mdbx.Txn
	if parent != nil {
		if readonly {
			return nil, logicErr("mdbx_txn_begin", ErrIncompatible)
		}
		parent.mu.Lock()
		if parent.state != txnActive {
			parent.mu.Unlock()
			return nil, logicErr("mdbx_txn_begin", ErrBadTxn)
		}
		rawParent = parent.raw
		parent.mu.Unlock()
	}

	locked := false
	if !readonly {
		runtime.LockOSThread()
		locked = true
	}
	raw, err := e.raw.BeginTxn(rawParent, flags)
	if err != nil {
		if locked {
			runtime.UnlockOSThread()
		}
		return nil, operr("mdbx_txn_begin", err)
	}

	txn := &Txn{env: e, raw: raw, parent: parent, readonly: readonly, locked: locked}
	if readonly {
		// An unreachable, unresolved read-only transaction pins its
		// snapshot and a reader slot; abort it when it is collected.
		// Write transactions are thread-bound and get no finalizer.
		runtime.SetFinalizer(txn, (*Txn).Abort)
	}
	return txn, nil
}

// TxnOp is the callback type for managed transactions.
type TxnOp func(txn *Txn) error

// View runs fn inside a read-only transaction, aborting it when fn
// returns.
func (e *Env) View(fn TxnOp) error {
	return e.RunTxn(TxnReadOnly, fn)
}

// Update runs fn inside a read-write transaction, committing when fn
// returns nil and aborting otherwise.
func (e *Env) Update(fn TxnOp) error {
	return e.RunTxn(TxnReadWrite, fn)
}

// RunTxn runs fn inside a transaction with the given flags. Read-only
// transactions are aborted after fn returns; read-write transactions
// commit on nil and abort on error.
func (e *Env) RunTxn(flags uint, fn TxnOp) error {
	txn, err := e.BeginTxn(nil, flags)
	if err != nil {
		return err
	}
	if flags&TxnReadOnly != 0 {
		defer txn.Abort()
		return fn(txn)
	}
	if err := fn(txn); err != nil {
		txn.Abort()
		return err
	}
	return txn.Commit()
}
