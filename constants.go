package mdbxx

// Flag values are numerically identical to libmdbx's and are handed to
// the engine unmodified.

// Environment flags.
const (
	// EnvDefaults is the default (durable) mode.
	EnvDefaults uint = 0

	// NoSubdir means the path is a filename, not a directory.
	NoSubdir uint = 0x00004000

	// ReadOnly opens the environment in read-only mode.
	ReadOnly uint = 0x00020000

	// Exclusive opens in exclusive/monopolistic mode.
	Exclusive uint = 0x00400000

	// Accede uses the existing mode if opened by other processes.
	Accede uint = 0x40000000

	// WriteMap maps data with write permission (faster, riskier).
	WriteMap uint = 0x00080000

	// NoStickyThreads allows transactions to move between threads.
	NoStickyThreads uint = 0x00200000

	// NoReadAhead disables OS readahead.
	NoReadAhead uint = 0x00800000

	// NoMemInit skips zeroing malloc'd memory.
	NoMemInit uint = 0x01000000

	// LifoReclaim uses LIFO policy for GC reclamation.
	LifoReclaim uint = 0x04000000

	// NoMetaSync skips the meta page sync after commit.
	NoMetaSync uint = 0x00040000

	// SafeNoSync skips sync but keeps steady commits.
	SafeNoSync uint = 0x00010000

	// UtterlyNoSync skips all syncs (dangerous).
	UtterlyNoSync = SafeNoSync | NoMetaSync
)

// Transaction flags.
const (
	// TxnReadWrite is the default read-write transaction.
	TxnReadWrite uint = 0

	// TxnReadOnly creates a read-only transaction.
	TxnReadOnly uint = 0x20000

	// TxnTry attempts a non-blocking write transaction.
	TxnTry uint = 0x10000000

	// TxnNoMetaSync skips meta sync for this transaction.
	TxnNoMetaSync uint = 0x00040000

	// TxnNoSync skips sync for this transaction.
	TxnNoSync uint = 0x00010000
)

// Database flags.
const (
	// DBDefaults uses default comparison and features.
	DBDefaults uint = 0

	// ReverseKey uses reverse string comparison for keys.
	ReverseKey uint = 0x02

	// DupSort allows multiple values per key (sorted).
	DupSort uint = 0x04

	// IntegerKey uses uint32/uint64 keys in native byte order.
	IntegerKey uint = 0x08

	// DupFixed uses fixed-size values in DupSort tables.
	DupFixed uint = 0x10

	// IntegerDup uses fixed-size integer values in DupSort tables.
	IntegerDup uint = 0x20

	// ReverseDup uses reverse comparison for values.
	ReverseDup uint = 0x40

	// Create creates the database if it doesn't exist.
	Create uint = 0x40000
)

// Put flags.
const (
	// Upsert is the default insert-or-update mode.
	Upsert uint = 0

	// NoOverwrite fails with a key-exist error if the key exists.
	NoOverwrite uint = 0x10

	// NoDupData fails if the exact key-value pair exists (DupSort).
	NoDupData uint = 0x20

	// Current overwrites the item at the cursor position.
	Current uint = 0x40

	// AllDups replaces all duplicates for the key.
	AllDups uint = 0x80

	// Append assumes keys are inserted in order.
	Append uint = 0x20000

	// AppendDup assumes duplicate values are inserted in order.
	AppendDup uint = 0x40000
)

// CursorOp selects a cursor positioning operation.
type CursorOp uint

// Cursor operations, numerically identical to MDBX_cursor_op.
const (
	First        CursorOp = 0  // first key/value
	FirstDup     CursorOp = 1  // first value of current key (DupSort)
	GetBoth      CursorOp = 2  // position at key/value pair (DupSort)
	GetBothRange CursorOp = 3  // position at key, nearest value (DupSort)
	GetCurrent   CursorOp = 4  // return current position
	Last         CursorOp = 6  // last key/value
	LastDup      CursorOp = 7  // last value of current key (DupSort)
	Next         CursorOp = 8  // next key/value
	NextDup      CursorOp = 9  // next value of current key (DupSort)
	NextNoDup    CursorOp = 11 // first value of next key
	Prev         CursorOp = 12 // previous key/value
	PrevDup      CursorOp = 13 // previous value of current key (DupSort)
	PrevNoDup    CursorOp = 14 // last value of previous key
	Set          CursorOp = 15 // position at key
	SetKey       CursorOp = 16 // position at key, return key + value
	SetRange     CursorOp = 17 // position at first key >= argument
)
