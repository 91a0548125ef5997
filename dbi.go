package mdbxx

import "github.com/erigontech/mdbx-go/mdbx"

// DBI identifies a named (or the root, unnamed) ordered key space
// inside an environment. It is resolved once inside some transaction
// and stays valid for every later transaction against the same
// environment, until the environment closes. It carries no
// transaction-scoped state.
type DBI uint32

// Stat holds cardinality and page-layout statistics for a key space.
type Stat struct {
	PageSize      uint   // size of a database page
	Depth         uint   // height of the B-tree
	BranchPages   uint64 // number of internal pages
	LeafPages     uint64 // number of leaf pages
	OverflowPages uint64 // number of overflow pages
	Entries       uint64 // number of data items
}

// OpenDBI resolves a named key space, creating it when the Create flag
// is given. An empty name opens the root key space.
func (txn *Txn) OpenDBI(name string, flags uint) (DBI, error) {
	if name == "" {
		return txn.OpenRoot(flags)
	}
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_dbi_open"); err != nil {
		return 0, err
	}
	raw, err := txn.raw.OpenDBI(name, flags, nil, nil)
	if err != nil {
		return 0, operr("mdbx_dbi_open", err)
	}
	return DBI(raw), nil
}

// OpenRoot opens the root (unnamed) key space.
func (txn *Txn) OpenRoot(flags uint) (DBI, error) {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_dbi_open"); err != nil {
		return 0, err
	}
	raw, err := txn.raw.OpenRoot(flags)
	if err != nil {
		return 0, operr("mdbx_dbi_open", err)
	}
	return DBI(raw), nil
}

// Stat returns statistics for dbi as seen by this transaction's
// snapshot.
func (txn *Txn) Stat(dbi DBI) (*Stat, error) {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_dbi_stat"); err != nil {
		return nil, err
	}
	raw, err := txn.raw.StatDBI(mdbx.DBI(dbi))
	if err != nil {
		return nil, operr("mdbx_dbi_stat", err)
	}
	return &Stat{
		PageSize:      raw.PSize,
		Depth:         raw.Depth,
		BranchPages:   raw.BranchPages,
		LeafPages:     raw.LeafPages,
		OverflowPages: raw.OverflowPages,
		Entries:       raw.Entries,
	}, nil
}

// Entries returns the number of data items in dbi.
func (txn *Txn) Entries(dbi DBI) (uint64, error) {
	st, err := txn.Stat(dbi)
	if err != nil {
		return 0, err
	}
	return st.Entries, nil
}

// Flags returns the database flags dbi was created with.
func (txn *Txn) Flags(dbi DBI) (uint, error) {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_dbi_flags"); err != nil {
		return 0, err
	}
	flags, err := txn.raw.Flags(mdbx.DBI(dbi))
	if err != nil {
		return 0, operr("mdbx_dbi_flags", err)
	}
	return flags, nil
}

// Get performs a point lookup. An absent key is reported as
// found=false, never as an error. The returned bytes view the memory
// map and are valid only within this transaction; copy them to retain
// them longer.
func (txn *Txn) Get(dbi DBI, key []byte) ([]byte, bool, error) {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_get"); err != nil {
		return nil, false, err
	}
	v, err := txn.raw.Get(mdbx.DBI(dbi), key)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, operr("mdbx_get", err)
	}
	return v, true, nil
}

// Put stores a key/value pair. The transaction must be a writer; the
// engine reports the violation otherwise. With NoOverwrite, an
// existing key fails with a key-exist error.
func (txn *Txn) Put(dbi DBI, key, val []byte, flags uint) error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_put"); err != nil {
		return err
	}
	return operr("mdbx_put", txn.raw.Put(mdbx.DBI(dbi), key, val, flags))
}

// Del deletes a key, or one duplicate value of a key when val is
// non-nil in a DupSort key space. Deleting an absent key fails with a
// not-found error.
func (txn *Txn) Del(dbi DBI, key, val []byte) error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_del"); err != nil {
		return err
	}
	return operr("mdbx_del", txn.raw.Del(mdbx.DBI(dbi), key, val))
}

// Drop empties dbi, or deletes it entirely when del is true.
func (txn *Txn) Drop(dbi DBI, del bool) error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_drop"); err != nil {
		return err
	}
	return operr("mdbx_drop", txn.raw.Drop(mdbx.DBI(dbi), del))
}

// Sequence reads, and when increment is nonzero advances, the
// persistent sequence counter of dbi. The pre-increment value is
// returned.
func (txn *Txn) Sequence(dbi DBI, increment uint64) (uint64, error) {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.active("mdbx_dbi_sequence"); err != nil {
		return 0, err
	}
	seq, err := txn.raw.Sequence(mdbx.DBI(dbi), increment)
	if err != nil {
		return 0, operr("mdbx_dbi_sequence", err)
	}
	return seq, nil
}
