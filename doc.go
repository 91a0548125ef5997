// Package mdbxx is a safety and ergonomics layer over libmdbx, a
// transactional, memory-mapped, embedded key-value store.
//
// The underlying engine exposes a handle-based, status-code-based API.
// mdbxx wraps it with deterministic resource lifetimes and a closed
// error taxonomy without changing the engine's semantics or adding
// overhead on the data path:
//
//   - Environment, Transaction and Cursor handles are tagged state
//     machines: using a handle after it was committed, aborted or
//     closed fails with a logic-kind error instead of reaching freed
//     engine memory. Close and Abort are idempotent.
//   - Every nonzero engine status code is classified into exactly one
//     of a closed set of error kinds (logic, key-exist, not-found,
//     corrupted, panic, runtime) carrying the failing operation's name
//     and the raw code.
//   - Point lookups and cursor positioning report an absent key as a
//     boolean, never as an error.
//   - Reads are zero-copy views of the memory map, valid only within
//     the owning transaction.
//
// Basic usage:
//
//	env, err := mdbxx.NewEnv(0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer env.Close()
//
//	if err := env.Open("/path/to/db", mdbxx.NoSubdir, 0644); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = env.Update(func(txn *mdbxx.Txn) error {
//	    dbi, err := txn.OpenDBI("example", mdbxx.Create)
//	    if err != nil {
//	        return err
//	    }
//	    return txn.Put(dbi, []byte("key"), []byte("value"), mdbxx.Upsert)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Write transactions are serialized by the engine and are locked to
// the OS thread of the goroutine that begins them; never share a
// transaction between goroutines. Multiple read-only transactions may
// run concurrently, one per goroutine.
package mdbxx
