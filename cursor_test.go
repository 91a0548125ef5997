package mdbxx

import (
	"bytes"
	"testing"
)

func fillSorted(t *testing.T, env *Env, pairs [][2]string) DBI {
	t.Helper()
	var dbi DBI
	err := env.Update(func(txn *Txn) error {
		var err error
		if dbi, err = txn.OpenDBI("cursors", Create); err != nil {
			return err
		}
		for _, p := range pairs {
			if err := txn.Put(dbi, []byte(p[0]), []byte(p[1]), Upsert); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	return dbi
}

func TestCursorSequencing(t *testing.T) {
	env := testEnv(t)
	dbi := fillSorted(t, env, [][2]string{{"1", "one"}, {"2", "two"}, {"3", "three"}})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		want := [][2]string{{"1", "one"}, {"2", "two"}, {"3", "three"}}
		op := First
		for i := 0; ; i++ {
			k, v, found, err := cur.Get(nil, nil, op)
			if err != nil {
				return err
			}
			if !found {
				if i != len(want) {
					t.Errorf("iteration stopped after %d entries, want %d", i, len(want))
				}
				break
			}
			if i >= len(want) {
				t.Fatalf("iteration did not stop at %d entries", len(want))
			}
			if string(k) != want[i][0] || string(v) != want[i][1] {
				t.Errorf("entry %d = %q/%q, want %q/%q", i, k, v, want[i][0], want[i][1])
			}
			op = Next
		}

		// Past the end the cursor keeps answering no-match, not an error.
		if _, _, found, err := cur.Get(nil, nil, Next); err != nil || found {
			t.Errorf("Next past end: found=%v err=%v", found, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestCursorFind(t *testing.T) {
	env := testEnv(t)
	dbi := fillSorted(t, env, [][2]string{{"1", "one"}, {"2", "two"}, {"3", "three"}})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		v, found, err := cur.Find([]byte("2"))
		if err != nil {
			return err
		}
		if !found || string(v) != "two" {
			t.Errorf("Find(2): v=%q found=%v", v, found)
		}

		// The cursor is positioned, so Next continues from the match.
		k, _, found, err := cur.Get(nil, nil, Next)
		if err != nil {
			return err
		}
		if !found || string(k) != "3" {
			t.Errorf("Next after Find = %q found=%v, want 3", k, found)
		}

		if _, found, err := cur.Find([]byte("9")); err != nil || found {
			t.Errorf("Find of absent key: found=%v err=%v", found, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestCursorSetRange(t *testing.T) {
	env := testEnv(t)
	dbi := fillSorted(t, env, [][2]string{{"10", "a"}, {"20", "b"}, {"30", "c"}})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		k, v, found, err := cur.Get([]byte("15"), nil, SetRange)
		if err != nil {
			return err
		}
		if !found || string(k) != "20" || string(v) != "b" {
			t.Errorf("SetRange(15) = %q/%q found=%v, want 20/b", k, v, found)
		}

		if _, _, found, err := cur.Get([]byte("99"), nil, SetRange); err != nil || found {
			t.Errorf("SetRange past last key: found=%v err=%v", found, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestCursorPutDel(t *testing.T) {
	env := testEnv(t)

	err := env.Update(func(txn *Txn) error {
		dbi, err := txn.OpenDBI("curmod", Create)
		if err != nil {
			return err
		}
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		for _, k := range []string{"a", "b", "c"} {
			if err := cur.Put([]byte(k), []byte("v-"+k), Upsert); err != nil {
				return err
			}
		}

		if _, found, err := cur.Find([]byte("b")); err != nil || !found {
			return err
		}
		if err := cur.Del(0); err != nil {
			return err
		}

		n, err := txn.Entries(dbi)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("Entries after cursor Del = %d, want 2", n)
		}
		if _, found, err := txn.Get(dbi, []byte("b")); err != nil || found {
			t.Errorf("deleted key still present: found=%v err=%v", found, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}

func TestCursorCountDups(t *testing.T) {
	env := testEnv(t)

	err := env.Update(func(txn *Txn) error {
		dbi, err := txn.OpenDBI("dupcount", Create|DupSort)
		if err != nil {
			return err
		}
		for _, v := range []string{"x", "y", "z"} {
			if err := txn.Put(dbi, []byte("k"), []byte(v), Upsert); err != nil {
				return err
			}
		}
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		if _, found, err := cur.Find([]byte("k")); err != nil || !found {
			return err
		}
		n, err := cur.Count()
		if err != nil {
			return err
		}
		if n != 3 {
			t.Errorf("Count = %d, want 3", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}

func TestCursorCloseIdempotent(t *testing.T) {
	env := testEnv(t)
	dbi := fillSorted(t, env, [][2]string{{"1", "one"}})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			return err
		}
		cur.Close()
		cur.Close() // must be a no-op

		if _, _, _, err := cur.Get(nil, nil, First); !IsLogic(err) {
			t.Errorf("Get on closed cursor should be a logic error, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestCursorReleasedByTxnEnd(t *testing.T) {
	env := testEnv(t)
	dbi := fillSorted(t, env, [][2]string{{"1", "one"}, {"2", "two"}})

	ro, err := env.BeginTxn(nil, TxnReadOnly)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	cur, err := ro.OpenCursor(dbi)
	if err != nil {
		t.Fatalf("OpenCursor failed: %v", err)
	}
	ro.Abort()

	// A cursor orphaned by its transaction is unusable but still closable.
	if _, _, _, err := cur.Get(nil, nil, First); !IsLogic(err) {
		t.Errorf("Get on released cursor should be a logic error, got %v", err)
	}
	if err := cur.Put([]byte("k"), []byte("v"), Upsert); !IsLogic(err) {
		t.Errorf("Put on released cursor should be a logic error, got %v", err)
	}
	cur.Close()
	cur.Close()
}

func TestCursorRenew(t *testing.T) {
	env := testEnv(t)
	dbi := fillSorted(t, env, [][2]string{{"1", "one"}, {"2", "two"}})

	ro, err := env.BeginTxn(nil, TxnReadOnly)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	cur, err := ro.OpenCursor(dbi)
	if err != nil {
		t.Fatalf("OpenCursor failed: %v", err)
	}
	if _, _, found, err := cur.Get(nil, nil, First); err != nil || !found {
		t.Fatalf("First: found=%v err=%v", found, err)
	}
	ro.Abort()

	ro2, err := env.BeginTxn(nil, TxnReadOnly)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	defer ro2.Abort()

	if err := cur.Renew(ro2); err != nil {
		t.Fatalf("Renew failed: %v", err)
	}
	if cur.Txn() != ro2 {
		t.Error("renewed cursor not rebound to new txn")
	}
	k, _, found, err := cur.Get(nil, nil, First)
	if err != nil || !found {
		t.Fatalf("First after Renew: found=%v err=%v", found, err)
	}
	if string(k) != "1" {
		t.Errorf("First after Renew = %q, want 1", k)
	}

	// A live cursor cannot be renewed onto another transaction.
	if err := cur.Renew(ro2); !IsLogic(err) {
		t.Errorf("Renew of live cursor should be a logic error, got %v", err)
	}
}

func TestCursorRenewOntoWriteTxn(t *testing.T) {
	env := testEnv(t)
	dbi := fillSorted(t, env, [][2]string{{"1", "one"}})

	ro, err := env.BeginTxn(nil, TxnReadOnly)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	cur, err := ro.OpenCursor(dbi)
	if err != nil {
		t.Fatalf("OpenCursor failed: %v", err)
	}
	ro.Abort()

	rw, err := env.BeginTxn(nil, TxnReadWrite)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	defer rw.Abort()

	if err := cur.Renew(rw); !IsLogic(err) {
		t.Errorf("Renew onto write txn should be a logic error, got %v", err)
	}
	cur.Close()
}

func TestTxnEndClosesCursorsForWrites(t *testing.T) {
	env := testEnv(t)

	txn, err := env.BeginTxn(nil, TxnReadWrite)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	dbi, err := txn.OpenRoot(0)
	if err != nil {
		t.Fatalf("OpenRoot failed: %v", err)
	}
	cur, err := txn.OpenCursor(dbi)
	if err != nil {
		t.Fatalf("OpenCursor failed: %v", err)
	}
	if err := cur.Put([]byte("k"), []byte("v"), Upsert); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if _, _, _, err := cur.Get(nil, nil, First); !IsLogic(err) {
		t.Errorf("Get on cursor of committed txn should be a logic error, got %v", err)
	}
	cur.Close()
}

func TestCursorReadCopiesOut(t *testing.T) {
	env := testEnv(t)
	dbi := fillSorted(t, env, [][2]string{{"k", "value"}})

	// Views returned inside a transaction are only valid within it.
	// Copy keeps bytes usable after the transaction ends.
	var kept []byte
	err := env.View(func(txn *Txn) error {
		v, found, err := txn.Get(dbi, []byte("k"))
		if err != nil || !found {
			t.Fatalf("Get: found=%v err=%v", found, err)
		}
		kept = Bytes(v).Copy()
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if !bytes.Equal(kept, []byte("value")) {
		t.Errorf("copied value = %q, want value", kept)
	}
}
