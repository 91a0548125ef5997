package benchmarks

import (
	"runtime"
	"testing"

	mdbxgo "github.com/erigontech/mdbx-go/mdbx"
	"github.com/mdbxx/mdbxx"
	"github.com/tecbot/gorocksdb"
)

// BenchmarkScan compares a full ordered scan of 100k entries.
func BenchmarkScan(b *testing.B) {
	b.Run("mdbxx", benchScanWrap)
	b.Run("mdbx", benchScanRaw)
	b.Run("bolt", benchScanBolt)
	b.Run("rocks", benchScanRocks)
}

func benchScanWrap(b *testing.B) {
	env, _, _ := getCachedKV(b, 100_000)

	txn, err := env.BeginTxn(nil, mdbxx.TxnReadOnly)
	if err != nil {
		b.Fatal(err)
	}
	defer txn.Abort()
	dbi, err := txn.OpenDBI(benchDB, 0)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			b.Fatal(err)
		}
		n := 0
		op := mdbxx.First
		for {
			_, _, found, err := cur.Get(nil, nil, op)
			if err != nil {
				b.Fatal(err)
			}
			if !found {
				break
			}
			n++
			op = mdbxx.Next
		}
		cur.Close()
		if n != 100_000 {
			b.Fatalf("scanned %d entries", n)
		}
	}
}

func benchScanRaw(b *testing.B) {
	_, env, _ := getCachedKV(b, 100_000)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	txn, err := env.BeginTxn(nil, mdbxgo.Readonly)
	if err != nil {
		b.Fatal(err)
	}
	defer txn.Abort()
	dbi, err := txn.OpenDBI(benchDB, 0, nil, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			b.Fatal(err)
		}
		n := 0
		op := uint(mdbxgo.First)
		for {
			_, _, err := cur.Get(nil, nil, op)
			if mdbxgo.IsNotFound(err) {
				break
			}
			if err != nil {
				b.Fatal(err)
			}
			n++
			op = mdbxgo.Next
		}
		cur.Close()
		if n != 100_000 {
			b.Fatalf("scanned %d entries", n)
		}
	}
}

func benchScanBolt(b *testing.B) {
	db := getCachedBoltDB(b, 100_000)

	tx, err := db.Begin(false)
	if err != nil {
		b.Fatal(err)
	}
	defer tx.Rollback()
	bucket := tx.Bucket([]byte(benchDB))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cur := bucket.Cursor()
		n := 0
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			n++
		}
		if n != 100_000 {
			b.Fatalf("scanned %d entries", n)
		}
	}
}

func benchScanRocks(b *testing.B) {
	db := getCachedRocksDB(b, 100_000)

	ro := gorocksdb.NewDefaultReadOptions()
	defer ro.Destroy()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		it := db.NewIterator(ro)
		n := 0
		for it.SeekToFirst(); it.Valid(); it.Next() {
			n++
		}
		it.Close()
		if n != 100_000 {
			b.Fatalf("scanned %d entries", n)
		}
	}
}

// BenchmarkSeek compares positioned lookups through a reused cursor.
func BenchmarkSeek(b *testing.B) {
	b.Run("mdbxx", func(b *testing.B) {
		env, _, samples := getCachedKV(b, 100_000)

		txn, err := env.BeginTxn(nil, mdbxx.TxnReadOnly)
		if err != nil {
			b.Fatal(err)
		}
		defer txn.Abort()
		dbi, err := txn.OpenDBI(benchDB, 0)
		if err != nil {
			b.Fatal(err)
		}
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			b.Fatal(err)
		}
		defer cur.Close()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			_, found, err := cur.Find(samples[i%len(samples)])
			if err != nil {
				b.Fatal(err)
			}
			if !found {
				b.Fatal("sample key missing")
			}
		}
	})

	b.Run("mdbx", func(b *testing.B) {
		_, env, samples := getCachedKV(b, 100_000)

		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		txn, err := env.BeginTxn(nil, mdbxgo.Readonly)
		if err != nil {
			b.Fatal(err)
		}
		defer txn.Abort()
		dbi, err := txn.OpenDBI(benchDB, 0, nil, nil)
		if err != nil {
			b.Fatal(err)
		}
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			b.Fatal(err)
		}
		defer cur.Close()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			_, _, err := cur.Get(samples[i%len(samples)], nil, mdbxgo.Set)
			if err != nil {
				b.Fatal(err)
			}
		}
	})
}
