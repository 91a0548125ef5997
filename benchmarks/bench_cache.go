package benchmarks

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	mdbxgo "github.com/erigontech/mdbx-go/mdbx"
	"github.com/mdbxx/mdbxx"
	"github.com/tecbot/gorocksdb"
	bolt "go.etcd.io/bbolt"
)

// Cached benchmark database directory
const benchCacheDir = "testdata/benchdb"

const benchDB = "bench"

var (
	cacheMu  sync.Mutex
	wrapEnvs = make(map[string]*mdbxx.Env)
	rawEnvs  = make(map[string]*mdbxgo.Env)
	boltDBs  = make(map[string]*bolt.DB)
	rocksDBs = make(map[string]*gorocksdb.DB)
	keyCache = make(map[string][][]byte)
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// getCachedKV returns cached mdbxx and raw mdbx-go environments holding
// size entries each, creating and populating them on first use.
func getCachedKV(b *testing.B, size int) (*mdbxx.Env, *mdbxgo.Env, [][]byte) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	key := fmt.Sprintf("plain_%d", size)
	wrapPath := filepath.Join(benchCacheDir, fmt.Sprintf("plain_%d_wrap.db", size))
	rawPath := filepath.Join(benchCacheDir, fmt.Sprintf("plain_%d_raw.db", size))

	if env, ok := wrapEnvs[key]; ok {
		return env, rawEnvs[key], keyCache[key]
	}

	if err := os.MkdirAll(benchCacheDir, 0755); err != nil {
		b.Fatal(err)
	}

	wrapExists := fileExists(wrapPath)
	rawExists := fileExists(rawPath)

	env, err := mdbxx.NewEnv(0)
	if err != nil {
		b.Fatal(err)
	}
	if err := env.SetMaxDBs(10); err != nil {
		b.Fatal(err)
	}
	if err := env.SetGeometry(-1, -1, 1<<32, -1, -1, 4096); err != nil {
		b.Fatal(err)
	}
	if err := env.Open(wrapPath, mdbxx.NoSubdir|mdbxx.NoMetaSync|mdbxx.WriteMap, 0644); err != nil {
		b.Fatal(err)
	}

	runtime.LockOSThread()
	raw, err := mdbxgo.NewEnv(mdbxgo.Label("bench"))
	if err != nil {
		env.Close()
		b.Fatal(err)
	}
	raw.SetOption(mdbxgo.OptMaxDB, 10)
	raw.SetGeometry(-1, -1, 1<<32, -1, -1, 4096)
	if err := raw.Open(rawPath, mdbxgo.NoSubdir|mdbxgo.NoMetaSync|mdbxgo.WriteMap, 0644); err != nil {
		env.Close()
		b.Fatal(err)
	}
	runtime.UnlockOSThread()

	if !wrapExists {
		b.Logf("Creating cached mdbxx DB with %d keys...", size)
		populateWrap(b, env, size)
	} else {
		b.Logf("Using cached mdbxx DB with %d keys", size)
	}

	if !rawExists {
		b.Logf("Creating cached raw mdbx DB with %d keys...", size)
		populateRaw(b, raw, size)
	} else {
		b.Logf("Using cached raw mdbx DB with %d keys", size)
	}

	samples := sampleKeys(size)

	wrapEnvs[key] = env
	rawEnvs[key] = raw
	keyCache[key] = samples

	return env, raw, samples
}

// sampleKeys returns every 97th key, enough spread to defeat page-level
// locality in point-read benchmarks.
func sampleKeys(size int) [][]byte {
	var out [][]byte
	for i := 0; i < size; i += 97 {
		out = append(out, mdbxx.U64Key(uint64(i)))
	}
	if len(out) == 0 {
		out = append(out, mdbxx.U64Key(0))
	}
	return out
}

func benchValue(i int) []byte {
	val := make([]byte, 32)
	copy(val, mdbxx.U64Key(uint64(i)))
	return val
}

func populateWrap(b *testing.B, env *mdbxx.Env, numKeys int) {
	const batchSize = 100_000

	for written := 0; written < numKeys; written += batchSize {
		end := written + batchSize
		if end > numKeys {
			end = numKeys
		}
		err := env.Update(func(txn *mdbxx.Txn) error {
			dbi, err := txn.OpenDBI(benchDB, mdbxx.Create)
			if err != nil {
				return err
			}
			for i := written; i < end; i++ {
				if err := txn.Put(dbi, mdbxx.U64Key(uint64(i)), benchValue(i), mdbxx.Append); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func populateRaw(b *testing.B, env *mdbxgo.Env, numKeys int) {
	const batchSize = 100_000

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for written := 0; written < numKeys; written += batchSize {
		end := written + batchSize
		if end > numKeys {
			end = numKeys
		}
		txn, err := env.BeginTxn(nil, 0)
		if err != nil {
			b.Fatal(err)
		}
		dbi, err := txn.OpenDBI(benchDB, mdbxgo.Create, nil, nil)
		if err != nil {
			txn.Abort()
			b.Fatal(err)
		}
		for i := written; i < end; i++ {
			if err := txn.Put(dbi, mdbxx.U64Key(uint64(i)), benchValue(i), mdbxgo.Append); err != nil {
				txn.Abort()
				b.Fatal(err)
			}
		}
		if _, err := txn.Commit(); err != nil {
			b.Fatal(err)
		}
	}
}

// getCachedBoltDB returns a cached BoltDB with size entries.
func getCachedBoltDB(b *testing.B, size int) *bolt.DB {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	key := fmt.Sprintf("bolt_%d", size)
	boltPath := filepath.Join(benchCacheDir, fmt.Sprintf("plain_%d_bolt.db", size))

	if db, ok := boltDBs[key]; ok {
		return db
	}

	if err := os.MkdirAll(benchCacheDir, 0755); err != nil {
		b.Fatal(err)
	}

	boltExists := fileExists(boltPath)

	db, err := bolt.Open(boltPath, 0644, &bolt.Options{
		NoSync:         true,
		NoFreelistSync: true,
	})
	if err != nil {
		b.Fatal(err)
	}

	if !boltExists {
		b.Logf("Creating cached BoltDB with %d keys...", size)
		populateBolt(b, db, size)
	} else {
		b.Logf("Using cached BoltDB with %d keys", size)
	}

	boltDBs[key] = db
	return db
}

func populateBolt(b *testing.B, db *bolt.DB, numKeys int) {
	const batchSize = 100_000

	for written := 0; written < numKeys; written += batchSize {
		end := written + batchSize
		if end > numKeys {
			end = numKeys
		}
		err := db.Update(func(tx *bolt.Tx) error {
			bucket, err := tx.CreateBucketIfNotExists([]byte(benchDB))
			if err != nil {
				return err
			}
			for i := written; i < end; i++ {
				if err := bucket.Put(mdbxx.U64Key(uint64(i)), benchValue(i)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

// getCachedRocksDB returns a cached RocksDB with size entries.
func getCachedRocksDB(b *testing.B, size int) *gorocksdb.DB {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	key := fmt.Sprintf("rocks_%d", size)
	rocksPath := filepath.Join(benchCacheDir, fmt.Sprintf("plain_%d_rocks.db", size))

	if db, ok := rocksDBs[key]; ok {
		return db
	}

	if err := os.MkdirAll(benchCacheDir, 0755); err != nil {
		b.Fatal(err)
	}

	rocksExists := fileExists(rocksPath)

	opts := gorocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)
	opts.SetWriteBufferSize(64 * 1024 * 1024)
	opts.SetMaxWriteBufferNumber(3)
	opts.SetTargetFileSizeBase(64 * 1024 * 1024)

	db, err := gorocksdb.OpenDb(opts, rocksPath)
	if err != nil {
		b.Fatal(err)
	}

	if !rocksExists {
		b.Logf("Creating cached RocksDB with %d keys...", size)
		populateRocks(b, db, size)
	} else {
		b.Logf("Using cached RocksDB with %d keys", size)
	}

	rocksDBs[key] = db
	return db
}

func populateRocks(b *testing.B, db *gorocksdb.DB, numKeys int) {
	wo := gorocksdb.NewDefaultWriteOptions()
	defer wo.Destroy()

	batch := gorocksdb.NewWriteBatch()
	defer batch.Destroy()

	const batchSize = 100_000

	for i := 0; i < numKeys; i++ {
		batch.Put(mdbxx.U64Key(uint64(i)), benchValue(i))

		if (i+1)%batchSize == 0 {
			if err := db.Write(wo, batch); err != nil {
				b.Fatal(err)
			}
			batch.Clear()
		}
	}
	if batch.Count() > 0 {
		if err := db.Write(wo, batch); err != nil {
			b.Fatal(err)
		}
	}
}

// CleanupBenchCache closes all cached environments.
// Call this in TestMain or after benchmarks complete.
func CleanupBenchCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	for _, env := range wrapEnvs {
		env.Close()
	}
	for _, env := range rawEnvs {
		env.Close()
	}
	for _, db := range boltDBs {
		db.Close()
	}
	for _, db := range rocksDBs {
		db.Close()
	}
	wrapEnvs = make(map[string]*mdbxx.Env)
	rawEnvs = make(map[string]*mdbxgo.Env)
	boltDBs = make(map[string]*bolt.DB)
	rocksDBs = make(map[string]*gorocksdb.DB)
	keyCache = make(map[string][][]byte)
}
