package storage

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	gethleveldb "github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Database is a generic interface for a key-value store.
// State lives in a trie whose nodes are persisted through TrieDB; Put/Get give
// direct access for metadata that sits outside the state root (e.g. the last
// committed root and height).
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	TrieDB() *triedb.Database
	Close() // A way to gracefully shut down the database connection.
}

// --- In-Memory DB (for testing) ---

type MemDB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	trieDB *triedb.Database
}

func NewMemDB() *MemDB {
	return &MemDB{
		data:   make(map[string][]byte),
		trieDB: triedb.NewDatabase(rawdb.NewMemoryDatabase(), triedb.HashDefaults),
	}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// TrieDB returns the in-memory trie node database.
func (db *MemDB) TrieDB() *triedb.Database { return db.trieDB }

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() {
	// Nothing to close for an in-memory database.
}

// --- Persistent DB ---

const (
	levelDBNamespace = "treasurechain/db/"
	levelDBCacheMB   = 64
	levelDBHandles   = 128
)

// LevelDB is a persistent key-value store using LevelDB. Trie nodes and
// metadata share the same on-disk database.
type LevelDB struct {
	kv     *gethleveldb.Database
	disk   ethdb.Database
	trieDB *triedb.Database
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	kv, err := gethleveldb.NewCustom(path, levelDBNamespace, func(options *opt.Options) {
		options.OpenFilesCacheCapacity = levelDBHandles
		options.BlockCacheCapacity = levelDBCacheMB / 2 * opt.MiB
		options.WriteBuffer = levelDBCacheMB / 4 * opt.MiB
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open leveldb %q: %w", path, err)
	}
	disk := rawdb.NewDatabase(kv)
	return &LevelDB{
		kv:     kv,
		disk:   disk,
		trieDB: triedb.NewDatabase(disk, triedb.HashDefaults),
	}, nil
}

// Put inserts or updates a key-value pair.
func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.kv.Put(key, value)
}

// Get retrieves a value for a given key.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := ldb.kv.Get(key)
	if err != nil {
		if ok, _ := ldb.kv.Has(key); !ok {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// TrieDB returns the trie node database backed by this LevelDB instance.
func (ldb *LevelDB) TrieDB() *triedb.Database { return ldb.trieDB }

// Close closes the database connection.
func (ldb *LevelDB) Close() {
	ldb.trieDB.Close()
	ldb.disk.Close()
}
