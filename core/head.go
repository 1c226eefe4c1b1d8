package core

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"treasurechain/storage"
)

// headKey stores the last committed state root outside the trie.
var headKey = []byte("head")

// ReadHead returns the root persisted by the last successful commit. ok is
// false on a fresh database.
func ReadHead(db storage.Database) (root common.Hash, ok bool, err error) {
	raw, err := db.Get(headKey)
	if errors.Is(err, storage.ErrNotFound) {
		return common.Hash{}, false, nil
	}
	if err != nil {
		return common.Hash{}, false, err
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, false, fmt.Errorf("core: corrupt head record (%d bytes)", len(raw))
	}
	return common.BytesToHash(raw), true, nil
}

func writeHead(db storage.Database, root common.Hash) error {
	if db == nil {
		return nil
	}
	return db.Put(headKey, root.Bytes())
}
