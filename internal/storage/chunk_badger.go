package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

// BadgerChunks stores blobs in an embedded Badger database.
// Keys: "m/<id>" holds the JSON manifest, "c/<id>/<n as 8-byte big endian>" holds chunk n.
type BadgerChunks struct {
	db *badger.DB
}

var _ ChunkBackend = (*BadgerChunks)(nil)

// OpenBadger opens the database in dir, or a memory-only one when dir is empty.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

func NewBadgerChunks(db *badger.DB) *BadgerChunks {
	return &BadgerChunks{db: db}
}

func manifestKey(blobID string) []byte {
	return []byte("m/" + blobID)
}

func chunkPrefix(blobID string) []byte {
	return []byte("c/" + blobID + "/")
}

func chunkKey(blobID string, n int64) []byte {
	k := chunkPrefix(blobID)
	return binary.BigEndian.AppendUint64(k, uint64(n))
}

func (b *BadgerChunks) PutChunk(_ context.Context, blobID string, n int64, data []byte) error {
	val := make([]byte, len(data))
	copy(val, data)
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(blobID, n), val)
	})
}

func (b *BadgerChunks) GetChunk(_ context.Context, blobID string, n int64) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(blobID, n))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBlobNotFound
	}
	return out, err
}

func (b *BadgerChunks) PutManifest(_ context.Context, info BlobInfo) error {
	val, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(manifestKey(info.ID), val)
	})
}

func (b *BadgerChunks) GetManifest(_ context.Context, blobID string) (BlobInfo, error) {
	var info BlobInfo
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(manifestKey(blobID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &info)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return BlobInfo{}, ErrBlobNotFound
	}
	if err != nil {
		return BlobInfo{}, err
	}
	return info, nil
}

func (b *BadgerChunks) DeleteBlob(_ context.Context, blobID string) error {
	var (
		keys         [][]byte
		haveManifest bool
	)
	err := b.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(manifestKey(blobID)); err == nil {
			haveManifest = true
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = chunkPrefix(blobID)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	if haveManifest {
		if err := wb.Delete(manifestKey(blobID)); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	if !haveManifest {
		return ErrBlobNotFound
	}
	return nil
}
