package kv

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// BadgerStore is a Substrate over a badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens a badger database in dir, or in memory. Badger's own
// log lines go to log; a nil log silences them.
func OpenBadger(dir string, inMemory bool, log logrus.FieldLogger) (*BadgerStore, error) {
	if dir == "" && !inMemory {
		return nil, fmt.Errorf("kv: badger directory is required")
	}
	opts := badger.DefaultOptions(dir)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	if log != nil {
		opts.Logger = log.WithField("component", "badger")
	}
	opts.ValueLogFileSize = 1024 * 1024 * 16

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("kv: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (b *BadgerStore) Set(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (b *BadgerStore) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *BadgerStore) Close() error { return b.db.Close() }
