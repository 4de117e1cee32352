package storage

import (
	"strconv"

	badger "github.com/dgraph-io/badger/v4"
	goerrors "errors"
)

// NextID returns the next value of a named monotonic sequence. Sequences
// back the family-scoped integer reminder IDs; the increment runs inside
// a single transaction so concurrent creates never share an ID.
func (d *DB) NextID(name string) (int64, error) {
	var id int64
	err := d.db.Update(func(txn *badger.Txn) error {
		key := []byte("seq:" + name)

		item, err := txn.Get(key)
		if err != nil && !goerrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err == nil {
			if verr := item.Value(func(val []byte) error {
				parsed, perr := strconv.ParseInt(string(val), 10, 64)
				if perr != nil {
					return perr
				}
				id = parsed
				return nil
			}); verr != nil {
				return verr
			}
		}

		id++
		return txn.Set(key, []byte(strconv.FormatInt(id, 10)))
	})
	return id, err
}
