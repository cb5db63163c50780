// Package store keeps a local index of transactions and the asset and
// asset-scheme addresses they create, backed by bbolt.
package store

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/suffix-labs/shardtx/pkg/logging"
	"github.com/suffix-labs/shardtx/pkg/tx"
	"github.com/suffix-labs/shardtx/pkg/types"
)

var (
	bucketTransactions = []byte("transactions_by_hash")
	bucketAssets       = []byte("assets_by_address")
	bucketSchemes      = []byte("schemes_by_address")
)

// Location points at the transaction output that created an address.
// Scheme addresses always carry index 0.
type Location struct {
	TransactionHash types.H256
	Index           uint32
}

func (l Location) bytes() []byte {
	out := make([]byte, 36)
	copy(out, l.TransactionHash[:])
	binary.BigEndian.PutUint32(out[32:], l.Index)
	return out
}

func parseLocation(b []byte) (Location, error) {
	if len(b) != 36 {
		return Location{}, fmt.Errorf("location: bad length %d", len(b))
	}
	var l Location
	copy(l.TransactionHash[:], b[:32])
	l.Index = binary.BigEndian.Uint32(b[32:])
	return l, nil
}

// DB is the bbolt-backed address index.
type DB struct {
	db  *bolt.DB
	log logrus.FieldLogger
}

// Open opens or creates the index at path. A nil logger discards output.
func Open(path string, log logrus.FieldLogger) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("store path required")
	}
	if log == nil {
		log = logging.Discard()
	}

	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	if err := bdb.Update(func(btx *bolt.Tx) error {
		for _, b := range [][]byte{bucketTransactions, bucketAssets, bucketSchemes} {
			if _, err := btx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	log.WithField("path", path).Debug("store opened")
	return &DB{db: bdb, log: log}, nil
}

// Close releases the database file. Closing a nil DB is a no-op.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// PutTransaction stores t under its hash and indexes every address it
// creates. Members of an asset transaction group are stored and indexed
// individually as well. Re-putting a transaction is a no-op overwrite.
func (d *DB) PutTransaction(t tx.Transaction) (types.H256, error) {
	hash := t.Hash()
	err := d.db.Update(func(btx *bolt.Tx) error {
		if err := d.put(btx, t); err != nil {
			return err
		}
		if group, ok := t.(tx.AssetTransactionGroup); ok {
			for _, member := range group.Transactions {
				if err := d.put(btx, member); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return types.H256{}, err
	}
	return hash, nil
}

func (d *DB) put(btx *bolt.Tx, t tx.Transaction) error {
	hash := t.Hash()
	data, err := tx.MarshalTransaction(t)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", t.Kind(), hash, err)
	}
	if err := btx.Bucket(bucketTransactions).Put(hash[:], data); err != nil {
		return err
	}
	log := d.log.WithFields(logrus.Fields{"kind": t.Kind().String(), "hash": hash.String()})
	log.Debug("transaction stored")

	if creator, ok := t.(tx.SchemeCreator); ok {
		addr := creator.AssetSchemeAddress()
		if err := btx.Bucket(bucketSchemes).Put(addr[:], Location{TransactionHash: hash}.bytes()); err != nil {
			return err
		}
		log.WithField("scheme", addr.String()).Info("asset scheme indexed")
	}

	if creator, ok := t.(tx.AssetCreator); ok {
		assets := btx.Bucket(bucketAssets)
		for i := 0; i < creator.OutputCount(); i++ {
			addr, err := creator.AssetAddressAt(i)
			if err != nil {
				return err
			}
			loc := Location{TransactionHash: hash, Index: uint32(i)}
			if err := assets.Put(addr[:], loc.bytes()); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"asset": addr.String(), "index": i}).Info("asset indexed")
		}
	}
	return nil
}

// Transaction loads a stored transaction.
func (d *DB) Transaction(hash types.H256) (tx.Transaction, bool, error) {
	var data []byte
	if err := d.db.View(func(btx *bolt.Tx) error {
		v := btx.Bucket(bucketTransactions).Get(hash[:])
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}
	t, err := tx.UnmarshalTransaction(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode stored transaction %s: %w", hash, err)
	}
	return t, true, nil
}

// LookupAsset returns where the asset at addr was created.
func (d *DB) LookupAsset(addr types.H256) (Location, bool, error) {
	return d.lookup(bucketAssets, addr)
}

// LookupScheme returns the transaction that created the scheme at addr.
func (d *DB) LookupScheme(addr types.H256) (Location, bool, error) {
	return d.lookup(bucketSchemes, addr)
}

func (d *DB) lookup(bucket []byte, addr types.H256) (Location, bool, error) {
	var (
		loc   Location
		found bool
	)
	err := d.db.View(func(btx *bolt.Tx) error {
		v := btx.Bucket(bucket).Get(addr[:])
		if v == nil {
			return nil
		}
		l, err := parseLocation(v)
		if err != nil {
			return fmt.Errorf("%s %s: %w", string(bucket), addr, err)
		}
		loc, found = l, true
		return nil
	})
	return loc, found, err
}

// Asset resolves addr to the asset record created at that address.
func (d *DB) Asset(addr types.H256) (tx.Asset, bool, error) {
	loc, ok, err := d.LookupAsset(addr)
	if err != nil || !ok {
		return tx.Asset{}, false, err
	}
	t, ok, err := d.Transaction(loc.TransactionHash)
	if err != nil || !ok {
		return tx.Asset{}, false, err
	}
	creator, ok := t.(tx.AssetCreator)
	if !ok {
		return tx.Asset{}, false, fmt.Errorf("asset %s: %s creates no assets", addr, t.Kind())
	}
	assets := creator.CreatedAssets()
	if int(loc.Index) >= len(assets) {
		return tx.Asset{}, false, fmt.Errorf("asset %s: output %d missing from %s", addr, loc.Index, loc.TransactionHash)
	}
	return assets[loc.Index], true, nil
}

// Scheme resolves addr to the asset scheme created at that address.
func (d *DB) Scheme(addr types.H256) (tx.AssetScheme, bool, error) {
	loc, ok, err := d.LookupScheme(addr)
	if err != nil || !ok {
		return tx.AssetScheme{}, false, err
	}
	t, ok, err := d.Transaction(loc.TransactionHash)
	if err != nil || !ok {
		return tx.AssetScheme{}, false, err
	}
	creator, ok := t.(tx.SchemeCreator)
	if !ok {
		return tx.AssetScheme{}, false, fmt.Errorf("scheme %s: %s creates no scheme", addr, t.Kind())
	}
	scheme, err := creator.AssetScheme()
	if err != nil {
		return tx.AssetScheme{}, false, err
	}
	return scheme, true, nil
}
