package tx

import (
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// AssetTransactionGroup carries several asset transactions as one parcel
// action.
type AssetTransactionGroup struct {
	Transactions []AssetTransaction
}

// Kind and Hash implement Transaction.
func (AssetTransactionGroup) Kind() Kind         { return KindAssetTransactionGroup }
func (t AssetTransactionGroup) Hash() types.H256 { return hashOf(t) }
func (AssetTransactionGroup) isTransaction()     {}

// EncodeObject returns [0x01, transactions].
func (t AssetTransactionGroup) EncodeObject() rlp.List {
	list := make(rlp.List, len(t.Transactions))
	for i, inner := range t.Transactions {
		list[i] = inner.EncodeObject()
	}
	return rlp.List{rlp.Uint(KindAssetTransactionGroup), list}
}

// Hashes returns the hash of every grouped transaction, in order.
func (t AssetTransactionGroup) Hashes() []types.H256 {
	hashes := make([]types.H256, len(t.Transactions))
	for i, inner := range t.Transactions {
		hashes[i] = inner.Hash()
	}
	return hashes
}
