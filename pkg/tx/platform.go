package tx

import (
	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// Payment moves platform currency to another account.
type Payment struct {
	Receiver address.PlatformAddress `json:"receiver"`
	Amount   types.U64               `json:"amount"`
}

// Kind and Hash implement Transaction.
func (Payment) Kind() Kind         { return KindPayment }
func (t Payment) Hash() types.H256 { return hashOf(t) }
func (Payment) isTransaction()     {}

// EncodeObject returns [0x02, receiver, amount].
func (t Payment) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Uint(KindPayment),
		rlp.Bytes(t.Receiver.AccountID.Bytes()),
		rlp.Uint(t.Amount),
	}
}

// SetRegularKey registers a secondary key allowed to sign parcels for the
// account.
type SetRegularKey struct {
	Key types.H512 `json:"key"`
}

// Kind and Hash implement Transaction.
func (SetRegularKey) Kind() Kind         { return KindSetRegularKey }
func (t SetRegularKey) Hash() types.H256 { return hashOf(t) }
func (SetRegularKey) isTransaction()     {}

// EncodeObject returns [0x03, key].
func (t SetRegularKey) EncodeObject() rlp.List {
	return rlp.List{rlp.Uint(KindSetRegularKey), rlp.Bytes(t.Key.Bytes())}
}

// CreateShard creates a new shard owned by the parcel signer.
type CreateShard struct{}

// Kind and Hash implement Transaction.
func (CreateShard) Kind() Kind         { return KindCreateShard }
func (t CreateShard) Hash() types.H256 { return hashOf(t) }
func (CreateShard) isTransaction()     {}

// EncodeObject returns [0x04].
func (CreateShard) EncodeObject() rlp.List {
	return rlp.List{rlp.Uint(KindCreateShard)}
}

// SetShardOwners replaces the owner set of a shard.
type SetShardOwners struct {
	ShardID uint16                    `json:"shardId"`
	Owners  []address.PlatformAddress `json:"owners"`
}

// Kind and Hash implement Transaction.
func (SetShardOwners) Kind() Kind         { return KindSetShardOwners }
func (t SetShardOwners) Hash() types.H256 { return hashOf(t) }
func (SetShardOwners) isTransaction()     {}

// EncodeObject returns [0x05, shardId, owners].
func (t SetShardOwners) EncodeObject() rlp.List {
	return rlp.List{rlp.Uint(KindSetShardOwners), rlp.Uint(t.ShardID), encodeAccounts(t.Owners)}
}

// SetShardUsers replaces the user set of a shard.
type SetShardUsers struct {
	ShardID uint16                    `json:"shardId"`
	Users   []address.PlatformAddress `json:"users"`
}

// Kind and Hash implement Transaction.
func (SetShardUsers) Kind() Kind         { return KindSetShardUsers }
func (t SetShardUsers) Hash() types.H256 { return hashOf(t) }
func (SetShardUsers) isTransaction()     {}

// EncodeObject returns [0x06, shardId, users].
func (t SetShardUsers) EncodeObject() rlp.List {
	return rlp.List{rlp.Uint(KindSetShardUsers), rlp.Uint(t.ShardID), encodeAccounts(t.Users)}
}

// CreateWorld creates a world inside a shard.
type CreateWorld struct {
	NetworkID types.NetworkID           `json:"networkId"`
	ShardID   uint16                    `json:"shardId"`
	Nonce     types.U64                 `json:"nonce"`
	Owners    []address.PlatformAddress `json:"owners"`
}

// Kind, Hash and Network implement AssetTransaction.
func (CreateWorld) Kind() Kind                 { return KindCreateWorld }
func (t CreateWorld) Hash() types.H256         { return hashOf(t) }
func (t CreateWorld) Network() types.NetworkID { return t.NetworkID }
func (CreateWorld) isTransaction()             {}
func (CreateWorld) isAssetTransaction()        {}

// EncodeObject returns [0x11, networkId, shardId, nonce, owners].
func (t CreateWorld) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Uint(KindCreateWorld),
		rlp.Bytes(t.NetworkID.Bytes()),
		rlp.Uint(t.ShardID),
		rlp.Uint(t.Nonce),
		encodeAccounts(t.Owners),
	}
}

// SetWorldOwners replaces the owner set of a world.
type SetWorldOwners struct {
	NetworkID types.NetworkID           `json:"networkId"`
	ShardID   uint16                    `json:"shardId"`
	WorldID   uint16                    `json:"worldId"`
	Nonce     types.U64                 `json:"nonce"`
	Owners    []address.PlatformAddress `json:"owners"`
}

// Kind, Hash and Network implement AssetTransaction.
func (SetWorldOwners) Kind() Kind                 { return KindSetWorldOwners }
func (t SetWorldOwners) Hash() types.H256         { return hashOf(t) }
func (t SetWorldOwners) Network() types.NetworkID { return t.NetworkID }
func (SetWorldOwners) isTransaction()             {}
func (SetWorldOwners) isAssetTransaction()        {}

// EncodeObject returns [0x12, networkId, shardId, worldId, nonce, owners].
func (t SetWorldOwners) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Uint(KindSetWorldOwners),
		rlp.Bytes(t.NetworkID.Bytes()),
		rlp.Uint(t.ShardID),
		rlp.Uint(t.WorldID),
		rlp.Uint(t.Nonce),
		encodeAccounts(t.Owners),
	}
}

// SetWorldUsers replaces the user set of a world.
type SetWorldUsers struct {
	NetworkID types.NetworkID           `json:"networkId"`
	ShardID   uint16                    `json:"shardId"`
	WorldID   uint16                    `json:"worldId"`
	Nonce     types.U64                 `json:"nonce"`
	Users     []address.PlatformAddress `json:"users"`
}

// Kind, Hash and Network implement AssetTransaction.
func (SetWorldUsers) Kind() Kind                 { return KindSetWorldUsers }
func (t SetWorldUsers) Hash() types.H256         { return hashOf(t) }
func (t SetWorldUsers) Network() types.NetworkID { return t.NetworkID }
func (SetWorldUsers) isTransaction()             {}
func (SetWorldUsers) isAssetTransaction()        {}

// EncodeObject returns [0x13, networkId, shardId, worldId, nonce, users].
func (t SetWorldUsers) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Uint(KindSetWorldUsers),
		rlp.Bytes(t.NetworkID.Bytes()),
		rlp.Uint(t.ShardID),
		rlp.Uint(t.WorldID),
		rlp.Uint(t.Nonce),
		encodeAccounts(t.Users),
	}
}
