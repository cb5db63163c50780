package tx

import (
	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// AssetMint creates a new asset scheme and mints its whole supply into a
// single output.
type AssetMint struct {
	NetworkID     types.NetworkID          `json:"networkId"`
	ShardID       uint16                   `json:"shardId"`
	Metadata      string                   `json:"metadata"`
	Output        AssetMintOutput          `json:"output"`
	Approver      *address.PlatformAddress `json:"approver"`
	Administrator *address.PlatformAddress `json:"administrator"`
}

// Kind, Hash and Network implement AssetTransaction.
func (AssetMint) Kind() Kind                 { return KindAssetMint }
func (t AssetMint) Hash() types.H256         { return hashOf(t) }
func (t AssetMint) Network() types.NetworkID { return t.NetworkID }
func (AssetMint) isTransaction()             {}
func (AssetMint) isAssetTransaction()        {}

// EncodeObject returns [0x14, networkId, shardId, metadata,
// lockScriptHash, parameters, amount?, approver?, administrator?].
func (t AssetMint) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Uint(KindAssetMint),
		rlp.Bytes(t.NetworkID.Bytes()),
		rlp.Uint(t.ShardID),
		rlp.String(t.Metadata),
		rlp.Bytes(t.Output.LockScriptHash.Bytes()),
		encodeParameters(t.Output.Parameters),
		encodeOptionalAmount(t.Output.Amount),
		encodeOptionalAddress(t.Approver),
		encodeOptionalAddress(t.Administrator),
	}
}

// AssetSchemeAddress returns the address of the minted scheme, which is
// also the asset type of the minted asset.
func (t AssetMint) AssetSchemeAddress() types.H256 {
	return address.AssetSchemeAddress(t.Hash(), t.ShardID)
}

// AssetAddress returns the address of the minted asset.
func (t AssetMint) AssetAddress() types.H256 {
	return address.AssetAddress(t.Hash(), 0, t.ShardID)
}

// OutputCount returns the number of created assets.
func (t AssetMint) OutputCount() int { return 1 }

// AssetAddressAt returns the address of the asset created at output index.
func (t AssetMint) AssetAddressAt(index int) (types.H256, error) {
	if index != 0 {
		return types.H256{}, outputIndexError(index, 1)
	}
	return t.AssetAddress(), nil
}

// MintedAsset returns the asset created by the mint. A nil output amount
// mints the maximum supply.
func (t AssetMint) MintedAsset() Asset {
	return Asset{
		AssetType:              t.AssetSchemeAddress(),
		LockScriptHash:         t.Output.LockScriptHash,
		Parameters:             copyParameters(t.Output.Parameters),
		Amount:                 amountOrMax(t.Output.Amount),
		TransactionHash:        t.Hash(),
		TransactionOutputIndex: 0,
	}
}

// CreatedAssets returns the assets created by the transaction.
func (t AssetMint) CreatedAssets() []Asset {
	return []Asset{t.MintedAsset()}
}

// AssetScheme returns the scheme created by the mint. Minted schemes hold
// no pooled assets.
func (t AssetMint) AssetScheme() (AssetScheme, error) {
	return AssetScheme{
		NetworkID:     t.NetworkID,
		ShardID:       t.ShardID,
		Metadata:      t.Metadata,
		Amount:        amountOrMax(t.Output.Amount),
		Approver:      t.Approver,
		Administrator: t.Administrator,
		Pool:          []PoolEntry{},
	}, nil
}
