package tx

import (
	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// AssetCompose locks its inputs into a new asset scheme and mints the
// composed asset into a single output.
type AssetCompose struct {
	NetworkID     types.NetworkID          `json:"networkId"`
	ShardID       uint16                   `json:"shardId"`
	Metadata      string                   `json:"metadata"`
	Approver      *address.PlatformAddress `json:"approver"`
	Administrator *address.PlatformAddress `json:"administrator"`
	Inputs        []AssetTransferInput     `json:"inputs"`
	Output        AssetMintOutput          `json:"output"`
}

// Kind, Hash and Network implement AssetTransaction.
func (AssetCompose) Kind() Kind                 { return KindAssetCompose }
func (t AssetCompose) Hash() types.H256         { return hashOf(t) }
func (t AssetCompose) Network() types.NetworkID { return t.NetworkID }
func (AssetCompose) isTransaction()             {}
func (AssetCompose) isAssetTransaction()        {}

// EncodeObject returns [0x16, networkId, shardId, metadata,
// approver?, administrator?, inputs, lockScriptHash, parameters, amount?].
func (t AssetCompose) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Uint(KindAssetCompose),
		rlp.Bytes(t.NetworkID.Bytes()),
		rlp.Uint(t.ShardID),
		rlp.String(t.Metadata),
		encodeOptionalAddress(t.Approver),
		encodeOptionalAddress(t.Administrator),
		encodeInputs(t.Inputs),
		rlp.Bytes(t.Output.LockScriptHash.Bytes()),
		encodeParameters(t.Output.Parameters),
		encodeOptionalAmount(t.Output.Amount),
	}
}

// InputCount returns the number of inputs a single-input tag may select.
func (t AssetCompose) InputCount() int { return len(t.Inputs) }

// HashWithoutScript returns the signing hash selected by tag. Output scope
// none replaces the output by a placeholder with a zero lock script hash,
// no parameters and no amount.
func (t AssetCompose) HashWithoutScript(tag SignatureTag) (types.H256, error) {
	inputs, err := tag.selectInputs(t.Inputs)
	if err != nil {
		return types.H256{}, err
	}

	output := t.Output
	if tag.Output == OutputNone {
		output = AssetMintOutput{}
	}

	stripped := t
	stripped.Inputs = inputs
	stripped.Output = output
	return signingHash(stripped.EncodeObject(), tag)
}

// WithInputs returns a copy with inputs appended.
func (t AssetCompose) WithInputs(inputs ...AssetTransferInput) AssetCompose {
	t.Inputs = copyInputs(t.Inputs, inputs...)
	return t
}

// WithAssets returns a copy composing the given assets as unsigned inputs.
func (t AssetCompose) WithAssets(assets ...Asset) AssetCompose {
	return t.WithInputs(inputsFromAssets(assets)...)
}

// AssetSchemeAddress returns the address of the composed scheme, which is
// also the asset type of the composed asset.
func (t AssetCompose) AssetSchemeAddress() types.H256 {
	return address.AssetSchemeAddress(t.Hash(), t.ShardID)
}

// AssetAddress returns the address of the composed asset.
func (t AssetCompose) AssetAddress() types.H256 {
	return address.AssetAddress(t.Hash(), 0, t.ShardID)
}

// OutputCount returns the number of created assets.
func (t AssetCompose) OutputCount() int { return 1 }

// AssetAddressAt returns the address of the asset created at output index.
func (t AssetCompose) AssetAddressAt(index int) (types.H256, error) {
	if index != 0 {
		return types.H256{}, outputIndexError(index, 1)
	}
	return t.AssetAddress(), nil
}

// ComposedAsset returns the asset created by the composition. A nil
// output amount yields the maximum amount.
func (t AssetCompose) ComposedAsset() Asset {
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
func (t AssetCompose) CreatedAssets() []Asset {
	return []Asset{t.ComposedAsset()}
}

// AssetScheme returns the scheme created by the composition. Its pool
// holds the input amounts summed per asset type, in order of first
// appearance. An overflowing sum fails with AMOUNT_OVERFLOW.
func (t AssetCompose) AssetScheme() (AssetScheme, error) {
	pool, err := sumPool(t.Inputs)
	if err != nil {
		return AssetScheme{}, err
	}
	return AssetScheme{
		NetworkID:     t.NetworkID,
		ShardID:       t.ShardID,
		Metadata:      t.Metadata,
		Amount:        amountOrMax(t.Output.Amount),
		Approver:      t.Approver,
		Administrator: t.Administrator,
		Pool:          pool,
	}, nil
}
