package tx

import (
	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// AssetDecompose spends a composed asset and releases its pooled assets
// into outputs.
type AssetDecompose struct {
	NetworkID types.NetworkID       `json:"networkId"`
	Input     AssetTransferInput    `json:"input"`
	Outputs   []AssetTransferOutput `json:"outputs"`
}

// Kind, Hash and Network implement AssetTransaction.
func (AssetDecompose) Kind() Kind                 { return KindAssetDecompose }
func (t AssetDecompose) Hash() types.H256         { return hashOf(t) }
func (t AssetDecompose) Network() types.NetworkID { return t.NetworkID }
func (AssetDecompose) isTransaction()             {}
func (AssetDecompose) isAssetTransaction()        {}

// EncodeObject returns [0x17, networkId, input, outputs].
func (t AssetDecompose) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Uint(KindAssetDecompose),
		rlp.Bytes(t.NetworkID.Bytes()),
		t.Input.EncodeObject(),
		encodeOutputs(t.Outputs),
	}
}

// InputCount returns the number of inputs a single-input tag may select.
func (t AssetDecompose) InputCount() int { return 1 }

// HashWithoutScript returns the signing hash selected by tag. The only
// valid single-input index is 0. Output scope none drops every output.
func (t AssetDecompose) HashWithoutScript(tag SignatureTag) (types.H256, error) {
	inputs, err := tag.selectInputs([]AssetTransferInput{t.Input})
	if err != nil {
		return types.H256{}, err
	}

	var outputs []AssetTransferOutput
	if tag.Output == OutputAll {
		outputs = t.Outputs
	}

	stripped := AssetDecompose{
		NetworkID: t.NetworkID,
		Input:     inputs[0],
		Outputs:   outputs,
	}
	return signingHash(stripped.EncodeObject(), tag)
}

// WithOutputs returns a copy with outputs appended.
func (t AssetDecompose) WithOutputs(outputs ...AssetTransferOutput) AssetDecompose {
	out := make([]AssetTransferOutput, 0, len(t.Outputs)+len(outputs))
	out = append(out, t.Outputs...)
	t.Outputs = append(out, outputs...)
	return t
}

// OutputCount returns the number of created assets.
func (t AssetDecompose) OutputCount() int { return len(t.Outputs) }

// AssetAddressAt returns the address of the asset released at output
// index, in the shard of the output's asset type.
func (t AssetDecompose) AssetAddressAt(index int) (types.H256, error) {
	if index < 0 || index >= len(t.Outputs) {
		return types.H256{}, outputIndexError(index, len(t.Outputs))
	}
	return address.AssetAddress(t.Hash(), uint64(index), t.Outputs[index].ShardID()), nil
}

// CreatedAssets returns one asset per output.
func (t AssetDecompose) CreatedAssets() []Asset {
	return outputAssets(t.Hash(), t.Outputs)
}
