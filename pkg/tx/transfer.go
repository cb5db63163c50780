package tx

import (
	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// AssetTransfer spends inputs into new outputs and destroys burns.
type AssetTransfer struct {
	NetworkID types.NetworkID       `json:"networkId"`
	Burns     []AssetTransferInput  `json:"burns"`
	Inputs    []AssetTransferInput  `json:"inputs"`
	Outputs   []AssetTransferOutput `json:"outputs"`
}

// Kind, Hash and Network implement AssetTransaction.
func (AssetTransfer) Kind() Kind                 { return KindAssetTransfer }
func (t AssetTransfer) Hash() types.H256         { return hashOf(t) }
func (t AssetTransfer) Network() types.NetworkID { return t.NetworkID }
func (AssetTransfer) isTransaction()             {}
func (AssetTransfer) isAssetTransaction()        {}

// EncodeObject returns [0x15, networkId, burns, inputs, outputs].
func (t AssetTransfer) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Uint(KindAssetTransfer),
		rlp.Bytes(t.NetworkID.Bytes()),
		encodeInputs(t.Burns),
		encodeInputs(t.Inputs),
		encodeOutputs(t.Outputs),
	}
}

// InputCount returns the number of inputs a single-input tag may select.
func (t AssetTransfer) InputCount() int { return len(t.Inputs) }

// HashWithoutScript returns the signing hash selected by tag.
//
// With input scope all, every burn and input is included without scripts.
// With input scope single, only the selected input is included and burns
// are dropped. Output scope none drops every output.
func (t AssetTransfer) HashWithoutScript(tag SignatureTag) (types.H256, error) {
	inputs, err := tag.selectInputs(t.Inputs)
	if err != nil {
		return types.H256{}, err
	}

	var burns []AssetTransferInput
	if tag.Input == InputAll {
		burns = make([]AssetTransferInput, len(t.Burns))
		for i, burn := range t.Burns {
			burns[i] = burn.WithoutScript()
		}
	}

	var outputs []AssetTransferOutput
	if tag.Output == OutputAll {
		outputs = t.Outputs
	}

	stripped := AssetTransfer{
		NetworkID: t.NetworkID,
		Burns:     burns,
		Inputs:    inputs,
		Outputs:   outputs,
	}
	return signingHash(stripped.EncodeObject(), tag)
}

// WithInputs returns a copy with inputs appended.
func (t AssetTransfer) WithInputs(inputs ...AssetTransferInput) AssetTransfer {
	t.Inputs = copyInputs(t.Inputs, inputs...)
	return t
}

// WithAssets returns a copy spending the given assets as unsigned inputs.
func (t AssetTransfer) WithAssets(assets ...Asset) AssetTransfer {
	return t.WithInputs(inputsFromAssets(assets)...)
}

// WithBurns returns a copy with burns appended.
func (t AssetTransfer) WithBurns(burns ...AssetTransferInput) AssetTransfer {
	t.Burns = copyInputs(t.Burns, burns...)
	return t
}

// WithBurnAssets returns a copy burning the given assets.
func (t AssetTransfer) WithBurnAssets(assets ...Asset) AssetTransfer {
	return t.WithBurns(inputsFromAssets(assets)...)
}

// WithOutputs returns a copy with outputs appended.
func (t AssetTransfer) WithOutputs(outputs ...AssetTransferOutput) AssetTransfer {
	out := make([]AssetTransferOutput, 0, len(t.Outputs)+len(outputs))
	out = append(out, t.Outputs...)
	t.Outputs = append(out, outputs...)
	return t
}

// OutputCount returns the number of created assets.
func (t AssetTransfer) OutputCount() int { return len(t.Outputs) }

// AssetAddressAt returns the address of the asset created at output index,
// in the shard of the output's asset type.
func (t AssetTransfer) AssetAddressAt(index int) (types.H256, error) {
	if index < 0 || index >= len(t.Outputs) {
		return types.H256{}, outputIndexError(index, len(t.Outputs))
	}
	return address.AssetAddress(t.Hash(), uint64(index), t.Outputs[index].ShardID()), nil
}

// CreatedAssets returns one asset per output.
func (t AssetTransfer) CreatedAssets() []Asset {
	return outputAssets(t.Hash(), t.Outputs)
}

func outputAssets(txHash types.H256, outputs []AssetTransferOutput) []Asset {
	assets := make([]Asset, len(outputs))
	for i, o := range outputs {
		assets[i] = Asset{
			AssetType:              o.AssetType,
			LockScriptHash:         o.LockScriptHash,
			Parameters:             copyParameters(o.Parameters),
			Amount:                 o.Amount,
			TransactionHash:        txHash,
			TransactionOutputIndex: uint32(i),
		}
	}
	return assets
}
