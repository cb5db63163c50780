package tx

import (
	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// Kind is the discriminant tag of a transaction, the first element of its
// canonical encoding.
type Kind uint8

const (
	KindAssetTransactionGroup Kind = 0x01
	KindPayment               Kind = 0x02
	KindSetRegularKey         Kind = 0x03
	KindCreateShard           Kind = 0x04
	KindSetShardOwners        Kind = 0x05
	KindSetShardUsers         Kind = 0x06
	KindCreateWorld           Kind = 0x11
	KindSetWorldOwners        Kind = 0x12
	KindSetWorldUsers         Kind = 0x13
	KindAssetMint             Kind = 0x14
	KindAssetTransfer         Kind = 0x15
	KindAssetCompose          Kind = 0x16
	KindAssetDecompose        Kind = 0x17
)

var kindNames = map[Kind]string{
	KindAssetTransactionGroup: "assetTransactionGroup",
	KindPayment:               "payment",
	KindSetRegularKey:         "setRegularKey",
	KindCreateShard:           "createShard",
	KindSetShardOwners:        "setShardOwners",
	KindSetShardUsers:         "setShardUsers",
	KindCreateWorld:           "createWorld",
	KindSetWorldOwners:        "setWorldOwners",
	KindSetWorldUsers:         "setWorldUsers",
	KindAssetMint:             "assetMint",
	KindAssetTransfer:         "assetTransfer",
	KindAssetCompose:          "assetCompose",
	KindAssetDecompose:        "assetDecompose",
}

// String returns the name used in the JSON "type" field.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Transaction is implemented by every transaction kind of this package and
// by no other type.
type Transaction interface {
	// Kind returns the discriminant tag.
	Kind() Kind
	// EncodeObject returns the canonical list: tag followed by the fields.
	EncodeObject() rlp.List
	// Hash returns BLAKE2b-256 of the canonical encoding.
	Hash() types.H256

	isTransaction()
}

// AssetTransaction is a transaction that may be grouped in an
// AssetTransactionGroup.
type AssetTransaction interface {
	Transaction
	Network() types.NetworkID

	isAssetTransaction()
}

// InputSpender is a transaction that spends asset inputs and therefore has
// a partial signing hash.
type InputSpender interface {
	AssetTransaction
	// InputCount returns the number of inputs a single-input tag may select.
	InputCount() int
	// HashWithoutScript returns the signing hash selected by tag.
	HashWithoutScript(tag SignatureTag) (types.H256, error)
}

// SchemeCreator is a transaction that creates a new asset scheme.
type SchemeCreator interface {
	AssetTransaction
	AssetSchemeAddress() types.H256
	AssetScheme() (AssetScheme, error)
}

// AssetCreator is a transaction that creates assets at its outputs.
type AssetCreator interface {
	AssetTransaction
	// OutputCount returns the number of created assets.
	OutputCount() int
	// AssetAddressAt returns the address of the asset at output index.
	AssetAddressAt(index int) (types.H256, error)
	// CreatedAssets returns the assets created by the transaction.
	CreatedAssets() []Asset
}

// RLPBytes returns the canonical encoding of t.
func RLPBytes(t Transaction) []byte {
	return rlp.Encode(t.EncodeObject())
}

func hashOf(t Transaction) types.H256 {
	return crypto.Blake256(RLPBytes(t))
}

// SigningHash returns the partial signing hash of t selected by tag.
// Kinds that spend no inputs yield UNSUPPORTED_OPERATION.
func SigningHash(t Transaction, tag SignatureTag) (types.H256, error) {
	spender, ok := t.(InputSpender)
	if !ok {
		return types.H256{}, types.Errorf(types.CodeUnsupportedOperation, "%s has no inputs to sign", t.Kind())
	}
	return spender.HashWithoutScript(tag)
}

// AssetSchemeAddressOf returns the scheme address created by t.
func AssetSchemeAddressOf(t Transaction) (types.H256, error) {
	creator, ok := t.(SchemeCreator)
	if !ok {
		return types.H256{}, types.Errorf(types.CodeUnsupportedOperation, "%s creates no asset scheme", t.Kind())
	}
	return creator.AssetSchemeAddress(), nil
}

// AssetAddressOf returns the address of the asset created at output index.
func AssetAddressOf(t Transaction, index int) (types.H256, error) {
	creator, ok := t.(AssetCreator)
	if !ok {
		return types.H256{}, types.Errorf(types.CodeUnsupportedOperation, "%s creates no assets", t.Kind())
	}
	return creator.AssetAddressAt(index)
}

func outputIndexError(index, count int) error {
	return types.Errorf(types.CodeMissingIndex, "output index %d out of range (have %d outputs)", index, count)
}

func copyInputs(inputs []AssetTransferInput, more ...AssetTransferInput) []AssetTransferInput {
	out := make([]AssetTransferInput, 0, len(inputs)+len(more))
	out = append(out, inputs...)
	return append(out, more...)
}

func inputsFromAssets(assets []Asset) []AssetTransferInput {
	inputs := make([]AssetTransferInput, len(assets))
	for i, a := range assets {
		inputs[i] = a.TransferInput()
	}
	return inputs
}
