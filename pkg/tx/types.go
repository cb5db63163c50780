// Package tx defines every transaction kind, its canonical encoding, its
// content hash and its partial signing hash.
//
// Transactions form a closed set behind the Transaction interface. Each kind
// encodes as a list whose first element is the kind's discriminant tag,
// followed by the kind's fields in a fixed order:
//
//	Payment                [0x02, receiver, amount]
//	SetRegularKey          [0x03, key]
//	CreateShard            [0x04]
//	SetShardOwners         [0x05, shardId, owners]
//	SetShardUsers          [0x06, shardId, users]
//	CreateWorld            [0x11, networkId, shardId, nonce, owners]
//	SetWorldOwners         [0x12, networkId, shardId, worldId, nonce, owners]
//	SetWorldUsers          [0x13, networkId, shardId, worldId, nonce, users]
//	AssetMint              [0x14, networkId, shardId, metadata, lockScriptHash,
//	                        parameters, amount?, approver?, administrator?]
//	AssetTransfer          [0x15, networkId, burns, inputs, outputs]
//	AssetCompose           [0x16, networkId, shardId, metadata, approver?,
//	                        administrator?, inputs, lockScriptHash, parameters, amount?]
//	AssetDecompose         [0x17, networkId, input, outputs]
//	AssetTransactionGroup  [0x01, transactions]
//
// Fields marked "?" are optional and encode as a list of zero or one
// element, never as a nullable scalar. Addresses encode as their account id.
//
// Transactions are immutable values: builders such as WithInputs return a
// new value and leave the receiver untouched.
package tx

import (
	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// AssetOutPoint references one output slot of a previous mint, transfer,
// compose or decompose transaction.
type AssetOutPoint struct {
	TransactionHash types.H256       `json:"transactionHash"`          // Transaction that created the asset
	Index           uint32           `json:"index"`                    // Output index within that transaction
	AssetType       types.H256       `json:"assetType"`                // Must match the referenced slot
	Amount          types.U64        `json:"amount"`                   // Must match the referenced slot
	LockScriptHash  *types.H160      `json:"lockScriptHash,omitempty"` // Hint for signers, not encoded
	Parameters      []types.HexBytes `json:"parameters"`               // Hint for signers, not encoded
}

// EncodeObject returns [transactionHash, index, assetType, amount].
func (o AssetOutPoint) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Bytes(o.TransactionHash.Bytes()),
		rlp.Uint(o.Index),
		rlp.Bytes(o.AssetType.Bytes()),
		rlp.Uint(o.Amount),
	}
}

// AssetTransferInput spends an AssetOutPoint.
type AssetTransferInput struct {
	PrevOut      AssetOutPoint  `json:"prevOut"`
	LockScript   types.HexBytes `json:"lockScript"`
	UnlockScript types.HexBytes `json:"unlockScript"`
}

// EncodeObject returns [prevOut, lockScript, unlockScript].
func (in AssetTransferInput) EncodeObject() rlp.List {
	return rlp.List{
		in.PrevOut.EncodeObject(),
		rlp.Bytes(in.LockScript),
		rlp.Bytes(in.UnlockScript),
	}
}

// WithoutScript returns a copy with both scripts cleared. Signing hashes
// are computed over stripped inputs so that an unlock script never has to
// commit to its own signature.
func (in AssetTransferInput) WithoutScript() AssetTransferInput {
	in.LockScript = nil
	in.UnlockScript = nil
	return in
}

// WithScripts returns a copy carrying the given scripts.
func (in AssetTransferInput) WithScripts(lockScript, unlockScript []byte) AssetTransferInput {
	in.LockScript = append(types.HexBytes(nil), lockScript...)
	in.UnlockScript = append(types.HexBytes(nil), unlockScript...)
	return in
}

// AssetMintOutput is the single output of a mint or compose transaction.
type AssetMintOutput struct {
	LockScriptHash types.H160       `json:"lockScriptHash"`
	Parameters     []types.HexBytes `json:"parameters"`
	Amount         *types.U64       `json:"amount"` // nil: unlimited supply
}

// AssetTransferOutput is one output of a transfer or decompose transaction.
type AssetTransferOutput struct {
	LockScriptHash types.H160       `json:"lockScriptHash"`
	Parameters     []types.HexBytes `json:"parameters"`
	AssetType      types.H256       `json:"assetType"`
	Amount         types.U64        `json:"amount"`
}

// EncodeObject returns [lockScriptHash, parameters, assetType, amount].
func (o AssetTransferOutput) EncodeObject() rlp.List {
	return rlp.List{
		rlp.Bytes(o.LockScriptHash.Bytes()),
		encodeParameters(o.Parameters),
		rlp.Bytes(o.AssetType.Bytes()),
		rlp.Uint(o.Amount),
	}
}

// ShardID returns the shard embedded in the output's asset type.
func (o AssetTransferOutput) ShardID() uint16 {
	return address.ShardID(o.AssetType)
}

// Asset is an unspent output as recorded by the transaction that created it.
type Asset struct {
	AssetType              types.H256       `json:"assetType"`
	LockScriptHash         types.H160       `json:"lockScriptHash"`
	Parameters             []types.HexBytes `json:"parameters"`
	Amount                 types.U64        `json:"amount"`
	TransactionHash        types.H256       `json:"transactionHash"`
	TransactionOutputIndex uint32           `json:"transactionOutputIndex"`
}

// OutPoint returns the out point referencing this asset.
func (a Asset) OutPoint() AssetOutPoint {
	lockScriptHash := a.LockScriptHash
	return AssetOutPoint{
		TransactionHash: a.TransactionHash,
		Index:           a.TransactionOutputIndex,
		AssetType:       a.AssetType,
		Amount:          a.Amount,
		LockScriptHash:  &lockScriptHash,
		Parameters:      copyParameters(a.Parameters),
	}
}

// TransferInput returns an unsigned input spending this asset.
func (a Asset) TransferInput() AssetTransferInput {
	return AssetTransferInput{PrevOut: a.OutPoint()}
}

// PoolEntry is one asset type held by a composed asset scheme.
type PoolEntry struct {
	AssetType types.H256 `json:"assetType"`
	Amount    types.U64  `json:"amount"`
}

// AssetScheme describes an asset type: its metadata, supply and the assets
// locked into it by composition.
type AssetScheme struct {
	NetworkID     types.NetworkID          `json:"networkId"`
	ShardID       uint16                   `json:"shardId"`
	Metadata      string                   `json:"metadata"`
	Amount        types.U64                `json:"amount"`
	Approver      *address.PlatformAddress `json:"approver"`
	Administrator *address.PlatformAddress `json:"administrator"`
	Pool          []PoolEntry              `json:"pool"` // Unique by asset type, first-seen order
}

// sumPool totals input amounts per asset type. Sums are accumulated in
// U256 and narrowed back to U64, so an overflowing pool is rejected.
func sumPool(inputs []AssetTransferInput) ([]PoolEntry, error) {
	var order []types.H256
	totals := make(map[types.H256]types.U256)

	for _, input := range inputs {
		assetType := input.PrevOut.AssetType
		current, seen := totals[assetType]
		if !seen {
			order = append(order, assetType)
		}
		next, err := current.Add(types.NewU256(uint64(input.PrevOut.Amount)))
		if err != nil {
			return nil, err
		}
		totals[assetType] = next
	}

	pool := make([]PoolEntry, 0, len(order))
	for _, assetType := range order {
		amount, err := totals[assetType].U64()
		if err != nil {
			return nil, types.Wrap(types.CodeAmountOverflow, err, "pool amount for asset type %s", assetType)
		}
		pool = append(pool, PoolEntry{AssetType: assetType, Amount: amount})
	}
	return pool, nil
}

func encodeParameters(params []types.HexBytes) rlp.List {
	list := make(rlp.List, len(params))
	for i, p := range params {
		list[i] = rlp.Bytes(p)
	}
	return list
}

func encodeInputs(inputs []AssetTransferInput) rlp.List {
	list := make(rlp.List, len(inputs))
	for i, input := range inputs {
		list[i] = input.EncodeObject()
	}
	return list
}

func encodeOutputs(outputs []AssetTransferOutput) rlp.List {
	list := make(rlp.List, len(outputs))
	for i, output := range outputs {
		list[i] = output.EncodeObject()
	}
	return list
}

func encodeAccounts(accounts []address.PlatformAddress) rlp.List {
	list := make(rlp.List, len(accounts))
	for i, a := range accounts {
		list[i] = rlp.Bytes(a.AccountID.Bytes())
	}
	return list
}

// encodeOptionalAddress returns [] or [accountId].
func encodeOptionalAddress(a *address.PlatformAddress) rlp.List {
	if a == nil {
		return rlp.List{}
	}
	return rlp.List{rlp.Bytes(a.AccountID.Bytes())}
}

// encodeOptionalAmount returns [] or [amount].
func encodeOptionalAmount(amount *types.U64) rlp.List {
	if amount == nil {
		return rlp.List{}
	}
	return rlp.List{rlp.Uint(*amount)}
}

func copyParameters(params []types.HexBytes) []types.HexBytes {
	if params == nil {
		return nil
	}
	out := make([]types.HexBytes, len(params))
	for i, p := range params {
		out[i] = append(types.HexBytes(nil), p...)
	}
	return out
}

func amountOrMax(amount *types.U64) types.U64 {
	if amount == nil {
		return types.MaxU64
	}
	return *amount
}
