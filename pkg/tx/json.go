package tx

import (
	"encoding/json"

	"github.com/suffix-labs/shardtx/pkg/types"
)

// envelope is the JSON form of any transaction:
//
//	{"type": "assetTransfer", "data": {...}}
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalTransaction returns the JSON envelope of t.
func MarshalTransaction(t Transaction) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: t.Kind().String(), Data: data})
}

// UnmarshalTransaction parses a JSON envelope into a typed transaction.
// Unknown kinds, unknown fields and malformed values yield
// INVALID_FIELD_VALUE (or the more specific code of the failing field).
func UnmarshalTransaction(b []byte) (Transaction, error) {
	var env envelope
	if err := types.StrictUnmarshal(b, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, types.Errorf(types.CodeInvalidFieldValue, "transaction %q: missing data", env.Type)
	}

	switch env.Type {
	case "payment":
		return decodeAs[Payment](env)
	case "setRegularKey":
		return decodeAs[SetRegularKey](env)
	case "createShard":
		return decodeAs[CreateShard](env)
	case "setShardOwners":
		return decodeAs[SetShardOwners](env)
	case "setShardUsers":
		return decodeAs[SetShardUsers](env)
	case "createWorld":
		return decodeAs[CreateWorld](env)
	case "setWorldOwners":
		return decodeAs[SetWorldOwners](env)
	case "setWorldUsers":
		return decodeAs[SetWorldUsers](env)
	case "assetMint":
		return decodeAs[AssetMint](env)
	case "assetTransfer":
		return decodeAs[AssetTransfer](env)
	case "assetCompose":
		return decodeAs[AssetCompose](env)
	case "assetDecompose":
		return decodeAs[AssetDecompose](env)
	case "assetTransactionGroup":
		return decodeAs[AssetTransactionGroup](env)
	default:
		return nil, types.Errorf(types.CodeInvalidFieldValue, "unknown transaction type %q", env.Type)
	}
}

// networkChecker is implemented by kinds that carry a network id.
type networkChecker interface {
	Network() types.NetworkID
}

func decodeAs[T Transaction](env envelope) (Transaction, error) {
	var t T
	if err := types.StrictUnmarshal(env.Data, &t); err != nil {
		return nil, types.Wrap(types.CodeInvalidFieldValue, err, "transaction %q", env.Type)
	}
	if nc, ok := any(t).(networkChecker); ok {
		if err := nc.Network().Validate(); err != nil {
			return nil, types.Wrap(types.CodeInvalidFieldValue, err, "transaction %q", env.Type)
		}
	}
	return t, nil
}

type groupJSON struct {
	Transactions []json.RawMessage `json:"transactions"`
}

// MarshalJSON renders {"transactions": [envelope...]}.
func (t AssetTransactionGroup) MarshalJSON() ([]byte, error) {
	out := groupJSON{Transactions: make([]json.RawMessage, len(t.Transactions))}
	for i, inner := range t.Transactions {
		b, err := MarshalTransaction(inner)
		if err != nil {
			return nil, err
		}
		out.Transactions[i] = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses every grouped envelope, accepting asset
// transactions only.
func (t *AssetTransactionGroup) UnmarshalJSON(b []byte) error {
	var in groupJSON
	if err := types.StrictUnmarshal(b, &in); err != nil {
		return err
	}
	group := AssetTransactionGroup{Transactions: make([]AssetTransaction, len(in.Transactions))}
	for i, raw := range in.Transactions {
		inner, err := UnmarshalTransaction(raw)
		if err != nil {
			return err
		}
		asset, ok := inner.(AssetTransaction)
		if !ok {
			return types.Errorf(types.CodeInvalidFieldValue, "group member %d: %s is not an asset transaction", i, inner.Kind())
		}
		group.Transactions[i] = asset
	}
	*t = group
	return nil
}
