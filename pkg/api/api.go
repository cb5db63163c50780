// Package api provides the high-level public API for shardtx operations.
//
// This is the main entry point for applications that hold transactions and
// parcels in their JSON form. It implements the core functions used by the
// shardtx command-line tool:
//
//  1. TransactionHash - Content hash of a transaction
//  2. SigningHash - Partial signing hash selected by a signature tag
//  3. DeriveAddresses - Asset scheme and asset addresses a transaction creates
//  4. EncodeTransaction - Canonical wire bytes
//  5. SignParcel - Signs a parcel with a platform key
//  6. RecoverSigner - Recovers the platform address that signed a parcel
//  7. IndexTransaction / LookupAddress - Local address index
package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/parcel"
	"github.com/suffix-labs/shardtx/pkg/signer"
	"github.com/suffix-labs/shardtx/pkg/store"
	"github.com/suffix-labs/shardtx/pkg/tx"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// ============================================================================
// API Function 1: TransactionHash
// ============================================================================

// TransactionHash parses a transaction envelope and returns its hash.
//
// Parameters:
//   - txJSON: {"type": ..., "data": ...} envelope of any transaction kind
//
// Returns:
//   - BLAKE2b-256 of the canonical encoding
//   - INVALID_FIELD_VALUE if the envelope does not parse
func TransactionHash(txJSON []byte) (types.H256, error) {
	t, err := tx.UnmarshalTransaction(txJSON)
	if err != nil {
		return types.H256{}, err
	}
	return t.Hash(), nil
}

// ============================================================================
// API Function 2: SigningHash
// ============================================================================

// SigningHash returns the hash an input owner signs.
//
// Lock and unlock scripts are stripped from every committed input, so the
// hash stays stable while signatures are attached.
//
// Parameters:
//   - txJSON: envelope of a transfer, compose or decompose
//   - tagJSON: {"input": "all"|"single", "output": "all"|[], "index"?};
//     empty means the all/all tag
//
// Returns:
//   - The keyed signing hash
//   - UNSUPPORTED_OPERATION for kinds without inputs
//   - INVALID_SIGNATURE_TAG or MISSING_INDEX for unusable tags
func SigningHash(txJSON, tagJSON []byte) (types.H256, error) {
	t, err := tx.UnmarshalTransaction(txJSON)
	if err != nil {
		return types.H256{}, err
	}

	tag := tx.TagAll
	if len(tagJSON) > 0 {
		if err := json.Unmarshal(tagJSON, &tag); err != nil {
			return types.H256{}, err
		}
	}

	return tx.SigningHash(t, tag)
}

// ============================================================================
// API Function 3: DeriveAddresses
// ============================================================================

// Addresses lists what a transaction creates.
type Addresses struct {
	TransactionHash types.H256   `json:"transactionHash"`
	AssetScheme     *types.H256  `json:"assetScheme,omitempty"`
	Assets          []types.H256 `json:"assets,omitempty"`
}

// DeriveAddresses returns the scheme and asset addresses created by a
// transaction. Kinds that create neither return just the hash.
func DeriveAddresses(txJSON []byte) (*Addresses, error) {
	t, err := tx.UnmarshalTransaction(txJSON)
	if err != nil {
		return nil, err
	}

	out := &Addresses{TransactionHash: t.Hash()}
	if creator, ok := t.(tx.SchemeCreator); ok {
		addr := creator.AssetSchemeAddress()
		out.AssetScheme = &addr
	}
	if creator, ok := t.(tx.AssetCreator); ok {
		for i := 0; i < creator.OutputCount(); i++ {
			addr, err := creator.AssetAddressAt(i)
			if err != nil {
				return nil, err
			}
			out.Assets = append(out.Assets, addr)
		}
	}
	return out, nil
}

// ============================================================================
// API Function 4: EncodeTransaction
// ============================================================================

// EncodeTransaction returns the canonical wire bytes of a transaction.
func EncodeTransaction(txJSON []byte) (types.HexBytes, error) {
	t, err := tx.UnmarshalTransaction(txJSON)
	if err != nil {
		return nil, err
	}
	return tx.RLPBytes(t), nil
}

// ============================================================================
// API Function 5: SignParcel
// ============================================================================

// SignParcel signs an unsigned parcel.
//
// Parameters:
//   - ctx: bounds the signer call
//   - parcelJSON: {"networkId", "nonce", "fee", "action"}
//   - secret: 64 hex characters or a WIF string
//
// Returns:
//   - JSON of the signed parcel (parcel fields plus "signature")
//   - SIGNING_FAILURE if the key is unusable
func SignParcel(ctx context.Context, parcelJSON []byte, secret string) ([]byte, error) {
	var p parcel.Parcel
	if err := json.Unmarshal(parcelJSON, &p); err != nil {
		return nil, err
	}

	key, err := signer.NewLocalSignerFromSecret(secret)
	if err != nil {
		return nil, types.Wrap(types.CodeSigningFailure, err, "load signing key")
	}

	signed, err := p.SignWith(ctx, key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(signed)
}

// ============================================================================
// API Function 6: RecoverSigner
// ============================================================================

// RecoverSigner returns the platform address whose key signed the parcel.
func RecoverSigner(signedJSON []byte) (address.PlatformAddress, error) {
	var sp parcel.SignedParcel
	if err := json.Unmarshal(signedJSON, &sp); err != nil {
		return address.PlatformAddress{}, err
	}
	return sp.SignerAddress()
}

// ============================================================================
// API Function 7: IndexTransaction / LookupAddress
// ============================================================================

// IndexTransaction records a transaction and every address it creates.
func IndexTransaction(db *store.DB, txJSON []byte) (*Addresses, error) {
	addrs, err := DeriveAddresses(txJSON)
	if err != nil {
		return nil, err
	}
	t, err := tx.UnmarshalTransaction(txJSON)
	if err != nil {
		return nil, err
	}
	if _, err := db.PutTransaction(t); err != nil {
		return nil, fmt.Errorf("failed to index transaction: %w", err)
	}
	return addrs, nil
}

// LookupResult is what the index knows about an address.
type LookupResult struct {
	Address types.H256      `json:"address"`
	Kind    string          `json:"kind"` // "assetScheme" or "asset"
	Origin  types.H256      `json:"transactionHash"`
	Index   uint32          `json:"outputIndex"`
	Asset   *tx.Asset       `json:"asset,omitempty"`
	Scheme  *tx.AssetScheme `json:"scheme,omitempty"`
}

// LookupAddress resolves a scheme or asset address from the index. The
// address prefix decides which bucket is consulted.
func LookupAddress(db *store.DB, addr types.H256) (*LookupResult, error) {
	switch {
	case address.IsSchemeAddress(addr):
		loc, ok, err := db.LookupScheme(addr)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("asset scheme %s not indexed", addr)
		}
		scheme, _, err := db.Scheme(addr)
		if err != nil {
			return nil, err
		}
		return &LookupResult{Address: addr, Kind: "assetScheme", Origin: loc.TransactionHash, Scheme: &scheme}, nil

	case address.IsAssetAddress(addr):
		loc, ok, err := db.LookupAsset(addr)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("asset %s not indexed", addr)
		}
		asset, _, err := db.Asset(addr)
		if err != nil {
			return nil, err
		}
		return &LookupResult{Address: addr, Kind: "asset", Origin: loc.TransactionHash, Index: loc.Index, Asset: &asset}, nil

	default:
		return nil, types.Errorf(types.CodeInvalidFieldValue, "%s is neither an asset nor an asset scheme address", addr)
	}
}
