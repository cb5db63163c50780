// Package parcel implements the signed envelope that carries one action
// (a transaction or a group of asset transactions) to the network.
//
// Canonical encodings:
//
//	Parcel        [nonce, fee, networkId, action]
//	SignedParcel  [nonce, fee, networkId, action, signature]
//
// A parcel is hashed and signed with its nonce and fee included, so both
// must be set before Hash or Sign. Signing never yields an unsigned result:
// any failure is returned as an error.
package parcel

import (
	"context"
	"encoding/json"

	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/signer"
	"github.com/suffix-labs/shardtx/pkg/tx"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// Parcel is an unsigned envelope.
type Parcel struct {
	NetworkID types.NetworkID // Network the parcel is valid on
	Nonce     *types.U64      // Sender's account nonce, required to sign
	Fee       *types.U64      // Fee paid by the sender, required to sign
	Action    tx.Transaction  // Transaction or AssetTransactionGroup
}

// New builds a parcel with nonce and fee set.
func New(networkID types.NetworkID, nonce, fee types.U64, action tx.Transaction) Parcel {
	return Parcel{NetworkID: networkID, Nonce: &nonce, Fee: &fee, Action: action}
}

// validate checks that the parcel can be encoded.
func (p Parcel) validate() error {
	if p.Nonce == nil {
		return types.Errorf(types.CodeInvalidFieldValue, "parcel nonce is not set")
	}
	if p.Fee == nil {
		return types.Errorf(types.CodeInvalidFieldValue, "parcel fee is not set")
	}
	if p.Action == nil {
		return types.Errorf(types.CodeInvalidFieldValue, "parcel action is not set")
	}
	return p.NetworkID.Validate()
}

// EncodeObject returns [nonce, fee, networkId, action].
func (p Parcel) EncodeObject() (rlp.List, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return rlp.List{
		rlp.Uint(*p.Nonce),
		rlp.Uint(*p.Fee),
		rlp.Bytes(p.NetworkID.Bytes()),
		p.Action.EncodeObject(),
	}, nil
}

// RLPBytes returns the canonical encoding of the unsigned parcel.
func (p Parcel) RLPBytes() ([]byte, error) {
	obj, err := p.EncodeObject()
	if err != nil {
		return nil, err
	}
	return rlp.Encode(obj), nil
}

// Hash returns BLAKE2b-256 of the unsigned encoding. This is the value
// signed by Sign.
func (p Parcel) Hash() (types.H256, error) {
	b, err := p.RLPBytes()
	if err != nil {
		return types.H256{}, err
	}
	return crypto.Blake256(b), nil
}

// Sign signs the parcel with a hex or WIF secret.
func (p Parcel) Sign(secret string) (SignedParcel, error) {
	s, err := signer.NewLocalSignerFromSecret(secret)
	if err != nil {
		return SignedParcel{}, err
	}
	return p.SignWith(context.Background(), s)
}

// SignWith signs the parcel through a signer collaborator. Failures from
// the signer are reported as SIGNING_FAILURE.
func (p Parcel) SignWith(ctx context.Context, s signer.Signer) (SignedParcel, error) {
	hash, err := p.Hash()
	if err != nil {
		return SignedParcel{}, err
	}
	sig, err := signer.Sign(ctx, s, hash)
	if err != nil {
		return SignedParcel{}, err
	}
	return SignedParcel{Parcel: p, Signature: sig}, nil
}

// SignedParcel is an immutable parcel together with its signature.
type SignedParcel struct {
	Parcel
	Signature types.H520
}

// EncodeObject returns [nonce, fee, networkId, action, signature].
func (sp SignedParcel) EncodeObject() (rlp.List, error) {
	obj, err := sp.Parcel.EncodeObject()
	if err != nil {
		return nil, err
	}
	return append(obj, rlp.Bytes(sp.Signature.Bytes())), nil
}

// RLPBytes returns the canonical encoding of the signed parcel.
func (sp SignedParcel) RLPBytes() ([]byte, error) {
	obj, err := sp.EncodeObject()
	if err != nil {
		return nil, err
	}
	return rlp.Encode(obj), nil
}

// Hash returns BLAKE2b-256 of the signed encoding, identifying the parcel
// on the network.
func (sp SignedParcel) Hash() (types.H256, error) {
	b, err := sp.RLPBytes()
	if err != nil {
		return types.H256{}, err
	}
	return crypto.Blake256(b), nil
}

// UnsignedHash returns the hash that was signed.
func (sp SignedParcel) UnsignedHash() (types.H256, error) {
	return sp.Parcel.Hash()
}

// SignerPublic recovers the signer's public key.
func (sp SignedParcel) SignerPublic() (types.H512, error) {
	hash, err := sp.Parcel.Hash()
	if err != nil {
		return types.H512{}, err
	}
	pub, err := crypto.RecoverPublicKey(hash, sp.Signature)
	if err != nil {
		return types.H512{}, types.Wrap(types.CodeInvalidFieldValue, err, "parcel signature")
	}
	return pub, nil
}

// SignerAccountID recovers the signer's account id.
func (sp SignedParcel) SignerAccountID() (types.H160, error) {
	pub, err := sp.SignerPublic()
	if err != nil {
		return types.H160{}, err
	}
	return crypto.AccountID(pub), nil
}

// SignerAddress recovers the signer's platform address on the parcel's
// network.
func (sp SignedParcel) SignerAddress() (address.PlatformAddress, error) {
	accountID, err := sp.SignerAccountID()
	if err != nil {
		return address.PlatformAddress{}, err
	}
	return address.FromAccountID(sp.NetworkID, accountID), nil
}

type parcelJSON struct {
	NetworkID types.NetworkID `json:"networkId"`
	Nonce     *types.U64      `json:"nonce"`
	Fee       *types.U64      `json:"fee"`
	Action    json.RawMessage `json:"action"`
	Signature *types.H520     `json:"signature,omitempty"`
}

func (p Parcel) toJSON() (parcelJSON, error) {
	out := parcelJSON{NetworkID: p.NetworkID, Nonce: p.Nonce, Fee: p.Fee}
	if p.Action == nil {
		return out, types.Errorf(types.CodeInvalidFieldValue, "parcel action is not set")
	}
	action, err := tx.MarshalTransaction(p.Action)
	if err != nil {
		return out, err
	}
	out.Action = action
	return out, nil
}

func (p *Parcel) fromJSON(in parcelJSON) error {
	if err := in.NetworkID.Validate(); err != nil {
		return err
	}
	action, err := tx.UnmarshalTransaction(in.Action)
	if err != nil {
		return err
	}
	*p = Parcel{NetworkID: in.NetworkID, Nonce: in.Nonce, Fee: in.Fee, Action: action}
	return nil
}

func (p Parcel) MarshalJSON() ([]byte, error) {
	out, err := p.toJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (p *Parcel) UnmarshalJSON(b []byte) error {
	var in parcelJSON
	if err := types.StrictUnmarshal(b, &in); err != nil {
		return types.Wrap(types.CodeInvalidFieldValue, err, "malformed parcel")
	}
	if in.Signature != nil {
		return types.Errorf(types.CodeInvalidFieldValue, "unsigned parcel carries a signature")
	}
	return p.fromJSON(in)
}

func (sp SignedParcel) MarshalJSON() ([]byte, error) {
	out, err := sp.Parcel.toJSON()
	if err != nil {
		return nil, err
	}
	sig := sp.Signature
	out.Signature = &sig
	return json.Marshal(out)
}

func (sp *SignedParcel) UnmarshalJSON(b []byte) error {
	var in parcelJSON
	if err := types.StrictUnmarshal(b, &in); err != nil {
		return types.Wrap(types.CodeInvalidFieldValue, err, "malformed parcel")
	}
	if in.Signature == nil {
		return types.Errorf(types.CodeInvalidFieldValue, "signed parcel without signature")
	}
	var p Parcel
	if err := p.fromJSON(in); err != nil {
		return err
	}
	*sp = SignedParcel{Parcel: p, Signature: *in.Signature}
	return nil
}
