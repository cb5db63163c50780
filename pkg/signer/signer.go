// Package signer defines the key-store collaborator that produces
// recoverable signatures over 32-byte hashes.
//
// Signing may involve a remote or hardware key store that can block for an
// arbitrary time, so Sign takes a context and callers bound it with a
// deadline. Implementations must not retry internally.
//
// LocalSigner is the in-process implementation backed by a secp256k1
// private key held in memory.
package signer

import (
	"context"

	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// Signer signs hashes on behalf of one account.
type Signer interface {
	// Sign returns a recoverable signature (r || s || v) over hash.
	Sign(ctx context.Context, hash types.H256) (types.H520, error)
	// PublicKey returns the uncompressed public key of the signing key.
	PublicKey() types.H512
}

// LocalSigner signs with an in-memory private key.
type LocalSigner struct {
	key *crypto.PrivateKey
}

// NewLocalSigner wraps a private key.
func NewLocalSigner(key *crypto.PrivateKey) *LocalSigner {
	return &LocalSigner{key: key}
}

// NewLocalSignerFromSecret parses a hex or WIF secret.
func NewLocalSignerFromSecret(secret string) (*LocalSigner, error) {
	key, err := crypto.ParsePrivateKey(secret)
	if err != nil {
		return nil, types.Wrap(types.CodeInvalidFieldValue, err, "malformed secret")
	}
	return NewLocalSigner(key), nil
}

// GenerateLocalSigner creates a signer with a fresh random key.
func GenerateLocalSigner() *LocalSigner {
	return NewLocalSigner(crypto.GeneratePrivateKey())
}

// Sign signs hash unless ctx is already done.
func (s *LocalSigner) Sign(ctx context.Context, hash types.H256) (types.H520, error) {
	if err := ctx.Err(); err != nil {
		return types.H520{}, types.Wrap(types.CodeSigningFailure, err, "signing cancelled")
	}
	sig, err := s.key.Sign(hash)
	if err != nil {
		return types.H520{}, types.Wrap(types.CodeSigningFailure, err, "sign hash %s", hash)
	}
	return sig, nil
}

func (s *LocalSigner) PublicKey() types.H512 {
	return s.key.PublicKey()
}

// AccountID returns the account id of the signing key.
func (s *LocalSigner) AccountID() types.H160 {
	return crypto.AccountID(s.key.PublicKey())
}

// Secret returns the raw private key bytes.
func (s *LocalSigner) Secret() []byte {
	return s.key.Bytes()
}

// Sign calls s, wrapping any error that is not already a SIGNING_FAILURE.
func Sign(ctx context.Context, s Signer, hash types.H256) (types.H520, error) {
	sig, err := s.Sign(ctx, hash)
	if err != nil {
		if te, ok := err.(*types.Error); ok && te.Code == types.CodeSigningFailure {
			return types.H520{}, te
		}
		return types.H520{}, types.Wrap(types.CodeSigningFailure, err, "signer")
	}
	return sig, nil
}
