// Package roles implements the multi-party input-signing workflow for asset
// transactions.
//
// The roles are:
//   - InputSigner: computes the partial signing hash of each input it owns
//     and signs it through a signer.Signer
//   - Combiner: merges the signature sets produced by parallel signers for
//     the same transaction
//
// With a single-input tag every input carries an independent signature
// scoped to that input only, so several parties can sign concurrently
// without seeing each other's scripts.
package roles

import (
	"context"
	"fmt"

	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/signer"
	"github.com/suffix-labs/shardtx/pkg/tx"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// InputSignature is one signature over an input's partial signing hash.
type InputSignature struct {
	Index     uint32          `json:"index"`     // Input index the signature unlocks
	Tag       tx.SignatureTag `json:"tag"`       // Scope the signature commits to
	Signature types.H520      `json:"signature"` // Recoverable signature over the signing hash
	PublicKey types.H512      `json:"publicKey"` // Signer's public key
}

// SignatureSet holds the input signatures collected for one transaction.
type SignatureSet struct {
	TransactionHash types.H256       `json:"transactionHash"` // Hash of the transaction being signed
	Signatures      []InputSignature `json:"signatures"`
}

// InputSigner adds signatures to the inputs of one transaction.
type InputSigner struct {
	tx  tx.InputSpender
	set SignatureSet
}

// NewInputSigner creates a new InputSigner.
func NewInputSigner(t tx.InputSpender) *InputSigner {
	return &InputSigner{
		tx:  t,
		set: SignatureSet{TransactionHash: t.Hash()},
	}
}

// SignInput signs input index with the given output scope.
//
// The signing hash uses a single-input tag, so the signature stays valid
// when other inputs are added or re-signed.
//
// Returns an error if:
//   - Input index is out of bounds
//   - The signer fails or ctx is done
func (s *InputSigner) SignInput(
	ctx context.Context,
	index uint32,
	output tx.OutputScope,
	key signer.Signer,
) error {
	return s.sign(ctx, index, tx.SingleInput(index, output), key)
}

// SignAll signs every input with the all-inputs tag. Each input gets the
// same hash, which commits to the whole transaction.
func (s *InputSigner) SignAll(ctx context.Context, output tx.OutputScope, key signer.Signer) error {
	tag := tx.SignatureTag{Input: tx.InputAll, Output: output}
	for i := 0; i < s.tx.InputCount(); i++ {
		if err := s.sign(ctx, uint32(i), tag, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *InputSigner) sign(ctx context.Context, index uint32, tag tx.SignatureTag, key signer.Signer) error {
	if int(index) >= s.tx.InputCount() {
		return types.Errorf(types.CodeMissingIndex, "input index %d out of bounds (have %d inputs)",
			index, s.tx.InputCount())
	}

	hash, err := s.tx.HashWithoutScript(tag)
	if err != nil {
		return fmt.Errorf("failed to compute signing hash: %w", err)
	}

	sig, err := signer.Sign(ctx, key, hash)
	if err != nil {
		return fmt.Errorf("failed to sign input %d: %w", index, err)
	}

	s.set.Signatures = append(s.set.Signatures, InputSignature{
		Index:     index,
		Tag:       tag,
		Signature: sig,
		PublicKey: key.PublicKey(),
	})
	return nil
}

// Finish returns the collected signatures.
//
// The set can be:
//   - Passed to the Combiner if multiple parties are signing
//   - Turned into unlock scripts by the wallet
func (s *InputSigner) Finish() SignatureSet {
	out := s.set
	out.Signatures = append([]InputSignature(nil), s.set.Signatures...)
	return out
}

// Verify checks that sig is a valid signature by sig.PublicKey over the
// signing hash of t selected by sig.Tag.
func Verify(t tx.InputSpender, sig InputSignature) error {
	if sig.Tag.Input == tx.InputSingle && (sig.Tag.Index == nil || *sig.Tag.Index != sig.Index) {
		return types.Errorf(types.CodeInvalidSignatureTag, "tag does not select input %d", sig.Index)
	}
	if int(sig.Index) >= t.InputCount() {
		return types.Errorf(types.CodeMissingIndex, "input index %d out of bounds (have %d inputs)",
			sig.Index, t.InputCount())
	}

	hash, err := t.HashWithoutScript(sig.Tag)
	if err != nil {
		return err
	}
	if !crypto.VerifySignature(sig.PublicKey, hash, sig.Signature) {
		return types.Errorf(types.CodeInvalidFieldValue, "signature on input %d does not match public key", sig.Index)
	}
	return nil
}
