package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/parcel"
	"github.com/suffix-labs/shardtx/pkg/signer"
	"github.com/suffix-labs/shardtx/pkg/tx"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// TestParallelTransferSigning covers the main multi-party flow: two owners
// mint assets, build one transfer spending both, sign their own inputs in
// parallel, combine the signatures and wrap the result in a parcel.
func TestParallelTransferSigning(t *testing.T) {
	ctx := context.Background()

	// Step 1: Create the two owners
	alice := signer.GenerateLocalSigner()
	bob := signer.GenerateLocalSigner()

	// Step 2: Each owner mints an asset
	mintA := tx.AssetMint{
		NetworkID: types.TestnetID,
		ShardID:   0,
		Metadata:  "alice coin",
		Output: tx.AssetMintOutput{
			LockScriptHash: alice.AccountID(),
		},
	}
	amount := types.U64(100)
	mintB := tx.AssetMint{
		NetworkID: types.TestnetID,
		ShardID:   0,
		Metadata:  "bob coin",
		Output: tx.AssetMintOutput{
			LockScriptHash: bob.AccountID(),
			Amount:         &amount,
		},
	}
	assetA := mintA.MintedAsset()
	assetB := mintB.MintedAsset()

	if assetA.Amount != types.MaxU64 {
		t.Fatalf("unlimited mint should produce max amount, got %s", assetA.Amount)
	}

	// Step 3: Build the transfer spending both assets
	transfer := tx.AssetTransfer{NetworkID: types.TestnetID}.
		WithAssets(assetA, assetB).
		WithOutputs(
			tx.AssetTransferOutput{LockScriptHash: bob.AccountID(), AssetType: assetA.AssetType, Amount: 10},
			tx.AssetTransferOutput{LockScriptHash: alice.AccountID(), AssetType: assetB.AssetType, Amount: 100},
		)

	// Step 4: Each owner signs only their input
	aliceSigner := NewInputSigner(transfer)
	if err := aliceSigner.SignInput(ctx, 0, tx.OutputAll, alice); err != nil {
		t.Fatalf("alice failed to sign: %v", err)
	}
	bobSigner := NewInputSigner(transfer)
	if err := bobSigner.SignInput(ctx, 1, tx.OutputAll, bob); err != nil {
		t.Fatalf("bob failed to sign: %v", err)
	}

	// Step 5: Combine (order of sets must not matter)
	combined, err := NewCombiner([]SignatureSet{bobSigner.Finish(), aliceSigner.Finish()}).Combine()
	if err != nil {
		t.Fatalf("failed to combine: %v", err)
	}
	if len(combined.Signatures) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(combined.Signatures))
	}
	if combined.Signatures[0].Index != 0 || combined.Signatures[1].Index != 1 {
		t.Fatalf("signatures not ordered by input index")
	}
	if combined.TransactionHash != transfer.Hash() {
		t.Fatalf("combined set refers to %s, want %s", combined.TransactionHash, transfer.Hash())
	}

	// Step 6: Verify every signature against the transaction
	for _, sig := range combined.Signatures {
		if err := Verify(transfer, sig); err != nil {
			t.Fatalf("signature on input %d failed verification: %v", sig.Index, err)
		}
	}
	if crypto.AccountID(combined.Signatures[0].PublicKey) != alice.AccountID() {
		t.Fatalf("input 0 should be signed by alice")
	}

	// Step 7: Scripts are attached after signing; signatures stay valid
	signedInputs := []tx.AssetTransferInput{
		transfer.Inputs[0].WithScripts([]byte{0x01}, combined.Signatures[0].Signature.Bytes()),
		transfer.Inputs[1].WithScripts([]byte{0x01}, combined.Signatures[1].Signature.Bytes()),
	}
	final := transfer
	final.Inputs = signedInputs
	for _, sig := range combined.Signatures {
		if err := Verify(final, sig); err != nil {
			t.Fatalf("attaching scripts invalidated input %d: %v", sig.Index, err)
		}
	}

	// Step 8: Wrap in a parcel signed by the fee payer
	signedParcel, err := parcel.New(types.TestnetID, 0, 10, final).SignWith(ctx, alice)
	if err != nil {
		t.Fatalf("failed to sign parcel: %v", err)
	}
	payer, err := signedParcel.SignerAddress()
	if err != nil {
		t.Fatalf("failed to recover parcel signer: %v", err)
	}
	if payer != address.FromPublicKey(types.TestnetID, alice.PublicKey()) {
		t.Fatalf("parcel signer mismatch: %s", payer)
	}
}

func TestSignAllInputs(t *testing.T) {
	ctx := context.Background()
	owner := signer.GenerateLocalSigner()

	mint := tx.AssetMint{NetworkID: types.TestnetID, Output: tx.AssetMintOutput{LockScriptHash: owner.AccountID()}}
	compose := tx.AssetCompose{NetworkID: types.TestnetID, ShardID: 0, Metadata: "bundle"}.
		WithAssets(mint.MintedAsset())

	s := NewInputSigner(compose)
	if err := s.SignAll(ctx, tx.OutputNone, owner); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	set := s.Finish()
	if len(set.Signatures) != 1 {
		t.Fatalf("expected 1 signature, got %d", len(set.Signatures))
	}
	if err := Verify(compose, set.Signatures[0]); err != nil {
		t.Fatalf("verification failed: %v", err)
	}

	// The output is not committed to, so changing it keeps the signature valid.
	changed := compose
	changed.Output.LockScriptHash = types.H160{0xff}
	if err := Verify(changed, set.Signatures[0]); err != nil {
		t.Fatalf("output change should not invalidate an output-none signature: %v", err)
	}

	// Changing the metadata does invalidate it.
	changed = compose
	changed.Metadata = "other bundle"
	if err := Verify(changed, set.Signatures[0]); err == nil {
		t.Fatalf("metadata change should invalidate the signature")
	}
}

func TestSignInputOutOfBounds(t *testing.T) {
	transfer := tx.AssetTransfer{NetworkID: types.TestnetID}
	err := NewInputSigner(transfer).SignInput(context.Background(), 0, tx.OutputAll, signer.GenerateLocalSigner())
	if !errors.Is(err, types.ErrMissingIndex) {
		t.Fatalf("expected MISSING_INDEX, got %v", err)
	}
}

func TestCombinerConflicts(t *testing.T) {
	owner := signer.GenerateLocalSigner()
	mint := tx.AssetMint{NetworkID: types.TestnetID, Output: tx.AssetMintOutput{LockScriptHash: owner.AccountID()}}
	transfer := tx.AssetTransfer{NetworkID: types.TestnetID}.WithAssets(mint.MintedAsset())

	s := NewInputSigner(transfer)
	if err := s.SignInput(context.Background(), 0, tx.OutputAll, owner); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	set := s.Finish()

	// Identical duplicates merge.
	merged, err := NewCombiner([]SignatureSet{set, set}).Combine()
	if err != nil {
		t.Fatalf("duplicate sets should merge: %v", err)
	}
	if len(merged.Signatures) != 1 {
		t.Fatalf("expected 1 signature after merge, got %d", len(merged.Signatures))
	}

	// Different signature bytes for the same slot conflict.
	conflicting := set
	conflicting.Signatures = []InputSignature{set.Signatures[0]}
	conflicting.Signatures[0].Signature[0] ^= 0xff
	if _, err := NewCombiner([]SignatureSet{set, conflicting}).Combine(); err == nil {
		t.Fatalf("expected conflict error")
	}

	// Sets for another transaction are rejected.
	other := set
	other.TransactionHash = types.H256{0x01}
	if _, err := NewCombiner([]SignatureSet{set, other}).Combine(); err == nil {
		t.Fatalf("expected transaction mismatch error")
	}

	if _, err := NewCombiner(nil).Combine(); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestVerifyRejectsMismatchedTag(t *testing.T) {
	owner := signer.GenerateLocalSigner()
	mint := tx.AssetMint{NetworkID: types.TestnetID, Output: tx.AssetMintOutput{LockScriptHash: owner.AccountID()}}
	transfer := tx.AssetTransfer{NetworkID: types.TestnetID}.WithAssets(mint.MintedAsset(), mint.MintedAsset())

	s := NewInputSigner(transfer)
	if err := s.SignInput(context.Background(), 0, tx.OutputAll, owner); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	sig := s.Finish().Signatures[0]
	sig.Index = 1
	if err := Verify(transfer, sig); !errors.Is(err, types.ErrInvalidSignatureTag) {
		t.Fatalf("expected INVALID_SIGNATURE_TAG, got %v", err)
	}
}
