package roles

import (
	"fmt"
	"sort"

	"github.com/suffix-labs/shardtx/pkg/types"
)

// Combiner merges signature sets from parallel signers.
//
// The Combiner role enables parallel signing workflows:
//   - Multiple parties sign different inputs in parallel
//   - Each party produces its own SignatureSet
//   - The Combiner merges them into one set, ordered by input index
//
// Two signatures by the same public key on the same input must be
// identical; anything else is reported as a conflict.
type Combiner struct {
	sets []SignatureSet
}

// NewCombiner creates a new Combiner.
//
// Parameters:
//   - sets: signature sets to combine (must all cover the same transaction)
func NewCombiner(sets []SignatureSet) *Combiner {
	return &Combiner{sets: sets}
}

// signatureKey identifies a signature slot: one signer on one input.
type signatureKey struct {
	index     uint32
	publicKey types.H512
}

// Combine merges all sets into a single set.
//
// Returns an error if:
//   - No sets are given
//   - Sets cover different transactions
//   - Conflicting signatures are found
func (c *Combiner) Combine() (SignatureSet, error) {
	if len(c.sets) == 0 {
		return SignatureSet{}, fmt.Errorf("no signature sets to combine")
	}

	result := SignatureSet{TransactionHash: c.sets[0].TransactionHash}
	seen := make(map[signatureKey]InputSignature)

	for i, set := range c.sets {
		if set.TransactionHash != result.TransactionHash {
			return SignatureSet{}, fmt.Errorf("set %d signs transaction %s, expected %s",
				i, set.TransactionHash, result.TransactionHash)
		}

		for _, sig := range set.Signatures {
			key := signatureKey{index: sig.Index, publicKey: sig.PublicKey}
			if existing, exists := seen[key]; exists {
				// Check for conflicting signatures for same signer and input
				if existing.Signature != sig.Signature {
					return SignatureSet{}, fmt.Errorf("input %d: conflicting signatures for public key %s",
						sig.Index, sig.PublicKey.Hex()[:16])
				}
				continue
			}
			seen[key] = sig
			result.Signatures = append(result.Signatures, sig)
		}
	}

	// Order by input index, keeping arrival order within an input
	sort.SliceStable(result.Signatures, func(a, b int) bool {
		return result.Signatures[a].Index < result.Signatures[b].Index
	})
	return result, nil
}
