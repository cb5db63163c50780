package tx

import (
	"bytes"
	"encoding/json"
	"math/bits"

	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// InputScope selects which inputs a signature commits to.
type InputScope uint8

const (
	InputAll    InputScope = iota // Every input, script-stripped
	InputSingle                   // Only the input at SignatureTag.Index
)

// OutputScope selects whether a signature commits to the outputs.
type OutputScope uint8

const (
	OutputAll  OutputScope = iota // The real outputs
	OutputNone                    // No outputs (or the canonical placeholder)
)

// Tag byte layout:
//
//	bit 0     input scope (1 = all, 0 = single)
//	bit 1     output scope (1 = all, 0 = none)
//	bits 2-7  number of index bytes that follow (single input only)
const (
	tagInputAllBit  = 0x01
	tagOutputAllBit = 0x02
	tagLengthShift  = 2

	maxIndexBytes = 4
)

// SignatureTag selects which inputs and outputs of a transaction take part
// in a signing hash. The zero value is {all, all}, the default.
type SignatureTag struct {
	Input  InputScope
	Output OutputScope
	Index  *uint32 // Required when Input is InputSingle
}

// TagAll is the default tag committing to every input and output.
var TagAll = SignatureTag{}

// SingleInput returns a tag committing to input index only.
func SingleInput(index uint32, output OutputScope) SignatureTag {
	return SignatureTag{Input: InputSingle, Output: output, Index: &index}
}

// Encode returns the compact byte form of the tag.
func (t SignatureTag) Encode() ([]byte, error) {
	var flag byte
	if t.Output == OutputAll {
		flag |= tagOutputAllBit
	}

	switch t.Input {
	case InputAll:
		return []byte{flag | tagInputAllBit}, nil
	case InputSingle:
		if t.Index == nil {
			return nil, types.Errorf(types.CodeMissingIndex, "single-input signature tag without index")
		}
		index := bigEndianIndex(*t.Index)
		flag |= byte(len(index)) << tagLengthShift
		return append([]byte{flag}, index...), nil
	default:
		return nil, types.Errorf(types.CodeInvalidSignatureTag, "unknown input scope %d", t.Input)
	}
}

// DecodeSignatureTag parses the compact byte form, rejecting every byte
// sequence Encode cannot produce.
func DecodeSignatureTag(b []byte) (SignatureTag, error) {
	var tag SignatureTag
	if len(b) == 0 {
		return tag, types.Errorf(types.CodeInvalidSignatureTag, "empty signature tag")
	}

	flag := b[0]
	n := int(flag >> tagLengthShift)
	if flag&tagOutputAllBit == 0 {
		tag.Output = OutputNone
	}

	if flag&tagInputAllBit != 0 {
		if n != 0 || len(b) != 1 {
			return SignatureTag{}, types.Errorf(types.CodeInvalidSignatureTag, "tag 0x%x: index bytes with input scope all", b)
		}
		return tag, nil
	}

	if n > maxIndexBytes {
		return SignatureTag{}, types.Errorf(types.CodeInvalidSignatureTag, "tag 0x%x: %d index bytes", b, n)
	}
	if len(b) != 1+n {
		return SignatureTag{}, types.Errorf(types.CodeInvalidSignatureTag, "tag 0x%x: expected %d index bytes, got %d", b, n, len(b)-1)
	}
	if n > 0 && b[1] == 0 {
		return SignatureTag{}, types.Errorf(types.CodeInvalidSignatureTag, "tag 0x%x: index has leading zero byte", b)
	}

	var index uint32
	for _, c := range b[1:] {
		index = index<<8 | uint32(c)
	}
	tag.Input = InputSingle
	tag.Index = &index
	return tag, nil
}

func bigEndianIndex(v uint32) []byte {
	n := (bits.Len32(v) + 7) / 8
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// validate checks the tag against the number of inputs it selects from.
func (t SignatureTag) validate(inputCount int) error {
	switch t.Input {
	case InputAll:
		return nil
	case InputSingle:
		if t.Index == nil {
			return types.Errorf(types.CodeMissingIndex, "single-input signature tag without index")
		}
		if int64(*t.Index) >= int64(inputCount) {
			return types.Errorf(types.CodeMissingIndex, "input index %d out of range (have %d inputs)", *t.Index, inputCount)
		}
		return nil
	default:
		return types.Errorf(types.CodeInvalidSignatureTag, "unknown input scope %d", t.Input)
	}
}

// selectInputs applies the input scope: every input stripped of its
// scripts, or only the selected one.
func (t SignatureTag) selectInputs(inputs []AssetTransferInput) ([]AssetTransferInput, error) {
	if err := t.validate(len(inputs)); err != nil {
		return nil, err
	}
	if t.Input == InputSingle {
		return []AssetTransferInput{inputs[*t.Index].WithoutScript()}, nil
	}
	out := make([]AssetTransferInput, len(inputs))
	for i, input := range inputs {
		out[i] = input.WithoutScript()
	}
	return out, nil
}

// signingHash hashes the encoded transformed transaction under the key
// derived from the tag bytes.
func signingHash(obj rlp.List, tag SignatureTag) (types.H256, error) {
	encodedTag, err := tag.Encode()
	if err != nil {
		return types.H256{}, err
	}
	key := crypto.Blake128(encodedTag)
	return crypto.Blake256WithKey(rlp.Encode(obj), key), nil
}

type signatureTagJSON struct {
	Input  string          `json:"input"`
	Output json.RawMessage `json:"output"`
	Index  *uint32         `json:"index,omitempty"`
}

// MarshalJSON renders {"input": "all"|"single", "output": "all"|[], "index"?}.
func (t SignatureTag) MarshalJSON() ([]byte, error) {
	out := signatureTagJSON{Output: json.RawMessage(`"all"`)}
	if t.Output == OutputNone {
		out.Output = json.RawMessage(`[]`)
	}
	switch t.Input {
	case InputAll:
		out.Input = "all"
	case InputSingle:
		if t.Index == nil {
			return nil, types.Errorf(types.CodeMissingIndex, "single-input signature tag without index")
		}
		out.Input = "single"
		out.Index = t.Index
	default:
		return nil, types.Errorf(types.CodeInvalidSignatureTag, "unknown input scope %d", t.Input)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts only "all" or an empty array as output selector.
func (t *SignatureTag) UnmarshalJSON(b []byte) error {
	var in signatureTagJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return types.Wrap(types.CodeInvalidSignatureTag, err, "malformed signature tag")
	}

	var tag SignatureTag
	switch output := bytes.TrimSpace(in.Output); {
	case bytes.Equal(output, []byte(`"all"`)):
		tag.Output = OutputAll
	case isEmptyArray(output):
		tag.Output = OutputNone
	default:
		return types.Errorf(types.CodeInvalidSignatureTag, "output selector %s: expected \"all\" or []", string(output))
	}

	switch in.Input {
	case "all":
		if in.Index != nil {
			return types.Errorf(types.CodeInvalidSignatureTag, "index given with input scope all")
		}
		tag.Input = InputAll
	case "single":
		if in.Index == nil {
			return types.Errorf(types.CodeMissingIndex, "input scope single requires an index")
		}
		tag.Input = InputSingle
		index := *in.Index
		tag.Index = &index
	default:
		return types.Errorf(types.CodeInvalidSignatureTag, "input selector %q: expected \"all\" or \"single\"", in.Input)
	}

	*t = tag
	return nil
}

func isEmptyArray(raw []byte) bool {
	var arr []json.RawMessage
	if len(raw) == 0 || raw[0] != '[' {
		return false
	}
	if err := json.Unmarshal(raw, &arr); err != nil {
		return false
	}
	return len(arr) == 0
}
