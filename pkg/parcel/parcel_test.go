package parcel

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/signer"
	"github.com/suffix-labs/shardtx/pkg/tx"
	"github.com/suffix-labs/shardtx/pkg/types"
)

const testSecret = "0x4646464646464646464646464646464646464646464646464646464646464646"

func testParcel() Parcel {
	receiver := address.FromAccountID(types.TestnetID, types.H160{0x01, 0x02})
	return New(types.TestnetID, 7, 10, tx.Payment{Receiver: receiver, Amount: 500})
}

type brokenSigner struct{}

func (brokenSigner) Sign(context.Context, types.H256) (types.H520, error) {
	return types.H520{}, errors.New("key store unavailable")
}

func (brokenSigner) PublicKey() types.H512 { return types.H512{} }

func TestParcelEncoding(t *testing.T) {
	p := testParcel()

	obj, err := p.EncodeObject()
	require.NoError(t, err)
	require.Len(t, obj, 4)
	assert.Equal(t, rlp.Uint(7), obj[0])
	assert.Equal(t, rlp.Uint(10), obj[1])
	assert.Equal(t, rlp.Bytes("tc"), obj[2])
	assert.Equal(t, p.Action.EncodeObject(), obj[3])

	b, err := p.RLPBytes()
	require.NoError(t, err)
	hash, err := p.Hash()
	require.NoError(t, err)
	assert.Equal(t, crypto.Blake256(b), hash)
}

func TestParcelRequiresNonceAndFee(t *testing.T) {
	p := testParcel()
	p.Nonce = nil
	_, err := p.Hash()
	assert.True(t, errors.Is(err, types.ErrInvalidFieldValue))

	p = testParcel()
	p.Fee = nil
	_, err = p.Sign(testSecret)
	assert.True(t, errors.Is(err, types.ErrInvalidFieldValue))

	p = testParcel()
	p.Action = nil
	_, err = p.Hash()
	assert.True(t, errors.Is(err, types.ErrInvalidFieldValue))
}

func TestSignAndRecoverSigner(t *testing.T) {
	p := testParcel()

	signed, err := p.Sign(testSecret)
	require.NoError(t, err)

	key, err := crypto.ParsePrivateKey(testSecret)
	require.NoError(t, err)

	pub, err := signed.SignerPublic()
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), pub)

	addr, err := signed.SignerAddress()
	require.NoError(t, err)
	assert.Equal(t, address.FromPublicKey(types.TestnetID, key.PublicKey()), addr)

	unsigned, err := p.Hash()
	require.NoError(t, err)
	signedHash, err := signed.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, unsigned, signedHash)

	got, err := signed.UnsignedHash()
	require.NoError(t, err)
	assert.Equal(t, unsigned, got)

	b, err := signed.RLPBytes()
	require.NoError(t, err)
	decoded, err := rlp.Decode(b)
	require.NoError(t, err)
	list := decoded.(rlp.List)
	require.Len(t, list, 5)
	assert.Equal(t, rlp.Bytes(signed.Signature.Bytes()), list[4])
}

func TestTamperedParcelRecoversOtherSigner(t *testing.T) {
	signed, err := testParcel().Sign(testSecret)
	require.NoError(t, err)
	original, err := signed.SignerAccountID()
	require.NoError(t, err)

	fee := types.U64(11)
	signed.Fee = &fee
	tampered, err := signed.SignerAccountID()
	if err == nil {
		assert.NotEqual(t, original, tampered)
	}
}

func TestSignWithCollaborator(t *testing.T) {
	s := signer.GenerateLocalSigner()

	signed, err := testParcel().SignWith(context.Background(), s)
	require.NoError(t, err)
	accountID, err := signed.SignerAccountID()
	require.NoError(t, err)
	assert.Equal(t, s.AccountID(), accountID)

	_, err = testParcel().SignWith(context.Background(), brokenSigner{})
	assert.True(t, errors.Is(err, types.ErrSigningFailure))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = testParcel().SignWith(ctx, s)
	assert.True(t, errors.Is(err, types.ErrSigningFailure))
}

func TestSignRejectsMalformedSecret(t *testing.T) {
	_, err := testParcel().Sign("not a key")
	assert.True(t, errors.Is(err, types.ErrInvalidFieldValue))
}

func TestParcelJSONRoundTrip(t *testing.T) {
	p := testParcel()
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var parsed Parcel
	require.NoError(t, json.Unmarshal(b, &parsed))
	assert.Equal(t, p, parsed)

	signed, err := p.Sign(testSecret)
	require.NoError(t, err)
	b, err = json.Marshal(signed)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, `"0x`+hex.EncodeToString(signed.Signature.Bytes())+`"`, string(raw["signature"]))

	var parsedSigned SignedParcel
	require.NoError(t, json.Unmarshal(b, &parsedSigned))
	assert.Equal(t, signed, parsedSigned)

	// A signed parcel is not an unsigned one.
	assert.Error(t, json.Unmarshal(b, &parsed))
}

func TestParcelJSONRejectsUnknownFields(t *testing.T) {
	b, err := json.Marshal(testParcel())
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &fields))
	fields["gasPrice"] = json.RawMessage(`"0x1"`)
	extended, err := json.Marshal(fields)
	require.NoError(t, err)

	var parsed Parcel
	err = json.Unmarshal(extended, &parsed)
	assert.True(t, errors.Is(err, types.ErrInvalidFieldValue), "got %v", err)

	signed, err := testParcel().Sign(testSecret)
	require.NoError(t, err)
	b, err = json.Marshal(signed)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &fields))
	fields["memo"] = json.RawMessage(`"hello"`)
	extended, err = json.Marshal(fields)
	require.NoError(t, err)

	var parsedSigned SignedParcel
	err = json.Unmarshal(extended, &parsedSigned)
	assert.True(t, errors.Is(err, types.ErrInvalidFieldValue), "got %v", err)
}
