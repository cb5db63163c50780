package tx

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/rlp"
	"github.com/suffix-labs/shardtx/pkg/types"
)

func randomH256() types.H256 {
	var h types.H256
	frand.Read(h[:])
	return h
}

func randomH160() types.H160 {
	var h types.H160
	frand.Read(h[:])
	return h
}

func u64(v uint64) *types.U64 {
	u := types.U64(v)
	return &u
}

func testInput(assetType types.H256, amount uint64) AssetTransferInput {
	return AssetTransferInput{
		PrevOut: AssetOutPoint{
			TransactionHash: randomH256(),
			Index:           uint32(frand.Intn(4)),
			AssetType:       assetType,
			Amount:          types.U64(amount),
		},
		LockScript:   types.HexBytes{0x01, 0x02},
		UnlockScript: types.HexBytes{0x03, 0x04, 0x05},
	}
}

func testOutput(assetType types.H256, amount uint64) AssetTransferOutput {
	return AssetTransferOutput{
		LockScriptHash: randomH160(),
		Parameters:     []types.HexBytes{{0xaa}},
		AssetType:      assetType,
		Amount:         types.U64(amount),
	}
}

func testTransfer() AssetTransfer {
	assetType := address.AssetSchemeAddress(randomH256(), 0)
	return AssetTransfer{
		NetworkID: types.TestnetID,
		Burns:     []AssetTransferInput{testInput(assetType, 5)},
		Inputs:    []AssetTransferInput{testInput(assetType, 10), testInput(assetType, 20)},
		Outputs:   []AssetTransferOutput{testOutput(assetType, 25)},
	}
}

func testCompose(shardID uint16) AssetCompose {
	approver := address.FromAccountID(types.TestnetID, randomH160())
	return AssetCompose{
		NetworkID: types.TestnetID,
		ShardID:   shardID,
		Metadata:  `{"name":"bundle"}`,
		Approver:  &approver,
		Inputs: []AssetTransferInput{
			testInput(randomH256(), 30),
			testInput(randomH256(), 40),
		},
		Output: AssetMintOutput{
			LockScriptHash: randomH160(),
			Parameters:     []types.HexBytes{{0x01}},
			Amount:         u64(1),
		},
	}
}

func testMint(shardID uint16) AssetMint {
	return AssetMint{
		NetworkID: types.TestnetID,
		ShardID:   shardID,
		Metadata:  "gold",
		Output: AssetMintOutput{
			LockScriptHash: randomH160(),
			Amount:         u64(1000),
		},
	}
}

func TestCanonicalEncodingLayout(t *testing.T) {
	assert.Equal(t, "c104", hex.EncodeToString(RLPBytes(CreateShard{})))

	receiver := address.FromAccountID(types.MainnetID, types.H160{0x11})
	payment := Payment{Receiver: receiver, Amount: 0}
	enc := RLPBytes(payment)
	// [0x02, 20-byte account id, 0]: 1 + 21 + 1 payload bytes.
	assert.Equal(t, "d702", hex.EncodeToString(enc[:2]))
	assert.Equal(t, byte(0x80), enc[len(enc)-1], "zero amount encodes as the empty string")

	decoded, err := rlp.Decode(RLPBytes(testCompose(1)))
	require.NoError(t, err)
	list := decoded.(rlp.List)
	require.Len(t, list, 10)
	tag, err := list[0].(rlp.Bytes).Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(KindAssetCompose), tag)
	assert.Equal(t, rlp.Bytes("tc"), list[1])
	assert.Len(t, list[5], 0, "absent administrator encodes as an empty list")
	assert.Len(t, list[4], 1, "approver encodes as a singleton list")
}

func TestEveryKindStartsWithItsTag(t *testing.T) {
	for _, tx := range allKinds() {
		decoded, err := rlp.Decode(RLPBytes(tx))
		require.NoError(t, err, tx.Kind().String())
		tag, err := decoded.(rlp.List)[0].(rlp.Bytes).Uint64()
		require.NoError(t, err)
		assert.Equal(t, uint64(tx.Kind()), tag, tx.Kind().String())

		// Idempotent re-encoding.
		assert.Equal(t, RLPBytes(tx), rlp.Encode(decoded))
	}
}

func TestHashDeterminism(t *testing.T) {
	mint := testMint(3)
	assert.Equal(t, mint.Hash(), mint.Hash())
	assert.Equal(t, crypto.Blake256(RLPBytes(mint)), mint.Hash())

	reordered := AssetMint{
		Output:    mint.Output,
		Metadata:  mint.Metadata,
		ShardID:   mint.ShardID,
		NetworkID: mint.NetworkID,
	}
	assert.Equal(t, mint.Hash(), reordered.Hash())

	changed := mint
	changed.Metadata = "silver"
	assert.NotEqual(t, mint.Hash(), changed.Hash())

	changed = mint
	changed.ShardID++
	assert.NotEqual(t, mint.Hash(), changed.Hash())

	changed = mint
	changed.Output.Amount = nil
	assert.NotEqual(t, mint.Hash(), changed.Hash())
}

func TestHashWithoutScriptAllIgnoresScripts(t *testing.T) {
	transfer := testTransfer()

	h, err := transfer.HashWithoutScript(TagAll)
	require.NoError(t, err)
	assert.NotEqual(t, transfer.Hash(), h)

	rescripted := transfer
	rescripted.Inputs = []AssetTransferInput{
		transfer.Inputs[0].WithScripts([]byte{0xff}, []byte{0xee, 0xdd}),
		transfer.Inputs[1].WithScripts(nil, nil),
	}
	rescripted.Burns = []AssetTransferInput{transfer.Burns[0].WithScripts([]byte{0x99}, nil)}

	h2, err := rescripted.HashWithoutScript(TagAll)
	require.NoError(t, err)
	assert.Equal(t, h, h2)
	assert.NotEqual(t, transfer.Hash(), rescripted.Hash())
}

func TestHashWithoutScriptSingleScope(t *testing.T) {
	transfer := testTransfer()
	tag := SingleInput(1, OutputNone)

	h, err := transfer.HashWithoutScript(tag)
	require.NoError(t, err)

	// Other inputs, burns and outputs do not matter.
	other := transfer
	other.Inputs = []AssetTransferInput{testInput(randomH256(), 99), transfer.Inputs[1]}
	other.Burns = nil
	other.Outputs = []AssetTransferOutput{testOutput(randomH256(), 1), testOutput(randomH256(), 2)}

	h2, err := other.HashWithoutScript(tag)
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	// The selected input does.
	changed := transfer
	changed.Inputs = []AssetTransferInput{transfer.Inputs[0], testInput(randomH256(), 20)}
	h3, err := changed.HashWithoutScript(tag)
	require.NoError(t, err)
	assert.NotEqual(t, h, h3)

	// Output scope all commits to the outputs.
	withOutputs, err := transfer.HashWithoutScript(SingleInput(1, OutputAll))
	require.NoError(t, err)
	assert.NotEqual(t, h, withOutputs)
}

func TestHashWithoutScriptTagKeysDiffer(t *testing.T) {
	compose := testCompose(0)
	compose.Inputs = compose.Inputs[:1]

	all, err := compose.HashWithoutScript(TagAll)
	require.NoError(t, err)
	single, err := compose.HashWithoutScript(SingleInput(0, OutputAll))
	require.NoError(t, err)

	// Same stripped transaction, different tag key.
	assert.NotEqual(t, all, single)
}

func TestHashWithoutScriptMissingIndex(t *testing.T) {
	transfer := testTransfer()

	_, err := transfer.HashWithoutScript(SignatureTag{Input: InputSingle})
	assert.True(t, errors.Is(err, types.ErrMissingIndex))

	_, err = transfer.HashWithoutScript(SingleInput(2, OutputAll))
	assert.True(t, errors.Is(err, types.ErrMissingIndex))

	decompose := AssetDecompose{NetworkID: types.TestnetID, Input: testInput(randomH256(), 1)}
	_, err = decompose.HashWithoutScript(SingleInput(1, OutputAll))
	assert.True(t, errors.Is(err, types.ErrMissingIndex))

	_, err = decompose.HashWithoutScript(SingleInput(0, OutputAll))
	assert.NoError(t, err)
}

func TestComposeOutputNoneUsesPlaceholder(t *testing.T) {
	compose := testCompose(2)
	tag := SignatureTag{Output: OutputNone}

	h, err := compose.HashWithoutScript(tag)
	require.NoError(t, err)

	changed := compose
	changed.Output = AssetMintOutput{LockScriptHash: randomH160(), Amount: u64(77)}
	h2, err := changed.HashWithoutScript(tag)
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	// Equivalent to hashing the placeholder explicitly.
	placeholder := compose
	placeholder.Output = AssetMintOutput{}
	placeholder.Inputs = []AssetTransferInput{
		compose.Inputs[0].WithoutScript(),
		compose.Inputs[1].WithoutScript(),
	}
	encodedTag, err := tag.Encode()
	require.NoError(t, err)
	want := crypto.Blake256WithKey(RLPBytes(placeholder), crypto.Blake128(encodedTag))
	assert.Equal(t, want, h)
}

func TestSigningHashUnsupported(t *testing.T) {
	_, err := SigningHash(Payment{}, TagAll)
	assert.True(t, errors.Is(err, types.ErrUnsupportedOperation))

	_, err = SigningHash(testMint(0), TagAll)
	assert.True(t, errors.Is(err, types.ErrUnsupportedOperation))

	transfer := testTransfer()
	direct, err := transfer.HashWithoutScript(TagAll)
	require.NoError(t, err)
	viaDispatch, err := SigningHash(transfer, TagAll)
	require.NoError(t, err)
	assert.Equal(t, direct, viaDispatch)
}

func TestAssetAddresses(t *testing.T) {
	for _, tx := range []SchemeCreator{testMint(0x0102), testCompose(0x0102)} {
		scheme := tx.AssetSchemeAddress()
		asset, err := AssetAddressOf(tx, 0)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(scheme.Hex(), "53000102"), scheme.Hex())
		assert.True(t, strings.HasPrefix(asset.Hex(), "41000102"), asset.Hex())
		assert.NotEqual(t, scheme, asset)
		assert.Equal(t, scheme, tx.AssetSchemeAddress())

		_, err = AssetAddressOf(tx, 1)
		assert.True(t, errors.Is(err, types.ErrMissingIndex))
	}

	_, err := AssetSchemeAddressOf(AssetDecompose{})
	assert.True(t, errors.Is(err, types.ErrUnsupportedOperation))
	_, err = AssetAddressOf(Payment{}, 0)
	assert.True(t, errors.Is(err, types.ErrUnsupportedOperation))
}

func TestDecomposeAssetAddressUsesOutputShard(t *testing.T) {
	pooled := address.AssetSchemeAddress(randomH256(), 9)
	decompose := AssetDecompose{
		NetworkID: types.TestnetID,
		Input:     testInput(address.AssetSchemeAddress(randomH256(), 1), 1),
	}.WithOutputs(testOutput(pooled, 10), testOutput(pooled, 20))

	first, err := decompose.AssetAddressAt(0)
	require.NoError(t, err)
	second, err := decompose.AssetAddressAt(1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.Hex(), "41000009"), first.Hex())
	assert.NotEqual(t, first, second)

	assets := decompose.CreatedAssets()
	require.Len(t, assets, 2)
	assert.Equal(t, uint32(1), assets[1].TransactionOutputIndex)
	assert.Equal(t, decompose.Hash(), assets[1].TransactionHash)
}

func TestComposePoolSummation(t *testing.T) {
	assetType := randomH256()
	compose := testCompose(0)
	compose.Inputs = []AssetTransferInput{testInput(assetType, 30), testInput(assetType, 70)}

	scheme, err := compose.AssetScheme()
	require.NoError(t, err)
	assert.Equal(t, []PoolEntry{{AssetType: assetType, Amount: 100}}, scheme.Pool)
	assert.Equal(t, types.U64(1), scheme.Amount)
	assert.Equal(t, compose.Approver, scheme.Approver)
}

func TestComposePoolOrderAndOverflow(t *testing.T) {
	a, b := randomH256(), randomH256()
	compose := testCompose(0)
	compose.Inputs = []AssetTransferInput{testInput(b, 1), testInput(a, 2), testInput(b, 3)}

	scheme, err := compose.AssetScheme()
	require.NoError(t, err)
	assert.Equal(t, []PoolEntry{{AssetType: b, Amount: 4}, {AssetType: a, Amount: 2}}, scheme.Pool)

	compose.Inputs = []AssetTransferInput{testInput(a, uint64(types.MaxU64)), testInput(a, 1)}
	_, err = compose.AssetScheme()
	assert.True(t, errors.Is(err, types.ErrAmountOverflow))
}

func TestComposedAssetDefaultsToMaxAmount(t *testing.T) {
	compose := testCompose(4)
	compose.Output.Amount = nil

	asset := compose.ComposedAsset()
	assert.Equal(t, types.MaxU64, asset.Amount)
	assert.Equal(t, compose.AssetSchemeAddress(), asset.AssetType)
	assert.Equal(t, compose.Hash(), asset.TransactionHash)
}

func TestMintedAsset(t *testing.T) {
	mint := testMint(5)
	asset := mint.MintedAsset()
	assert.Equal(t, types.U64(1000), asset.Amount)
	assert.Equal(t, mint.AssetSchemeAddress(), asset.AssetType)

	scheme, err := mint.AssetScheme()
	require.NoError(t, err)
	assert.Empty(t, scheme.Pool)
	assert.Equal(t, uint16(5), scheme.ShardID)
}

func TestBuildersDoNotMutate(t *testing.T) {
	base := AssetTransfer{NetworkID: types.TestnetID}
	mint := testMint(0)
	asset := mint.MintedAsset()

	withAsset := base.WithAssets(asset)
	assert.Empty(t, base.Inputs)
	require.Len(t, withAsset.Inputs, 1)
	assert.Equal(t, asset.OutPoint(), withAsset.Inputs[0].PrevOut)
	assert.Empty(t, withAsset.Inputs[0].LockScript)

	more := withAsset.WithInputs(testInput(asset.AssetType, 1))
	assert.Len(t, withAsset.Inputs, 1)
	assert.Len(t, more.Inputs, 2)

	withOutput := more.WithOutputs(testOutput(asset.AssetType, 1001))
	assert.Empty(t, more.Outputs)
	assert.Len(t, withOutput.Outputs, 1)

	burned := base.WithBurnAssets(asset)
	assert.Empty(t, base.Burns)
	assert.Len(t, burned.Burns, 1)

	compose := AssetCompose{NetworkID: types.TestnetID}
	composed := compose.WithAssets(asset, asset)
	assert.Empty(t, compose.Inputs)
	assert.Len(t, composed.Inputs, 2)
}

func TestGroupEncoding(t *testing.T) {
	transfer := testTransfer()
	mint := testMint(1)
	group := AssetTransactionGroup{Transactions: []AssetTransaction{mint, transfer}}

	decoded, err := rlp.Decode(RLPBytes(group))
	require.NoError(t, err)
	inner := decoded.(rlp.List)[1].(rlp.List)
	require.Len(t, inner, 2)
	assert.Equal(t, RLPBytes(mint), rlp.Encode(inner[0]))
	assert.Equal(t, []types.H256{mint.Hash(), transfer.Hash()}, group.Hashes())
}
