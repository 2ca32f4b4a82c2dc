package chain_test

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/nftex/wyvern-sdk-go/chain"
)

var (
	maker     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	recipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func erc721Asset() chain.Asset {
	return chain.Asset{
		TokenID:  big.NewInt(42),
		Address:  common.HexToAddress("0x4444444444444444444444444444444444444444"),
		Quantity: big.NewInt(1),
		Schema:   chain.SchemaERC721,
	}
}

func mustSchema(t *testing.T, name chain.SchemaName) chain.Schema {
	t.Helper()
	schema, err := chain.NewSchemaRegistry().Get(name)
	require.NoError(t, err)
	return schema
}

func allBytes(b []byte, v byte) bool {
	for _, x := range b {
		if x != v {
			return false
		}
	}
	return true
}

func TestEncodeSellERC721(t *testing.T) {
	asset := erc721Asset()
	encoded, err := chain.EncodeSell(mustSchema(t, chain.SchemaERC721), asset, maker)
	require.NoError(t, err)

	require.Equal(t, asset.Address, encoded.Target)
	require.Len(t, encoded.Calldata, 4+3*32)
	require.Len(t, encoded.ReplacementPattern, len(encoded.Calldata))

	selector := crypto.Keccak256([]byte("transferFrom(address,address,uint256)"))[:4]
	require.Equal(t, selector, encoded.Calldata[:4])

	// from = maker, to = zero placeholder, tokenId = 42
	require.Equal(t, maker.Bytes(), encoded.Calldata[4+12:4+32])
	require.True(t, allBytes(encoded.Calldata[4+32:4+64], 0x00))
	require.Equal(t, big.NewInt(42).Bytes(), bytes.TrimLeft(encoded.Calldata[4+64:4+96], "\x00"))

	// Only the destination word is replaceable; selector bytes never are.
	require.True(t, allBytes(encoded.ReplacementPattern[:4], 0x00))
	require.True(t, allBytes(encoded.ReplacementPattern[4:4+32], 0x00))
	require.True(t, allBytes(encoded.ReplacementPattern[4+32:4+64], 0xff))
	require.True(t, allBytes(encoded.ReplacementPattern[4+64:], 0x00))
}

func TestEncodeBuyERC721(t *testing.T) {
	asset := erc721Asset()
	encoded, err := chain.EncodeBuy(mustSchema(t, chain.SchemaERC721), asset, recipient)
	require.NoError(t, err)

	require.Len(t, encoded.ReplacementPattern, len(encoded.Calldata))

	// from is left replaceable for the eventual seller, to is fixed.
	require.True(t, allBytes(encoded.Calldata[4:4+32], 0x00))
	require.Equal(t, recipient.Bytes(), encoded.Calldata[4+32+12:4+64])

	require.True(t, allBytes(encoded.ReplacementPattern[4:4+32], 0xff))
	require.True(t, allBytes(encoded.ReplacementPattern[4+32:4+64], 0x00))
}

func TestEncodeSellERC1155DynamicTail(t *testing.T) {
	asset := chain.Asset{
		TokenID:  big.NewInt(7),
		Address:  common.HexToAddress("0x5555555555555555555555555555555555555555"),
		Quantity: big.NewInt(10),
		Schema:   chain.SchemaERC1155,
	}
	encoded, err := chain.EncodeSell(mustSchema(t, chain.SchemaERC1155), asset, maker)
	require.NoError(t, err)

	selector := crypto.Keccak256([]byte("safeTransferFrom(address,address,uint256,uint256,bytes)"))[:4]
	require.Equal(t, selector, encoded.Calldata[:4])

	// 5 head words plus the empty bytes tail (one length word).
	require.Len(t, encoded.Calldata, 4+5*32+32)
	require.Len(t, encoded.ReplacementPattern, len(encoded.Calldata))

	// to is the second head word; everything else, including the dynamic
	// offset and tail, is not replaceable.
	require.True(t, allBytes(encoded.ReplacementPattern[4+32:4+64], 0xff))
	require.True(t, allBytes(encoded.ReplacementPattern[4+64:], 0x00))
}

func TestEncodeBuyERC721LegacyNoOwnerSlot(t *testing.T) {
	asset := chain.Asset{
		TokenID: big.NewInt(3),
		Address: common.HexToAddress("0x6666666666666666666666666666666666666666"),
		Schema:  chain.SchemaERC721Legacy,
	}
	encoded, err := chain.EncodeBuy(mustSchema(t, chain.SchemaERC721Legacy), asset, recipient)
	require.NoError(t, err)

	// transfer(address,uint256) has no owner input, so nothing is replaceable.
	require.Len(t, encoded.Calldata, 4+2*32)
	require.True(t, allBytes(encoded.ReplacementPattern, 0x00))
}

func TestUnknownSchemaRejected(t *testing.T) {
	_, err := chain.NewSchemaRegistry().Get(chain.SchemaName("ERC9999"))
	require.ErrorIs(t, err, chain.ErrUnsupportedSchema)
}

// twoOwnerSchema is a transfer template with two owner inputs, which cannot
// be encoded for the buy side.
type twoOwnerSchema struct{}

func (twoOwnerSchema) Name() chain.SchemaName { return chain.SchemaName("TwoOwner") }

func (twoOwnerSchema) Transfer(asset chain.Asset) (*chain.TransferCall, error) {
	return &chain.TransferCall{
		FunctionName: "transferShared",
		Inputs: []chain.TransferInput{
			{Name: "fromA", Type: chain.TypeAddress, Role: chain.RoleOwner},
			{Name: "fromB", Type: chain.TypeAddress, Role: chain.RoleOwner},
			{Name: "to", Type: chain.TypeAddress, Role: chain.RoleReplaceable},
			{Name: "tokenId", Type: chain.TypeUint256, Role: chain.RoleAsset, Value: asset.TokenID},
		},
	}, nil
}

func (twoOwnerSchema) SupportsApproveAll() bool { return false }

func (twoOwnerSchema) CheckOwnership(context.Context, *chain.ContractCaller, common.Address, chain.Asset) (bool, error) {
	return true, nil
}

func TestEncodeBuyAmbiguousReplacementTarget(t *testing.T) {
	_, err := chain.EncodeBuy(twoOwnerSchema{}, erc721Asset(), recipient)
	require.ErrorIs(t, err, chain.ErrAmbiguousReplacementTarget)
}

// dynamicReplaceableSchema marks a dynamic input replaceable, which the
// byte-mask format cannot express.
type dynamicReplaceableSchema struct{}

func (dynamicReplaceableSchema) Name() chain.SchemaName { return chain.SchemaName("DynamicReplace") }

func (dynamicReplaceableSchema) Transfer(asset chain.Asset) (*chain.TransferCall, error) {
	return &chain.TransferCall{
		FunctionName: "transferWithData",
		Inputs: []chain.TransferInput{
			{Name: "from", Type: chain.TypeAddress, Role: chain.RoleOwner},
			{Name: "data", Type: chain.TypeBytes, Role: chain.RoleReplaceable},
			{Name: "tokenId", Type: chain.TypeUint256, Role: chain.RoleAsset, Value: asset.TokenID},
		},
	}, nil
}

func (dynamicReplaceableSchema) SupportsApproveAll() bool { return false }

func (dynamicReplaceableSchema) CheckOwnership(context.Context, *chain.ContractCaller, common.Address, chain.Asset) (bool, error) {
	return true, nil
}

func TestEncodeSellDynamicReplaceableRejected(t *testing.T) {
	_, err := chain.EncodeSell(dynamicReplaceableSchema{}, erc721Asset(), maker)
	require.ErrorIs(t, err, chain.ErrUnsupportedDynamicReplacement)
}
