package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func flattenFixture() (*UnhashedOrder, *UnhashedOrder) {
	buy := &UnhashedOrder{
		Exchange:        common.HexToAddress("0x01"),
		Maker:           common.HexToAddress("0x02"),
		Taker:           common.HexToAddress("0x03"),
		FeeRecipient:    common.HexToAddress("0x04"),
		Target:          common.HexToAddress("0x05"),
		StaticTarget:    common.HexToAddress("0x06"),
		PaymentToken:    common.HexToAddress("0x07"),
		MakerRelayerFee: big.NewInt(1),
		TakerRelayerFee: big.NewInt(2),
		BasePrice:       big.NewInt(5),
		Extra:           big.NewInt(6),
		ListingTime:     big.NewInt(7),
		ExpirationTime:  big.NewInt(8),
		Salt:            big.NewInt(9),
		FeeMethod:       FeeMethodSplitFee,
		Side:            SideBuy,
		SaleKind:        SaleKindFixedPrice,
		HowToCall:       HowToCallCall,
	}
	sell := &UnhashedOrder{
		Exchange:  common.HexToAddress("0x01"),
		Maker:     common.HexToAddress("0x12"),
		Side:      SideSell,
		SaleKind:  SaleKindDutchAuction,
		HowToCall: HowToCallCall,
		FeeMethod: FeeMethodSplitFee,
	}
	return buy, sell
}

func TestOrderAddrsLayout(t *testing.T) {
	buy, _ := flattenFixture()
	addrs := orderAddrs(buy)
	require.Equal(t, buy.Exchange, addrs[0])
	require.Equal(t, buy.Maker, addrs[1])
	require.Equal(t, buy.Taker, addrs[2])
	require.Equal(t, buy.FeeRecipient, addrs[3])
	require.Equal(t, buy.Target, addrs[4])
	require.Equal(t, buy.StaticTarget, addrs[5])
	require.Equal(t, buy.PaymentToken, addrs[6])
}

func TestOrderUintsLayoutAndNilHandling(t *testing.T) {
	buy, _ := flattenFixture()
	uints := orderUints(buy)
	require.Equal(t, big.NewInt(1), uints[0])
	require.Equal(t, big.NewInt(2), uints[1])
	// MakerProtocolFee and TakerProtocolFee were left nil.
	require.Equal(t, int64(0), uints[2].Int64())
	require.Equal(t, int64(0), uints[3].Int64())
	require.Equal(t, big.NewInt(5), uints[4])
	require.Equal(t, big.NewInt(9), uints[8])
}

func TestPairFlattening(t *testing.T) {
	buy, sell := flattenFixture()

	addrs := pairAddrs(buy, sell)
	require.Equal(t, buy.Maker, addrs[1])
	require.Equal(t, sell.Maker, addrs[8])

	uints := pairUints(buy, sell)
	require.Equal(t, big.NewInt(5), uints[4])
	require.Equal(t, int64(0), uints[13].Int64())

	enums := pairEnums(buy, sell)
	require.Equal(t, [8]uint8{
		uint8(FeeMethodSplitFee), uint8(SideBuy), uint8(SaleKindFixedPrice), uint8(HowToCallCall),
		uint8(FeeMethodSplitFee), uint8(SideSell), uint8(SaleKindDutchAuction), uint8(HowToCallCall),
	}, enums)
}

func TestMatchValue(t *testing.T) {
	sell := &UnhashedOrder{
		BasePrice:       big.NewInt(1000000),
		TakerRelayerFee: big.NewInt(250),
	}
	// 1000000 + 1000000*250/10000 = 1025000
	require.Equal(t, "1025000", MatchValue(sell).String())

	// No fee, no nil fields.
	require.Equal(t, "0", MatchValue(&UnhashedOrder{}).String())
	require.Equal(t, "42", MatchValue(&UnhashedOrder{BasePrice: big.NewInt(42)}).String())
}

func TestValidateMatchRejectsWrongSides(t *testing.T) {
	me := NewMatchEngine(nil, nil)
	buy, sell := flattenFixture()

	sellSigned := &SignedOrder{HashedOrder: HashedOrder{UnhashedOrder: *sell}}
	buySigned := &SignedOrder{HashedOrder: HashedOrder{UnhashedOrder: *buy}}

	// Two sells, and swapped positions, both fail before any RPC use.
	err := me.ValidateMatch(context.Background(), sellSigned, sellSigned)
	require.ErrorIs(t, err, ErrOrdersIncompatible)

	err = me.ValidateMatch(context.Background(), sellSigned, buySigned)
	require.ErrorIs(t, err, ErrOrdersIncompatible)
}
