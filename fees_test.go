package wyvernsdk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nftex/wyvern-sdk-go/chain"
)

func standardSchedule() FeeSchedule {
	return FeeSchedule{
		MarketplaceBuyerFeeBPS:  0,
		MarketplaceSellerFeeBPS: 250,
		CollectionBuyerFeeBPS:   0,
		CollectionSellerFeeBPS:  500,
		MarketplaceBountyBPS:    100,
	}
}

func TestComputeFeesSellFixedPrice(t *testing.T) {
	fees, err := ComputeFees(standardSchedule(), chain.SideSell, false, 0)
	require.NoError(t, err)

	require.Equal(t, int64(0), fees.TotalBuyerFeeBPS)
	require.Equal(t, int64(750), fees.TotalSellerFeeBPS)
	// Fixed-price sell: maker carries the seller fee, taker the buyer fee.
	require.Equal(t, int64(750), fees.MakerRelayerFee.Int64())
	require.Equal(t, int64(0), fees.TakerRelayerFee.Int64())
	require.Equal(t, int64(0), fees.MakerProtocolFee.Int64())
	require.Equal(t, int64(0), fees.TakerProtocolFee.Int64())
	require.Equal(t, chain.FeeMethodSplitFee, fees.FeeMethod)
}

func TestComputeFeesSellEnglishAuctionSwapsRoles(t *testing.T) {
	fees, err := ComputeFees(standardSchedule(), chain.SideSell, true, 0)
	require.NoError(t, err)

	require.Equal(t, int64(0), fees.MakerRelayerFee.Int64())
	require.Equal(t, int64(750), fees.TakerRelayerFee.Int64())
}

func TestComputeFeesBuySide(t *testing.T) {
	schedule := standardSchedule()
	schedule.MarketplaceBuyerFeeBPS = 100
	fees, err := ComputeFees(schedule, chain.SideBuy, false, 0)
	require.NoError(t, err)

	require.Equal(t, int64(100), fees.MakerRelayerFee.Int64())
	require.Equal(t, int64(750), fees.TakerRelayerFee.Int64())
}

func TestComputeFeesBountyCap(t *testing.T) {
	// Bounty + marketplace bounty exactly at the seller fee passes.
	fees, err := ComputeFees(standardSchedule(), chain.SideSell, false, 650)
	require.NoError(t, err)
	require.Equal(t, int64(650), fees.MakerReferrerFee.Int64())

	// One basis point over the cap fails.
	_, err = ComputeFees(standardSchedule(), chain.SideSell, false, 651)
	require.ErrorIs(t, err, ErrBountyExceedsCap)
}

func TestComputeFeesRangeValidation(t *testing.T) {
	schedule := standardSchedule()
	schedule.CollectionSellerFeeBPS = 10001
	_, err := ComputeFees(schedule, chain.SideSell, false, 0)
	require.ErrorIs(t, err, ErrInvalidFeeRange)

	schedule = standardSchedule()
	schedule.MarketplaceSellerFeeBPS = 6000
	schedule.CollectionSellerFeeBPS = 6000
	_, err = ComputeFees(schedule, chain.SideSell, false, 0)
	require.ErrorIs(t, err, ErrInvalidFeeRange)

	_, err = ComputeFees(standardSchedule(), chain.SideSell, false, -1)
	require.ErrorIs(t, err, ErrInvalidFeeRange)

	schedule = standardSchedule()
	schedule.MarketplaceBuyerFeeBPS = -5
	_, err = ComputeFees(schedule, chain.SideSell, false, 0)
	require.ErrorIs(t, err, ErrInvalidFeeRange)
}
