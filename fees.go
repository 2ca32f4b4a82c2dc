package wyvernsdk

import (
	"fmt"
	"math/big"

	"github.com/nftex/wyvern-sdk-go/chain"
)

// FeeSchedule holds the marketplace and collection fees for an asset, all in
// basis points (10000 = 100%).
type FeeSchedule struct {
	MarketplaceBuyerFeeBPS  int64
	MarketplaceSellerFeeBPS int64
	CollectionBuyerFeeBPS   int64
	CollectionSellerFeeBPS  int64
	// MarketplaceBountyBPS is the share of the seller fee the marketplace
	// itself pays out as a referral bounty.
	MarketplaceBountyBPS int64
}

// ComputedFees is the fee field assignment for one order.
type ComputedFees struct {
	TotalBuyerFeeBPS  int64
	TotalSellerFeeBPS int64
	MakerRelayerFee   *big.Int
	TakerRelayerFee   *big.Int
	MakerProtocolFee  *big.Int
	TakerProtocolFee  *big.Int
	MakerReferrerFee  *big.Int
	FeeMethod         chain.FeeMethod
}

// ComputeFees derives the relayer/protocol/bounty fee fields for an order
// from the asset's fee schedule and the order side.
//
// On the sell side of an English auction the maker/taker relayer roles are
// swapped relative to fixed price: the auction's sell order logically plays
// the taker role at match time.
func ComputeFees(schedule FeeSchedule, side chain.Side, englishAuction bool, sellerBountyBPS int64) (*ComputedFees, error) {
	for _, bps := range []int64{
		schedule.MarketplaceBuyerFeeBPS, schedule.MarketplaceSellerFeeBPS,
		schedule.CollectionBuyerFeeBPS, schedule.CollectionSellerFeeBPS,
		schedule.MarketplaceBountyBPS,
	} {
		if bps < 0 || bps > chain.InverseBasisPoint {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidFeeRange, bps)
		}
	}

	totalBuyerFee := schedule.MarketplaceBuyerFeeBPS + schedule.CollectionBuyerFeeBPS
	totalSellerFee := schedule.MarketplaceSellerFeeBPS + schedule.CollectionSellerFeeBPS
	if totalBuyerFee > chain.InverseBasisPoint || totalSellerFee > chain.InverseBasisPoint {
		return nil, fmt.Errorf("%w: combined marketplace and collection fees exceed 10000", ErrInvalidFeeRange)
	}

	if sellerBountyBPS < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFeeRange, sellerBountyBPS)
	}
	// The bounty comes out of the seller fee, so the seller fee caps it.
	maxBounty := totalSellerFee
	if sellerBountyBPS+schedule.MarketplaceBountyBPS > maxBounty {
		return nil, fmt.Errorf("%w: bounty %d + marketplace bounty %d > cap %d",
			ErrBountyExceedsCap, sellerBountyBPS, schedule.MarketplaceBountyBPS, maxBounty)
	}

	fees := &ComputedFees{
		TotalBuyerFeeBPS:  totalBuyerFee,
		TotalSellerFeeBPS: totalSellerFee,
		MakerProtocolFee:  big.NewInt(0),
		TakerProtocolFee:  big.NewInt(0),
		MakerReferrerFee:  big.NewInt(sellerBountyBPS),
		FeeMethod:         chain.FeeMethodSplitFee,
	}

	switch {
	case side == chain.SideBuy:
		fees.MakerRelayerFee = big.NewInt(totalBuyerFee)
		fees.TakerRelayerFee = big.NewInt(totalSellerFee)
	case englishAuction:
		fees.MakerRelayerFee = big.NewInt(totalBuyerFee)
		fees.TakerRelayerFee = big.NewInt(totalSellerFee)
	default:
		fees.MakerRelayerFee = big.NewInt(totalSellerFee)
		fees.TakerRelayerFee = big.NewInt(totalBuyerFee)
	}

	return fees, nil
}
