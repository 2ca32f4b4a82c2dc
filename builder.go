package wyvernsdk

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nftex/wyvern-sdk-go/chain"
)

// OrderBuilder assembles complete unsigned orders from asset, price, timing
// and fee inputs. Building is pure: no chain calls are made until the order
// is approved and authorized.
type OrderBuilder struct {
	exchange      common.Address
	feeRecipient  common.Address
	wrappedNative common.Address
	registry      *chain.SchemaRegistry

	now func() time.Time
}

// NewOrderBuilder creates an OrderBuilder bound to one exchange deployment.
func NewOrderBuilder(exchange, feeRecipient, wrappedNative common.Address, registry *chain.SchemaRegistry) *OrderBuilder {
	return &OrderBuilder{
		exchange:      exchange,
		feeRecipient:  feeRecipient,
		wrappedNative: wrappedNative,
		registry:      registry,
		now:           time.Now,
	}
}

// SellOrderParams are the inputs to BuildSellOrder.
type SellOrderParams struct {
	Asset chain.Asset
	Maker common.Address

	// StartAmount is the listing price in human-readable payment token units.
	StartAmount decimal.Decimal
	// EndAmount, when set and different from StartAmount, makes the listing
	// a dutch auction declining linearly to EndAmount at expiration.
	EndAmount *decimal.Decimal

	// PaymentToken is the ERC20 the seller is paid in; the zero address
	// means the native asset.
	PaymentToken common.Address

	// ListingTime and ExpirationTime are unix seconds. A zero listing time
	// means now; a zero expiration means the order never expires.
	ListingTime    int64
	ExpirationTime int64

	// EnglishAuction lists the asset for bidding: the order waits for the
	// best counter-order instead of being takeable at the listed price.
	EnglishAuction bool

	Fees            FeeSchedule
	SellerBountyBPS int64
}

// BuildSellOrder assembles an unsigned sell order.
func (b *OrderBuilder) BuildSellOrder(p SellOrderParams) (*chain.UnhashedOrder, error) {
	listingTime, expirationTime, err := b.timeParameters(p.ListingTime, p.ExpirationTime, p.EnglishAuction)
	if err != nil {
		return nil, err
	}

	saleKind := chain.SaleKindFixedPrice
	if p.EndAmount != nil && !p.EndAmount.Equal(p.StartAmount) {
		saleKind = chain.SaleKindDutchAuction
	}

	basePrice, extra, err := priceParameters(p.StartAmount, p.EndAmount, p.PaymentToken, p.ExpirationTime)
	if err != nil {
		return nil, err
	}

	fees, err := ComputeFees(p.Fees, chain.SideSell, p.EnglishAuction, p.SellerBountyBPS)
	if err != nil {
		return nil, err
	}

	schema, err := b.registry.Get(p.Asset.Schema)
	if err != nil {
		return nil, err
	}
	encoded, err := chain.EncodeSell(schema, p.Asset, p.Maker)
	if err != nil {
		return nil, err
	}

	return &chain.UnhashedOrder{
		Exchange:           b.exchange,
		Maker:              p.Maker,
		Taker:              ZeroAddress,
		MakerRelayerFee:    fees.MakerRelayerFee,
		TakerRelayerFee:    fees.TakerRelayerFee,
		MakerProtocolFee:   fees.MakerProtocolFee,
		TakerProtocolFee:   fees.TakerProtocolFee,
		MakerReferrerFee:   fees.MakerReferrerFee,
		FeeRecipient:       b.feeRecipient,
		FeeMethod:          fees.FeeMethod,
		Side:               chain.SideSell,
		SaleKind:           saleKind,
		Target:             encoded.Target,
		HowToCall:          chain.HowToCallCall,
		Calldata:           encoded.Calldata,
		ReplacementPattern: encoded.ReplacementPattern,
		StaticExtradata:    []byte{},
		PaymentToken:       p.PaymentToken,
		BasePrice:          basePrice,
		Extra:              extra,
		ListingTime:        listingTime,
		ExpirationTime:     expirationTime,
		Salt:               GenerateSalt(),

		WaitingForBestCounterOrder: p.EnglishAuction,
		Metadata: chain.ExchangeMetadata{
			Asset:  p.Asset,
			Schema: p.Asset.Schema,
		},
	}, nil
}

// BuyOrderParams are the inputs to BuildBuyOrder.
type BuyOrderParams struct {
	Asset chain.Asset
	Maker common.Address

	// Amount is the offer price in human-readable payment token units.
	Amount decimal.Decimal

	// PaymentToken defaults to the wrapped native token. The native asset
	// itself cannot back an off-chain offer, since the chain cannot escrow
	// it against a signature.
	PaymentToken common.Address

	ExpirationTime int64

	Fees FeeSchedule
}

// BuildBuyOrder assembles an unsigned standalone buy order (an offer).
func (b *OrderBuilder) BuildBuyOrder(p BuyOrderParams) (*chain.UnhashedOrder, error) {
	if p.PaymentToken == ZeroAddress {
		p.PaymentToken = b.wrappedNative
	}

	listingTime, expirationTime, err := b.timeParameters(0, p.ExpirationTime, false)
	if err != nil {
		return nil, err
	}

	basePrice, _, err := priceParameters(p.Amount, nil, p.PaymentToken, p.ExpirationTime)
	if err != nil {
		return nil, err
	}

	fees, err := ComputeFees(p.Fees, chain.SideBuy, false, 0)
	if err != nil {
		return nil, err
	}

	schema, err := b.registry.Get(p.Asset.Schema)
	if err != nil {
		return nil, err
	}
	encoded, err := chain.EncodeBuy(schema, p.Asset, p.Maker)
	if err != nil {
		return nil, err
	}

	return &chain.UnhashedOrder{
		Exchange:           b.exchange,
		Maker:              p.Maker,
		Taker:              ZeroAddress,
		MakerRelayerFee:    fees.MakerRelayerFee,
		TakerRelayerFee:    fees.TakerRelayerFee,
		MakerProtocolFee:   fees.MakerProtocolFee,
		TakerProtocolFee:   fees.TakerProtocolFee,
		MakerReferrerFee:   fees.MakerReferrerFee,
		FeeRecipient:       b.feeRecipient,
		FeeMethod:          fees.FeeMethod,
		Side:               chain.SideBuy,
		SaleKind:           chain.SaleKindFixedPrice,
		Target:             encoded.Target,
		HowToCall:          chain.HowToCallCall,
		Calldata:           encoded.Calldata,
		ReplacementPattern: encoded.ReplacementPattern,
		StaticExtradata:    []byte{},
		PaymentToken:       p.PaymentToken,
		BasePrice:          basePrice,
		Extra:              big.NewInt(0),
		ListingTime:        listingTime,
		ExpirationTime:     expirationTime,
		Salt:               GenerateSalt(),

		Metadata: chain.ExchangeMetadata{
			Asset:  p.Asset,
			Schema: p.Asset.Schema,
		},
	}, nil
}

// BuildMatchingOrder builds the structural counter-order to an existing
// order: inverted side, fresh salt, zero price delta, and calldata
// re-encoded for the opposite transfer direction. Fee fields are copied
// from the existing order with maker and taker swapped, binding the match
// price and making the pair fee-compatible by construction. An optional
// offer overrides the base price.
func (b *OrderBuilder) BuildMatchingOrder(existing *chain.SignedOrder, account common.Address, offer *big.Int) (*chain.UnhashedOrder, error) {
	schema, err := b.registry.Get(existing.Metadata.Schema)
	if err != nil {
		return nil, err
	}

	var (
		encoded *chain.EncodedTransfer
		side    chain.Side
	)
	if existing.Side == chain.SideSell {
		side = chain.SideBuy
		encoded, err = chain.EncodeBuy(schema, existing.Metadata.Asset, account)
	} else {
		side = chain.SideSell
		encoded, err = chain.EncodeSell(schema, existing.Metadata.Asset, account)
	}
	if err != nil {
		return nil, err
	}

	basePrice := new(big.Int).Set(existing.BasePrice)
	if offer != nil {
		if offer.Sign() < 0 {
			return nil, &ValidationError{Message: "offer price must not be negative"}
		}
		basePrice = new(big.Int).Set(offer)
	}

	// Exactly one of the pair names a fee recipient.
	feeRecipient := ZeroAddress
	if existing.FeeRecipient == ZeroAddress {
		feeRecipient = b.feeRecipient
	}

	now := b.now().Unix()
	return &chain.UnhashedOrder{
		Exchange:           b.exchange,
		Maker:              account,
		Taker:              existing.Maker,
		MakerRelayerFee:    new(big.Int).Set(existing.TakerRelayerFee),
		TakerRelayerFee:    new(big.Int).Set(existing.MakerRelayerFee),
		MakerProtocolFee:   new(big.Int).Set(existing.TakerProtocolFee),
		TakerProtocolFee:   new(big.Int).Set(existing.MakerProtocolFee),
		MakerReferrerFee:   big.NewInt(0),
		FeeRecipient:       feeRecipient,
		FeeMethod:          existing.FeeMethod,
		Side:               side,
		SaleKind:           chain.SaleKindFixedPrice,
		Target:             encoded.Target,
		HowToCall:          existing.HowToCall,
		Calldata:           encoded.Calldata,
		ReplacementPattern: encoded.ReplacementPattern,
		StaticExtradata:    []byte{},
		PaymentToken:       existing.PaymentToken,
		BasePrice:          basePrice,
		Extra:              big.NewInt(0),
		ListingTime:        big.NewInt(now),
		ExpirationTime:     big.NewInt(now + OrderMatchingLatencySeconds),
		Salt:               GenerateSalt(),

		Metadata: existing.Metadata,
	}, nil
}

// AssignOrdersToSides splits an order and its counter-order into the (buy,
// sell) pair the exchange expects. The synthetic counter-order carries the
// original order's signature fields; the exchange authenticates the taker
// as the transaction sender, so the counter-order has no signature of its
// own to contribute.
func AssignOrdersToSides(original *chain.SignedOrder, matching *chain.UnhashedOrder) (buy, sell *chain.SignedOrder) {
	synthetic := &chain.SignedOrder{
		HashedOrder: chain.WithHash(*matching),
		Signature:   original.Signature,
	}
	if original.Side == chain.SideSell {
		return synthetic, original
	}
	return original, synthetic
}

// timeParameters validates and resolves listing and expiration times.
func (b *OrderBuilder) timeParameters(listingTime, expirationTime int64, englishAuction bool) (*big.Int, *big.Int, error) {
	now := b.now().Unix()

	if expirationTime == 0 {
		if englishAuction {
			return nil, nil, &ValidationError{Message: "English auctions require an expiration time"}
		}
		if listingTime == 0 {
			listingTime = now
		}
		return big.NewInt(listingTime), big.NewInt(0), nil
	}

	if expirationTime < now+MinExpirationIncrementSeconds {
		return nil, nil, &ValidationError{Message: fmt.Sprintf(
			"expiration time must be at least %d seconds from now", MinExpirationIncrementSeconds)}
	}

	if englishAuction {
		if listingTime > now {
			return nil, nil, &ValidationError{Message: "English auctions cannot have a future listing time"}
		}
		// Anchor the listing at the intended expiry and give the off-chain
		// matcher a latency window to close the auction.
		return big.NewInt(expirationTime), big.NewInt(expirationTime + OrderMatchingLatencySeconds), nil
	}

	if listingTime == 0 {
		listingTime = now
	}
	if listingTime < now {
		return nil, nil, &ValidationError{Message: "listing time cannot be in the past"}
	}
	if listingTime >= expirationTime {
		return nil, nil, &ValidationError{Message: "listing time must precede the expiration time"}
	}
	return big.NewInt(listingTime), big.NewInt(expirationTime), nil
}

// priceParameters converts human-readable amounts into base-unit basePrice
// and extra. Dutch-auction deltas are only defined for the native payment
// asset.
func priceParameters(startAmount decimal.Decimal, endAmount *decimal.Decimal, paymentToken common.Address, expirationTime int64) (*big.Int, *big.Int, error) {
	if startAmount.IsNegative() {
		return nil, nil, &ValidationError{Message: "price must not be negative"}
	}

	priceDiff := decimal.Zero
	if endAmount != nil {
		priceDiff = startAmount.Sub(*endAmount)
	}
	if priceDiff.IsNegative() {
		return nil, nil, &ValidationError{Message: "end price must not exceed the start price"}
	}
	if !priceDiff.IsZero() {
		if expirationTime == 0 {
			return nil, nil, &ValidationError{Message: "a declining price requires an expiration time"}
		}
		if paymentToken != ZeroAddress {
			return nil, nil, &ValidationError{Message: "declining prices are only supported for the native payment asset"}
		}
	}

	basePrice, err := ToBaseUnits(startAmount, NativeTokenDecimals)
	if err != nil {
		return nil, nil, err
	}
	extra, err := ToBaseUnits(priceDiff, NativeTokenDecimals)
	if err != nil {
		return nil, nil, err
	}
	return basePrice, extra, nil
}
