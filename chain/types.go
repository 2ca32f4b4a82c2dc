package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Side represents the side of an order.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

// SaleKind represents the pricing mechanism of an order.
type SaleKind uint8

const (
	SaleKindFixedPrice SaleKind = iota
	SaleKindDutchAuction
)

// HowToCall represents the call mechanism the proxy uses for the transfer.
type HowToCall uint8

const (
	HowToCallCall HowToCall = iota
	HowToCallDelegateCall
)

// FeeMethod represents the fee settlement mechanism of the exchange.
type FeeMethod uint8

const (
	FeeMethodProtocolFee FeeMethod = iota
	FeeMethodSplitFee
)

// SchemaName identifies the token standard of an asset.
type SchemaName string

const (
	SchemaERC721       SchemaName = "ERC721"
	SchemaERC721Legacy SchemaName = "ERC721Legacy"
	SchemaERC1155      SchemaName = "ERC1155"
)

// Asset identifies a specific on-chain token unit.
type Asset struct {
	TokenID  *big.Int
	Address  common.Address
	Quantity *big.Int
	Schema   SchemaName
}

// ExchangeMetadata is the off-contract reference to the asset an order moves.
type ExchangeMetadata struct {
	Asset  Asset
	Schema SchemaName
}

// UnhashedOrder is the full order parameter set before its canonical hash
// has been computed. Fields are immutable once assembled.
type UnhashedOrder struct {
	Exchange         common.Address
	Maker            common.Address
	Taker            common.Address
	MakerRelayerFee  *big.Int
	TakerRelayerFee  *big.Int
	MakerProtocolFee *big.Int
	TakerProtocolFee *big.Int
	// MakerReferrerFee is the seller bounty. It is carried on the order for
	// off-chain settlement but is not part of the canonical hash.
	MakerReferrerFee   *big.Int
	FeeRecipient       common.Address
	FeeMethod          FeeMethod
	Side               Side
	SaleKind           SaleKind
	Target             common.Address
	HowToCall          HowToCall
	Calldata           []byte
	ReplacementPattern []byte
	StaticTarget       common.Address
	StaticExtradata    []byte
	PaymentToken       common.Address
	BasePrice          *big.Int
	Extra              *big.Int
	ListingTime        *big.Int
	ExpirationTime     *big.Int
	Salt               *big.Int

	WaitingForBestCounterOrder bool
	Metadata                   ExchangeMetadata
}

// HashedOrder is an order whose canonical hash has been computed.
// Recomputing the hash over identical fields always reproduces the same value.
type HashedOrder struct {
	UnhashedOrder
	Hash common.Hash
}

// ECSignature is a split ECDSA signature with v normalized to 27/28.
type ECSignature struct {
	V uint8
	R common.Hash
	S common.Hash
}

// SignedOrder is the terminal, submittable order state. Orders authorized
// on-chain by contract-account makers carry a zero signature.
type SignedOrder struct {
	HashedOrder
	Signature ECSignature
}

// HasSignature reports whether the order carries an off-chain signature.
func (o *SignedOrder) HasSignature() bool {
	return o.Signature.V != 0
}
