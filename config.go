package wyvernsdk

// ChainID represents a blockchain chain ID
type ChainID int

const (
	ChainIDMainnet ChainID = 1 // Ethereum mainnet
	ChainIDRinkeby ChainID = 4 // Rinkeby testnet
)

// SupportedChainIDs lists all supported chain IDs
var SupportedChainIDs = []ChainID{ChainIDMainnet, ChainIDRinkeby}

const (
	// MinExpirationIncrementSeconds is the minimum distance between now and
	// a non-zero order expiration.
	MinExpirationIncrementSeconds = 10

	// OrderMatchingLatencySeconds is how far an English auction's on-chain
	// expiration is pushed past its intended expiry, giving the off-chain
	// matcher time to close the auction.
	OrderMatchingLatencySeconds = 7 * 24 * 60 * 60

	// NativeTokenDecimals is the base-unit precision of the native asset
	// and of the wrapped-native payment token.
	NativeTokenDecimals = 18
)

// ContractAddresses holds protocol contract addresses for one chain.
type ContractAddresses struct {
	Exchange           string
	ProxyRegistry      string
	TokenTransferProxy string
	WrappedNative      string
	FeeRecipient       string
}

// DefaultContractAddresses maps chain IDs to their deployed protocol contracts.
var DefaultContractAddresses = map[ChainID]ContractAddresses{
	ChainIDMainnet: {
		Exchange:           "0x7Be8076f4EA4A4AD08075C2508e481d6C946D12b",
		ProxyRegistry:      "0xa5409ec958C83C3f309868babACA7c86DCB077c1",
		TokenTransferProxy: "0xE5c783EE536cf5E63E792988335c4255169be4E1",
		WrappedNative:      "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		FeeRecipient:       "0x5b3256965e7C3cF26E11FCAf296DfC8807C01073",
	},
	ChainIDRinkeby: {
		Exchange:           "0x5206e78b21Ce315ce284FB24cf05e0585A93B1d9",
		ProxyRegistry:      "0xF57B2c51dED3A29e6891aba85459d600256Cf317",
		TokenTransferProxy: "0x82d102457854c985221249f86659c9D6cf12aa72",
		WrappedNative:      "0xc778417E063141139Fce010982780140Aa0cD5Ab",
		FeeRecipient:       "0x5b3256965e7C3cF26E11FCAf296DfC8807C01073",
	},
}
