package wyvernsdk

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/nftex/wyvern-sdk-go/chain"
)

// Static gas estimates for fee breakdowns. Actual submissions estimate
// against the node and only use these for cost previews.
const (
	proxyRegistrationGas = 700000
	approvalGas          = 80000
)

// Client is the main SDK client: it wires the order builder, proxy manager,
// authorizer and match engine behind the order lifecycle operations.
type Client struct {
	caller   *chain.ContractCaller
	registry *chain.SchemaRegistry
	proxies  *chain.ProxyManager
	auth     *chain.Authorizer
	engine   *chain.MatchEngine
	builder  *OrderBuilder
	signer   chain.Signer
	chainID  ChainID
}

// ClientConfig holds configuration for creating a Client. Contract
// addresses left empty default to the chain's deployed protocol contracts.
type ClientConfig struct {
	RPCURL  string
	ChainID ChainID

	// PrivateKey is a hex-encoded key for the default in-memory signer.
	// Leave it empty and set Signer to plug in external key custody.
	PrivateKey string
	Signer     chain.Signer

	ExchangeAddr           string
	ProxyRegistryAddr      string
	TokenTransferProxyAddr string
	WrappedNativeAddr      string
	FeeRecipientAddr       string
}

// NewClient creates a new SDK client.
func NewClient(config ClientConfig) (*Client, error) {
	isSupported := false
	for _, supportedID := range SupportedChainIDs {
		if config.ChainID == supportedID {
			isSupported = true
			break
		}
	}
	if !isSupported {
		return nil, &ValidationError{Message: fmt.Sprintf("chain_id must be one of %v", SupportedChainIDs)}
	}

	contracts := DefaultContractAddresses[config.ChainID]
	if config.ExchangeAddr == "" {
		config.ExchangeAddr = contracts.Exchange
	}
	if config.ProxyRegistryAddr == "" {
		config.ProxyRegistryAddr = contracts.ProxyRegistry
	}
	if config.TokenTransferProxyAddr == "" {
		config.TokenTransferProxyAddr = contracts.TokenTransferProxy
	}
	if config.WrappedNativeAddr == "" {
		config.WrappedNativeAddr = contracts.WrappedNative
	}
	if config.FeeRecipientAddr == "" {
		config.FeeRecipientAddr = contracts.FeeRecipient
	}

	signer := config.Signer
	if signer == nil {
		var err error
		signer, err = chain.NewPrivateKeySigner(config.PrivateKey)
		if err != nil {
			return nil, err
		}
	}

	caller, err := chain.NewContractCaller(
		config.RPCURL,
		common.HexToAddress(config.ProxyRegistryAddr),
		common.HexToAddress(config.ExchangeAddr),
		common.HexToAddress(config.TokenTransferProxyAddr),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create contract caller: %w", err)
	}

	registry := chain.NewSchemaRegistry()
	proxies := chain.NewProxyManager(caller, registry)

	return &Client{
		caller:   caller,
		registry: registry,
		proxies:  proxies,
		auth:     chain.NewAuthorizer(caller),
		engine:   chain.NewMatchEngine(caller, proxies),
		builder: NewOrderBuilder(
			common.HexToAddress(config.ExchangeAddr),
			common.HexToAddress(config.FeeRecipientAddr),
			common.HexToAddress(config.WrappedNativeAddr),
			registry,
		),
		signer:  signer,
		chainID: config.ChainID,
	}, nil
}

// Builder exposes the order builder for callers assembling orders directly.
func (c *Client) Builder() *OrderBuilder {
	return c.builder
}

// Account returns the address the client signs for.
func (c *Client) Account() common.Address {
	return c.signer.Address()
}

// CreateSellOrder builds a sell order, ensures the maker's proxy and asset
// approvals are in place, and authorizes it. The flow is idempotent: proxy
// registration and approvals already on chain are detected and skipped, so
// re-invoking after a partial failure resumes where it left off.
func (c *Client) CreateSellOrder(ctx context.Context, params SellOrderParams) (*chain.SignedOrder, error) {
	if params.Maker == ZeroAddress {
		params.Maker = c.signer.Address()
	}

	order, err := c.builder.BuildSellOrder(params)
	if err != nil {
		return nil, err
	}

	if err := c.proxies.ApproveAll(ctx, c.signer, []chain.Asset{params.Asset}, nil); err != nil {
		return nil, err
	}

	hashed := chain.WithHash(*order)
	signed, err := c.auth.AuthorizeOrder(ctx, c.signer, &hashed)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"hash":  signed.Hash.Hex(),
		"maker": signed.Maker.Hex(),
		"price": signed.BasePrice.String(),
	}).Info("sell order created")
	return signed, nil
}

// CreateBuyOrder builds a standalone offer, ensures the payment-token
// allowance covers it, and authorizes it.
func (c *Client) CreateBuyOrder(ctx context.Context, params BuyOrderParams) (*chain.SignedOrder, error) {
	if params.Maker == ZeroAddress {
		params.Maker = c.signer.Address()
	}

	order, err := c.builder.BuildBuyOrder(params)
	if err != nil {
		return nil, err
	}

	if err := c.proxies.ApprovePaymentToken(ctx, c.signer, order.PaymentToken, order.BasePrice); err != nil {
		return nil, err
	}

	hashed := chain.WithHash(*order)
	signed, err := c.auth.AuthorizeOrder(ctx, c.signer, &hashed)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"hash":  signed.Hash.Hex(),
		"maker": signed.Maker.Hex(),
		"price": signed.BasePrice.String(),
	}).Info("buy order created")
	return signed, nil
}

// FulfillOrder takes an existing signed order, derives the matching
// counter-order for this client's account, validates compatibility against
// the exchange and submits the atomic match. A nil offer fulfills at the
// order's own price.
func (c *Client) FulfillOrder(ctx context.Context, order *chain.SignedOrder, offer *big.Int) (common.Hash, error) {
	matching, err := c.builder.BuildMatchingOrder(order, c.signer.Address(), offer)
	if err != nil {
		return common.Hash{}, err
	}

	buy, sell := AssignOrdersToSides(order, matching)
	if err := c.engine.ValidateMatch(ctx, buy, sell); err != nil {
		return common.Hash{}, err
	}

	txHash, err := c.engine.AtomicMatch(ctx, c.signer, buy, sell)
	if err != nil {
		return common.Hash{}, err
	}

	log.WithFields(log.Fields{"order": order.Hash.Hex(), "tx": txHash.Hex()}).Info("order fulfilled")
	return txHash, nil
}

// CancelOrder cancels a signed order on-chain and verifies the order no
// longer validates.
func (c *Client) CancelOrder(ctx context.Context, order *chain.SignedOrder) error {
	return c.engine.CancelOrder(ctx, c.signer, order)
}

// ApproveAssets runs the proxy/approval flow for a batch of assets without
// creating orders, sharing one dedup set across the batch.
func (c *Client) ApproveAssets(ctx context.Context, assets []chain.Asset) error {
	return c.proxies.ApproveAll(ctx, c.signer, assets, chain.NewApprovalSet())
}

// FeeBreakdown is a per-request estimate of the native-asset costs of
// listing: proxy registration, token approvals and match gas. All amounts
// are non-negative decimal strings in native units.
type FeeBreakdown struct {
	ProxyFees    string
	ApprovalFees string
	GasFees      string
	TotalFees    string
}

// EstimateFees previews the on-chain costs the account would pay to list
// and settle the given assets, based on current on-chain proxy/approval
// state and the node's gas price.
func (c *Client) EstimateFees(ctx context.Context, assets []chain.Asset) (*FeeBreakdown, error) {
	account := c.signer.Address()

	gasPrice, err := c.caller.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	proxyGas := new(big.Int)
	proxy, err := c.proxies.GetProxy(ctx, account, 1)
	if err != nil {
		return nil, err
	}
	if proxy == ZeroAddress {
		proxyGas.SetInt64(proxyRegistrationGas)
	}

	approvalsGas := new(big.Int)
	seen := make(map[common.Address]bool)
	for _, asset := range assets {
		if seen[asset.Address] {
			continue
		}
		seen[asset.Address] = true
		if proxy == ZeroAddress {
			approvalsGas.Add(approvalsGas, big.NewInt(approvalGas))
			continue
		}
		approved, err := c.caller.IsApprovedForAll(ctx, asset.Address, account, proxy)
		if err != nil {
			return nil, err
		}
		if !approved {
			approvalsGas.Add(approvalsGas, big.NewInt(approvalGas))
		}
	}

	matchGas := new(big.Int).SetUint64(chain.FallbackGasLimit)

	proxyCost := new(big.Int).Mul(proxyGas, gasPrice)
	approvalCost := new(big.Int).Mul(approvalsGas, gasPrice)
	matchCost := matchGas.Mul(matchGas, gasPrice)
	total := new(big.Int).Add(proxyCost, approvalCost)
	total.Add(total, matchCost)

	toNative := func(wei *big.Int) string {
		return decimal.NewFromBigInt(wei, -NativeTokenDecimals).String()
	}
	return &FeeBreakdown{
		ProxyFees:    toNative(proxyCost),
		ApprovalFees: toNative(approvalCost),
		GasFees:      toNative(matchCost),
		TotalFees:    toNative(total),
	}, nil
}

// Close closes the client and its RPC connection.
func (c *Client) Close() {
	if c.caller != nil {
		c.caller.Close()
	}
}
