package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const (
	proxyPollAttempts      = 10
	proxyPollDelay         = 3 * time.Second
	ownershipCheckAttempts = 5
	ownershipCheckDelay    = 2 * time.Second
)

// ProxyManager discovers or registers per-account proxy contracts and
// grants them token approvals.
type ProxyManager struct {
	caller   *ContractCaller
	registry *SchemaRegistry
}

// NewProxyManager creates a ProxyManager.
func NewProxyManager(caller *ContractCaller, registry *SchemaRegistry) *ProxyManager {
	return &ProxyManager{caller: caller, registry: registry}
}

// GetProxy polls the registry for the account's proxy with a bounded number
// of fixed-delay attempts. The zero address means no proxy is registered;
// that is not an error, it lets the caller register one.
func (pm *ProxyManager) GetProxy(ctx context.Context, owner common.Address, attempts int) (common.Address, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		proxy, err := pm.caller.ProxyOf(ctx, owner)
		if err != nil {
			lastErr = err
		} else if proxy != (common.Address{}) {
			return proxy, nil
		}
		if attempt < attempts {
			time.Sleep(proxyPollDelay)
		}
	}
	if lastErr != nil {
		return common.Address{}, fmt.Errorf("failed to query proxy registry: %w", lastErr)
	}
	return common.Address{}, nil
}

// InitializeProxy submits a proxy registration transaction, waits for
// confirmation and re-polls for the assigned address. A confirmed
// registration that still resolves no address is fatal.
func (pm *ProxyManager) InitializeProxy(ctx context.Context, signer Signer) (common.Address, error) {
	data, err := proxyRegistryABI.Pack("registerProxy")
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack registerProxy: %w", err)
	}

	owner := signer.Address()
	gasLimit := pm.caller.EstimateGasWithFallback(ctx, ethereum.CallMsg{
		From: owner,
		To:   &pm.caller.registryAddr,
		Data: data,
	})

	log.WithField("account", owner.Hex()).Info("registering proxy contract")
	if _, err := pm.caller.TransactAndConfirm(ctx, signer, pm.caller.registryAddr, nil, data, gasLimit); err != nil {
		return common.Address{}, fmt.Errorf("proxy registration failed: %w", err)
	}

	proxy, err := pm.GetProxy(ctx, owner, proxyPollAttempts)
	if err != nil {
		return common.Address{}, err
	}
	if proxy == (common.Address{}) {
		return common.Address{}, ErrProxyInitializationFailed
	}
	log.WithFields(log.Fields{"account": owner.Hex(), "proxy": proxy.Hex()}).Info("proxy registered")
	return proxy, nil
}

// EnsureProxy returns the account's proxy, registering one if absent.
// Re-invoking after a partial failure is safe: an already-registered proxy
// is found and reused.
func (pm *ProxyManager) EnsureProxy(ctx context.Context, signer Signer) (common.Address, error) {
	proxy, err := pm.GetProxy(ctx, signer.Address(), 1)
	if err != nil {
		return common.Address{}, err
	}
	if proxy != (common.Address{}) {
		return proxy, nil
	}
	return pm.InitializeProxy(ctx, signer)
}

// ApprovalSet deduplicates in-flight setApprovalForAll submissions per token
// contract. Sharing one set across concurrent per-asset approvals keeps a
// batch from submitting redundant transactions for the same contract.
type ApprovalSet struct {
	mu      sync.Mutex
	pending map[common.Address]struct{}
}

// NewApprovalSet creates an empty approval set.
func NewApprovalSet() *ApprovalSet {
	return &ApprovalSet{pending: make(map[common.Address]struct{})}
}

// tryAcquire marks the token contract as being approved. It returns false
// when another asset in the batch is already approving it.
func (s *ApprovalSet) tryAcquire(token common.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[token]; ok {
		return false
	}
	s.pending[token] = struct{}{}
	return true
}

// release clears a failed acquisition so a later retry can approve again.
func (s *ApprovalSet) release(token common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, token)
}

// ApproveAll verifies on-chain ownership of each asset and grants the
// account's proxy setApprovalForAll on every distinct token contract that
// does not already have it. The whole flow is idempotent: existing proxies
// and approvals are detected and skipped.
func (pm *ProxyManager) ApproveAll(ctx context.Context, signer Signer, assets []Asset, approving *ApprovalSet) error {
	if approving == nil {
		approving = NewApprovalSet()
	}

	proxy, err := pm.EnsureProxy(ctx, signer)
	if err != nil {
		return err
	}

	for _, asset := range assets {
		if err := pm.approveAsset(ctx, signer, proxy, asset, approving); err != nil {
			return err
		}
	}
	return nil
}

func (pm *ProxyManager) approveAsset(ctx context.Context, signer Signer, proxy common.Address, asset Asset, approving *ApprovalSet) error {
	schema, err := pm.registry.Get(asset.Schema)
	if err != nil {
		return err
	}

	owner := signer.Address()
	owned, err := pm.verifyOwnership(ctx, schema, owner, asset)
	if err != nil {
		// Balance checks are not implemented for every schema; treat those
		// assets as verified rather than blocking the listing.
		if !errors.Is(err, ErrUnsupportedSchema) {
			return err
		}
		log.WithField("schema", asset.Schema).Warn("ownership check unsupported for schema, skipping verification")
	} else if !owned {
		return &OwnershipError{Account: owner, Asset: asset}
	}

	if !schema.SupportsApproveAll() {
		log.WithField("schema", asset.Schema).Debug("schema has no operator approvals, nothing to approve")
		return nil
	}

	approved, err := pm.caller.IsApprovedForAll(ctx, asset.Address, owner, proxy)
	if err != nil {
		return &ApprovalError{Token: asset.Address, Message: fmt.Sprintf("isApprovedForAll query failed: %v", err)}
	}
	if approved {
		log.WithField("token", asset.Address.Hex()).Debug("proxy already approved for all")
		return nil
	}

	if !approving.tryAcquire(asset.Address) {
		log.WithField("token", asset.Address.Hex()).Debug("approval already in flight for token contract")
		return nil
	}

	data, err := erc721ABI.Pack("setApprovalForAll", proxy, true)
	if err != nil {
		approving.release(asset.Address)
		return &ApprovalError{Token: asset.Address, Message: fmt.Sprintf("failed to pack setApprovalForAll: %v", err)}
	}

	gasLimit := pm.caller.EstimateGasWithFallback(ctx, ethereum.CallMsg{
		From: owner,
		To:   &asset.Address,
		Data: data,
	})

	log.WithFields(log.Fields{"token": asset.Address.Hex(), "proxy": proxy.Hex()}).Info("submitting setApprovalForAll")
	if _, err := pm.caller.TransactAndConfirm(ctx, signer, asset.Address, nil, data, gasLimit); err != nil {
		approving.release(asset.Address)
		return &ApprovalError{Token: asset.Address, Message: err.Error()}
	}
	return nil
}

// verifyOwnership checks on-chain ownership with bounded retry, since nodes
// and indexers may lag recent transfers.
func (pm *ProxyManager) verifyOwnership(ctx context.Context, schema Schema, owner common.Address, asset Asset) (bool, error) {
	var lastErr error
	for attempt := 1; attempt <= ownershipCheckAttempts; attempt++ {
		owned, err := schema.CheckOwnership(ctx, pm.caller, owner, asset)
		if err == nil && owned {
			return true, nil
		}
		if errors.Is(err, ErrUnsupportedSchema) {
			return false, err
		}
		lastErr = err
		if attempt < ownershipCheckAttempts {
			time.Sleep(ownershipCheckDelay)
		}
	}
	if lastErr != nil {
		return false, lastErr
	}
	return false, nil
}

// ApprovePaymentToken grants the token transfer proxy an ERC20 allowance
// covering at least minimum. Tokens with a lingering smaller allowance are
// reset to zero first, since some ERC20s reject approve on a non-zero
// allowance.
func (pm *ProxyManager) ApprovePaymentToken(ctx context.Context, signer Signer, token common.Address, minimum *big.Int) error {
	if token == (common.Address{}) {
		return nil
	}

	owner := signer.Address()
	spender := pm.caller.TokenTransferProxyAddress()

	allowance, err := pm.caller.Allowance(ctx, token, owner, spender)
	if err != nil {
		return &ApprovalError{Token: token, Message: fmt.Sprintf("allowance query failed: %v", err)}
	}
	if minimum != nil && allowance.Cmp(minimum) >= 0 {
		return nil
	}

	if allowance.Sign() > 0 {
		if err := pm.submitApprove(ctx, signer, token, spender, big.NewInt(0)); err != nil {
			return err
		}
	}
	return pm.submitApprove(ctx, signer, token, spender, maxUint256())
}

func (pm *ProxyManager) submitApprove(ctx context.Context, signer Signer, token, spender common.Address, amount *big.Int) error {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return &ApprovalError{Token: token, Message: fmt.Sprintf("failed to pack approve: %v", err)}
	}
	gasLimit := pm.caller.EstimateGasWithFallback(ctx, ethereum.CallMsg{
		From: signer.Address(),
		To:   &token,
		Data: data,
	})
	log.WithFields(log.Fields{"token": token.Hex(), "amount": amount.String()}).Info("submitting ERC20 approve")
	if _, err := pm.caller.TransactAndConfirm(ctx, signer, token, nil, data, gasLimit); err != nil {
		return &ApprovalError{Token: token, Message: err.Error()}
	}
	return nil
}

func maxUint256() *big.Int {
	return new(big.Int).Sub(new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil), big.NewInt(1))
}
