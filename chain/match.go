package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const (
	matchValidationAttempts = 2
	matchValidationDelay    = time.Second

	// InverseBasisPoint is the denominator of all basis-point fee fields.
	InverseBasisPoint = 10000
)

// MatchEngine validates buy/sell compatibility against the exchange's own
// predicates and submits atomic-match and cancellation transactions.
type MatchEngine struct {
	caller  *ContractCaller
	proxies *ProxyManager
}

// NewMatchEngine creates a MatchEngine.
func NewMatchEngine(caller *ContractCaller, proxies *ProxyManager) *MatchEngine {
	return &MatchEngine{caller: caller, proxies: proxies}
}

// orderAddrs flattens an order into the exchange's address[7] convention.
func orderAddrs(o *UnhashedOrder) [7]common.Address {
	return [7]common.Address{
		o.Exchange, o.Maker, o.Taker, o.FeeRecipient, o.Target, o.StaticTarget, o.PaymentToken,
	}
}

// orderUints flattens an order into the exchange's uint256[9] convention.
func orderUints(o *UnhashedOrder) [9]*big.Int {
	return [9]*big.Int{
		bigOrZero(o.MakerRelayerFee), bigOrZero(o.TakerRelayerFee),
		bigOrZero(o.MakerProtocolFee), bigOrZero(o.TakerProtocolFee),
		bigOrZero(o.BasePrice), bigOrZero(o.Extra),
		bigOrZero(o.ListingTime), bigOrZero(o.ExpirationTime), bigOrZero(o.Salt),
	}
}

func pairAddrs(buy, sell *UnhashedOrder) [14]common.Address {
	var out [14]common.Address
	b, s := orderAddrs(buy), orderAddrs(sell)
	copy(out[:7], b[:])
	copy(out[7:], s[:])
	return out
}

func pairUints(buy, sell *UnhashedOrder) [18]*big.Int {
	var out [18]*big.Int
	b, s := orderUints(buy), orderUints(sell)
	copy(out[:9], b[:])
	copy(out[9:], s[:])
	return out
}

func pairEnums(buy, sell *UnhashedOrder) [8]uint8 {
	return [8]uint8{
		uint8(buy.FeeMethod), uint8(buy.Side), uint8(buy.SaleKind), uint8(buy.HowToCall),
		uint8(sell.FeeMethod), uint8(sell.Side), uint8(sell.SaleKind), uint8(sell.HowToCall),
	}
}

func bigOrZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}

// ValidateMatch checks that the pair is structurally and economically
// compatible by querying the exchange's own ordersCanMatch_ predicate and
// its calldata-mask predicate. Transient RPC failures are retried once.
func (me *MatchEngine) ValidateMatch(ctx context.Context, buy, sell *SignedOrder) error {
	if buy.Side != SideBuy || sell.Side != SideSell {
		return fmt.Errorf("%w: pair must be exactly one buy and one sell order", ErrOrdersIncompatible)
	}

	canMatch, err := me.boolCallWithRetry(ctx, "ordersCanMatch_",
		pairAddrs(&buy.UnhashedOrder, &sell.UnhashedOrder),
		pairUints(&buy.UnhashedOrder, &sell.UnhashedOrder),
		pairEnums(&buy.UnhashedOrder, &sell.UnhashedOrder),
		buy.Calldata, sell.Calldata,
		buy.ReplacementPattern, sell.ReplacementPattern,
		buy.StaticExtradata, sell.StaticExtradata,
	)
	if err != nil {
		return fmt.Errorf("%w: compatibility check failed: %v", ErrOrdersIncompatible, err)
	}
	if !canMatch {
		return ErrOrdersIncompatible
	}

	calldataOK, err := me.boolCallWithRetry(ctx, "orderCalldataCanMatch",
		buy.Calldata, buy.ReplacementPattern, sell.Calldata, sell.ReplacementPattern)
	if err != nil {
		return fmt.Errorf("%w: calldata check failed: %v", ErrOrdersIncompatible, err)
	}
	if !calldataOK {
		return fmt.Errorf("%w: calldata replacement masks do not align", ErrOrdersIncompatible)
	}
	return nil
}

// MatchValue is the native value to attach to an atomic match: the sell
// order's base price plus the taker relayer fee levied on top of it.
func MatchValue(sell *UnhashedOrder) *big.Int {
	base := bigOrZero(sell.BasePrice)
	fee := new(big.Int).Mul(base, bigOrZero(sell.TakerRelayerFee))
	fee.Div(fee, big.NewInt(InverseBasisPoint))
	return fee.Add(fee, base)
}

// AtomicMatch runs the caller's side-appropriate validation and approvals,
// then submits the atomic-match transaction settling both orders.
func (me *MatchEngine) AtomicMatch(ctx context.Context, signer Signer, buy, sell *SignedOrder) (common.Hash, error) {
	account := signer.Address()
	switch account {
	case sell.Maker:
		if err := me.sellOrderValidationAndApprovals(ctx, signer, sell); err != nil {
			return common.Hash{}, err
		}
	case buy.Maker:
		if err := me.buyOrderValidationAndApprovals(ctx, signer, buy, sell); err != nil {
			return common.Hash{}, err
		}
	}

	value := new(big.Int)
	if buy.PaymentToken == (common.Address{}) {
		value = MatchValue(&sell.UnhashedOrder)
	}

	data, err := exchangeABI.Pack("atomicMatch_",
		pairAddrs(&buy.UnhashedOrder, &sell.UnhashedOrder),
		pairUints(&buy.UnhashedOrder, &sell.UnhashedOrder),
		pairEnums(&buy.UnhashedOrder, &sell.UnhashedOrder),
		buy.Calldata, sell.Calldata,
		buy.ReplacementPattern, sell.ReplacementPattern,
		buy.StaticExtradata, sell.StaticExtradata,
		[2]uint8{buy.Signature.V, sell.Signature.V},
		[5][32]byte{buy.Signature.R, buy.Signature.S, sell.Signature.R, sell.Signature.S, {}},
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack atomicMatch_: %w", err)
	}

	gasLimit := me.caller.EstimateGasWithFallback(ctx, ethereum.CallMsg{
		From:  account,
		To:    &me.caller.exchangeAddr,
		Value: value,
		Data:  data,
	})

	log.WithFields(log.Fields{
		"buy":   buy.Hash.Hex(),
		"sell":  sell.Hash.Hex(),
		"value": value.String(),
	}).Info("submitting atomic match")

	tx, err := me.caller.Transact(ctx, signer, me.caller.exchangeAddr, value, data, gasLimit)
	if err != nil {
		return common.Hash{}, err
	}
	receipt, err := me.caller.WaitForReceipt(ctx, tx.Hash())
	if err != nil {
		return common.Hash{}, err
	}
	if receipt.Status == 0 {
		return common.Hash{}, fmt.Errorf("atomic match reverted: %s", tx.Hash().Hex())
	}
	return tx.Hash(), nil
}

// CancelOrder re-submits the order's full field tuple to the exchange's
// cancel entry point and confirms by re-validation: cancellation can
// silently no-op on an already filled or cancelled order, so success is the
// order subsequently reporting invalid, not the transaction status alone.
func (me *MatchEngine) CancelOrder(ctx context.Context, signer Signer, order *SignedOrder) error {
	o := &order.UnhashedOrder
	data, err := exchangeABI.Pack("cancelOrder_",
		orderAddrs(o), orderUints(o),
		uint8(o.FeeMethod), uint8(o.Side), uint8(o.SaleKind), uint8(o.HowToCall),
		o.Calldata, o.ReplacementPattern, o.StaticExtradata,
		order.Signature.V, [32]byte(order.Signature.R), [32]byte(order.Signature.S),
	)
	if err != nil {
		return fmt.Errorf("failed to pack cancelOrder_: %w", err)
	}

	gasLimit := me.caller.EstimateGasWithFallback(ctx, ethereum.CallMsg{
		From: signer.Address(),
		To:   &me.caller.exchangeAddr,
		Data: data,
	})

	log.WithField("hash", order.Hash.Hex()).Info("submitting order cancellation")
	if _, err := me.caller.TransactAndConfirm(ctx, signer, me.caller.exchangeAddr, nil, data, gasLimit); err != nil {
		return err
	}

	stillValid, err := me.ValidateOrderAuthorization(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to re-validate cancelled order: %w", err)
	}
	if stillValid {
		return ErrCancellationFailed
	}
	return nil
}

// ValidateOrderParameters asks the exchange whether the order's parameters
// are well-formed and current.
func (me *MatchEngine) ValidateOrderParameters(ctx context.Context, o *UnhashedOrder) (bool, error) {
	var valid bool
	err := me.caller.call(ctx, me.caller.exchangeAddr, exchangeABI, "validateOrderParameters_", &valid,
		orderAddrs(o), orderUints(o),
		uint8(o.FeeMethod), uint8(o.Side), uint8(o.SaleKind), uint8(o.HowToCall),
		o.Calldata, o.ReplacementPattern, o.StaticExtradata,
	)
	if err != nil {
		return false, err
	}
	return valid, nil
}

// ValidateOrderAuthorization asks the exchange whether the order is
// authorized and still live (signed or approved, not cancelled or filled).
func (me *MatchEngine) ValidateOrderAuthorization(ctx context.Context, order *SignedOrder) (bool, error) {
	o := &order.UnhashedOrder
	var valid bool
	err := me.caller.call(ctx, me.caller.exchangeAddr, exchangeABI, "validateOrder_", &valid,
		orderAddrs(o), orderUints(o),
		uint8(o.FeeMethod), uint8(o.Side), uint8(o.SaleKind), uint8(o.HowToCall),
		o.Calldata, o.ReplacementPattern, o.StaticExtradata,
		order.Signature.V, [32]byte(order.Signature.R), [32]byte(order.Signature.S),
	)
	if err != nil {
		return false, err
	}
	return valid, nil
}

// sellOrderValidationAndApprovals ensures the selling maker's proxy and
// asset approvals are in place and the order validates on-chain.
func (me *MatchEngine) sellOrderValidationAndApprovals(ctx context.Context, signer Signer, sell *SignedOrder) error {
	if err := me.proxies.ApproveAll(ctx, signer, []Asset{sell.Metadata.Asset}, nil); err != nil {
		return err
	}
	valid, err := me.ValidateOrderParameters(ctx, &sell.UnhashedOrder)
	if err != nil {
		return fmt.Errorf("failed to validate sell order parameters: %w", err)
	}
	if !valid {
		return fmt.Errorf("%w: sell order parameters rejected by exchange", ErrOrdersIncompatible)
	}
	return nil
}

// buyOrderValidationAndApprovals checks the buying maker can cover the match
// value, grants payment-token allowance where needed, and validates the order.
func (me *MatchEngine) buyOrderValidationAndApprovals(ctx context.Context, signer Signer, buy, sell *SignedOrder) error {
	account := signer.Address()
	required := MatchValue(&sell.UnhashedOrder)

	if buy.PaymentToken == (common.Address{}) {
		balance, err := me.caller.client.BalanceAt(ctx, account, nil)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		if balance.Cmp(required) < 0 {
			return fmt.Errorf("insufficient balance: account %s holds %s wei but the match requires %s",
				account.Hex(), balance.String(), required.String())
		}
	} else {
		balance, err := me.caller.BalanceOf20(ctx, buy.PaymentToken, account)
		if err != nil {
			return fmt.Errorf("failed to get payment token balance: %w", err)
		}
		if balance.Cmp(required) < 0 {
			return fmt.Errorf("insufficient payment token balance: account %s holds %s but the match requires %s",
				account.Hex(), balance.String(), required.String())
		}
		if err := me.proxies.ApprovePaymentToken(ctx, signer, buy.PaymentToken, required); err != nil {
			return err
		}
	}

	valid, err := me.ValidateOrderParameters(ctx, &buy.UnhashedOrder)
	if err != nil {
		return fmt.Errorf("failed to validate buy order parameters: %w", err)
	}
	if !valid {
		return fmt.Errorf("%w: buy order parameters rejected by exchange", ErrOrdersIncompatible)
	}
	return nil
}

// boolCallWithRetry performs a read-only exchange call returning a bool,
// retrying once with fixed delay on RPC failure.
func (me *MatchEngine) boolCallWithRetry(ctx context.Context, method string, args ...interface{}) (bool, error) {
	var lastErr error
	for attempt := 1; attempt <= matchValidationAttempts; attempt++ {
		var out bool
		err := me.caller.call(ctx, me.caller.exchangeAddr, exchangeABI, method, &out, args...)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt < matchValidationAttempts {
			time.Sleep(matchValidationDelay)
		}
	}
	return false, lastErr
}
