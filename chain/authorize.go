package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// Authorizer obtains authorization for a hashed order: an off-chain ECDSA
// signature for externally-owned makers, or an on-chain approval
// transaction for contract-account makers, which cannot produce one.
type Authorizer struct {
	caller *ContractCaller
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(caller *ContractCaller) *Authorizer {
	return &Authorizer{caller: caller}
}

// AuthorizeOrder turns a hashed order into a submittable signed order. When
// the maker address holds contract code the authorization is an approveOrder_
// transaction and the returned order carries a zero signature; the chain
// approval itself is the authorization.
func (a *Authorizer) AuthorizeOrder(ctx context.Context, signer Signer, order *HashedOrder) (*SignedOrder, error) {
	isContract, err := a.caller.IsContract(ctx, order.Maker)
	if err != nil {
		return nil, err
	}

	if isContract {
		if err := a.approveOrderOnChain(ctx, signer, order); err != nil {
			return nil, err
		}
		return &SignedOrder{HashedOrder: *order}, nil
	}

	digest := HashToSign(&order.UnhashedOrder)
	sig, err := signer.SignHash(digest.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorizationDeclined, err)
	}
	if len(sig) != 65 {
		return nil, fmt.Errorf("%w: signer returned %d-byte signature, want 65", ErrAuthorizationDeclined, len(sig))
	}

	v := sig[64]
	if v < 27 {
		v += 27
	}
	return &SignedOrder{
		HashedOrder: *order,
		Signature: ECSignature{
			V: v,
			R: common.BytesToHash(sig[:32]),
			S: common.BytesToHash(sig[32:64]),
		},
	}, nil
}

// approveOrderOnChain submits the order's full field tuple to the exchange's
// approveOrder_ entry point and waits for confirmation.
func (a *Authorizer) approveOrderOnChain(ctx context.Context, signer Signer, order *HashedOrder) error {
	o := &order.UnhashedOrder
	data, err := exchangeABI.Pack("approveOrder_",
		orderAddrs(o), orderUints(o),
		uint8(o.FeeMethod), uint8(o.Side), uint8(o.SaleKind), uint8(o.HowToCall),
		o.Calldata, o.ReplacementPattern, o.StaticExtradata,
		true,
	)
	if err != nil {
		return fmt.Errorf("failed to pack approveOrder_: %w", err)
	}

	gasLimit := a.caller.EstimateGasWithFallback(ctx, ethereum.CallMsg{
		From: signer.Address(),
		To:   &a.caller.exchangeAddr,
		Data: data,
	})

	log.WithFields(log.Fields{"maker": o.Maker.Hex(), "hash": order.Hash.Hex()}).Info("approving order on-chain")
	if _, err := a.caller.TransactAndConfirm(ctx, signer, a.caller.exchangeAddr, nil, data, gasLimit); err != nil {
		return fmt.Errorf("on-chain order approval failed: %w", err)
	}
	return nil
}
