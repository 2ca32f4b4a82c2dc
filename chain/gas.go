package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	log "github.com/sirupsen/logrus"
)

const (
	gasEstimateAttempts = 3
	gasEstimateDelay    = time.Second

	// FallbackGasLimit is the conservative static limit used when gas
	// estimation keeps failing. Estimation failure is never fatal.
	FallbackGasLimit uint64 = 500000

	gasMarginPercent = 20
)

// EstimateGasWithFallback estimates gas for the call with a bounded number
// of fixed-delay retries. Exhaustion falls back to FallbackGasLimit instead
// of failing the caller.
func (cc *ContractCaller) EstimateGasWithFallback(ctx context.Context, msg ethereum.CallMsg) uint64 {
	var lastErr error
	for attempt := 1; attempt <= gasEstimateAttempts; attempt++ {
		gas, err := cc.client.EstimateGas(ctx, msg)
		if err == nil {
			return withGasMargin(gas)
		}
		lastErr = err
		if attempt < gasEstimateAttempts {
			time.Sleep(gasEstimateDelay)
		}
	}
	log.WithError(lastErr).Warnf("gas estimation failed after %d attempts, using fallback limit %d",
		gasEstimateAttempts, FallbackGasLimit)
	return FallbackGasLimit
}

func withGasMargin(gas uint64) uint64 {
	return gas * (100 + gasMarginPercent) / 100
}
