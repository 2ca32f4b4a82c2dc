package wyvernsdk

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ZeroAddress is the wildcard/null address: an open taker, the native
// payment asset, or an absent fee recipient.
var ZeroAddress = common.Address{}

var maxOrderSalt = new(big.Int).Lsh(big.NewInt(1), 256)

// GenerateSalt draws a pseudo-random 256-bit integer. The salt only keeps
// economically identical orders from hashing identically; it carries no
// authorization weight, but the entropy makes collision across all orders
// negligible.
func GenerateSalt() *big.Int {
	salt, err := rand.Int(rand.Reader, maxOrderSalt)
	if err != nil {
		panic("failed to read random salt: " + err.Error())
	}
	return salt
}

// ToBaseUnits converts a human-readable token amount into integer base units.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, &ValidationError{Message: fmt.Sprintf("amount must not be negative, got %s", amount.String())}
	}
	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, &ValidationError{Message: fmt.Sprintf(
			"amount %s has more precision than the token's %d decimals", amount.String(), decimals)}
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits converts integer base units back into a human-readable amount.
func FromBaseUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}
