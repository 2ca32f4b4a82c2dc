package chain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnsupportedSchema is returned for asset schemas the registry does not know.
	ErrUnsupportedSchema = errors.New("unsupported asset schema")

	// ErrUnsupportedDynamicReplacement is returned when a replaceable transfer
	// input has a dynamic ABI type, which the replacement-pattern format cannot express.
	ErrUnsupportedDynamicReplacement = errors.New("replaceable input has dynamic type")

	// ErrAmbiguousReplacementTarget is returned when a buy-side encoding finds
	// more than one owner input to leave replaceable.
	ErrAmbiguousReplacementTarget = errors.New("ambiguous replacement target: transfer has more than one owner input")

	// ErrAuthorizationDeclined is returned when the signer refuses to sign an order hash.
	ErrAuthorizationDeclined = errors.New("authorization declined by signer")

	// ErrOrdersIncompatible is returned when the exchange reports that a
	// buy/sell pair cannot be matched.
	ErrOrdersIncompatible = errors.New("orders are not compatible: contact the order maker or retry later")

	// ErrProxyInitializationFailed is returned when no proxy address can be
	// resolved after a confirmed registration transaction.
	ErrProxyInitializationFailed = errors.New("proxy registration confirmed but no proxy address resolved")

	// ErrCancellationFailed is returned when an order still validates after a
	// confirmed cancel transaction.
	ErrCancellationFailed = errors.New("order still valid after cancellation")
)

// OwnershipError indicates the account does not hold enough of the asset to list it.
type OwnershipError struct {
	Account common.Address
	Asset   Asset
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("account %s does not own asset %s/%s (or balance is below the listed quantity)",
		e.Account.Hex(), e.Asset.Address.Hex(), e.Asset.TokenID.String())
}

// ApprovalError indicates a token approval transaction failed or the token
// contract does not implement the expected approval interface.
type ApprovalError struct {
	Token   common.Address
	Message string
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("approval failed for token contract %s: %s", e.Token.Hex(), e.Message)
}
