package wyvernsdk

import "errors"

var (
	// ErrInvalidFeeRange is returned when a fee schedule sums outside 0..10000 basis points.
	ErrInvalidFeeRange = errors.New("fee basis points must be between 0 and 10000")

	// ErrBountyExceedsCap is returned when the seller bounty plus the
	// marketplace bounty exceeds the asset's seller fee.
	ErrBountyExceedsCap = errors.New("seller bounty exceeds the maximum for this asset")
)

// ValidationError represents bad timing, price or parameter input, rejected
// before any chain call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
