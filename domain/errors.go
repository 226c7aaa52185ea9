package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// bid rejection reasons, checked in this order by the validator
	ErrAuctionNotStarted    = errors.New("auction is yet to start")
	ErrAuctionEnded         = errors.New("auction has ended")
	ErrAlreadyHighestBidder = errors.New("bidder already holds the highest bid")
	ErrPriceTooLowVsBase    = errors.New("bid price must be higher than the starting price")
	ErrPriceTooLowVsHighest = errors.New("bid price must be higher than the current highest bid")

	// auction catalog errors
	ErrSkuAlreadyExists = errors.New("product with serial number already exists")
	ErrInvalidBidWindow = errors.New("bid start time must be before bid end time")
	ErrOngoingImmutable = errors.New("only bid end time may change while the auction is ongoing")
	ErrAuctionClosed    = errors.New("auction is closed")
)

// IsRejection reports whether err is one of the bid rejection reasons, as
// opposed to an infrastructure failure.
func IsRejection(err error) bool {
	switch {
	case errors.Is(err, ErrAuctionNotStarted),
		errors.Is(err, ErrAuctionEnded),
		errors.Is(err, ErrAlreadyHighestBidder),
		errors.Is(err, ErrPriceTooLowVsBase),
		errors.Is(err, ErrPriceTooLowVsHighest):
		return true
	}
	return false
}
