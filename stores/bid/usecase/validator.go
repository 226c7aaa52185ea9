package usecase

import (
	"time"

	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
	"github.com/adebusola-prog/auction-engine/domain/bid"
)

// Evaluate runs the rejection checks for one submission in their fixed
// order: window before identity, identity before price. `highest` is the
// current highest bid, nil when there is none; the caller is responsible for
// reading it from the log under the auction's submit lock.
func Evaluate(a *auction.Auction, highest *bid.Bid, bidder domain.UserId, price int64, now time.Time) error {
	switch a.StatusAt(now) {
	case auction.StatusNotStarted:
		return domain.ErrAuctionNotStarted
	case auction.StatusClosed:
		return domain.ErrAuctionEnded
	}

	if highest != nil && highest.Bidder == bidder {
		return domain.ErrAlreadyHighestBidder
	}

	base, err := a.StartingPriceMinorUnits()
	if err != nil {
		return err
	}
	if price <= base {
		return domain.ErrPriceTooLowVsBase
	}

	if highest != nil && price <= highest.Price {
		return domain.ErrPriceTooLowVsHighest
	}

	return nil
}
