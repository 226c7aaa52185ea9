package notification

import (
	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/domain/auction"
)

// Gateway delivers the closing announcement for an auction. winner is nil
// when the auction closed unsold; that announcement is delivered all the
// same, so no close of any kind is persisted while the gateway is down.
// Implementations must tolerate duplicate delivery for the same auction:
// the reconciler retries the whole close when notification fails.
type Gateway interface {
	NotifyWinner(c ctx.Ctx, auction *auction.Auction, winner *auction.HighestBidEntry) error
}
