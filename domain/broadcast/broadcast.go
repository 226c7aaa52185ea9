package broadcast

import (
	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
)

// Publisher fans an auction snapshot out to whoever is watching the auction.
// Publish never blocks on slow consumers.
type Publisher interface {
	Publish(c ctx.Ctx, auctionId domain.AuctionId, snapshot *auction.Snapshot)
}
