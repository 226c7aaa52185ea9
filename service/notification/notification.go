package notification

import (
	"encoding/json"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/domain/auction"
	"github.com/adebusola-prog/auction-engine/domain/notification"
	"github.com/adebusola-prog/auction-engine/service/pubsub"
)

// winner announcements go out on a single channel, downstream delivery
// workers (mail, push) consume from there
const winnerChannel = "auction_winners"

type winnerEvent struct {
	AuctionId string `json:"auctionId"`
	Sku       string `json:"sku"`
	Name      string `json:"name"`
	Winner    string `json:"winner,omitempty"`
	Price     string `json:"price,omitempty"`
}

type impl struct {
	ps  pubsub.Service
	met metrics.Service
}

// New builds a Gateway that hands winner announcements to redis for
// downstream delivery workers.
func New(ps pubsub.Service) notification.Gateway {
	return &impl{
		ps:  ps,
		met: metrics.New("notification"),
	}
}

func (im *impl) NotifyWinner(c ctx.Ctx, a *auction.Auction, winner *auction.HighestBidEntry) error {
	defer im.met.BumpTime("notifyWinner.time").End()

	event := winnerEvent{
		AuctionId: a.Id.String(),
		Sku:       a.Sku,
		Name:      a.Name,
	}
	if winner != nil {
		event.Winner = winner.Bidder.String()
		event.Price = winner.HighestPrice
	}

	payload, err := json.Marshal(event)
	if err != nil {
		c.WithField("err", err).Error("marshal winner event failed")
		return err
	}

	if err := im.ps.Publish(c, winnerChannel, payload); err != nil {
		im.met.BumpSum("notifyWinner.err", 1)
		return err
	}

	c.WithFields(log.Fields{
		"auctionId": event.AuctionId,
		"winner":    event.Winner,
	}).Info("winner notified")
	return nil
}
