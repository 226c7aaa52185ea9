package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/base/ptr"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
	"github.com/adebusola-prog/auction-engine/domain/bid"
	"github.com/adebusola-prog/auction-engine/domain/broadcast"
)

type BidUseCaseCfg struct {
	AuctionRepo auction.Repo
	BidRepo     bid.Repo
	Publisher   broadcast.Publisher
}

type impl struct {
	auction   auction.Repo
	bid       bid.Repo
	publisher broadcast.Publisher
	met       metrics.Service

	mu    sync.Mutex
	locks map[domain.AuctionId]*sync.Mutex
}

func NewBid(cfg *BidUseCaseCfg) bid.Usecase {
	return &impl{
		auction:   cfg.AuctionRepo,
		bid:       cfg.BidRepo,
		publisher: cfg.Publisher,
		met:       metrics.New("bid.usecase"),
		locks:     map[domain.AuctionId]*sync.Mutex{},
	}
}

// lockFor returns the auction's submit lock, creating it on first use.
// Locks are never removed, one mutex per auction ever bid on is cheap
// relative to the bid log itself.
func (im *impl) lockFor(auctionId domain.AuctionId) *sync.Mutex {
	im.mu.Lock()
	defer im.mu.Unlock()

	if l, ok := im.locks[auctionId]; ok {
		return l
	}
	l := &sync.Mutex{}
	im.locks[auctionId] = l
	return l
}

func (im *impl) SubmitBid(c ctx.Ctx, auctionId domain.AuctionId, bidder domain.UserId, price int64, now time.Time) (*bid.SubmitResult, error) {
	defer im.met.BumpTime("submitBid.time").End()

	// one submission per auction at a time, the highest bid read below
	// stays the highest until this insert lands
	lock := im.lockFor(auctionId)
	lock.Lock()
	defer lock.Unlock()

	a, err := im.auction.FindOne(c, auctionId)
	if err != nil {
		return nil, err
	}
	if !a.Active {
		return nil, domain.ErrNotFound
	}

	highest, err := im.bid.FindHighest(c, auctionId)
	if err != nil {
		return nil, err
	}

	if err := Evaluate(a, highest, bidder, price, now); err != nil {
		if domain.IsRejection(err) {
			im.met.BumpSum("submitBid.rejected", 1, "reason", err.Error())
		}
		return nil, err
	}

	b := &bid.Bid{
		Id:        domain.BidId(uuid.New().String()),
		AuctionId: auctionId,
		Bidder:    bidder,
		Price:     price,
		TimeStamp: now.UTC(),
	}
	if err := im.bid.Insert(c, b); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
			"bidder":    bidder,
		}).Error("bid.Insert failed")
		return nil, err
	}

	// display price is a denormalized mirror of the bid log, a failed patch
	// costs nothing but a stale listing
	patchErr := im.auction.Patch(c, auctionId, auction.Patchable{
		DisplayPrice: ptr.String(auction.MinorUnitsToPrice(price)),
		UpdatedAt:    ptr.Time(now.UTC()),
	})
	if patchErr != nil {
		c.WithFields(log.Fields{
			"err":       patchErr,
			"auctionId": auctionId,
		}).Warn("display price patch failed")
	}

	cnt, err := im.bid.Count(c, bid.WithAuctionId(auctionId))
	if err != nil {
		return nil, err
	}

	snapshot := &auction.Snapshot{
		AuctionId:     auctionId,
		Name:          a.Name,
		HighestPrice:  auction.MinorUnitsToPrice(price),
		HighestBidder: bidder,
		BidCount:      cnt,
		Status:        a.StatusAt(now),
	}

	if im.publisher != nil {
		im.publisher.Publish(c, auctionId, snapshot)
	}

	return &bid.SubmitResult{Bid: b, Snapshot: snapshot}, nil
}

func (im *impl) ListAuctionBids(c ctx.Ctx, auctionId domain.AuctionId, opts ...bid.SelectOptions) ([]*bid.Bid, error) {
	opts = append(opts, bid.WithAuctionId(auctionId), bid.WithSort("-timeStamp"))
	return im.bid.FindAll(c, opts...)
}

func (im *impl) ListBidderBids(c ctx.Ctx, bidder domain.UserId) ([]*bid.Bid, error) {
	all, err := im.bid.FindAll(c, bid.WithBidder(bidder), bid.WithSort("-timeStamp"))
	if err != nil {
		return nil, err
	}

	// newest first, keep only the latest bid per auction
	seen := map[domain.AuctionId]bool{}
	res := []*bid.Bid{}
	for _, b := range all {
		if seen[b.AuctionId] {
			continue
		}
		seen[b.AuctionId] = true
		res = append(res, b)
	}
	return res, nil
}
