package usecase

import (
	"sync"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
	"github.com/adebusola-prog/auction-engine/domain/bid"
	"github.com/adebusola-prog/auction-engine/domain/broadcast"
	"github.com/adebusola-prog/auction-engine/domain/notification"
)

const scheduleTimeout = 3 * time.Second

type ReconcilerCfg struct {
	AuctionRepo auction.Repo
	BidRepo     bid.Repo
	Gateway     notification.Gateway
	Publisher   broadcast.Publisher
}

type reconcilerImpl struct {
	auction   auction.Repo
	bid       bid.Repo
	gateway   notification.Gateway
	publisher broadcast.Publisher
	met       metrics.Service

	workerPool *goroutines.Pool
}

func NewReconciler(cfg *ReconcilerCfg) auction.Reconciler {
	return &reconcilerImpl{
		auction:   cfg.AuctionRepo,
		bid:       cfg.BidRepo,
		gateway:   cfg.Gateway,
		publisher: cfg.Publisher,
		met:       metrics.New("auction.reconciler"),

		workerPool: goroutines.NewPool(8, goroutines.WithTaskQueueLength(256)),
	}
}

func (im *reconcilerImpl) SweepOnce(c ctx.Ctx, now time.Time) (int, error) {
	defer im.met.BumpTime("sweepOnce.time").End()

	open, err := im.auction.FindAll(c, auction.WithClosed(false), auction.WithActive(true))
	if err != nil {
		return 0, err
	}

	due := auction.DueForClose(now, open)
	if len(due) == 0 {
		return 0, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	closed := 0
	for _, a := range due {
		a := a
		wg.Add(1)
		err := im.workerPool.ScheduleWithTimeout(scheduleTimeout, func() {
			defer wg.Done()
			if err := im.reconcile(c, a, now); err != nil {
				c.WithFields(log.Fields{
					"err":       err,
					"auctionId": a.Id,
				}).Error("reconcile failed")
				return
			}
			mu.Lock()
			closed++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": a.Id,
			}).Error("ScheduleWithTimeout failed")
		}
	}
	wg.Wait()

	im.met.BumpSum("sweepOnce.closed", float64(closed))
	return closed, nil
}

func (im *reconcilerImpl) ReconcileOne(c ctx.Ctx, id domain.AuctionId, now time.Time) error {
	a, err := im.auction.FindOne(c, id)
	if err != nil {
		return err
	}

	if !a.Active || a.Closed || a.StatusAt(now) != auction.StatusClosed {
		// nothing to do: soft deleted, already reconciled, or the window is
		// still open
		return nil
	}

	return im.reconcile(c, a, now)
}

// reconcile announces the winner and then persists the closed flag, in that
// order. If the announcement fails the flag stays unset and the next sweep
// picks the auction up again; the gateway tolerates the duplicate.
func (im *reconcilerImpl) reconcile(c ctx.Ctx, a *auction.Auction, now time.Time) error {
	highest, err := im.bid.FindHighest(c, a.Id)
	if err != nil {
		return err
	}

	var winner *auction.HighestBidEntry
	if highest != nil {
		winner = &auction.HighestBidEntry{
			AuctionId:    a.Id,
			Name:         a.Name,
			HighestPrice: auction.MinorUnitsToPrice(highest.Price),
			Bidder:       highest.Bidder,
		}
	}

	if err := im.gateway.NotifyWinner(c, a, winner); err != nil {
		im.met.BumpSum("notifyWinner.err", 1)
		return err
	}

	if err := im.auction.SetClosed(c, a.Id); err != nil {
		return err
	}

	if im.publisher != nil {
		snapshot := &auction.Snapshot{
			AuctionId:    a.Id,
			Name:         a.Name,
			HighestPrice: a.StartingPrice,
			Status:       auction.StatusClosed,
		}
		if highest != nil {
			snapshot.HighestPrice = auction.MinorUnitsToPrice(highest.Price)
			snapshot.HighestBidder = highest.Bidder
		}
		if cnt, err := im.bid.Count(c, bid.WithAuctionId(a.Id)); err == nil {
			snapshot.BidCount = cnt
		}
		im.publisher.Publish(c, a.Id, snapshot)
	}

	return nil
}
