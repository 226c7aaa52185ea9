package usecase

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/base/ptr"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
	"github.com/adebusola-prog/auction-engine/domain/bid"
)

type AuctionUseCaseCfg struct {
	AuctionRepo auction.Repo
	BidRepo     bid.Repo
}

type impl struct {
	auction  auction.Repo
	bid      bid.Repo
	validate *validator.Validate
	met      metrics.Service
}

func NewAuction(cfg *AuctionUseCaseCfg) auction.Usecase {
	return &impl{
		auction:  cfg.AuctionRepo,
		bid:      cfg.BidRepo,
		validate: validator.New(),
		met:      metrics.New("auction.usecase"),
	}
}

func (im *impl) CreateAuction(c ctx.Ctx, payload *auction.CreatePayload) (*auction.Auction, error) {
	defer im.met.BumpTime("createAuction.time").End()

	if err := im.validate.Struct(payload); err != nil {
		c.WithField("err", err).Warn("invalid create payload")
		return nil, domain.ErrBadParamInput
	}

	now := time.Now().UTC()
	if !payload.EndTime.After(payload.StartTime) {
		return nil, domain.ErrInvalidBidWindow
	}
	// one hour of grace for clock skew and slow form submits
	if payload.StartTime.Before(now.Add(-time.Hour)) {
		return nil, domain.ErrInvalidBidWindow
	}

	base, err := auction.PriceToMinorUnits(payload.StartingPrice)
	if err != nil || base <= 0 {
		c.WithFields(log.Fields{
			"err":           err,
			"startingPrice": payload.StartingPrice,
		}).Warn("invalid starting price")
		return nil, domain.ErrBadParamInput
	}

	sku := payload.Sku
	if sku == "" {
		sku = auction.GenerateSku(payload.Name, now)
	}

	cnt, err := im.auction.Count(c, auction.WithSku(sku))
	if err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, domain.ErrSkuAlreadyExists
	}

	a := &auction.Auction{
		Id:            domain.AuctionId(uuid.New().String()),
		Name:          payload.Name,
		Sku:           sku,
		StartingPrice: payload.StartingPrice,
		Description:   payload.Description,
		StartTime:     payload.StartTime.UTC(),
		EndTime:       payload.EndTime.UTC(),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := im.auction.Create(c, a); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"sku": sku,
		}).Error("auction.Create failed")
		return nil, err
	}

	return a, nil
}

func (im *impl) UpdateAuction(c ctx.Ctx, id domain.AuctionId, payload *auction.UpdatePayload, now time.Time) (*auction.Auction, error) {
	defer im.met.BumpTime("updateAuction.time").End()

	if err := im.validate.Struct(payload); err != nil {
		c.WithField("err", err).Warn("invalid update payload")
		return nil, domain.ErrBadParamInput
	}

	a, err := im.GetAuction(c, id)
	if err != nil {
		return nil, err
	}

	patchable := auction.Patchable{}
	switch a.StatusAt(now) {
	case auction.StatusClosed:
		return nil, domain.ErrAuctionClosed
	case auction.StatusOngoing:
		// a live auction only accepts an end time extension, everything the
		// bidders already acted on stays fixed
		if payload.Name != nil || payload.StartingPrice != nil || payload.Description != nil || payload.StartTime != nil {
			return nil, domain.ErrOngoingImmutable
		}
		if payload.EndTime != nil {
			if !payload.EndTime.After(a.EndTime) {
				return nil, domain.ErrInvalidBidWindow
			}
			patchable.EndTime = payload.EndTime
		}
	case auction.StatusNotStarted:
		patchable.Name = payload.Name
		patchable.StartingPrice = payload.StartingPrice
		patchable.Description = payload.Description
		patchable.StartTime = payload.StartTime
		patchable.EndTime = payload.EndTime

		if payload.StartingPrice != nil {
			base, err := auction.PriceToMinorUnits(*payload.StartingPrice)
			if err != nil || base <= 0 {
				return nil, domain.ErrBadParamInput
			}
		}

		start := a.StartTime
		end := a.EndTime
		if payload.StartTime != nil {
			start = *payload.StartTime
			// same grace as creation, the window cannot be moved into the past
			if start.Before(now.Add(-time.Hour)) {
				return nil, domain.ErrInvalidBidWindow
			}
		}
		if payload.EndTime != nil {
			end = *payload.EndTime
		}
		if !end.After(start) {
			return nil, domain.ErrInvalidBidWindow
		}
	}

	patchable.UpdatedAt = ptr.Time(now.UTC())
	if err := im.auction.Patch(c, id, patchable); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("auction.Patch failed")
		return nil, err
	}

	return im.auction.FindOne(c, id)
}

func (im *impl) DeactivateAuction(c ctx.Ctx, id domain.AuctionId) error {
	return im.DeactivateAuctions(c, []domain.AuctionId{id})
}

func (im *impl) DeactivateAuctions(c ctx.Ctx, ids []domain.AuctionId) error {
	defer im.met.BumpTime("deactivateAuctions.time").End()

	for _, id := range ids {
		err := im.auction.Patch(c, id, auction.Patchable{
			Active:    ptr.Bool(false),
			UpdatedAt: ptr.Time(time.Now().UTC()),
		})
		if err != nil {
			c.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("auction.Patch failed")
			return err
		}
	}
	return nil
}

func (im *impl) GetAuction(c ctx.Ctx, id domain.AuctionId) (*auction.Auction, error) {
	a, err := im.auction.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	// soft-deleted auctions are invisible outside the repo layer
	if !a.Active {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (im *impl) ListAuctions(c ctx.Ctx, opts ...auction.SelectOptions) ([]*auction.Auction, error) {
	opts = append(opts, auction.WithActive(true))
	return im.auction.FindAll(c, opts...)
}

// ListOpenAuctions returns the auctions accepting bids at `asOf`.
func (im *impl) ListOpenAuctions(c ctx.Ctx, asOf time.Time) ([]*auction.Auction, error) {
	return im.auction.FindAll(c,
		auction.WithActive(true),
		auction.WithStatus(auction.StatusOngoing, asOf),
	)
}

func (im *impl) GetSnapshot(c ctx.Ctx, id domain.AuctionId, now time.Time) (*auction.Snapshot, error) {
	defer im.met.BumpTime("getSnapshot.time").End()

	a, err := im.GetAuction(c, id)
	if err != nil {
		return nil, err
	}

	return im.buildSnapshot(c, a, now)
}

func (im *impl) buildSnapshot(c ctx.Ctx, a *auction.Auction, now time.Time) (*auction.Snapshot, error) {
	highest, err := im.bid.FindHighest(c, a.Id)
	if err != nil {
		return nil, err
	}

	cnt, err := im.bid.Count(c, bid.WithAuctionId(a.Id))
	if err != nil {
		return nil, err
	}

	snapshot := &auction.Snapshot{
		AuctionId:    a.Id,
		Name:         a.Name,
		HighestPrice: a.StartingPrice,
		BidCount:     cnt,
		Status:       a.StatusAt(now),
	}
	if highest != nil {
		snapshot.HighestPrice = auction.MinorUnitsToPrice(highest.Price)
		snapshot.HighestBidder = highest.Bidder
	}
	return snapshot, nil
}

func (im *impl) ListHighestBids(c ctx.Ctx) ([]*auction.HighestBidEntry, error) {
	defer im.met.BumpTime("listHighestBids.time").End()

	as, err := im.auction.FindAll(c, auction.WithActive(true), auction.WithSort("startTime"))
	if err != nil {
		return nil, err
	}

	res := []*auction.HighestBidEntry{}
	for _, a := range as {
		highest, err := im.bid.FindHighest(c, a.Id)
		if err != nil {
			return nil, err
		}

		entry := &auction.HighestBidEntry{
			AuctionId:    a.Id,
			Name:         a.Name,
			HighestPrice: a.StartingPrice,
		}
		if highest != nil {
			entry.HighestPrice = auction.MinorUnitsToPrice(highest.Price)
			entry.Bidder = highest.Bidder
		}
		res = append(res, entry)
	}

	return res, nil
}
