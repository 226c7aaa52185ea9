package repository

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/database/mongoclient"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
	"github.com/adebusola-prog/auction-engine/service/query"
)

type auctionRepoImpl struct {
	q   query.Mongo
	met metrics.Service
}

func NewAuction(q query.Mongo) auction.Repo {
	return &auctionRepoImpl{
		q:   q,
		met: metrics.New("auction.repository"),
	}
}

func (im *auctionRepoImpl) makeQuery(opts ...auction.SelectOptions) (bson.M, string, int32, int32, error) {
	options, err := auction.GetSelectOptions(opts...)
	if err != nil {
		return nil, "", 0, 0, err
	}

	qry := bson.M{}

	if len(options.Ids) > 0 {
		qry["id"] = bson.M{"$in": options.Ids}
	}

	if options.Name != nil {
		qry["name"] = bson.M{"$regex": regexp.QuoteMeta(*options.Name), "$options": "i"}
	}

	if options.Sku != nil {
		qry["sku"] = *options.Sku
	}

	if options.Closed != nil {
		qry["isClosed"] = *options.Closed
	}

	if options.Active != nil {
		qry["isActive"] = *options.Active
	}

	// lifecycle phase translated to time window conditions
	if options.Status != nil && options.StatusAsOf != nil {
		asOf := *options.StatusAsOf
		switch *options.Status {
		case auction.StatusNotStarted:
			qry["isClosed"] = false
			qry["startTime"] = bson.M{"$gt": asOf}
		case auction.StatusOngoing:
			qry["isClosed"] = false
			qry["startTime"] = bson.M{"$lte": asOf}
			qry["endTime"] = bson.M{"$gt": asOf}
		case auction.StatusClosed:
			qry["$or"] = []bson.M{
				{"isClosed": true},
				{"endTime": bson.M{"$lte": asOf}},
			}
		}
	}

	sort := "_id"
	if options.SortBy != nil {
		sort = *options.SortBy
	}

	offset := int32(0)
	limit := int32(0)
	if options.Offset != nil {
		offset = *options.Offset
	}
	if options.Limit != nil {
		limit = *options.Limit
	}

	return qry, sort, offset, limit, nil
}

func (im *auctionRepoImpl) FindOne(c ctx.Ctx, id domain.AuctionId) (*auction.Auction, error) {
	res := auction.Auction{}
	err := im.q.FindOne(c, domain.TableAuctions, bson.M{"id": id}, &res)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("q.FindOne failed")
		return nil, err
	}

	return &res, nil
}

func (im *auctionRepoImpl) FindAll(c ctx.Ctx, opts ...auction.SelectOptions) ([]*auction.Auction, error) {
	qry, sort, offset, limit, err := im.makeQuery(opts...)
	if err != nil {
		c.WithField("err", err).Error("makeQuery failed")
		return nil, err
	}

	res := []*auction.Auction{}
	if err := im.q.Search(c, domain.TableAuctions, int(offset), int(limit), sort, qry, &res); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("q.Search failed")
		return nil, err
	}

	return res, nil
}

func (im *auctionRepoImpl) Count(c ctx.Ctx, opts ...auction.SelectOptions) (int, error) {
	qry, _, _, _, err := im.makeQuery(opts...)
	if err != nil {
		c.WithField("err", err).Error("makeQuery failed")
		return 0, err
	}

	cnt, err := im.q.Count(c, domain.TableAuctions, qry)
	if err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("q.Count failed")
		return 0, err
	}

	return cnt, nil
}

func (im *auctionRepoImpl) Create(c ctx.Ctx, value *auction.Auction) error {
	if err := im.q.Insert(c, domain.TableAuctions, value); err != nil {
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		c.WithFields(log.Fields{
			"err":     err,
			"auction": *value,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *auctionRepoImpl) Patch(c ctx.Ctx, id domain.AuctionId, patchable auction.Patchable) error {
	updater, err := mongoclient.MakeBsonM(patchable)
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"patchable": patchable,
		}).Error("mongoclient.MakeBsonM failed")
		return err
	}

	err = im.q.Patch(c, domain.TableAuctions, bson.M{"id": id}, updater)
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"id":      id,
			"updater": updater,
		}).Error("q.Patch failed")
		return err
	}

	return nil
}

func (im *auctionRepoImpl) SetClosed(c ctx.Ctx, id domain.AuctionId) error {
	// selecting on isClosed=false makes the transition idempotent, a second
	// close of the same auction matches nothing and is not an error
	err := im.q.Patch(c, domain.TableAuctions, bson.M{"id": id, "isClosed": false}, bson.M{"isClosed": true})
	if err == query.ErrNotFound {
		if _, ferr := im.FindOne(c, id); ferr != nil {
			return ferr
		}
		im.met.BumpSum("setClosed.noop", 1)
		return nil
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("q.Patch failed")
		return err
	}

	return nil
}
