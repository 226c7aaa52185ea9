package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/bid"
	"github.com/adebusola-prog/auction-engine/service/query"
)

type bidRepoImpl struct {
	q query.Mongo
}

func NewBid(q query.Mongo) bid.Repo {
	return &bidRepoImpl{q}
}

func (im *bidRepoImpl) makeQuery(opts ...bid.SelectOptions) (bson.M, string, int32, int32, error) {
	options, err := bid.GetSelectOptions(opts...)
	if err != nil {
		return nil, "", 0, 0, err
	}

	qry := bson.M{}

	if options.AuctionId != nil {
		qry["auctionId"] = *options.AuctionId
	}

	if options.Bidder != nil {
		qry["bidder"] = *options.Bidder
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

func (im *bidRepoImpl) Insert(c ctx.Ctx, value *bid.Bid) error {
	if err := im.q.Insert(c, domain.TableBids, value); err != nil {
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		c.WithFields(log.Fields{
			"err": err,
			"bid": *value,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *bidRepoImpl) FindAll(c ctx.Ctx, opts ...bid.SelectOptions) ([]*bid.Bid, error) {
	qry, sort, offset, limit, err := im.makeQuery(opts...)
	if err != nil {
		c.WithField("err", err).Error("makeQuery failed")
		return nil, err
	}

	res := []*bid.Bid{}
	if err := im.q.Search(c, domain.TableBids, int(offset), int(limit), sort, qry, &res); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("q.Search failed")
		return nil, err
	}

	return res, nil
}

func (im *bidRepoImpl) Count(c ctx.Ctx, opts ...bid.SelectOptions) (int, error) {
	qry, _, _, _, err := im.makeQuery(opts...)
	if err != nil {
		c.WithField("err", err).Error("makeQuery failed")
		return 0, err
	}

	cnt, err := im.q.Count(c, domain.TableBids, qry)
	if err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("q.Count failed")
		return 0, err
	}

	return cnt, nil
}

func (im *bidRepoImpl) FindHighest(c ctx.Ctx, auctionId domain.AuctionId) (*bid.Bid, error) {
	// highest price wins, ties go to the earlier bid
	res := []*bid.Bid{}
	err := im.q.SearchNSorts(c, domain.TableBids, 0, 1, []string{"-price", "timeStamp"}, bson.M{"auctionId": auctionId}, &res)
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
		}).Error("q.SearchNSorts failed")
		return nil, err
	}

	if len(res) == 0 {
		return nil, nil
	}
	return res[0], nil
}
