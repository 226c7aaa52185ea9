package bid

import (
	"time"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
)

// Bid is one accepted submission. Bids are append-only: a record is never
// mutated or deleted, and a bidder's current bid on an auction is simply
// their most recent record. TimeStamp is assigned by the engine, never by
// the client.
type Bid struct {
	Id        domain.BidId     `json:"id" bson:"id"`
	AuctionId domain.AuctionId `json:"auctionId" bson:"auctionId"`
	Bidder    domain.UserId    `json:"bidder" bson:"bidder"`
	Price     int64            `json:"price" bson:"price"`
	TimeStamp time.Time        `json:"timeStamp" bson:"timeStamp"`
}

type selectOptions struct {
	Offset    *int32            `bson:"-"`
	Limit     *int32            `bson:"-"`
	SortBy    *string           `bson:"-"`
	AuctionId *domain.AuctionId `bson:"auctionId"`
	Bidder    *domain.UserId    `bson:"bidder"`
}

type SelectOptions func(*selectOptions) error

func GetSelectOptions(opts ...SelectOptions) (selectOptions, error) {
	res := selectOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithPagination(offset int32, limit int32) SelectOptions {
	return func(options *selectOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sortBy string) SelectOptions {
	return func(options *selectOptions) error {
		options.SortBy = &sortBy
		return nil
	}
}

func WithAuctionId(id domain.AuctionId) SelectOptions {
	return func(options *selectOptions) error {
		options.AuctionId = &id
		return nil
	}
}

func WithBidder(bidder domain.UserId) SelectOptions {
	return func(options *selectOptions) error {
		options.Bidder = &bidder
		return nil
	}
}

type Repo interface {
	Insert(c ctx.Ctx, value *Bid) error
	FindAll(c ctx.Ctx, opts ...SelectOptions) ([]*Bid, error)
	Count(c ctx.Ctx, opts ...SelectOptions) (int, error)
	// FindHighest returns the bid with the greatest price for the auction,
	// ties broken by earliest timestamp. Returns (nil, nil) when the auction
	// has no bids.
	FindHighest(c ctx.Ctx, auctionId domain.AuctionId) (*Bid, error)
}

// SubmitResult is the outcome of an accepted bid.
type SubmitResult struct {
	Bid      *Bid
	Snapshot *auction.Snapshot
}

// Usecase is the bid engine.
type Usecase interface {
	// SubmitBid validates and persists one bid submission. Submissions
	// against the same auction are serialized; the returned error is one of
	// the rejection reasons in domain/errors.go or an infrastructure error.
	SubmitBid(c ctx.Ctx, auctionId domain.AuctionId, bidder domain.UserId, price int64, now time.Time) (*SubmitResult, error)
	// ListAuctionBids returns an auction's bid history, newest first.
	ListAuctionBids(c ctx.Ctx, auctionId domain.AuctionId, opts ...SelectOptions) ([]*Bid, error)
	// ListBidderBids returns the bidder's most recent bid per auction.
	ListBidderBids(c ctx.Ctx, bidder domain.UserId) ([]*Bid, error)
}
