package auction

import (
	"time"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/domain"
)

// Status is the lifecycle phase of an auction, derived from time and the
// persisted closed flag, never stored.
type Status string

const (
	StatusNotStarted Status = "Not started"
	StatusOngoing    Status = "Ongoing"
	StatusClosed     Status = "Closed"
)

// Auction is an item put up for bidding within a time window.
//
// The bidding window is the half-open interval [StartTime, EndTime).
// DisplayPrice mirrors the last accepted bid price for display only; bid
// validation always recomputes the highest price from the bid log.
type Auction struct {
	Id            domain.AuctionId `json:"id" bson:"id"`
	Name          string           `json:"name" bson:"name"`
	Sku           string           `json:"sku" bson:"sku"`
	StartingPrice string           `json:"startingPrice" bson:"startingPrice"`
	Description   string           `json:"description,omitempty" bson:"description,omitempty"`
	StartTime     time.Time        `json:"startTime" bson:"startTime"`
	EndTime       time.Time        `json:"endTime" bson:"endTime"`
	DisplayPrice  string           `json:"displayPrice,omitempty" bson:"displayPrice,omitempty"`
	Closed        bool             `json:"isClosed" bson:"isClosed"`
	Active        bool             `json:"isActive" bson:"isActive"`
	CreatedAt     time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// StatusAt derives the lifecycle phase at the given instant. The persisted
// closed flag is terminal regardless of time; an elapsed window whose flag
// has not been persisted yet is already Closed ("soft closed"), so late bids
// are rejected even before the reconciler runs.
func (a *Auction) StatusAt(now time.Time) Status {
	if a.Closed {
		return StatusClosed
	}
	if now.Before(a.StartTime) {
		return StatusNotStarted
	}
	if now.Before(a.EndTime) {
		return StatusOngoing
	}
	return StatusClosed
}

// DueForClose returns the auctions whose window has elapsed at `now` but
// whose closed flag is still unset. Pure; the caller decides how to act on
// the decisions.
func DueForClose(now time.Time, open []*Auction) []*Auction {
	due := []*Auction{}
	for _, a := range open {
		if !a.Closed && a.StatusAt(now) == StatusClosed {
			due = append(due, a)
		}
	}
	return due
}

// Snapshot is a derived point-in-time summary of an auction's bidding state.
// It is computed on demand and never persisted.
type Snapshot struct {
	AuctionId     domain.AuctionId `json:"auctionId"`
	Name          string           `json:"name"`
	HighestPrice  string           `json:"highestPrice"`
	HighestBidder domain.UserId    `json:"highestBidder,omitempty"`
	BidCount      int              `json:"bidCount"`
	Status        Status           `json:"status"`
}

// HighestBidEntry is one row of the per-auction highest bid board. Bidder is
// empty when nobody has bid and the starting price is shown instead.
type HighestBidEntry struct {
	AuctionId    domain.AuctionId `json:"auctionId"`
	Name         string           `json:"name"`
	HighestPrice string           `json:"currentHighestBid"`
	Bidder       domain.UserId    `json:"bidder,omitempty"`
}

// Patchable carries the mutable fields of an auction for partial updates.
type Patchable struct {
	Name          *string    `bson:"name,omitempty"`
	Sku           *string    `bson:"sku,omitempty"`
	StartingPrice *string    `bson:"startingPrice,omitempty"`
	Description   *string    `bson:"description,omitempty"`
	StartTime     *time.Time `bson:"startTime,omitempty"`
	EndTime       *time.Time `bson:"endTime,omitempty"`
	DisplayPrice  *string    `bson:"displayPrice,omitempty"`
	Active        *bool      `bson:"isActive,omitempty"`
	UpdatedAt     *time.Time `bson:"updatedAt,omitempty"`
}

// CreatePayload is the seller input for creating an auction.
type CreatePayload struct {
	Name          string    `json:"name" validate:"required,max=100"`
	StartingPrice string    `json:"startingPrice" validate:"required"`
	Description   string    `json:"description"`
	Sku           string    `json:"sku"`
	StartTime     time.Time `json:"startTime" validate:"required"`
	EndTime       time.Time `json:"endTime" validate:"required"`
}

// UpdatePayload is the seller input for editing an auction. Nil fields are
// left untouched. While the auction is ongoing only EndTime may be set.
type UpdatePayload struct {
	Name          *string    `json:"name" validate:"omitempty,max=100"`
	StartingPrice *string    `json:"startingPrice"`
	Description   *string    `json:"description"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
}

type selectOptions struct {
	Offset     *int32             `bson:"-"`
	Limit      *int32             `bson:"-"`
	SortBy     *string            `bson:"-"`
	Ids        []domain.AuctionId `bson:"-"`
	Name       *string            `bson:"-"`
	Status     *Status            `bson:"-"`
	StatusAsOf *time.Time         `bson:"-"`
	Sku        *string            `bson:"sku"`
	Closed     *bool              `bson:"isClosed"`
	Active     *bool              `bson:"isActive"`
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

func WithIds(ids []domain.AuctionId) SelectOptions {
	return func(options *selectOptions) error {
		options.Ids = ids
		return nil
	}
}

// WithName filters by case-insensitive name substring.
func WithName(name string) SelectOptions {
	return func(options *selectOptions) error {
		options.Name = &name
		return nil
	}
}

// WithStatus filters by lifecycle phase evaluated at `asOf`.
func WithStatus(status Status, asOf time.Time) SelectOptions {
	return func(options *selectOptions) error {
		options.Status = &status
		options.StatusAsOf = &asOf
		return nil
	}
}

func WithSku(sku string) SelectOptions {
	return func(options *selectOptions) error {
		options.Sku = &sku
		return nil
	}
}

func WithClosed(closed bool) SelectOptions {
	return func(options *selectOptions) error {
		options.Closed = &closed
		return nil
	}
}

func WithActive(active bool) SelectOptions {
	return func(options *selectOptions) error {
		options.Active = &active
		return nil
	}
}

type Repo interface {
	FindOne(c ctx.Ctx, id domain.AuctionId) (*Auction, error)
	FindAll(c ctx.Ctx, opts ...SelectOptions) ([]*Auction, error)
	Count(c ctx.Ctx, opts ...SelectOptions) (int, error)
	Create(c ctx.Ctx, value *Auction) error
	Patch(c ctx.Ctx, id domain.AuctionId, patchable Patchable) error
	// SetClosed marks the auction closed. Idempotent; the flag never reverts.
	SetClosed(c ctx.Ctx, id domain.AuctionId) error
}

type Usecase interface {
	CreateAuction(c ctx.Ctx, payload *CreatePayload) (*Auction, error)
	UpdateAuction(c ctx.Ctx, id domain.AuctionId, payload *UpdatePayload, now time.Time) (*Auction, error)
	DeactivateAuction(c ctx.Ctx, id domain.AuctionId) error
	DeactivateAuctions(c ctx.Ctx, ids []domain.AuctionId) error
	GetAuction(c ctx.Ctx, id domain.AuctionId) (*Auction, error)
	ListAuctions(c ctx.Ctx, opts ...SelectOptions) ([]*Auction, error)
	ListOpenAuctions(c ctx.Ctx, asOf time.Time) ([]*Auction, error)
	GetSnapshot(c ctx.Ctx, id domain.AuctionId, now time.Time) (*Snapshot, error)
	ListHighestBids(c ctx.Ctx) ([]*HighestBidEntry, error)
}

// Reconciler closes elapsed auctions and announces winners exactly once.
type Reconciler interface {
	// SweepOnce reconciles every elapsed open auction and returns how many
	// were closed during this pass.
	SweepOnce(c ctx.Ctx, now time.Time) (int, error)
	// ReconcileOne reconciles a single auction on demand.
	ReconcileOne(c ctx.Ctx, id domain.AuctionId, now time.Time) error
}
