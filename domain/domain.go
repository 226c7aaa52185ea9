package domain

// Table is a mongo collection name
type Table string

const (
	TableAuctions Table = "auctions"
	TableBids     Table = "bids"
)

// AuctionId identifies an auction item
type AuctionId string

func (id AuctionId) String() string {
	return string(id)
}

func (id AuctionId) IsEmpty() bool {
	return len(id) == 0
}

// BidId identifies a single bid record
type BidId string

func (id BidId) String() string {
	return string(id)
}

// UserId identifies a bidder or seller
type UserId string

func (u UserId) String() string {
	return string(u)
}

func (u UserId) IsEmpty() bool {
	return len(u) == 0
}
