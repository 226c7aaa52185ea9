package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
	"github.com/adebusola-prog/auction-engine/domain/bid"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	open := &auction.Auction{
		Id:            "a1",
		StartingPrice: "100",
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		Active:        true,
	}
	upcoming := &auction.Auction{
		Id:            "a2",
		StartingPrice: "100",
		StartTime:     now.Add(time.Hour),
		EndTime:       now.Add(2 * time.Hour),
		Active:        true,
	}
	elapsed := &auction.Auction{
		Id:            "a3",
		StartingPrice: "100",
		StartTime:     now.Add(-2 * time.Hour),
		EndTime:       now.Add(-time.Hour),
		Active:        true,
	}
	flagged := &auction.Auction{
		Id:            "a4",
		StartingPrice: "100",
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		Closed:        true,
		Active:        true,
	}

	aliceAt150 := &bid.Bid{
		Id:        "b1",
		AuctionId: "a1",
		Bidder:    "alice",
		Price:     15000,
		TimeStamp: now.Add(-time.Minute),
	}

	cases := []struct {
		name    string
		auction *auction.Auction
		highest *bid.Bid
		bidder  domain.UserId
		price   int64
		want    error
	}{
		{
			name:    "accepted with no prior bids",
			auction: open,
			bidder:  "alice",
			price:   15000,
		},
		{
			name:    "accepted over current highest",
			auction: open,
			highest: aliceAt150,
			bidder:  "bob",
			price:   15001,
		},
		{
			name:    "not started",
			auction: upcoming,
			bidder:  "alice",
			price:   15000,
			want:    domain.ErrAuctionNotStarted,
		},
		{
			name:    "window elapsed counts as ended before close is persisted",
			auction: elapsed,
			bidder:  "alice",
			price:   15000,
			want:    domain.ErrAuctionEnded,
		},
		{
			name:    "closed flag wins over open window",
			auction: flagged,
			bidder:  "alice",
			price:   15000,
			want:    domain.ErrAuctionEnded,
		},
		{
			name:    "highest bidder cannot outbid themselves",
			auction: open,
			highest: aliceAt150,
			bidder:  "alice",
			price:   20000,
			want:    domain.ErrAlreadyHighestBidder,
		},
		{
			name:    "identity check precedes price check",
			auction: open,
			highest: aliceAt150,
			bidder:  "alice",
			price:   5000,
			want:    domain.ErrAlreadyHighestBidder,
		},
		{
			name:    "price equal to starting price",
			auction: open,
			bidder:  "alice",
			price:   10000,
			want:    domain.ErrPriceTooLowVsBase,
		},
		{
			name:    "price below starting price",
			auction: open,
			bidder:  "alice",
			price:   9999,
			want:    domain.ErrPriceTooLowVsBase,
		},
		{
			name:    "price equal to current highest",
			auction: open,
			highest: aliceAt150,
			bidder:  "bob",
			price:   15000,
			want:    domain.ErrPriceTooLowVsHighest,
		},
		{
			name:    "base check precedes highest check",
			auction: open,
			highest: aliceAt150,
			bidder:  "bob",
			price:   10000,
			want:    domain.ErrPriceTooLowVsBase,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Evaluate(c.auction, c.highest, c.bidder, c.price, now)
			require.Equal(t, c.want, err)
			if c.want != nil {
				require.True(t, domain.IsRejection(err))
			}
		})
	}
}
