package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bCtx "github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
)

func TestMain(m *testing.M) {
	metrics.UseLogClient()
	m.Run()
}

func snap(id domain.AuctionId, price string) *auction.Snapshot {
	return &auction.Snapshot{
		AuctionId:    id,
		HighestPrice: price,
		Status:       auction.StatusOngoing,
	}
}

func TestPublishReachesOnlyOwnAuction(t *testing.T) {
	c := bCtx.Background()
	h := New(nil)

	subA := h.Subscribe(c, "auction-a")
	subB := h.Subscribe(c, "auction-b")
	defer subA.Unsubscribe()
	defer subB.Unsubscribe()

	h.Publish(c, "auction-a", snap("auction-a", "100"))

	select {
	case got := <-subA.Updates():
		require.Equal(t, domain.AuctionId("auction-a"), got.AuctionId)
		require.Equal(t, "100", got.HighestPrice)
	case <-time.After(time.Second):
		t.Fatal("subscriber a got nothing")
	}

	select {
	case got := <-subB.Updates():
		t.Fatalf("subscriber b leaked snapshot %+v", got)
	default:
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	c := bCtx.Background()
	h := New(&HubCfg{BufferSize: 2})

	sub := h.Subscribe(c, "auction-a")
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		h.Publish(c, "auction-a", snap("auction-a", "100"))
	}

	// exactly BufferSize snapshots retained, the rest dropped
	require.Len(t, sub.Updates(), 2)
}

func TestUnsubscribeClosesUpdates(t *testing.T) {
	c := bCtx.Background()
	h := New(nil)

	sub := h.Subscribe(c, "auction-a")
	require.Equal(t, 1, h.SubscriberCount("auction-a"))

	sub.Unsubscribe()
	require.Equal(t, 0, h.SubscriberCount("auction-a"))

	_, ok := <-sub.Updates()
	require.False(t, ok)

	// repeated unsubscribe is a no-op
	sub.Unsubscribe()
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	c := bCtx.Background()
	h := New(&HubCfg{BufferSize: 1})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		sub := h.Subscribe(c, "auction-a")
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range sub.Updates() {
			}
		}()
		go func() {
			defer wg.Done()
			sub.Unsubscribe()
		}()
	}

	for i := 0; i < 100; i++ {
		h.Publish(c, "auction-a", snap("auction-a", "100"))
	}

	wg.Wait()
	require.Equal(t, 0, h.SubscriberCount("auction-a"))
}

func TestEachSubscriberGetsAtMostOneCopy(t *testing.T) {
	c := bCtx.Background()
	h := New(&HubCfg{BufferSize: 8})

	subs := make([]*Subscription, 3)
	for i := range subs {
		subs[i] = h.Subscribe(c, "auction-a")
	}

	h.Publish(c, "auction-a", snap("auction-a", "100"))

	for _, sub := range subs {
		require.Len(t, sub.Updates(), 1)
		sub.Unsubscribe()
	}
}
