package hub

import (
	"sync"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
)

const defaultBufferSize = 16

// Subscription is one watcher's attachment to an auction. Updates() yields
// snapshots until Unsubscribe. A subscriber that stops draining loses
// snapshots but never blocks publishers, the latest snapshot can always be
// re-read from the store.
type Subscription struct {
	hub       *Hub
	auctionId domain.AuctionId
	ch        chan *auction.Snapshot
	closeOnce sync.Once
}

// Updates is the receive side of the subscription. The channel is closed
// after Unsubscribe.
func (s *Subscription) Updates() <-chan *auction.Snapshot {
	return s.ch
}

// Unsubscribe detaches from the auction. Safe to call more than once and
// concurrently with Publish.
func (s *Subscription) Unsubscribe() {
	s.hub.unsubscribe(s)
}

// Hub fans auction snapshots out to per-auction subscriber sets.
// The zero value is not usable, construct with New.
type Hub struct {
	mu         sync.RWMutex
	subs       map[domain.AuctionId]map[*Subscription]struct{}
	bufferSize int
	met        metrics.Service
}

type HubCfg struct {
	// BufferSize is each subscriber's channel capacity. Zero means the
	// default of 16.
	BufferSize int
}

func New(cfg *HubCfg) *Hub {
	bufferSize := defaultBufferSize
	if cfg != nil && cfg.BufferSize > 0 {
		bufferSize = cfg.BufferSize
	}
	return &Hub{
		subs:       make(map[domain.AuctionId]map[*Subscription]struct{}),
		bufferSize: bufferSize,
		met:        metrics.New("hub"),
	}
}

// Subscribe attaches a new watcher to the auction.
func (h *Hub) Subscribe(c ctx.Ctx, auctionId domain.AuctionId) *Subscription {
	sub := &Subscription{
		hub:       h,
		auctionId: auctionId,
		ch:        make(chan *auction.Snapshot, h.bufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[auctionId] == nil {
		h.subs[auctionId] = make(map[*Subscription]struct{})
	}
	h.subs[auctionId][sub] = struct{}{}
	h.met.BumpSum("subscribe", 1)
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.subs[sub.auctionId]
	if set == nil {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.auctionId)
	}

	// closing under the write lock guarantees no Publish is mid-send
	sub.closeOnce.Do(func() { close(sub.ch) })
}

// Publish delivers the snapshot to every current subscriber of the auction.
// Subscribers with a full buffer are skipped, Publish never blocks.
func (h *Hub) Publish(c ctx.Ctx, auctionId domain.AuctionId, snapshot *auction.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[auctionId] {
		select {
		case sub.ch <- snapshot:
		default:
			h.met.BumpSum("publish.drop", 1)
			c.WithFields(log.Fields{"auctionId": auctionId}).Warn("subscriber buffer full, snapshot dropped")
		}
	}
}

// SubscriberCount reports how many watchers the auction currently has.
func (h *Hub) SubscriberCount(auctionId domain.AuctionId) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[auctionId])
}
