package hub

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/domain"
	"github.com/adebusola-prog/auction-engine/domain/auction"
	"github.com/adebusola-prog/auction-engine/service/pubsub"
)

type relayEnvelope struct {
	Origin   string            `json:"origin"`
	Snapshot *auction.Snapshot `json:"snapshot"`
}

// Relay extends a Hub across processes through redis channels. Local
// publishes are mirrored to redis, remote publishes are replayed into the
// local hub. Each relay tags its envelopes with an origin id so its own
// messages are not delivered twice.
type Relay struct {
	hub    *Hub
	ps     pubsub.Service
	origin string
	met    metrics.Service
}

func NewRelay(hub *Hub, ps pubsub.Service) *Relay {
	return &Relay{
		hub:    hub,
		ps:     ps,
		origin: uuid.New().String(),
		met:    metrics.New("hub.relay"),
	}
}

// Publish fans out locally and mirrors the snapshot to the auction's redis
// channel. A redis failure is logged but does not fail the publish, local
// watchers already got the snapshot.
func (r *Relay) Publish(c ctx.Ctx, auctionId domain.AuctionId, snapshot *auction.Snapshot) {
	r.hub.Publish(c, auctionId, snapshot)

	payload, err := json.Marshal(relayEnvelope{Origin: r.origin, Snapshot: snapshot})
	if err != nil {
		c.WithField("err", err).Error("marshal snapshot failed")
		return
	}
	if err := r.ps.Publish(c, pubsub.AuctionChannel(auctionId), payload); err != nil {
		r.met.BumpSum("mirror.err", 1)
	}
}

// Run consumes remote snapshots until c is canceled.
func (r *Relay) Run(c ctx.Ctx) error {
	return r.ps.Subscribe(c, pubsub.AuctionChannelPattern, r.handle)
}

func (r *Relay) handle(c ctx.Ctx, channel string, payload []byte) {
	var env relayEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.WithFields(log.Fields{"err": err, "channel": channel}).Warn("bad relay payload")
		return
	}
	if env.Origin == r.origin || env.Snapshot == nil {
		return
	}

	idx := strings.LastIndex(channel, ":")
	if idx < 0 {
		return
	}
	r.hub.Publish(c, domain.AuctionId(channel[idx+1:]), env.Snapshot)
}
