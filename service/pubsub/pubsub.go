package pubsub

import (
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/goroutine"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
)

const (
	healthCheckPeriod = time.Minute
	receiveTimeout    = healthCheckPeriod + 10*time.Second
)

// Handler consumes one raw message from a channel.
type Handler func(c ctx.Ctx, channel string, payload []byte)

// Service bridges processes through redis channels. Delivery is
// at-most-once, subscribers joining late miss earlier messages.
type Service interface {
	Publish(c ctx.Ctx, channel string, payload []byte) error
	// Subscribe consumes `pattern` until c is canceled. It reconnects on
	// connection errors and returns only when c is done.
	Subscribe(c ctx.Ctx, pattern string, handler Handler) error
}

type impl struct {
	pool *redis.Pool
	met  metrics.Service
}

func New(pool *redis.Pool, met metrics.Service) Service {
	return &impl{
		pool: pool,
		met:  met,
	}
}

func (im *impl) Publish(c ctx.Ctx, channel string, payload []byte) error {
	defer im.met.BumpTime("publish.time", "channel", channel).End()

	conn := im.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("PUBLISH", channel, payload); err != nil {
		im.met.BumpSum("publish.err", 1)
		c.WithFields(log.Fields{"err": err, "channel": channel}).Error("Publish failed")
		return err
	}
	return nil
}

func (im *impl) Subscribe(c ctx.Ctx, pattern string, handler Handler) error {
	for {
		if err := im.consume(c, pattern, handler); err != nil {
			c.WithFields(log.Fields{"err": err, "pattern": pattern}).Warn("subscription dropped, reconnecting")
			im.met.BumpSum("subscribe.reconnect", 1)
		}

		select {
		case <-c.Done():
			return c.Err()
		case <-time.After(time.Second):
		}
	}
}

func (im *impl) consume(c ctx.Ctx, pattern string, handler Handler) error {
	conn := im.pool.Get()
	defer conn.Close()

	psc := redis.PubSubConn{Conn: conn}
	if err := psc.PSubscribe(pattern); err != nil {
		return err
	}
	defer psc.PUnsubscribe()

	done := make(chan error, 1)
	goroutine.RecoverableGo(func() {
		for {
			switch msg := psc.ReceiveWithTimeout(receiveTimeout).(type) {
			case redis.Message:
				handler(c, msg.Channel, msg.Data)
			case redis.Subscription:
				if msg.Count == 0 {
					done <- nil
					return
				}
			case error:
				done <- msg
				return
			}
		}
	})

	ticker := time.NewTicker(healthCheckPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := psc.Ping(""); err != nil {
				return err
			}
		case <-c.Done():
			return nil
		case err := <-done:
			return err
		}
	}
}

// AuctionChannel is the channel carrying snapshot updates of one auction.
func AuctionChannel(auctionId fmt.Stringer) string {
	return fmt.Sprintf("auction_updates:%s", auctionId.String())
}

// AuctionChannelPattern matches every auction's update channel.
const AuctionChannelPattern = "auction_updates:*"
