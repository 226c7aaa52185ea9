package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/adebusola-prog/auction-engine/base/backoff"
	bCtx "github.com/adebusola-prog/auction-engine/base/ctx"
	"github.com/adebusola-prog/auction-engine/base/database/mongoclient"
	"github.com/adebusola-prog/auction-engine/base/database/redisclient"
	"github.com/adebusola-prog/auction-engine/base/goroutine"
	"github.com/adebusola-prog/auction-engine/base/log"
	"github.com/adebusola-prog/auction-engine/base/metrics"
	"github.com/adebusola-prog/auction-engine/service/hub"
	notificationService "github.com/adebusola-prog/auction-engine/service/notification"
	"github.com/adebusola-prog/auction-engine/service/pubsub"
	"github.com/adebusola-prog/auction-engine/service/query"
	auctionRepository "github.com/adebusola-prog/auction-engine/stores/auction/repository"
	auctionUsecase "github.com/adebusola-prog/auction-engine/stores/auction/usecase"
	bidRepository "github.com/adebusola-prog/auction-engine/stores/bid/repository"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/auctiond/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	ctx, cancel := bCtx.WithCancel(bCtx.Background())

	sweepInterval := viper.GetDuration("reconciler.sweepInterval")
	backoffStart := viper.GetDuration("reconciler.backoffStartDuration")
	backoffLimit := viper.GetDuration("reconciler.backoffLimitDuration")
	hubBufferSize := viper.GetInt("hub.bufferSize")

	ctx.WithFields(log.Fields{
		"reconciler.sweepInterval": sweepInterval,
		"hub.bufferSize":           hubBufferSize,
	}).Info("config")

	ctx.Info("init mongo")
	q := initMongo()

	ctx.Info("init redis")
	redisPool := redisclient.MustConnectRedis(
		viper.GetString("redis.uri"),
		viper.GetString("redis.password"),
	)
	met := metrics.New("pubsub")
	ps := pubsub.New(redisPool, met)

	broadcastHub := hub.New(&hub.HubCfg{BufferSize: hubBufferSize})
	relay := hub.NewRelay(broadcastHub, ps)
	gateway := notificationService.New(ps)

	auctionRepo := auctionRepository.NewAuction(q)
	bidRepo := bidRepository.NewBid(q)

	reconciler := auctionUsecase.NewReconciler(&auctionUsecase.ReconcilerCfg{
		AuctionRepo: auctionRepo,
		BidRepo:     bidRepo,
		Gateway:     gateway,
		Publisher:   relay,
	})

	relayPanic := goroutine.RecoverableGo(func() {
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			ctx.WithField("err", err).Error("relay stopped")
		}
	})

	sweepPanic := goroutine.RecoverableGo(func() {
		bo := backoff.NewExponential(backoffStart, backoffLimit)
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			now := time.Now().UTC()
			closed, err := reconciler.SweepOnce(ctx, now)
			if err != nil {
				ctx.WithField("err", err).Error("SweepOnce failed")
				if err := bo.Backoff(ctx); err != nil {
					return
				}
				continue
			}
			bo.Reset()

			if closed > 0 {
				ctx.WithField("closed", closed).Info("sweep closed auctions")
			}
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		ctx.WithField("signal", sig.String()).Info("shutting down")
	case p := <-relayPanic:
		ctx.WithField("panic", p.Panic).Error("relay panicked")
	case p := <-sweepPanic:
		ctx.WithField("panic", p.Panic).Error("sweeper panicked")
	}

	cancel()
}

func initMongo() query.Mongo {
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	return query.New(mongoClient)
}
