package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/driftwave/client/pkg/api/rest"
	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/logger"
	"github.com/driftwave/client/pkg/mirror"
	"github.com/driftwave/client/pkg/notify"
	"github.com/driftwave/client/pkg/session"
	"github.com/driftwave/client/pkg/syncer"
)

func main() {
	// Load dotenv
	godotenv.Load()

	// Init Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn: os.Getenv("SENTRY_DSN"),
	}); err != nil {
		panic(err)
	}

	// Init logger
	if err := logger.Init(os.Getenv("DEBUG") != ""); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Open local persistence mirror
	mirrorPath := os.Getenv("MIRROR_PATH")
	if mirrorPath == "" {
		mirrorPath = "driftwave.db"
	}
	m, err := mirror.Open(mirrorPath)
	if err != nil {
		panic(err)
	}

	// Build remote channel; leaving SYNC_REMOTE unset runs local-only
	remote, notifier := buildRemote()
	if remote == nil {
		logger.Info("starting without a remote channel")
	}

	// Resume persisted session, if any
	alias := os.Getenv("ALIAS")
	sessions := session.NewStore(m)
	if creds, err := sessions.Load(); err == nil {
		alias = creds.Alias
		logger.Info("resumed session", zap.String("alias", alias))
	}

	core := syncer.New(syncer.Config{
		Alias:    alias,
		Remote:   remote,
		Mirror:   m,
		Notifier: notifier,
	})
	core.Bootstrap(context.Background())
	defer core.StopSubscriptions()

	// Serve the local read-only snapshot API
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "3000"
	}
	log.Println("Serving snapshot API on :" + port)
	http.ListenAndServe(":"+port, rest.Router(core))

	// Wait for Sentry events to flush
	sentry.Flush(time.Second * 5)
}

func buildRemote() (channel.Remote, notify.Notifier) {
	switch os.Getenv("SYNC_REMOTE") {
	case "redis":
		remote, err := channel.NewRedis(os.Getenv("REDIS_URI"))
		if err != nil {
			logger.Error("redis channel unavailable, falling back to local mode", zap.Error(err))
			return nil, notify.Nop{}
		}
		return remote, notify.NewRedisNotifier(remote.Client())
	case "mongo":
		remote, err := channel.NewMongo(os.Getenv("MONGO_URI"), os.Getenv("MONGO_DB"))
		if err != nil {
			logger.Error("mongo channel unavailable, falling back to local mode", zap.Error(err))
			return nil, notify.Nop{}
		}
		return remote, notify.Nop{}
	case "ws":
		return channel.NewWS(os.Getenv("GATEWAY_URL"), os.Getenv("GATEWAY_WS_URL")), notify.Nop{}
	default:
		return nil, notify.Nop{}
	}
}
