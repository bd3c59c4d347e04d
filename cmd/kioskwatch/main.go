package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kiosk-news/kiosk/internal/health"
	"github.com/kiosk-news/kiosk/internal/newsapi/rest"
	"github.com/kiosk-news/kiosk/internal/storage"
	"github.com/kiosk-news/kiosk/internal/storage/sqlite"
	"github.com/kiosk-news/kiosk/internal/store"
	"github.com/kiosk-news/kiosk/internal/toast"
	"github.com/kiosk-news/kiosk/internal/watcher"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Host string `long:"http.host" env:"HTTP_HOST" default:"0.0.0.0" description:"IP to listen on"`
	Port int    `long:"http.port" env:"HTTP_PORT" default:"8080" description:"port to listen on"`

	APIURL     string        `long:"api.url" env:"API_URL" default:"http://localhost:3000" description:"news backend base url"`
	APITimeout time.Duration `long:"api.timeout" env:"API_TIMEOUT" default:"10s" description:"timeout for requests to the backend"`

	StoragePath string `long:"storage.path" env:"STORAGE_PATH" default:"kiosk.db" description:"path to the local session database"`

	WatchInterval      time.Duration `long:"watch.interval" env:"WATCH_INTERVAL" default:"30s" description:"interval between notification polls"`
	WatchRetryInterval time.Duration `long:"watch.retry_interval" env:"WATCH_RETRY_INTERVAL" default:"5s" description:"interval to be waited on error before retry"`

	LogLevel string `long:"log.level" env:"LOG_LEVEL" default:"info" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
}{}

var errTerminated = errors.New("terminated")

func main() {
	_ = godotenv.Load()

	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Kiosk Watch"
	parser.LongDescription = "Kiosk notification watch daemon"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
	logrus.SetLevel(lvl)

	logrus.Infof("version %s", health.GetVersion())
	logrus.Infof("%+v", opts)

	s := mustGetStorage()
	defer s.Close()

	api := rest.New(opts.APIURL, opts.APITimeout)

	t := toast.NewLog()
	session := store.NewSession(api, s, t)
	notifications := store.NewNotifications(api, session, t)

	if err := session.Restore(context.Background()); err != nil {
		logrus.WithError(err).Warn("failed to restore session")
	}

	if _, err := session.Token(); err != nil {
		logrus.WithError(err).Fatal("no session, log in with kiosk first")
	}

	w := watcher.New(notifications, t, opts.WatchInterval, opts.WatchRetryInterval)

	r := chi.NewMux()
	r.Get("/health", health.Handler(
		5*time.Second,
		health.SubjectPinger("backend", func(ctx context.Context) error {
			return api.Ping(ctx)
		}),
		health.SubjectPinger("storage", s.Ping),
	))
	srv := http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: r,
	}

	ctx, cancel := context.WithCancel(context.Background())

	gr, _ := errgroup.WithContext(ctx)
	gr.Go(func() error {
		return w.Run(ctx)
	})
	gr.Go(srv.ListenAndServe)
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

		s := <-sigs

		logrus.Infof("terminating by %s signal", s)

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)

		return errTerminated
	})

	logrus.Info("service started")

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("watch daemon unexpectedly closed")
	}
}

func mustGetStorage() storage.Storage {
	s, err := sqlite.Open(opts.StoragePath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open local storage")
	}

	if err := s.Ping(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to ping local storage")
	}

	return s
}
