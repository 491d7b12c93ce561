package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lab1702/rocket-hivemind/config"
	"github.com/lab1702/rocket-hivemind/game"
	"github.com/lab1702/rocket-hivemind/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	port := flag.String("port", cfg.Port, "Server port")
	team := flag.Int("team", cfg.Team, "Default team when frames omit it (0 blue, 1 orange)")
	variant := flag.String("variant", cfg.Variant, "Strategy variant (primary or permissive)")
	debug := flag.Bool("debug", cfg.Debug, "Trace every strategy decision")
	level := flag.String("log-level", cfg.LogLevel, "Log level")
	format := flag.String("log-format", cfg.LogFormat, "Log format (text or json)")
	flag.Parse()

	cfg.Port, cfg.Team, cfg.Variant, cfg.Debug = *port, *team, *variant, *debug
	cfg.LogLevel, cfg.LogFormat = *level, *format
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid flags")
	}

	log := newLogger(cfg)
	server.DebugStrategy = cfg.Debug

	strategy, err := server.StrategyByName(cfg.Variant)
	if err != nil {
		log.WithError(err).Fatal("Unknown strategy")
	}

	log.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"strategy": strategy.Name,
		"team":     cfg.Team,
	}).Info("Starting hivemind server")

	var opts []server.Option
	if cfg.Debug {
		opts = append(opts, server.WithRenderer(server.LogRenderer{Log: log.WithField("component", "render")}))
	}
	feed := server.NewServer(strategy, game.Team(cfg.Team), log, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", feed.HandleWebSocket)
	mux.HandleFunc("/api/sessions", feed.HandleSessions)
	mux.HandleFunc("/api/schema", feed.HandleSchema)
	mux.HandleFunc("/health", server.HandleHealth)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feed.Run(ctx)
	})
	g.Go(func() error {
		log.Infof("Server running at http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server stopped with error")
		os.Exit(1)
	}
	log.Info("Server stopped")
}

// newLogger builds the root log entry from cfg
func newLogger(cfg config.Config) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	if cfg.Debug && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	return logrus.NewEntry(logger)
}
