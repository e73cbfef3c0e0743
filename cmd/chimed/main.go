package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/chime-player/chime/internal/adapters/mqtt"
	"github.com/chime-player/chime/internal/chimed"
	"github.com/chime-player/chime/internal/intake"
	"github.com/chime-player/chime/internal/loader"
	embeddedmqtt "github.com/chime-player/chime/internal/modules/embedded_mqtt"
	linkintake "github.com/chime-player/chime/internal/modules/link_intake"
	"github.com/chime-player/chime/internal/player"
	"github.com/chime-player/chime/internal/playlist"
	"github.com/chime-player/chime/internal/resolve"
	"github.com/chime-player/chime/internal/router"
	"github.com/chime-player/chime/internal/share"
	"github.com/chime-player/chime/pkg/wire"
)

func main() {
	var (
		configPath string
		broker     string
		identity   string
		logLevel   string
		logFormat  string
		dryRun     bool
	)

	defaultConfig, err := chimed.DefaultConfigPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.StringVar(&configPath, "config", defaultConfig, "config file path")
	flag.StringVar(&broker, "broker", "", "MQTT broker URL override")
	flag.StringVar(&identity, "identity", "", "node identity override")
	flag.StringVar(&logLevel, "log-level", "", "log level override")
	flag.StringVar(&logFormat, "log-format", "", "log format override (console|json)")
	flag.BoolVar(&dryRun, "dry-run", false, "validate config and exit")
	flag.Parse()

	cfg, err := chimed.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyOverrides(&cfg, broker, identity, logLevel)

	if dryRun {
		return
	}

	logger := chimed.NewLogger(chimed.LogConfig{
		Level:  cfg.Server.LogLevel,
		Format: logFormat,
	})
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	skipEmbedded := false
	if cfg.EmbeddedMQTT.Enabled && cfg.Server.Broker == embeddedBrokerURL(cfg) {
		if err := startEmbeddedBroker(ctx, cfg, logger, cancel); err != nil {
			logger.Error("embedded mqtt failed", zap.Error(err))
			os.Exit(1)
		}
		skipEmbedded = true
	}
	if cfg.Server.Broker == "" {
		logger.Error("broker is required")
		os.Exit(1)
	}

	logger.Info("chimed starting",
		zap.String("broker", cfg.Server.Broker),
		zap.String("identity", cfg.Server.Identity),
		zap.String("topic_base", cfg.Server.TopicBase),
		zap.Strings("library_roots", cfg.Library.Roots),
	)

	client, err := mqtt.NewClient(mqtt.Options{
		BrokerURL: cfg.Server.Broker,
		ClientID:  fmt.Sprintf("chimed-%d", time.Now().UnixNano()),
		Username:  cfg.Server.Auth.User,
		Password:  cfg.Server.Auth.Pass,
		TopicBase: cfg.Server.TopicBase,
		Timeout:   2 * time.Second,
	})
	if err != nil {
		logger.Error("mqtt connection failed", zap.Error(err))
		os.Exit(1)
	}
	defer client.Disconnect()

	modules, pipeline, err := buildModules(cfg, client, logger)
	if err != nil {
		logger.Error("failed to build modules", zap.Error(err))
		os.Exit(1)
	}
	if !skipEmbedded && cfg.EmbeddedMQTT.Enabled {
		mod, err := newEmbeddedBroker(cfg, logger)
		if err != nil {
			logger.Error("embedded mqtt failed", zap.Error(err))
			os.Exit(1)
		}
		modules = append(modules, chimed.ModuleRunner{Name: "embedded_mqtt", Run: mod.Run})
	}
	modules = append(modules, chimed.ModuleRunner{
		Name: "library",
		Run: func(ctx context.Context) error {
			if err := pipeline.Rescan(); err != nil {
				logger.Warn("library scan failed", zap.Error(err))
			}
			<-ctx.Done()
			return nil
		},
	})

	supervisor := chimed.Supervisor{Logger: logger}
	if err := supervisor.Run(ctx, modules); err != nil {
		logger.Error("supervisor error", zap.Error(err))
		os.Exit(1)
	}
}

func applyOverrides(cfg *chimed.Config, broker string, identity string, logLevel string) {
	if broker != "" {
		cfg.Server.Broker = broker
	}
	if identity != "" {
		cfg.Server.Identity = identity
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if cfg.Server.Identity == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "desktop"
		}
		cfg.Server.Identity = host
	}
	if cfg.Server.TopicBase == "" {
		cfg.Server.TopicBase = wire.BaseTopic
	}
	if cfg.Server.Broker == "" && cfg.EmbeddedMQTT.Enabled {
		cfg.Server.Broker = embeddedBrokerURL(*cfg)
	}
}

func buildModules(cfg chimed.Config, client *mqtt.Client, logger *zap.Logger) ([]chimed.ModuleRunner, *resolve.LocalPipeline, error) {
	storagePath := cfg.Playlists.StoragePath
	if storagePath == "" {
		var err error
		storagePath, err = chimed.DefaultDataPath()
		if err != nil {
			return nil, nil, err
		}
	}
	store, err := playlist.NewStore(logger.With(zap.String("module", "playlists")), storagePath, cfg.Playlists.Owner)
	if err != nil {
		return nil, nil, err
	}

	queue := &player.Queue{}
	var driver player.Driver
	if gst, err := player.NewGstDriver(cfg.Player.Pipeline, cfg.Player.Device); err != nil {
		logger.Warn("audio driver unavailable, playback disabled", zap.Error(err))
		driver = silentDriver{}
	} else {
		driver = gst
	}
	engine := player.NewEngine(logger.With(zap.String("module", "player")), queue, driver)

	pipeline := resolve.NewLocalPipeline(logger.With(zap.String("module", "library")), resolve.LocalConfig{
		Roots:       cfg.Library.Roots,
		IncludeExts: cfg.Library.IncludeExts,
	})

	views := logViews{log: logger.With(zap.String("module", "views"))}
	coordinator := resolve.NewCoordinator(
		logger.With(zap.String("module", "resolve")),
		pipeline,
		engine,
		bookmarkSink{store: store},
		views,
	)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	importer := loader.New(logger.With(zap.String("module", "loader")), httpClient, store)
	dispatch := router.New(
		logger.With(zap.String("module", "router")),
		pipeline, coordinator, store, views, importer, queue,
	)

	classifier := intake.NewClassifier(
		logger.With(zap.String("module", "intake")),
		httpClient,
		intake.NewRegistry(),
		intake.Config{SpotifyLookupBase: cfg.Intake.SpotifyLookupBase},
		func(queries []*resolve.Query) {
			for _, q := range queries {
				pipeline.Resolve(q, true)
				queue.Append(player.Item{
					ItemID: q.ID,
					Artist: q.Artist,
					Title:  q.Title,
					Album:  q.Album,
					URL:    q.ResultHint,
				})
			}
		},
	)

	codec := share.New(logger.With(zap.String("module", "share")), sysClipboard{})

	mod, err := linkintake.NewModule(
		logger.With(zap.String("module", "link_intake")),
		client,
		linkintake.Config{
			NodeID:    cfg.Server.Identity,
			TopicBase: cfg.Server.TopicBase,
			Name:      "Chime Desktop",
		},
		dispatch, classifier, codec, store,
	)
	if err != nil {
		return nil, nil, err
	}

	modules := []chimed.ModuleRunner{
		{Name: "link_intake", Run: mod.Run},
	}
	return modules, pipeline, nil
}

// logViews is the headless navigation surface: view changes are observable
// in the log until a frontend attaches.
type logViews struct {
	log *zap.Logger
}

func (v logViews) Show(playlistID string) {
	v.log.Info("show playlist", zap.String("playlist", playlistID))
}

func (v logViews) ShowQueue() { v.log.Info("show queue") }

func (v logViews) ShowSuperCollection() { v.log.Info("show collection") }

func (v logViews) SetFilter(text string) {
	v.log.Info("set filter", zap.String("filter", text))
}

// bookmarkSink adapts the playlist store to the coordinator's bookmark hook.
type bookmarkSink struct {
	store *playlist.Store
}

func (b bookmarkSink) AddBookmark(q *resolve.Query, done func(playlistID string, err error)) {
	b.store.AddBookmark(playlist.Entry{
		Artist: q.Artist,
		Title:  q.Title,
		Album:  q.Album,
		URL:    q.ResultHint,
	}, done)
}

type sysClipboard struct{}

func (sysClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

// silentDriver keeps the engine constructible when no audio backend is
// available; every action fails loudly at the call site instead.
type silentDriver struct{}

func (silentDriver) Play(url string, positionMS int64) error { return errors.New("no audio backend") }

func (silentDriver) Pause() error { return errors.New("no audio backend") }

func (silentDriver) Resume() error { return errors.New("no audio backend") }

func (silentDriver) Stop() error { return nil }

func (silentDriver) Seek(positionMS int64) error { return errors.New("no audio backend") }

func (silentDriver) SetVolume(volume float64) error { return nil }

func (silentDriver) Position() (int64, int64, bool) { return 0, 0, false }

func embeddedBrokerURL(cfg chimed.Config) string {
	listen := cfg.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	return embeddedmqtt.BrokerURL(listen)
}

func newEmbeddedBroker(cfg chimed.Config, logger *zap.Logger) (*embeddedmqtt.Module, error) {
	return embeddedmqtt.NewModule(logger.With(zap.String("module", "embedded_mqtt")), embeddedmqtt.Config{
		Listen:         cfg.EmbeddedMQTT.Listen,
		AllowAnonymous: cfg.EmbeddedMQTT.AllowAnonymous,
		Username:       cfg.EmbeddedMQTT.Username,
		Password:       cfg.EmbeddedMQTT.Password,
	})
}

func startEmbeddedBroker(ctx context.Context, cfg chimed.Config, logger *zap.Logger, cancel context.CancelFunc) error {
	mod, err := newEmbeddedBroker(cfg, logger)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- mod.Run(ctx)
	}()
	go func() {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("embedded mqtt exited", zap.Error(err))
			cancel()
		}
	}()

	listen := cfg.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	return waitForListen(listen, 3*time.Second)
}

func waitForListen(listen string, timeout time.Duration) error {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return err
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("embedded mqtt not ready at %s", addr)
}
