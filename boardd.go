package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"text/template"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/ptt/boardd/article"
	"github.com/ptt/boardd/atomfeed"
	"github.com/ptt/boardd/bcache"
	"github.com/ptt/boardd/big5"
	"github.com/ptt/boardd/gate"
	"github.com/ptt/boardd/query"
	"github.com/ptt/boardd/server"
)

var (
	configPath  string
	disableUTF8 bool
	foreground  bool
	listenAddr  string
	verbose     bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "boardd [-5] [-D] [-l interface_ip:port]",
	Short: "Read-only board and article lookups over the memcached text protocol",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "conf", "", "config file (.json, .yaml or .yml)")
	f.BoolVarP(&disableUTF8, "big5", "5", false, "send values in Big5 instead of converting them to UTF-8")
	f.BoolVarP(&foreground, "foreground", "D", false, "do not detach from the terminal")
	f.StringVarP(&listenAddr, "listen", "l", "", "listen on interface_ip:port instead of the configured binds")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loadConfig: %w", err)
	}
	if disableUTF8 {
		config.DisableUTF8 = true
	}
	if listenAddr != "" {
		config.Bind = []string{listenAddr}
	}

	if !foreground && !isDaemonized() {
		return daemonize()
	}

	// Listen before dropping privileges so low ports still work.
	var listeners []net.Listener
	defer func() {
		for _, l := range listeners {
			l.Close()
		}
	}()
	for _, bind := range config.Bind {
		l, err := server.Listen(bind, config.MaxConn)
		if err != nil {
			return fmt.Errorf("listen %s: %w", bind, err)
		}
		listeners = append(listeners, l)
	}
	if err := dropPrivileges(config.RunAsUID, config.RunAsGID); err != nil {
		return err
	}

	boards, err := bcache.New(config.BoardFile, logger.Named("bcache"))
	if err != nil {
		return fmt.Errorf("load boards: %w", err)
	}

	var hot bcache.HotboardSource
	switch {
	case config.Hotboards.Redis != nil:
		rh := bcache.NewRedisHotboards(config.Hotboards.Redis)
		defer rh.Close()
		hot = rh
	case len(config.Hotboards.Static) > 0:
		hot = bcache.StaticHotboards(config.Hotboards.Static)
	}

	ioGate := gate.New(config.MaxInflightIO, config.MaxWaitIO)
	resolver := &query.Resolver{
		Boards: boards,
		Store:  article.NewStore(config.BoardsDir, config.ShardBoardDirs, ioGate),
		Hot:    hot,
	}

	conv := big5.NewConverter(config.LookaheadWindow, config.Placement())
	srvConf := server.Config{
		MaxLineLength: config.MaxLineLength,
		IdleTimeout:   config.IdleTimeout(),
	}
	if !config.DisableUTF8 {
		srvConf.Converter = conv
	}
	srv := server.New(resolver, srvConf, logger.Named("server"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, unix.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	for _, l := range listeners {
		l := l
		g.Go(func() error {
			return srv.Serve(ctx, l)
		})
	}
	listeners = nil

	g.Go(func() error {
		reloadOnHangup(ctx, boards)
		return nil
	})
	if config.WatchBoardFile {
		g.Go(func() error {
			return boards.Watch(ctx)
		})
	}

	if config.DebugBind != "" {
		title, err := template.New("feed").Parse(config.AtomFeedTitleTemplate)
		if err != nil {
			return fmt.Errorf("AtomFeedTitleTemplate: %w", err)
		}
		feeds := &atomfeed.Builder{
			Resolver:   resolver,
			Decoder:    conv,
			FeedTitle:  title,
			SitePrefix: config.SitePrefix,
		}
		h := newDebugHandler(boards, ioGate, feeds)
		g.Go(func() error {
			return serveDebug(ctx, config.DebugBind, h)
		})
	}
	if config.HealthBind != "" {
		g.Go(func() error {
			return serveHealth(ctx, config.HealthBind)
		})
	}

	logger.Info("boardd started",
		zap.Strings("bind", config.Bind),
		zap.Bool("utf8", !config.DisableUTF8),
		zap.Int("boards", boards.Snapshot().Len()))
	err = g.Wait()
	logger.Info("boardd stopped", zap.Error(err))
	return err
}

func reloadOnHangup(ctx context.Context, boards *bcache.Cache) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, unix.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := boards.Reload(); err != nil {
				logger.Error("reload boards", zap.Error(err))
			}
		}
	}
}
