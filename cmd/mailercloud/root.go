package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	mailercloud "github.com/sanzeeb3/mailercloud-go"
	"github.com/sanzeeb3/mailercloud-go/config"
	"github.com/sanzeeb3/mailercloud-go/logger"
	"github.com/sanzeeb3/mailercloud-go/store"
	"github.com/sanzeeb3/mailercloud-go/wpforms"
)

var (
	v          = config.New()
	configFile string
)

var rootCmd = &cobra.Command{
	Use:           "mailercloud",
	Short:         "WPForms to Mailercloud connector",
	Long:          "Authenticates Mailercloud accounts and forwards WPForms submissions as Mailercloud contacts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./config.yaml)")
	flags.String(config.KeyServerAddr, ":8080", "HTTP listen address")
	flags.String(config.KeyStoreDriver, store.DriverMemory, "Option store: memory, sqlite or postgres")
	flags.String(config.KeyStoreDSN, "", "SQLite file or Postgres connection string")
	flags.String(config.KeyMailercloudBaseURL, "", "Mailercloud API base URL")
	flags.Duration(config.KeyMailercloudTimeout, 0, "Mailercloud request timeout")
	flags.Int(config.KeyMailercloudMaxAttempts, 0, "Attempts per Mailercloud request, 1 disables retry")
	flags.Duration(config.KeyMailercloudMinInterval, 0, "Minimum spacing between Mailercloud requests")
	flags.String(config.KeyLogLevel, "info", "Log level: debug, info, warn, error")

	for _, key := range []string{
		config.KeyServerAddr,
		config.KeyStoreDriver,
		config.KeyStoreDSN,
		config.KeyMailercloudBaseURL,
		config.KeyMailercloudTimeout,
		config.KeyMailercloudMaxAttempts,
		config.KeyMailercloudMinInterval,
		config.KeyLogLevel,
	} {
		// Only flags set on the command line override file and env values.
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
}

func initConfig() {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what every command needs: config, logging, the option store
// and the provider on top of it.
type app struct {
	cfg      config.Config
	log      logger.Logger
	store    store.Store
	provider *wpforms.Mailercloud
}

func newApp(ctx context.Context, cmd *cobra.Command, opts ...wpforms.Option) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logger.ParseLevel(cfg.Log.Level)})
	log := logger.NewSlog(slog.New(handler))

	s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	if m, ok := s.(store.Migrator); ok {
		if err := m.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("migrate %s store: %w", cfg.Store.Driver, err)
		}
	}

	clientOpts := append(cfg.ClientOptions(), mailercloud.WithLogger(log))
	opts = append([]wpforms.Option{
		wpforms.WithLogger(log),
		wpforms.WithClientOptions(clientOpts...),
	}, opts...)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    s,
		provider: wpforms.NewMailercloud(s, opts...),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warnf("close store: %v", err)
	}
}
