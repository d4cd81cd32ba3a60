package cli

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/config"
	"github.com/micahjlucas/TransferProvider/internal/notify"
	"github.com/micahjlucas/TransferProvider/internal/provider"
	"github.com/micahjlucas/TransferProvider/internal/store"
)

// session is the wired-up runtime a command operates: configuration, logger,
// open store, provider, and the work-trigger backend when one is configured.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	st     *store.Store
	p      *provider.Provider
	rdb    *redis.Client
	caller access.Caller
	out    *OutputFormatter
}

// openSession loads configuration, opens the database and builds the
// provider. Callers must Close the session.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	st, err := store.OpenWithLogger(cfg.DBPath, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	var rdb *redis.Client
	var trigger notify.WorkTrigger = notify.Discard{}
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		trigger = notify.NewRedisTrigger(rdb, cfg.Redis.Stream, logger)
		logger.Debug("work trigger publishing to redis", "addr", cfg.Redis.Addr, "stream", cfg.Redis.Stream)
	}

	p := provider.New(st, provider.Deps{
		Scoper:  access.Scoper{SystemUID: cfg.SystemUID, HelperUID: cfg.HelperUID},
		Trigger: trigger,
		Logger:  logger,
	})

	// Commands run in-process by default; --scoped makes them behave like an
	// out-of-process caller so scoping can be exercised from the shell.
	caller := access.Caller{UID: opts.UID, SameProcess: !opts.Scoped}

	return &session{
		cfg:    cfg,
		logger: logger,
		st:     st,
		p:      p,
		rdb:    rdb,
		caller: caller,
		out:    &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}, nil
}

func (s *session) Close() {
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := s.st.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}
