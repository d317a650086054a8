package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/api"
	"github.com/centavo-dev/centavo/internal/config"
	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/installment"
	"github.com/centavo-dev/centavo/internal/investment"
	"github.com/centavo-dev/centavo/internal/logger"
	"github.com/centavo-dev/centavo/internal/quotes"
	"github.com/centavo-dev/centavo/internal/salary"
	"github.com/centavo-dev/centavo/internal/stats"
	"github.com/centavo-dev/centavo/internal/store"
)

// services bundles everything a command needs after opening the database.
type services struct {
	cfg          *config.Config
	store        *store.Store
	stats        *stats.Service
	installments *installment.Service
	investments  *investment.Service
	salary       *salary.Service
}

// openServices loads configuration and wires the service layer.
func openServices(cmd *cobra.Command) (*services, error) {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	policy, err := installment.ParseDeletePolicy(cfg.Installments.DeletePolicy)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	var provider investment.Provider
	if cfg.Quotes.Enabled {
		provider = quotes.NewYahoo()
	}

	return &services{
		cfg:          cfg,
		store:        st,
		stats:        stats.NewService(st),
		installments: installment.NewService(st, policy),
		investments:  investment.NewService(st, provider),
		salary:       salary.NewService(st),
	}, nil
}

func (s *services) close() {
	_ = s.store.Close()
}

func newServeCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := openServices(cmd)
			if err != nil {
				return err
			}
			defer svcs.close()

			if listen != "" {
				svcs.cfg.Server.Listen = listen
			}
			return runServe(cmd.Context(), svcs, logger.New())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, svcs *services, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(svcs.store, svcs.stats, svcs.installments, svcs.investments, svcs.salary, log)
	httpServer := &http.Server{
		Addr:    svcs.cfg.Server.Listen,
		Handler: server.Router(svcs.cfg.Server.CORSOrigins),
	}

	if svcs.cfg.Quotes.Enabled {
		go refreshLoop(ctx, svcs, log, time.Duration(svcs.cfg.Quotes.IntervalMinutes)*time.Minute)
	}
	if svcs.cfg.Salary.AutoProcess {
		go salaryLoop(ctx, svcs, log)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", httpServer.Addr).Msg("serving")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// refreshLoop periodically refreshes investment prices. Failures are
// logged and retried at the next tick.
func refreshLoop(ctx context.Context, svcs *services, log zerolog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := svcs.investments.RefreshPrices(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("price refresh failed")
		} else {
			log.Info().Int("updated", result.Updated).Int("failed", result.Failed).Msg("prices refreshed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// salaryLoop processes the salary once a day when it becomes due.
func salaryLoop(ctx context.Context, svcs *services, log zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		today := date.Today(time.Now())
		due, err := svcs.salary.Due(ctx, today)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Msg("salary check failed")
		}
		if due {
			if t, err := svcs.salary.Process(ctx, today); err != nil {
				log.Warn().Err(err).Msg("salary processing failed")
			} else {
				log.Info().Int64("transaction", t.ID).Str("month", today.YearMonth()).Msg("salary processed")
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
