package system

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Uraesh/Mon-portfolio/config"
)

// System is the portfolio daemon. It is safe for concurrent use; nothing in
// it changes after New except the hit counter.
type System struct {
	Stats   Stats
	config  config.Config
	log     zerolog.Logger
	contact *Contact
}

type Stats struct {
	hits atomic.Uint64
	t1   time.Time
}

// New builds a System. A nil sender puts contact handling in degraded mode.
func New(config config.Config, logger zerolog.Logger, sender Sender) *System {
	s := &System{
		config: config,
		log:    logger,
	}
	s.Stats.t1 = time.Now()
	s.contact = NewContact(config.Contact, sender, logger.With().Str("component", "contact").Logger())
	return s
}

// Config returns a copy of the running config.
func (s *System) Config() config.Config {
	return s.config
}

// Run serves h on the configured address until ctx is done, then shuts the
// server down gracefully.
func (s *System) Run(ctx context.Context, h http.Handler) error {
	srv := &http.Server{
		Addr:              s.config.Meta.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("serving HTTP")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
