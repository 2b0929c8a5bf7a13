package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/send2-name/delegate2name-api/frame"
)

const (
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 15 * time.Second
)

type Server struct {
	http    *http.Server
	machine *frame.Machine
	log     *zap.Logger
}

func New(port int, m *frame.Machine, log *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewRouter(m, log),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
		machine: m,
		log:     log,
	}
}

// Run serves until ctx is done, then drains in flight requests and pending
// signature checks.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.http.Addr), zap.Strings("networks", s.machine.Networks()))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.machine.WaitValidations()
	s.log.Info("server closed", zap.Error(err))
	return err
}
