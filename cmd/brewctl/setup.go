package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/brewlink/internal/session"
	"github.com/srg/brewlink/internal/transport"
	"github.com/srg/brewlink/internal/transport/goble"
	"github.com/srg/brewlink/internal/transport/tinyble"
	"github.com/srg/brewlink/pkg/config"
)

// newTransport opens the configured BLE adapter (tests swap it for a replay)
var newTransport = func(cfg *config.Config, address string, logger *logrus.Logger) (transport.Transport, error) {
	switch cfg.Device.Adapter {
	case config.AdapterGoBLE:
		return goble.New(address, logger), nil
	case config.AdapterTinyGo:
		return tinyble.New(address, logger), nil
	}
	return nil, fmt.Errorf("unknown adapter %q", cfg.Device.Adapter)
}

// env is what every appliance-facing command needs
type env struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// loadEnv resolves configuration (file, then flags) and the logger
func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if adapter, _ := cmd.Flags().GetString("adapter"); adapter != "" {
		cfg.Device.Adapter = adapter
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := configureLogger(cmd, cfg, path != "")
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, logger: logger}, nil
}

// address picks the positional address, falling back to device.address
func (e *env) address(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if e.cfg.Device.Address != "" {
		return e.cfg.Device.Address, nil
	}
	return "", &argError{command: "address", msg: "no device address given and device.address is not configured"}
}

// openSession builds the transport for address, wraps it with wrap (when
// non-nil) and opens a session within the connect timeout
func (e *env) openSession(ctx context.Context, cmd *cobra.Command, address string, wrap func(transport.Transport) transport.Transport) (*session.Session, error) {
	tr, err := newTransport(e.cfg, address, e.logger)
	if err != nil {
		return nil, err
	}
	if wrap != nil {
		tr = wrap(tr)
	}

	progress := NewProgressPrinter(cmd.ErrOrStderr(), fmt.Sprintf("Connecting to %s", address), "Connecting")
	progress.Start()
	defer progress.Stop()

	openCtx, cancel := context.WithTimeout(ctx, e.cfg.Device.ConnectTimeout)
	defer cancel()

	s := session.New(tr, e.logger)
	if err := s.Open(openCtx); err != nil {
		return nil, err
	}
	return s, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
