package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/brewlink/internal/transport"
	"github.com/srg/brewlink/internal/transport/replay"
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor [device-address]",
		Short: "Print appliance notifications as they arrive",
		Long: fmt.Sprintf(`Subscribes to the appliance's notification stream and prints every decoded
record until Ctrl+C or until the connection drops.

Examples:
  # Human-readable output
  brewctl monitor %s

  # JSON lines, recording raw chunks for offline decoding
  brewctl monitor %s --json --record brew.cbor

%s`, exampleDeviceAddress, exampleDeviceAddress, deviceAddressNote),
		Args: cobra.MaximumNArgs(1),
		RunE: runMonitor,
	}
	cmd.Flags().Bool("json", false, "Print JSON lines (overrides monitor.format)")
	cmd.Flags().String("record", "", "Capture raw notification chunks to this file")
	return cmd
}

func runMonitor(cmd *cobra.Command, args []string) (err error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	address, err := e.address(args)
	if err != nil {
		return err
	}

	asJSON := e.cfg.Monitor.Format == "json"
	if cmd.Flags().Changed("json") {
		asJSON, _ = cmd.Flags().GetBool("json")
	}
	recordPath, _ := cmd.Flags().GetString("record")

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, cancel := signalContext(cmd)
	defer cancel()

	var wrap func(transport.Transport) transport.Transport
	if recordPath != "" {
		w, cerr := replay.Create(recordPath)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := w.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		wrap = func(tr transport.Transport) transport.Transport {
			return replay.NewRecorder(tr, w, e.logger)
		}
	}

	s, err := e.openSession(ctx, cmd, address, wrap)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	f := newFormatter(out, asJSON)
	sk := newSink(uint32(e.cfg.Monitor.Buffer))

	if err := s.Subscribe(sk.push); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Monitoring %s. Press Ctrl+C to stop...\n", address)

	err = sk.run(ctx, s.IsConnected, func(ev event) error {
		return f.write(out, ev)
	})

	if n := sk.Overwritten(); n > 0 {
		e.logger.WithField("overwritten", n).Warn("Output fell behind; oldest notifications were dropped")
	}
	if errors.Is(err, ErrConnectionLost) {
		return fmt.Errorf("%s: %w", address, err)
	}
	return err
}
