package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/session"
	"github.com/srg/brewlink/internal/transport/replay"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <capture-file>",
		Short: "Decode a recorded notification capture offline",
		Long: `Replays a capture written by 'brewctl monitor --record' through the same
reassembly and decoding path as a live session and prints every record.

Examples:
  brewctl decode brew.cbor
  brewctl decode brew.cbor --json
  brewctl decode brew.cbor --realtime`,
		Args: cobra.ExactArgs(1),
		RunE: runDecode,
	}
	cmd.Flags().Bool("json", false, "Print JSON lines")
	cmd.Flags().Bool("realtime", false, "Pace output by the recorded timing")
	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	chunks, err := replay.Load(args[0])
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	realtime, _ := cmd.Flags().GetBool("realtime")

	cmd.SilenceUsage = true

	ctx, cancel := signalContext(cmd)
	defer cancel()

	opts := []replay.Option{replay.WithLogger(e.logger)}
	if realtime {
		opts = append(opts, replay.WithRealtime())
	}
	tr := replay.New(chunks, opts...)

	s := session.New(tr, e.logger)
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	f := newFormatter(out, asJSON)

	var records, failures int
	var writeErr error
	err = s.Subscribe(func(n protocol.Notification, err error) {
		records++
		if err != nil {
			failures++
		}
		if writeErr == nil {
			writeErr = f.write(out, event{n: n, err: err})
		}
	})
	if err != nil {
		return err
	}

	if err := tr.Play(ctx); err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d chunks, %d records, %d undecodable\n", len(chunks), records, failures)
	return nil
}
