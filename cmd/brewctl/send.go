package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/brewlink/internal/protocol"
)

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <device-address> <command> [args...]",
		Short: "Send one command to the appliance",
		Long: fmt.Sprintf(`Encodes a single command, writes it to the appliance and prints the frame.

Examples:
  brewctl send %s heat on
  brewctl send %s temp 65.5
  brewctl send %s timer 10 30

Run 'brewctl commands' for the full list.

%s`, exampleDeviceAddress, exampleDeviceAddress, exampleDeviceAddress, deviceAddressNote),
		Args: cobra.MinimumNArgs(2),
		RunE: runSend,
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	command, err := parseCommand(args[1:])
	if err != nil {
		return err
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	ctx, cancel := signalContext(cmd)
	defer cancel()

	s, err := e.openSession(ctx, cmd, args[0], nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Command(command); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", protocol.Encode(command).Content())
	return nil
}
