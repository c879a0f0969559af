package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/srg/brewlink/internal/protocol"
)

func newConsoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console [device-address]",
		Short: "Interactive appliance console",
		Long: fmt.Sprintf(`Opens a session and reads commands from a prompt. Any name listed by
'brewctl commands' is accepted, plus:

  status   latest value of every notification seen
  help     list commands
  exit     leave the console

Example:
  brewctl console %s

%s`, exampleDeviceAddress, deviceAddressNote),
		Args: cobra.MaximumNArgs(1),
		RunE: runConsole,
	}
	cmd.Flags().Bool("follow", false, "Print notifications as they arrive")
	return cmd
}

// lineReader is the part of readline the console loop needs
type lineReader interface {
	Readline() (string, error)
}

// appliance is the part of a session the console drives
type appliance interface {
	Command(protocol.Command) error
	Snapshot() map[rune]protocol.Notification
}

func runConsole(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	address, err := e.address(args)
	if err != nil {
		return err
	}
	follow, _ := cmd.Flags().GetBool("follow")

	cmd.SilenceUsage = true

	ctx, cancel := signalContext(cmd)
	defer cancel()

	s, err := e.openSession(ctx, cmd, address, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "brew> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	f := newFormatter(rl.Stdout(), false)
	err = s.Subscribe(func(n protocol.Notification, err error) {
		if follow {
			_ = f.write(rl.Stdout(), event{n: n, err: err})
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(rl.Stdout(), "Connected to %s. Type 'help' for commands.\n", address)
	return consoleLoop(rl, rl.Stdout(), s)
}

func completer() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	}
	for pair := registry.Oldest(); pair != nil; pair = pair.Next() {
		items = append(items, readline.PcItem(pair.Key))
	}
	return readline.NewPrefixCompleter(items...)
}

// consoleLoop executes lines until exit or end of input
func consoleLoop(in lineReader, out io.Writer, a appliance) error {
	for {
		line, err := in.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		switch strings.ToLower(words[0]) {
		case "exit", "quit":
			return nil
		case "help", "?":
			printCommands(out)
		case "status":
			printStatus(out, a.Snapshot())
		default:
			c, err := parseCommand(words)
			if err != nil {
				fmt.Fprintf(out, "ERROR: %s\n", FormatUserError(err))
				continue
			}
			if err := a.Command(c); err != nil {
				fmt.Fprintf(out, "ERROR: %s\n", FormatUserError(err))
				continue
			}
			fmt.Fprintf(out, "sent %s\n", protocol.Encode(c).Content())
		}
	}
}

func printStatus(out io.Writer, snap map[rune]protocol.Notification) {
	if len(snap) == 0 {
		fmt.Fprintln(out, "no notifications yet")
		return
	}

	tags := make([]rune, 0, len(snap))
	for t := range snap {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	for _, t := range tags {
		fmt.Fprintf(out, "%c %s\n", t, describe(snap[t]))
	}
}
