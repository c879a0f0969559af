package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/recipe"
	"github.com/srg/brewlink/internal/session"
	"github.com/srg/brewlink/internal/transport/replay"
)

func newRecipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe [device-address] <recipe.yaml>",
		Short: "Upload a mash recipe",
		Long: fmt.Sprintf(`Loads a YAML recipe, validates it and writes one frame per mash step.

Recipe file:
  name: Pale Ale
  boil_time: 60
  mash_steps:
    - name: Saccharification
      temperature: 66
      minutes: 60
    - name: Mash out
      temperature: 75.5
      minutes: 10

Examples:
  brewctl recipe %s pale-ale.yaml

  # Print the frames without connecting
  brewctl recipe --dry-run pale-ale.yaml`, exampleDeviceAddress),
		Args: cobra.RangeArgs(1, 2),
		RunE: runRecipe,
	}
	cmd.Flags().Bool("dry-run", false, "Print the frames instead of sending them")
	return cmd
}

func runRecipe(cmd *cobra.Command, args []string) error {
	path := args[len(args)-1]
	r, err := recipe.Load(path)
	if err != nil {
		return err
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		frames, err := rehearse(cmd.Context(), r, e)
		if err != nil {
			return err
		}
		for _, f := range frames {
			fmt.Fprintf(out, "%s\n", f)
		}
		return nil
	}

	address, err := e.address(args[:len(args)-1])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	s, err := e.openSession(ctx, cmd, address, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SendRecipe(r); err != nil {
		return err
	}

	for _, c := range recipe.Translate(r) {
		fmt.Fprintf(out, "%s\n", protocol.Encode(c).Content())
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Sent recipe %q to %s\n", r.Name, address)
	return nil
}

// rehearse sends r through a session over an offline transport and returns
// the frames it would have written
func rehearse(ctx context.Context, r *recipe.Recipe, e *env) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	tr := replay.New(nil, replay.WithLogger(e.logger))
	s := session.New(tr, e.logger)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	defer s.Close()

	if err := s.SendRecipe(r); err != nil {
		return nil, err
	}

	var frames []string
	for _, w := range tr.Written() {
		var f protocol.Frame
		copy(f[:], w)
		frames = append(frames, f.Content())
	}
	return frames, nil
}
