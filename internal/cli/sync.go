package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mohamed352/edu-sync-core/internal/engine"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Bring connectivity online and run one sync cycle",
		Long: `Transitions the engine's connectivity from its initial
offline state to online, which triggers exactly one performFullSync
cycle: upload the pending journal, apply any queued synthetic conflicts,
then download and LWW-reconcile remote users, lessons, and progress.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd.Context())
		},
	}
	return cmd
}

func runSync(opts *RootOptions, ctx context.Context) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	if ctx == nil {
		ctx = context.Background()
	}
	a.eng.SetConnectivity(ctx, true)

	if a.eng.Status() == engine.StatusError {
		return NewExitError(ExitFailure, "sync cycle ended in error status")
	}
	return a.out.Success(map[string]any{"status": string(a.eng.Status())})
}
