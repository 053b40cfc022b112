package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mohamed352/edu-sync-core/internal/engine"
)

// NewQueueConflictCommand creates the queue-conflict command.
func NewQueueConflictCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue-conflict <progressId>",
		Short: "Queue a synthetic remote conflict and run one sync cycle",
		Long: `Appends progressId to the engine's synthetic-conflict queue
and brings connectivity online, triggering a cycle whose C phase writes
{progressPercent: 100, updatedAt: now+1h} for that id before the D phase
downloads and LWW-accepts it — a demonstration of remote-wins
resolution. The mock remote starts empty on every invocation and uses
the default simulated failure rate, so the injected document carries
userId and lessonId (and is accepted) only when this same run's upload
phase has uploaded that progress row.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueConflict(rootOpts, args[0], cmd.Context())
		},
	}
	return cmd
}

func runQueueConflict(opts *RootOptions, progressID string, ctx context.Context) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	if ctx == nil {
		ctx = context.Background()
	}
	a.eng.QueueConflictSimulation(progressID)
	a.eng.SetConnectivity(ctx, true)

	if a.eng.Status() == engine.StatusError {
		return NewExitError(ExitFailure, "sync cycle ended in error status")
	}
	return a.out.Success(map[string]any{"status": string(a.eng.Status()), "progressId": progressID})
}
