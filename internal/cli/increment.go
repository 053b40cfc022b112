package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewIncrementCommand creates the increment command.
func NewIncrementCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "increment <userId> <lessonId> <incrementBy>",
		Short: "Locally increment progress for a user/lesson pair",
		Long: `Applies updateProgress against the local store: reads the
existing row if any, clamps the new percent to [0, 100], and commits the
progress upsert with a journal entry in one transaction. No network call
is made.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIncrement(rootOpts, args[0], args[1], args[2], cmd.Context())
		},
	}
	return cmd
}

func runIncrement(opts *RootOptions, userID, lessonID, incrementArg string, ctx context.Context) error {
	incrementBy, err := parseIncrement(incrementArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad increment argument", err)
	}

	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.repo.UpdateProgress(ctx, userID, lessonID, incrementBy); err != nil {
		return WrapExitError(ExitFailure, "update progress failed", err)
	}

	p, _, err := a.repo.GetProgressByUser(ctx, userID, lessonID)
	if err != nil {
		return WrapExitError(ExitFailure, "read back progress failed", err)
	}
	return a.out.Success(p)
}
