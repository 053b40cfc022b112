package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// statusReport is the text/JSON payload for the status command.
type statusReport struct {
	EngineStatus    string            `json:"engineStatus"`
	Connectivity    string            `json:"connectivity"`
	Users           []domain.User     `json:"users"`
	Lessons         []domain.Lesson   `json:"lessons"`
	Progresses      []domain.Progress `json:"progresses"`
	PendingJournal  int               `json:"pendingJournal"`
	ShelvedJournal  int               `json:"shelvedJournal"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Print the local store contents and engine lifecycle state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd.Context())
		},
	}
	return cmd
}

func runStatus(opts *RootOptions, ctx context.Context) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	if ctx == nil {
		ctx = context.Background()
	}

	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "list users failed", err)
	}
	lessons, err := a.store.ListLessons(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "list lessons failed", err)
	}
	progresses, err := a.store.ListProgresses(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "list progresses failed", err)
	}
	pending, err := a.store.ListPendingJournal(ctx, domain.MaxRetry)
	if err != nil {
		return WrapExitError(ExitFailure, "list pending journal failed", err)
	}
	all, err := a.store.ListAllJournal(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "list all journal failed", err)
	}

	report := statusReport{
		EngineStatus:   string(a.eng.Status()),
		Connectivity:   string(a.eng.Connectivity()),
		Users:          users,
		Lessons:        lessons,
		Progresses:     progresses,
		PendingJournal: len(pending),
		ShelvedJournal: len(all) - len(pending),
	}
	return a.out.Success(report)
}
