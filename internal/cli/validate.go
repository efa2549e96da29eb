package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/form"
)

func newValidateCommand(a *app) *cobra.Command {
	var keys []string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the model against the configured rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := a.newSession(ctx)
			if err != nil {
				return err
			}

			err = sess.form.Validate(ctx, keys...)
			verr, invalid := form.AsValidationError(err)
			if err != nil && !invalid {
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), a.cfg.Output, newReport(verr)); err != nil {
				return err
			}
			if invalid {
				return ErrInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&keys, "field", nil, "validate only these field paths")
	return cmd
}
