package commands

import (
	"github.com/spf13/cobra"

	"github.com/mazurov/sslvpn-credstore/internal/client/errors"
	"github.com/mazurov/sslvpn-credstore/internal/client/output"
)

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Long: `Remove the stored session token. The username is kept so the next login
can reuse it.

This operation is idempotent - it succeeds even if no token is stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd, opts)
		},
	}
}

func runLogout(cmd *cobra.Command, opts *globalOptions) error {
	ctx := cmd.Context()

	sess, err := openSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.creds.RemoveToken(ctx); err != nil {
		return errors.Wrap(err, "failed to remove token")
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return output.OutputJSON(out, map[string]bool{"logged_out": true}, nil)
	}
	output.PrintSuccess(out, "Logged out successfully")
	return nil
}
