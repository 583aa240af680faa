package commands

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mazurov/sslvpn-credstore/internal/client/errors"
	"github.com/mazurov/sslvpn-credstore/internal/client/output"
	"github.com/mazurov/sslvpn-credstore/internal/client/validation"
	"github.com/mazurov/sslvpn-credstore/internal/credentials"
)

func newUserCmd(opts *globalOptions) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Print the stored username",
		Long: `Print the stored username.

Exits with code 3 when no username is stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUser(cmd, opts)
		},
	}

	userCmd.AddCommand(&cobra.Command{
		Use:   "set <username>",
		Short: "Store the username without touching the token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserSet(cmd, args[0], opts)
		},
	})

	return userCmd
}

func runUser(cmd *cobra.Command, opts *globalOptions) error {
	ctx := cmd.Context()

	sess, err := openSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	username, err := sess.creds.User(ctx)
	if err != nil {
		if stderrors.Is(err, credentials.ErrNotFound) {
			return errors.Newf(errors.ExitNotFound, "no user stored")
		}
		return errors.Wrap(err, "failed to read user")
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return output.OutputJSON(out, map[string]string{"user": username}, nil)
	}
	fmt.Fprintln(out, username)
	return nil
}

func runUserSet(cmd *cobra.Command, username string, opts *globalOptions) error {
	if err := validation.ValidateUsername(username); err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, err)
	}

	ctx := cmd.Context()

	sess, err := openSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.creds.SetUser(ctx, username); err != nil {
		return errors.Wrap(err, "failed to save user")
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return output.OutputJSON(out, map[string]string{"user": username}, nil)
	}
	output.PrintSuccess(out, fmt.Sprintf("User set to %s", username))
	return nil
}
