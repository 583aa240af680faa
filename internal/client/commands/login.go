package commands

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mazurov/sslvpn-credstore/internal/client/errors"
	"github.com/mazurov/sslvpn-credstore/internal/client/output"
	"github.com/mazurov/sslvpn-credstore/internal/client/prompts"
	"github.com/mazurov/sslvpn-credstore/internal/client/validation"
	"github.com/mazurov/sslvpn-credstore/internal/credentials"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Store a session token and username",
		Long: `Store the session token issued by the VPN admin backend together with the
username it was issued for.

The username can be given as an argument; otherwise it is prompted for.
The token is taken from --token or prompted for (hidden input on a terminal,
one line from stdin otherwise).

Replacing a different stored username asks for confirmation unless --yes is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, args, opts)
		},
	}
}

func runLogin(cmd *cobra.Command, args []string, opts *globalOptions) error {
	ctx := cmd.Context()

	sess, err := openSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	prompter := prompts.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		username, err = prompter.PromptUsername()
		if err != nil {
			return errors.WithCode(errors.ExitInvalidArguments, err)
		}
	}
	if err := validation.ValidateUsername(username); err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, err)
	}

	token := opts.token
	if token == "" {
		token, err = prompter.PromptToken()
		if err != nil {
			return errors.WithCode(errors.ExitInvalidArguments, err)
		}
	}
	if err := validation.ValidateTokenInput(token); err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, err)
	}

	stored, err := sess.creds.User(ctx)
	switch {
	case err == nil && stored != username && !opts.yes:
		if !prompter.Confirm(fmt.Sprintf("This will replace the stored user '%s' with '%s'", stored, username)) {
			return errors.Newf(errors.ExitGeneralError, "login cancelled")
		}
	case err != nil && !stderrors.Is(err, credentials.ErrNotFound):
		return errors.Wrap(err, "failed to read stored user")
	}

	if err := sess.creds.SetUser(ctx, username); err != nil {
		return errors.Wrap(err, "failed to save user")
	}
	if err := sess.creds.SetToken(ctx, token); err != nil {
		return errors.Wrap(err, "failed to save token")
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return output.OutputJSON(out, map[string]string{"user": username}, nil)
	}
	output.PrintSuccess(out, fmt.Sprintf("Logged in as %s", username))
	return nil
}
