package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mazurov/sslvpn-credstore/internal/client/errors"
	"github.com/mazurov/sslvpn-credstore/internal/client/output"
	"github.com/mazurov/sslvpn-credstore/internal/credentials"
)

func newWhoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored user and session token status",
		Long: `Show the stored username and whether a session token is available.

Resolves values using normal precedence:
- Token: --token flag > SSLVPN_JWT_TOKEN env var > stored token
- User: SSLVPN_JWT_USER env var > stored user

When the token is a JWT its subject and expiry are shown. The token is decoded
for display only; its signature is not verified.

Exits with code 5 when no token is available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd, opts)
		},
	}
}

func runWhoami(cmd *cobra.Command, opts *globalOptions) error {
	ctx := cmd.Context()

	sess, err := openSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	username, err := sess.creds.ResolveUser(ctx, "")
	if err != nil {
		return errors.Wrap(err, "failed to resolve user")
	}
	token, err := sess.creds.ResolveToken(ctx, opts.token)
	if err != nil {
		return errors.Wrap(err, "failed to resolve session token")
	}

	authenticated := token != ""
	var info *credentials.TokenInfo
	if authenticated {
		// Opaque tokens are fine; only JWTs get details
		info, _ = credentials.Inspect(token)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		data := map[string]interface{}{
			"user":          username,
			"authenticated": authenticated,
		}
		if info != nil && info.ExpiresAt != nil {
			data["expires_at"] = info.ExpiresAt.Format(time.RFC3339)
		}
		if err := output.OutputJSON(out, data, nil); err != nil {
			return err
		}
	} else {
		displayUser := username
		if displayUser == "" {
			displayUser = "(no user stored)"
		}
		if authenticated {
			output.PrintSuccess(out, fmt.Sprintf("Session token stored for %s", displayUser))
			if info != nil {
				tw := output.NewTableWriter(out)
				if info.Subject != "" {
					tw.WriteRow("  subject:", info.Subject)
				}
				if info.User != "" && info.User != username {
					tw.WriteRow("  token user:", info.User)
				}
				if info.ExpiresAt != nil {
					tw.WriteRow("  expires:", info.ExpiresAt.Format(time.RFC3339))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
		} else {
			output.PrintError(out, fmt.Sprintf("No session token stored (user: %s)", displayUser))
			fmt.Fprintln(out, "Run 'sslvpn-cred login' to store one")
		}
	}

	if !authenticated {
		return errors.Silent(errors.ExitAuthError)
	}
	return nil
}
