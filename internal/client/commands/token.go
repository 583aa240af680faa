package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mazurov/sslvpn-credstore/internal/client/errors"
	"github.com/mazurov/sslvpn-credstore/internal/client/output"
	"github.com/mazurov/sslvpn-credstore/internal/credentials"
)

func newTokenCmd(opts *globalOptions) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Print the session token",
		Long: `Print the session token, resolved with precedence:
--token flag > SSLVPN_JWT_TOKEN env var > stored token.

Exits with code 3 when no token is available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, opts)
		},
	}

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "inspect",
		Short: "Decode and print the claims of the session token",
		Long: `Decode the session token as a JWT and print its claims.

The signature is not verified and expiry is not enforced; this is for display only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenInspect(cmd, opts)
		},
	})

	return tokenCmd
}

// resolveToken opens the session and resolves the token, failing with
// ExitNotFound when there is none
func resolveToken(cmd *cobra.Command, opts *globalOptions) (string, error) {
	ctx := cmd.Context()

	sess, err := openSession(ctx, cmd, opts)
	if err != nil {
		return "", err
	}
	defer sess.Close()

	token, err := sess.creds.ResolveToken(ctx, opts.token)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve session token")
	}
	if token == "" {
		return "", errors.Newf(errors.ExitNotFound, "no session token stored. Run 'sslvpn-cred login' to store one")
	}
	return token, nil
}

func runToken(cmd *cobra.Command, opts *globalOptions) error {
	token, err := resolveToken(cmd, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return output.OutputJSON(out, map[string]string{"token": token}, nil)
	}
	fmt.Fprintln(out, token)
	return nil
}

func runTokenInspect(cmd *cobra.Command, opts *globalOptions) error {
	token, err := resolveToken(cmd, opts)
	if err != nil {
		return err
	}

	info, err := credentials.Inspect(token)
	if err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, err)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return output.OutputJSON(out, info, nil)
	}

	names := make([]string, 0, len(info.Claims))
	for name := range info.Claims {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := output.NewTableWriter(out)
	for _, name := range names {
		tw.WriteRow(name+":", formatClaim(name, info))
	}
	return tw.Flush()
}

// formatClaim renders time claims as RFC 3339 and everything else as-is
func formatClaim(name string, info *credentials.TokenInfo) string {
	switch {
	case name == "exp" && info.ExpiresAt != nil:
		return info.ExpiresAt.Format(time.RFC3339)
	case name == "iat" && info.IssuedAt != nil:
		return info.IssuedAt.Format(time.RFC3339)
	default:
		return fmt.Sprint(info.Claims[name])
	}
}
