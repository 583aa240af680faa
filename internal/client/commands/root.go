package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mazurov/sslvpn-credstore/internal/client/errors"
	"github.com/mazurov/sslvpn-credstore/internal/config"
	"github.com/mazurov/sslvpn-credstore/internal/credentials"
	"github.com/mazurov/sslvpn-credstore/internal/logging"
	"github.com/mazurov/sslvpn-credstore/internal/storage"
)

var version = "0.1.0"

// globalOptions holds flags shared by all commands
type globalOptions struct {
	configFile string
	token      string
	json       bool
	verbose    bool
	yes        bool

	v *viper.Viper
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "sslvpn-cred",
		Short: "SSL VPN session credential cache",
		Long: `sslvpn-cred stores the SSL VPN session token (a JWT issued by the VPN admin
backend) and the username it was issued for, so later commands can reuse them.

The storage medium is selected with --storage or SSLVPN_STORAGE_URI:
  file://<path>              YAML file with 0600 permissions (default)
  keyring://<service>        OS keyring (Keychain, Credential Manager, Secret Service)
  sqlite://<path>            SQLite database
  postgres://<user>@<host>/<db>
  s3://<endpoint>/<bucket>/<prefix>
  memory://                  in-process only, nothing persists`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file (or use SSLVPN_CONFIG_FILE env var)")
	flags.String("storage", "", "Storage URI (or use SSLVPN_STORAGE_URI env var)")
	flags.String("storage-token", "", "Storage authentication token, e.g. ACCESS_KEY:SECRET_KEY for s3 (or use SSLVPN_STORAGE_TOKEN env var)")
	flags.StringVar(&opts.token, "token", "", "Session token (or use SSLVPN_JWT_TOKEN env var)")
	flags.BoolVar(&opts.json, "json", false, "Output in JSON format")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Skip confirmation prompts")

	_ = opts.v.BindPFlag("storage.uri", flags.Lookup("storage"))
	_ = opts.v.BindPFlag("storage.token", flags.Lookup("storage-token"))

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newTokenCmd(opts),
		newUserCmd(opts),
	)

	return rootCmd
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	err := NewRootCmd().Execute()
	return errors.Report(os.Stderr, err)
}

// session is an opened credential store for the duration of one command
type session struct {
	creds  *credentials.Store
	medium storage.Store
	logger *logrus.Logger
}

func (s *session) Close() {
	if err := s.medium.Close(); err != nil {
		s.logger.WithError(err).Warn("Failed to close storage")
	}
}

// openSession loads configuration and opens the configured storage medium
func openSession(ctx context.Context, cmd *cobra.Command, opts *globalOptions) (*session, error) {
	cfg, err := config.Load(opts.v, opts.configFile)
	if err != nil {
		return nil, errors.WithCode(errors.ExitInvalidArguments, err)
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithCode(errors.ExitInvalidArguments, fmt.Errorf("invalid configuration: %w", err))
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

	uri, err := cfg.GetParsedStorageURI()
	if err != nil {
		return nil, errors.WithCode(errors.ExitInvalidArguments, err)
	}

	logger.WithFields(logrus.Fields{
		"storage_uri":   uri.Redacted(),
		"storage_token": cfg.MaskToken(),
	}).Debug("Opening storage")

	medium, err := storage.NewStorage(ctx, uri, cfg.Storage.Token, logger)
	if err != nil {
		logger.WithError(err).WithField("storage_uri", uri.Redacted()).Debug("Failed to initialize storage")
		return nil, errors.Wrap(err, "failed to initialize storage")
	}

	return &session{
		creds:  credentials.New(medium, logger),
		medium: medium,
		logger: logger,
	}, nil
}
