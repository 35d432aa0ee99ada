// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/alphapenguin/connrealm/internal/config"
	"github.com/alphapenguin/connrealm/internal/logging"
	"github.com/alphapenguin/connrealm/internal/observability"
	"github.com/alphapenguin/connrealm/internal/realm"
	"github.com/alphapenguin/connrealm/internal/realm/driver"
	"github.com/alphapenguin/connrealm/internal/realm/postgres"
	"github.com/alphapenguin/connrealm/internal/realm/registry"
)

// passwordEnvVar supplies the password when --password is not given, so
// credentials stay out of shell history and process listings.
const passwordEnvVar = "CONNREALM_PASSWORD"

// checkOptions holds CLI-only settings for the check command.
type checkOptions struct {
	username     string
	password     string
	wait         time.Duration
	printExample bool
}

// NewCheckCmd creates the check subcommand: run one authentication attempt
// against the configured realm and report the outcome. With --wait it
// retries until the store accepts the credential or the duration elapses,
// which makes it usable as a deployment smoke test.
func NewCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Authenticate one credential against the configured realm",
		Long: `Check loads the realm configuration, authenticates the supplied
credential by connecting to the backing store as that credential, and prints
the resulting principal and roles.

The password is read from --password or the ` + passwordEnvVar + ` environment
variable. Per-attempt behavior never retries; --wait wraps whole attempts in
an external retry loop for deployment smoke tests.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "username to authenticate")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "password (prefer "+passwordEnvVar+")")
	cmd.Flags().DurationVar(&opts.wait, "wait", 0, "retry failed attempts for up to this duration")
	cmd.Flags().BoolVar(&opts.printExample, "print-example", false, "print an example config file and exit")

	// Config overrides, merged over the config file by key.
	cmd.Flags().String("resource-name", "", "registry name of the connection factory")
	cmd.Flags().String("driver-name", "", "driver name for direct mode")
	cmd.Flags().String("connection-address", "", "connection target for direct mode")
	cmd.Flags().String("role-query", "", "single-parameter role query")
	cmd.Flags().Bool("local-scope", false, "resolve the resource name in the caller-local scope")
	cmd.Flags().String("log-format", "", "log format (json or text)")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	if opts.printExample {
		example, err := config.ExampleYAML()
		if err != nil {
			return err
		}
		cmd.Print(example)
		return nil
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.Setup(logging.Options{
		Service: "connrealm",
		Version: cmd.Root().Version,
		Format:  cfg.Log.Format,
		Level:   level,
	})
	slog.SetDefault(logger)

	if opts.username == "" {
		return oops.Errorf("--username is required")
	}
	password := opts.password
	if password == "" {
		password = os.Getenv(passwordEnvVar)
	}

	rlm, err := buildRealm(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if cfg.Metrics.Addr != "" {
		obs := observability.NewServer(cfg.Metrics.Addr, func() bool { return true })
		if _, err := obs.Start(); err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if stopErr := obs.Stop(stopCtx); stopErr != nil {
				logger.Warn("error stopping observability server", "error", stopErr)
			}
		}()
	}

	principal, err := authenticateWithWait(ctx, rlm, opts)
	if err != nil {
		if realm.IsAuthenticationRejected(err) {
			return oops.Errorf("authentication rejected for %q", opts.username)
		}
		return err
	}

	if len(principal.Roles) == 0 {
		cmd.Printf("authenticated %s (no roles)\n", principal.Username)
	} else {
		cmd.Printf("authenticated %s (roles: %s)\n", principal.Username, strings.Join(principal.Roles, ", "))
	}
	return nil
}

// buildRealm wires the realm's collaborators for CLI use. In factory mode a
// postgres connector for connection_address is bound under resource_name,
// standing in for the registry a host container would populate.
func buildRealm(cfg config.File, logger *slog.Logger) (*realm.Realm, error) {
	postgres.Register()

	realmCfg := cfg.RealmConfig()
	reg := registry.New()

	if realmCfg.Mode() == realm.ModeFactory {
		if realmCfg.ConnectionAddress == "" {
			return nil, oops.Code(realm.CodeNotConfigured).
				Errorf("factory mode on the CLI requires connection_address as the factory target")
		}
		connector, err := postgres.NewConnector(realmCfg.ConnectionAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to build connection factory: %w", err)
		}
		bind := reg.Bind
		if realmCfg.UseLocalScope {
			bind = reg.BindLocal
		}
		if err := bind(realmCfg.ResourceName, connector); err != nil {
			return nil, fmt.Errorf("failed to bind connection factory: %w", err)
		}
	}

	rlm, err := realm.NewRealmWithLogger(realmCfg, reg, driver.Global(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct realm: %w", err)
	}
	return rlm, nil
}

// authenticateWithWait runs a single attempt, or wraps attempts in a
// fibonacci-backoff retry loop when --wait is set. Configuration errors are
// never retried; they fail the same way every time until an operator fixes
// the config.
func authenticateWithWait(ctx context.Context, rlm *realm.Realm, opts *checkOptions) (*realm.Principal, error) {
	if opts.wait <= 0 {
		return rlm.Authenticate(ctx, opts.username, opts.password)
	}

	var principal *realm.Principal
	backoff := retry.WithMaxDuration(opts.wait, retry.NewFibonacci(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := rlm.Authenticate(ctx, opts.username, opts.password)
		if err != nil {
			if realm.IsConfigurationError(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		principal = p
		return nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // realm errors already carry codes
	}
	return principal, nil
}
