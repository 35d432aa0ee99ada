// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the connrealm CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connrealm",
		Short: "connrealm - connection-delegated authentication realm",
		Long: `connrealm authenticates a credential pair by opening a connection to the
backing store as that credential: connection success is the sole proof of
identity. An optional role query over the same authenticated connection
yields the principal's roles.`,
		SilenceUsage: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
