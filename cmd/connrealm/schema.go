// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alphapenguin/connrealm/internal/config"
)

// NewSchemaCmd creates the schema subcommand: write the generated JSON
// Schema for the config file format to disk, for editor integration and
// CI validation.
func NewSchemaCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate the configuration JSON Schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}

			if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0o600); err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}

			cmd.Printf("wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "schemas/connrealm.schema.json", "output path")

	return cmd
}
