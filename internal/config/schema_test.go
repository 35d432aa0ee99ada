// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphapenguin/connrealm/internal/config"
)

func TestGenerateSchema(t *testing.T) {
	data, err := config.GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, config.SchemaID, schema["$id"])
	assert.Equal(t, "ConnRealm Configuration", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "realm")
	assert.Contains(t, props, "log")
	assert.Contains(t, props, "metrics")
}

func TestValidateSchema(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, config.ValidateSchema([]byte(`
realm:
  driver_name: postgres
  connection_address: postgres://db:5432/app
log:
  format: json
  level: info
`)))
	})

	t.Run("empty data is rejected", func(t *testing.T) {
		assert.Error(t, config.ValidateSchema(nil))
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		assert.Error(t, config.ValidateSchema([]byte("realm: [unclosed")))
	})

	t.Run("bad enum value is rejected", func(t *testing.T) {
		assert.Error(t, config.ValidateSchema([]byte(`
realm:
  resource_name: auth-db
log:
  level: loud
`)))
	})

	t.Run("wrong type is rejected", func(t *testing.T) {
		assert.Error(t, config.ValidateSchema([]byte(`
realm:
  use_local_scope: "yes"
`)))
	})

	t.Run("missing realm section is rejected", func(t *testing.T) {
		assert.Error(t, config.ValidateSchema([]byte(`
log:
  format: json
`)))
	})
}

func TestExampleYAML(t *testing.T) {
	example, err := config.ExampleYAML()
	require.NoError(t, err)
	require.NotEmpty(t, example)

	// The shipped example must validate against our own schema.
	assert.NoError(t, config.ValidateSchema([]byte(example)))
}
