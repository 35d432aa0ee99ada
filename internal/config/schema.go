// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id stamped on the generated schema.
const SchemaID = "https://alphapenguin.net/schemas/connrealm.schema.json"

var (
	schemaOnce   sync.Once
	schemaCached *jschema.Schema
	schemaErr    error
)

// GenerateSchema generates a JSON Schema from the File struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&File{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "ConnRealm Configuration"
	schema.Description = "Schema for connrealm YAML configuration files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateSchema validates YAML config data against the generated schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("config data is empty")
	}

	var yamlData any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := sch.Validate(convertToJSONTypes(yamlData)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// compiledSchema compiles the generated schema once per process.
func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaBytes, err := GenerateSchema()
		if err != nil {
			schemaErr = err
			return
		}

		var schemaData any
		if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
			schemaErr = fmt.Errorf("failed to parse schema JSON: %w", err)
			return
		}

		c := jschema.NewCompiler()
		if err := c.AddResource("schema.json", schemaData); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		schemaCached, schemaErr = c.Compile("schema.json")
	})
	return schemaCached, schemaErr
}

// convertToJSONTypes converts YAML-parsed data to JSON-compatible types.
func convertToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			result[k] = convertToJSONTypes(item)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = convertToJSONTypes(item)
		}
		return result
	case string, int, int64, float64, bool, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var result any
			if err := json.Unmarshal(b, &result); err == nil {
				return result
			}
		}
		return val
	}
}

// ExampleYAML renders a commented starting-point configuration.
func ExampleYAML() (string, error) {
	example := File{
		Realm: RealmSettings{
			DriverName:        "postgres",
			ConnectionAddress: "postgres://localhost:5432/appdb?sslmode=verify-full",
			RoleQuery:         "select rolname from app_user_roles where username = $1",
		},
		Log: LogSettings{
			Format: "json",
			Level:  "info",
		},
		Metrics: MetricsSettings{
			Addr: "127.0.0.1:9100",
		},
	}

	out, err := yaml.Marshal(example)
	if err != nil {
		return "", fmt.Errorf("failed to render example config: %w", err)
	}
	return string(out), nil
}
