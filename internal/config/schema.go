package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchemaJSON string

// defaultPrinter formats schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// configSchema is the compiled JSON Schema for .gauntlet.yaml files.
var configSchema *jsonschema.Schema

func init() {
	var schemaDoc any
	if err := json.Unmarshal([]byte(configSchemaJSON), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded config schema: %v", err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add config schema resource: %v", err))
	}

	sch, err := compiler.Compile("config.schema.json")
	if err != nil {
		panic(fmt.Sprintf("failed to compile config schema: %v", err))
	}
	configSchema = sch
}

// validateSchema checks raw YAML bytes against the config schema and
// returns one error summarizing every violation.
func validateSchema(data []byte) error {
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}

	err := configSchema.Validate(convertToJSONCompatible(yamlDoc))
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("schema: %w", err)
	}

	var errs []string
	collectSchemaErrors(ve, &errs)
	return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible normalizes YAML-decoded values for schema
// validation.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
