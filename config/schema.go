package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/wippyai/hostbridge/errors"
)

// Schema returns the JSON schema of the configuration file.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Config{})
	schema.Title = "hostbridge configuration"

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, errors.InvalidConfig("marshal schema", err)
	}
	return out, nil
}
