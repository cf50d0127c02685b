package fakes

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Maxwellism/browserfakes/object"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("fakes: invalid config")

const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "window": { "$ref": "#/definitions/service" },
    "document": { "$ref": "#/definitions/service" },
    "navigator": { "$ref": "#/definitions/service" },
    "localStorage": { "type": "boolean" },
    "sessionStorage": { "type": "boolean" }
  },
  "definitions": {
    "service": {
      "oneOf": [
        { "type": "boolean" },
        { "type": "string", "enum": ["service"] },
        { "type": "object" }
      ]
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(configSchema)

// LoadConfig reads a fixture file; see ParseConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML (or JSON) fixture:
//
//	window: true             # passthrough
//	document: service        # the fake itself, unwrapped
//	navigator:               # override
//	  userAgent: TestAgent
//	localStorage: true
//
// Missing keys and false leave the service alone.
func ParseConfig(data []byte) (Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}

	cfg := Config{
		Window:    serviceOption(doc["window"]),
		Document:  serviceOption(doc["document"]),
		Navigator: serviceOption(doc["navigator"]),
	}
	cfg.LocalStorage, _ = doc["localStorage"].(bool)
	cfg.SessionStorage, _ = doc["sessionStorage"].(bool)
	return cfg, nil
}

func serviceOption(v any) Option {
	switch x := v.(type) {
	case bool:
		return Enable(x)
	case string:
		return RealService()
	case map[string]any:
		return Override(object.From(x))
	}
	return Default()
}
