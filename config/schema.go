package config

import "github.com/santhosh-tekuri/jsonschema/v5"

// Schema is the JSON schema both config formats are checked against.
const Schema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "extensions": {
      "type": "array",
      "items": {"type": "string", "pattern": "^\\.[A-Za-z0-9]+$"}
    },
    "exclude": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "workers": {"type": "integer", "minimum": 0},
    "parser": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "max_lookahead": {"type": "integer", "minimum": 0},
        "trace": {"type": "boolean"}
      }
    },
    "lsp": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "transport": {"enum": ["stdio", "tcp", "websocket"]},
        "address": {"type": "string"},
        "show_ambiguity": {"type": "boolean"},
        "show_recovery": {"type": "boolean"}
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("clw-config.schema.json", Schema)
