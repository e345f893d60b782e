package schema

// Names of the compiled schema documents.
const (
	FederationConfigV1 = "federation-config/v1"
	EnvelopeV1         = "envelope/v1"
)

const federationConfigV1Document = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://fedcheck.dev/schemas/federation-config/v1.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "saml", "domains"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "saml": {"$ref": "#/$defs/assertion"},
    "domains": {
      "type": "array",
      "items": {"$ref": "#/$defs/domainBinding"}
    },
    "created_at": {"type": "string", "format": "date-time"},
    "updated_at": {"type": "string", "format": "date-time"}
  },
  "$defs": {
    "assertion": {
      "type": "object",
      "additionalProperties": false,
      "required": ["id", "entity_id", "attribute_mapping", "name_id_format"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "entity_id": {"type": "string", "minLength": 1},
        "metadata_url": {"type": "string", "minLength": 1},
        "metadata_xml": {"type": "string", "minLength": 1},
        "attribute_mapping": {"$ref": "#/$defs/attributeMapping"},
        "name_id_format": {
          "enum": [
            "urn:oasis:names:tc:SAML:2.0:nameid-format:persistent",
            "urn:oasis:names:tc:SAML:2.0:nameid-format:transient",
            "urn:oasis:names:tc:SAML:1.1:nameid-format:emailAddress",
            "urn:oasis:names:tc:SAML:1.1:nameid-format:unspecified"
          ]
        }
      },
      "oneOf": [
        {"required": ["metadata_url"], "not": {"required": ["metadata_xml"]}},
        {"required": ["metadata_xml"], "not": {"required": ["metadata_url"]}}
      ]
    },
    "attributeMapping": {
      "type": "object",
      "additionalProperties": false,
      "required": ["keys"],
      "properties": {
        "keys": {
          "type": "object",
          "minProperties": 1,
          "additionalProperties": {"$ref": "#/$defs/attributeRule"}
        }
      }
    },
    "attributeRule": {
      "type": "object",
      "additionalProperties": false,
      "required": ["name", "sources"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "sources": {
          "type": "array",
          "minItems": 1,
          "items": {"type": "string", "minLength": 1}
        },
        "default": {
          "type": ["null", "number", "string", "boolean", "array"],
          "items": {"type": "string"}
        },
        "multi_value": {"type": "boolean"}
      }
    },
    "domainBinding": {
      "type": "object",
      "additionalProperties": false,
      "required": ["id", "domain"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "domain": {"type": "string", "minLength": 1},
        "created_at": {"type": "string", "format": "date-time"},
        "updated_at": {"type": "string", "format": "date-time"}
      }
    }
  }
}`

const envelopeV1Document = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://fedcheck.dev/schemas/envelope/v1.json",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "result": {
      "type": "array",
      "items": {"type": "object"}
    },
    "error": {
      "anyOf": [
        {"type": "string", "minLength": 1},
        {"$ref": "#/$defs/errorDetail"}
      ]
    }
  },
  "oneOf": [
    {"required": ["result"], "not": {"required": ["error"]}},
    {"required": ["error"], "not": {"required": ["result"]}}
  ],
  "$defs": {
    "errorDetail": {
      "type": "object",
      "additionalProperties": false,
      "required": ["code", "status", "message", "errors"],
      "properties": {
        "code": {"type": "integer"},
        "status": {"type": "string", "minLength": 1},
        "message": {"type": "string"},
        "errors": {
          "type": "array",
          "items": {"$ref": "#/$defs/errorItem"}
        }
      }
    },
    "errorItem": {
      "type": "object",
      "additionalProperties": false,
      "required": ["domain", "location", "locationType", "message", "reason"],
      "properties": {
        "domain": {"type": "string"},
        "location": {"type": "string"},
        "locationType": {"type": "string"},
        "message": {"type": "string"},
        "reason": {"type": "string"}
      }
    }
  }
}`
