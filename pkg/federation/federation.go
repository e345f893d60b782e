// Package federation holds the typed view of a single-sign-on federation
// configuration. Values are decoded from already schema-valid payloads; the
// types make no validity claims of their own.
package federation

import (
	"encoding/json"
	"fmt"
)

// Supported SAML name-identifier formats.
const (
	NameIDFormatPersistent   = "urn:oasis:names:tc:SAML:2.0:nameid-format:persistent"
	NameIDFormatTransient    = "urn:oasis:names:tc:SAML:2.0:nameid-format:transient"
	NameIDFormatEmailAddress = "urn:oasis:names:tc:SAML:1.1:nameid-format:emailAddress"
	NameIDFormatUnspecified  = "urn:oasis:names:tc:SAML:1.1:nameid-format:unspecified"
)

func NameIDFormats() []string {
	return []string{
		NameIDFormatPersistent,
		NameIDFormatTransient,
		NameIDFormatEmailAddress,
		NameIDFormatUnspecified,
	}
}

type Config struct {
	ID        string          `json:"id"`
	SAML      Assertion       `json:"saml"`
	Domains   []DomainBinding `json:"domains"`
	CreatedAt string          `json:"created_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// Assertion is the identity-provider-facing block. Exactly one of MetadataURL
// or MetadataXML is set on a schema-valid config.
type Assertion struct {
	ID               string           `json:"id"`
	EntityID         string           `json:"entity_id"`
	MetadataURL      string           `json:"metadata_url,omitempty"`
	MetadataXML      string           `json:"metadata_xml,omitempty"`
	AttributeMapping AttributeMapping `json:"attribute_mapping"`
	NameIDFormat     string           `json:"name_id_format"`
}

type AttributeMapping struct {
	Keys map[string]AttributeRule `json:"keys"`
}

// AttributeRule translates identity-provider attribute names into one
// canonical application attribute. Default is a closed union of null, number,
// string, boolean, or string list, enforced upstream by the schema.
type AttributeRule struct {
	Name       string   `json:"name"`
	Sources    []string `json:"sources"`
	Default    any      `json:"default,omitempty"`
	MultiValue bool     `json:"multi_value,omitempty"`
}

type DomainBinding struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// FromPayload decodes a generic JSON object into a Config.
func FromPayload(payload map[string]any) (Config, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Config{}, fmt.Errorf("federation: encode payload: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("federation: decode payload: %w", err)
	}
	return cfg, nil
}
