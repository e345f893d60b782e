// Package audit runs heuristic risk checks over a normalized, schema-valid
// federation config. Findings are advisory: they never invalidate the config
// they describe.
package audit

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/porthorian/fedcheck/pkg/federation"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Stable machine-readable finding codes.
const (
	CodeMetadataURLInvalid    = "metadata_url_invalid"
	CodeMetadataURLNotSecure  = "metadata_url_not_secure"
	CodeEntityIDNonstandard   = "entity_id_nonstandard"
	CodeDomainHasSpaces       = "domain_has_spaces"
	CodeDomainLooksLikeURL    = "domain_looks_like_url"
	CodeDomainMissingTLD      = "domain_missing_tld"
	CodeAttributeMappingEmpty = "attribute_mapping_empty"
	CodeNoEmailAttribute      = "no_email_attribute"
)

type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Location string   `json:"location"`
}

// Engine evaluates the rule table. Rules fire independently, in a fixed
// order, and every applicable rule contributes a finding.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Run audits cfg and returns findings in rule-evaluation order. The returned
// slice is never nil.
func (e *Engine) Run(cfg federation.Config) []Finding {
	findings := []Finding{}

	findings = append(findings, auditMetadataURL(cfg.SAML.MetadataURL)...)
	findings = append(findings, auditEntityID(cfg.SAML.EntityID)...)
	for i, binding := range cfg.Domains {
		findings = append(findings, auditDomain(binding.Domain, fmt.Sprintf("domains[%d].domain", i))...)
	}
	findings = append(findings, auditAttributeMapping(cfg.SAML.AttributeMapping)...)

	return findings
}

func auditMetadataURL(raw string) []Finding {
	if raw == "" {
		return nil
	}
	location := "saml.metadata_url"

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return []Finding{{
			Severity: SeverityHigh,
			Code:     CodeMetadataURLInvalid,
			Message:  "metadata URL is not a parseable absolute URL",
			Location: location,
		}}
	}
	if parsed.Scheme != "https" {
		return []Finding{{
			Severity: SeverityHigh,
			Code:     CodeMetadataURLNotSecure,
			Message:  "metadata URL does not use a secure scheme",
			Location: location,
		}}
	}
	return nil
}

func auditEntityID(entityID string) []Finding {
	if entityID == "" || strings.ContainsAny(entityID, ":/") {
		return nil
	}
	return []Finding{{
		Severity: SeverityMedium,
		Code:     CodeEntityIDNonstandard,
		Message:  "entity identifier has no namespace separator and looks non-standard",
		Location: "saml.entity_id",
	}}
}

func auditDomain(domain, location string) []Finding {
	var findings []Finding

	if strings.IndexFunc(domain, unicode.IsSpace) >= 0 {
		findings = append(findings, Finding{
			Severity: SeverityHigh,
			Code:     CodeDomainHasSpaces,
			Message:  "domain contains whitespace",
			Location: location,
		})
	}
	if strings.Contains(domain, "://") {
		findings = append(findings, Finding{
			Severity: SeverityHigh,
			Code:     CodeDomainLooksLikeURL,
			Message:  "domain looks like a full URL rather than a bare hostname",
			Location: location,
		})
	}
	if !strings.Contains(domain, ".") {
		findings = append(findings, Finding{
			Severity: SeverityMedium,
			Code:     CodeDomainMissingTLD,
			Message:  "domain has no top-level label",
			Location: location,
		})
	}

	return findings
}

func auditAttributeMapping(mapping federation.AttributeMapping) []Finding {
	location := "saml.attribute_mapping.keys"

	// Unreachable once schema validation requires at least one entry, kept so
	// the engine stands on its own.
	if len(mapping.Keys) == 0 {
		return []Finding{{
			Severity: SeverityHigh,
			Code:     CodeAttributeMappingEmpty,
			Message:  "attribute mapping has no entries",
			Location: location,
		}}
	}

	for _, rule := range mapping.Keys {
		if looksLikeEmail(rule.Name) {
			return nil
		}
		for _, source := range rule.Sources {
			if looksLikeEmail(source) {
				return nil
			}
		}
	}

	return []Finding{{
		Severity: SeverityMedium,
		Code:     CodeNoEmailAttribute,
		Message:  "no obvious email attribute mapping",
		Location: location,
	}}
}

func looksLikeEmail(label string) bool {
	return strings.Contains(strings.ToLower(label), "mail")
}
