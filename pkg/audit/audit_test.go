package audit

import (
	"testing"

	"github.com/porthorian/fedcheck/pkg/federation"
)

func baseConfig() federation.Config {
	return federation.Config{
		ID: "fed-1",
		SAML: federation.Assertion{
			ID:          "saml-1",
			EntityID:    "https://idp.example.com/metadata",
			MetadataURL: "https://idp.example.com/metadata.xml",
			AttributeMapping: federation.AttributeMapping{
				Keys: map[string]federation.AttributeRule{
					"email": {Name: "email", Sources: []string{"urn:oid:0.9.2342.19200300.100.1.3"}},
				},
			},
			NameIDFormat: federation.NameIDFormatEmailAddress,
		},
		Domains: []federation.DomainBinding{
			{ID: "dom-1", Domain: "example.com"},
		},
	}
}

func findingCodes(findings []Finding) []string {
	codes := make([]string, 0, len(findings))
	for _, f := range findings {
		codes = append(codes, f.Code)
	}
	return codes
}

func hasCode(findings []Finding, code string) bool {
	for _, f := range findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

func TestCleanConfigHasNoFindings(t *testing.T) {
	findings := NewEngine().Run(baseConfig())
	if findings == nil {
		t.Fatal("findings must never be nil")
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findingCodes(findings))
	}
}

func TestInsecureMetadataURL(t *testing.T) {
	cfg := baseConfig()
	cfg.SAML.MetadataURL = "http://example.com/metadata.xml"

	findings := NewEngine().Run(cfg)
	if !hasCode(findings, CodeMetadataURLNotSecure) {
		t.Fatalf("expected %s, got %v", CodeMetadataURLNotSecure, findingCodes(findings))
	}
	for _, f := range findings {
		if f.Code == CodeMetadataURLNotSecure && f.Severity != SeverityHigh {
			t.Fatalf("expected high severity, got %s", f.Severity)
		}
	}

	cfg.SAML.MetadataURL = "https://example.com/metadata.xml"
	findings = NewEngine().Run(cfg)
	if hasCode(findings, CodeMetadataURLNotSecure) {
		t.Fatal("https metadata URL must not be flagged")
	}
}

func TestUnparseableMetadataURL(t *testing.T) {
	for _, raw := range []string{"://nope", "not a url", "/relative/only"} {
		cfg := baseConfig()
		cfg.SAML.MetadataURL = raw

		findings := NewEngine().Run(cfg)
		if !hasCode(findings, CodeMetadataURLInvalid) {
			t.Fatalf("expected %s for %q, got %v", CodeMetadataURLInvalid, raw, findingCodes(findings))
		}
		if hasCode(findings, CodeMetadataURLNotSecure) {
			t.Fatalf("invalid URL must not also be flagged insecure: %v", findingCodes(findings))
		}
	}
}

func TestMetadataXMLOnlySkipsURLRules(t *testing.T) {
	cfg := baseConfig()
	cfg.SAML.MetadataURL = ""
	cfg.SAML.MetadataXML = "<EntityDescriptor/>"

	findings := NewEngine().Run(cfg)
	if hasCode(findings, CodeMetadataURLInvalid) || hasCode(findings, CodeMetadataURLNotSecure) {
		t.Fatalf("no URL rules may fire without a metadata URL: %v", findingCodes(findings))
	}
}

func TestNonstandardEntityID(t *testing.T) {
	cfg := baseConfig()
	cfg.SAML.EntityID = "myidp"

	findings := NewEngine().Run(cfg)
	if !hasCode(findings, CodeEntityIDNonstandard) {
		t.Fatalf("expected %s, got %v", CodeEntityIDNonstandard, findingCodes(findings))
	}

	cfg.SAML.EntityID = "urn:myidp:sso"
	findings = NewEngine().Run(cfg)
	if hasCode(findings, CodeEntityIDNonstandard) {
		t.Fatal("entity id with separator must not be flagged")
	}
}

func TestDomainRulesFireIndependently(t *testing.T) {
	cfg := baseConfig()
	cfg.Domains = []federation.DomainBinding{
		{ID: "dom-1", Domain: "bad domain"},
		{ID: "dom-2", Domain: "https://example.com"},
		{ID: "dom-3", Domain: "localhost"},
		{ID: "dom-4", Domain: "example.com"},
	}

	findings := NewEngine().Run(cfg)
	if !hasCode(findings, CodeDomainHasSpaces) {
		t.Fatalf("expected %s, got %v", CodeDomainHasSpaces, findingCodes(findings))
	}
	if !hasCode(findings, CodeDomainLooksLikeURL) {
		t.Fatalf("expected %s, got %v", CodeDomainLooksLikeURL, findingCodes(findings))
	}
	if !hasCode(findings, CodeDomainMissingTLD) {
		t.Fatalf("expected %s, got %v", CodeDomainMissingTLD, findingCodes(findings))
	}

	for _, f := range findings {
		switch f.Code {
		case CodeDomainHasSpaces:
			if f.Location != "domains[0].domain" {
				t.Fatalf("whitespace finding at wrong location %s", f.Location)
			}
		case CodeDomainLooksLikeURL:
			if f.Location != "domains[1].domain" {
				t.Fatalf("url finding at wrong location %s", f.Location)
			}
		case CodeDomainMissingTLD:
			if f.Location != "domains[2].domain" {
				t.Fatalf("tld finding at wrong location %s", f.Location)
			}
		}
	}
}

func TestFindingOrderIsStable(t *testing.T) {
	cfg := baseConfig()
	cfg.SAML.MetadataURL = "http://example.com/metadata.xml"
	cfg.SAML.EntityID = "myidp"
	cfg.Domains = []federation.DomainBinding{{ID: "dom-1", Domain: "localhost"}}

	got := findingCodes(NewEngine().Run(cfg))
	want := []string{CodeMetadataURLNotSecure, CodeEntityIDNonstandard, CodeDomainMissingTLD}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEmptyAttributeMapping(t *testing.T) {
	cfg := baseConfig()
	cfg.SAML.AttributeMapping.Keys = nil

	findings := NewEngine().Run(cfg)
	if !hasCode(findings, CodeAttributeMappingEmpty) {
		t.Fatalf("expected %s, got %v", CodeAttributeMappingEmpty, findingCodes(findings))
	}
	if hasCode(findings, CodeNoEmailAttribute) {
		t.Fatal("empty mapping must not also report a missing email attribute")
	}
}

func TestNoEmailAttribute(t *testing.T) {
	cfg := baseConfig()
	cfg.SAML.AttributeMapping.Keys = map[string]federation.AttributeRule{
		"display": {Name: "display_name", Sources: []string{"urn:oid:2.16.840.1.113730.3.1.241"}},
	}

	findings := NewEngine().Run(cfg)
	if !hasCode(findings, CodeNoEmailAttribute) {
		t.Fatalf("expected %s, got %v", CodeNoEmailAttribute, findingCodes(findings))
	}

	// A source name qualifying as email-like is enough.
	cfg.SAML.AttributeMapping.Keys = map[string]federation.AttributeRule{
		"display": {Name: "display_name", Sources: []string{"mail"}},
	}
	findings = NewEngine().Run(cfg)
	if hasCode(findings, CodeNoEmailAttribute) {
		t.Fatalf("mail source must satisfy the email rule, got %v", findingCodes(findings))
	}
}
