package fedcheck

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"

	"github.com/porthorian/fedcheck/pkg/audit"
	"github.com/porthorian/fedcheck/pkg/envelope"
	"github.com/porthorian/fedcheck/pkg/schema"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Config{Logger: logr.Discard()})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	return client
}

// samplePayload is the documented SAML example: https metadata URL, one email
// rule, one mixed-case domain.
func samplePayload(t *testing.T) map[string]any {
	t.Helper()
	const raw = `{
		"id": "fed-1",
		"saml": {
			"id": "saml-1",
			"entity_id": "https://idp.example.com/metadata",
			"metadata_url": "https://idp.example.com/metadata.xml",
			"attribute_mapping": {
				"keys": {
					"email": {
						"name": "email",
						"sources": ["urn:oid:0.9.2342.19200300.100.1.3"]
					}
				}
			},
			"name_id_format": "urn:oasis:names:tc:SAML:1.1:nameid-format:emailAddress"
		},
		"domains": [{"id": "dom-1", "domain": "Example.COM"}]
	}`

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return payload
}

func firstResult(t *testing.T, env envelope.Envelope) map[string]any {
	t.Helper()
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var decoded struct {
		Result []map[string]any `json:"result"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if len(decoded.Result) == 0 {
		t.Fatalf("expected a result entry, got %s", data)
	}
	return decoded.Result[0]
}

func TestDispatchValidateSAMLConfig(t *testing.T) {
	client := newTestClient(t)

	env := client.Dispatch(context.Background(), Request{
		Mode:    ModeValidateSAMLConfig,
		Payload: samplePayload(t),
	})
	if env.IsError() {
		t.Fatalf("expected success, got %+v", env)
	}

	result := firstResult(t, env)
	if result["type"] != ResultTypeSAMLConfigValidation {
		t.Fatalf("unexpected result type %v", result["type"])
	}
	if result["valid"] != true {
		t.Fatalf("expected valid=true, got %v", result["valid"])
	}

	normalized := result["normalized"].(map[string]any)
	domain := normalized["domains"].([]any)[0].(map[string]any)["domain"]
	if domain != "example.com" {
		t.Fatalf("expected normalized domain example.com, got %v", domain)
	}
}

func TestDispatchDoesNotMutateCallerPayload(t *testing.T) {
	client := newTestClient(t)

	payload := samplePayload(t)
	snapshot := samplePayload(t)

	client.Dispatch(context.Background(), Request{Mode: ModeAuditSAMLConfig, Payload: payload})

	if diff := cmp.Diff(snapshot, payload); diff != "" {
		t.Fatalf("caller payload mutated (-before +after):\n%s", diff)
	}
}

func TestDispatchAuditIncludesFindings(t *testing.T) {
	client := newTestClient(t)

	payload := samplePayload(t)
	payload["saml"].(map[string]any)["metadata_url"] = "http://idp.example.com/metadata.xml"

	env := client.Dispatch(context.Background(), Request{Mode: ModeAuditSAMLConfig, Payload: payload})
	if env.IsError() {
		t.Fatalf("audit mode must not fail a valid config: %+v", env)
	}

	result := firstResult(t, env)
	if result["valid"] != true {
		t.Fatal("findings must not flip the valid flag")
	}

	findings := result["findings"].([]any)
	found := false
	for _, entry := range findings {
		f := entry.(map[string]any)
		if f["code"] == audit.CodeMetadataURLNotSecure && f["severity"] == string(audit.SeverityHigh) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a high not-secure finding, got %v", findings)
	}
}

func TestDispatchAuditEmptyFindingsListPresent(t *testing.T) {
	client := newTestClient(t)

	env := client.Dispatch(context.Background(), Request{Mode: ModeAuditSAMLConfig, Payload: samplePayload(t)})
	result := firstResult(t, env)

	findings, ok := result["findings"]
	if !ok {
		t.Fatal("audit result must always carry findings")
	}
	if list := findings.([]any); len(list) != 0 {
		t.Fatalf("expected no findings for the clean sample, got %v", list)
	}
}

func TestDispatchValidationFailureListsAllViolations(t *testing.T) {
	client := newTestClient(t)

	payload := samplePayload(t)
	payload["bogus"] = true
	payload["saml"].(map[string]any)["metadata_xml"] = "<EntityDescriptor/>"

	env := client.Dispatch(context.Background(), Request{Mode: ModeValidateSAMLConfig, Payload: payload})
	detail, ok := env.Detail()
	if !ok {
		t.Fatal("expected structured failure")
	}
	if detail.Code != envelope.CodeInvalidArgument || detail.Status != envelope.StatusInvalidArgument {
		t.Fatalf("unexpected taxonomy %d %s", detail.Code, detail.Status)
	}
	if len(detail.Errors) < 2 {
		t.Fatalf("expected every violation collected, got %+v", detail.Errors)
	}
}

func TestDispatchEnvelopeContractMode(t *testing.T) {
	client := newTestClient(t)

	good := map[string]any{"result": []any{map[string]any{"type": "health"}}}
	env := client.Dispatch(context.Background(), Request{Mode: ModeValidateEnvelopeContract, Payload: good})
	if env.IsError() {
		t.Fatalf("expected contract pass, got %+v", env)
	}
	result := firstResult(t, env)
	if result["type"] != ResultTypeEnvelopeValidation || result["valid"] != true {
		t.Fatalf("unexpected result %v", result)
	}

	bad := map[string]any{"result": []any{}, "error": "boom"}
	env = client.Dispatch(context.Background(), Request{Mode: ModeValidateEnvelopeContract, Payload: bad})
	if !env.IsError() {
		t.Fatal("both-branch envelope must be rejected")
	}
}

func TestDispatchBogusMode(t *testing.T) {
	client := newTestClient(t)

	env := client.Dispatch(context.Background(), Request{Mode: "bogus", Payload: map[string]any{}})
	detail, ok := env.Detail()
	if !ok {
		t.Fatal("expected structured failure")
	}
	if detail.Code != envelope.CodeInvalidArgument {
		t.Fatalf("expected 400, got %d", detail.Code)
	}
	if len(detail.Errors) != 1 || detail.Errors[0].Reason != "invalidMode" {
		t.Fatalf("expected a single invalidMode item, got %+v", detail.Errors)
	}
}

func TestDispatchNonObjectPayload(t *testing.T) {
	client := newTestClient(t)

	for _, payload := range []any{nil, "config", []any{}, float64(3)} {
		env := client.Dispatch(context.Background(), Request{Mode: ModeValidateSAMLConfig, Payload: payload})
		detail, ok := env.Detail()
		if !ok {
			t.Fatalf("expected structured failure for %v", payload)
		}
		if detail.Errors[0].Reason != "invalidPayload" {
			t.Fatalf("expected invalidPayload, got %+v", detail.Errors)
		}
	}
}

func TestDispatchRecoversInternalFault(t *testing.T) {
	client := newTestClient(t)
	client.handlers[Mode("explode")] = func(context.Context, map[string]any) envelope.Envelope {
		panic("blown fuse")
	}

	env := client.Dispatch(context.Background(), Request{Mode: "explode", Payload: map[string]any{}})
	detail, ok := env.Detail()
	if !ok {
		t.Fatal("a fault must still yield the error branch")
	}
	if detail.Code != envelope.CodeInternal || detail.Status != envelope.StatusInternal {
		t.Fatalf("expected INTERNAL taxonomy, got %d %s", detail.Code, detail.Status)
	}
}

func TestEveryDispatchSatisfiesXOR(t *testing.T) {
	client := newTestClient(t)
	validator, err := schema.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	requests := []Request{
		{Mode: ModeValidateSAMLConfig, Payload: samplePayload(t)},
		{Mode: ModeAuditSAMLConfig, Payload: samplePayload(t)},
		{Mode: ModeValidateEnvelopeContract, Payload: map[string]any{"error": "boom"}},
		{Mode: "bogus", Payload: map[string]any{}},
		{Mode: ModeValidateSAMLConfig, Payload: "nope"},
		{Mode: ModeValidateSAMLConfig, Payload: map[string]any{}},
	}

	for _, req := range requests {
		env := client.Dispatch(context.Background(), req)

		data, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("marshal envelope: %v", err)
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}

		res, err := validator.Validate(schema.EnvelopeV1, decoded)
		if err != nil {
			t.Fatalf("validate envelope: %v", err)
		}
		if !res.Valid {
			t.Fatalf("response for %+v violates the contract: %+v", req, res.Errors)
		}
	}
}
