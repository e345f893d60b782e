package fedcheck

import (
	"github.com/porthorian/fedcheck/pkg/audit"
	"github.com/porthorian/fedcheck/pkg/federation"
)

type Mode string

const (
	ModeValidateEnvelopeContract Mode = "validate_envelope_contract"
	ModeValidateSAMLConfig       Mode = "validate_saml_config"
	ModeAuditSAMLConfig          Mode = "audit_saml_config"
)

// Modes lists the dispatchable modes in their published order.
func Modes() []Mode {
	return []Mode{
		ModeValidateEnvelopeContract,
		ModeValidateSAMLConfig,
		ModeAuditSAMLConfig,
	}
}

// ContractTag names the response contract reported by the spec surface.
const ContractTag = "xor_envelope"

// Request is the unit of work handed to Dispatch. Payload must be a JSON
// object for every mode.
type Request struct {
	Mode    Mode `json:"mode"`
	Payload any  `json:"payload"`
}

const (
	ResultTypeEnvelopeValidation   = "envelope_validation"
	ResultTypeSAMLConfigValidation = "saml_config_validation"
)

// EnvelopeResult reports a contract check of the envelope shape itself.
type EnvelopeResult struct {
	Type  string `json:"type"`
	Valid bool   `json:"valid"`
}

// ValidationResult reports a schema-valid federation config together with
// its normalized form.
type ValidationResult struct {
	Type       string         `json:"type"`
	Valid      bool           `json:"valid"`
	Normalized map[string]any `json:"normalized"`
}

// AuditResult is a ValidationResult with the advisory findings attached.
// Findings is always present, possibly empty.
type AuditResult struct {
	Type       string          `json:"type"`
	Valid      bool            `json:"valid"`
	Normalized map[string]any  `json:"normalized"`
	Findings   []audit.Finding `json:"findings"`
}

// Auditor runs heuristic checks over a schema-valid config.
type Auditor interface {
	Run(cfg federation.Config) []audit.Finding
}

var _ Auditor = (*audit.Engine)(nil)
