package fedcheck

import (
	"context"

	"github.com/porthorian/fedcheck/pkg/envelope"
	"github.com/porthorian/fedcheck/pkg/federation"
	"github.com/porthorian/fedcheck/pkg/normalize"
	"github.com/porthorian/fedcheck/pkg/schema"
)

// Dispatch runs one request through the mode pipeline. For any input exactly
// one of the envelope branches is populated; an internal fault surfaces as an
// INTERNAL error envelope, never a panic.
func (c *Client) Dispatch(ctx context.Context, req Request) (env envelope.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(nil, "recovered from internal fault", "mode", req.Mode, "panic", r)
			env = envelope.Failure(envelope.CodeInternal, envelope.StatusInternal, "internal fault while handling request", nil)
		}
	}()

	handler, ok := c.handlers[req.Mode]
	if !ok {
		return envelope.Failure(envelope.CodeInvalidArgument, envelope.StatusInvalidArgument, "unsupported mode", []envelope.ErrorItem{{
			Domain:       "global",
			Location:     "mode",
			LocationType: "parameter",
			Message:      "mode " + string(req.Mode) + " is not supported",
			Reason:       "invalidMode",
		}})
	}

	payload, ok := req.Payload.(map[string]any)
	if !ok {
		return envelope.Failure(envelope.CodeInvalidArgument, envelope.StatusInvalidArgument, "payload must be a JSON object", []envelope.ErrorItem{{
			Domain:       "global",
			Location:     "payload",
			LocationType: "parameter",
			Message:      "payload is missing or not an object",
			Reason:       "invalidPayload",
		}})
	}

	c.logger.V(1).Info("dispatching request", "mode", req.Mode)
	return handler(ctx, payload)
}

func (c *Client) validateEnvelopeContract(_ context.Context, payload map[string]any) envelope.Envelope {
	res, err := c.validator.Validate(schema.EnvelopeV1, payload)
	if err != nil {
		panic(err)
	}
	if !res.Valid {
		return envelope.Failure(envelope.CodeInvalidArgument, envelope.StatusInvalidArgument, "payload does not satisfy the envelope contract", res.Errors)
	}
	return envelope.Success(EnvelopeResult{
		Type:  ResultTypeEnvelopeValidation,
		Valid: true,
	})
}

func (c *Client) validateSAMLConfig(_ context.Context, payload map[string]any) envelope.Envelope {
	normalized, res := c.checkSAMLConfig(payload)
	if !res.Valid {
		return failureFrom(res)
	}
	return envelope.Success(ValidationResult{
		Type:       ResultTypeSAMLConfigValidation,
		Valid:      true,
		Normalized: normalized,
	})
}

func (c *Client) auditSAMLConfig(_ context.Context, payload map[string]any) envelope.Envelope {
	normalized, res := c.checkSAMLConfig(payload)
	if !res.Valid {
		return failureFrom(res)
	}

	cfg, err := federation.FromPayload(normalized)
	if err != nil {
		panic(err)
	}

	findings := c.auditor.Run(cfg)
	return envelope.Success(AuditResult{
		Type:       ResultTypeSAMLConfigValidation,
		Valid:      true,
		Normalized: normalized,
		Findings:   findings,
	})
}

// checkSAMLConfig is the shared normalize-then-validate leg of both SAML
// modes. The caller's payload is never mutated.
func (c *Client) checkSAMLConfig(payload map[string]any) (map[string]any, schema.Result) {
	normalized := normalize.Normalize(payload)
	res, err := c.validator.Validate(schema.FederationConfigV1, normalized)
	if err != nil {
		panic(err)
	}
	return normalized, res
}

func failureFrom(res schema.Result) envelope.Envelope {
	return envelope.Failure(envelope.CodeInvalidArgument, envelope.StatusInvalidArgument, "federation config failed structural validation", res.Errors)
}
