// Package fedcheck validates, normalizes, and risk-audits single-sign-on
// federation configurations behind a strict request/response contract.
package fedcheck

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/porthorian/fedcheck/pkg/envelope"
	oerrors "github.com/porthorian/fedcheck/pkg/errors"
	"github.com/porthorian/fedcheck/pkg/schema"
)

type Config struct {
	// Validator may be supplied to reuse an already compiled schema set;
	// left nil, New compiles the bundled documents.
	Validator *schema.Validator
	Auditor   Auditor
	Logger    logr.Logger
	Runtime   RuntimeConfig
}

// Client is the mode dispatcher. It holds only immutable compiled state and
// is safe for concurrent use.
type Client struct {
	validator *schema.Validator
	auditor   Auditor
	logger    logr.Logger
	runtime   RuntimeConfig
	handlers  map[Mode]modeHandler
}

type modeHandler func(ctx context.Context, payload map[string]any) envelope.Envelope

func New(config Config) (*Client, error) {
	resolved, err := config.initialize()
	if err != nil {
		return nil, err
	}

	if resolved.Validator == nil {
		return nil, oerrors.ErrMissingValidator
	}

	c := &Client{
		validator: resolved.Validator,
		auditor:   resolved.Auditor,
		logger:    resolved.Logger,
		runtime:   resolved.Runtime,
	}
	c.handlers = map[Mode]modeHandler{
		ModeValidateEnvelopeContract: c.validateEnvelopeContract,
		ModeValidateSAMLConfig:       c.validateSAMLConfig,
		ModeAuditSAMLConfig:          c.auditSAMLConfig,
	}
	return c, nil
}

// Runtime exposes the resolved runtime configuration, with defaults applied.
func (c *Client) Runtime() RuntimeConfig {
	return c.runtime
}
