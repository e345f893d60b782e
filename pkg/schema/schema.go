// Package schema decides structural validity of federation-config payloads
// and of the response envelope itself, against fixed, versioned JSON Schema
// documents compiled once per process.
package schema

import (
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/porthorian/fedcheck/pkg/envelope"
	oerrors "github.com/porthorian/fedcheck/pkg/errors"
)

const errorDomain = "global"

// Result is the outcome of one validation pass. Errors lists every violation
// found, in traversal order, never just the first.
type Result struct {
	Valid  bool
	Errors []envelope.ErrorItem
}

// Validator holds the compiled schema documents. It is immutable after
// construction and safe for concurrent use.
type Validator struct {
	compiled map[string]*jsonschema.Schema
}

// NewValidator compiles the bundled schema documents. A compile failure is a
// programming error in the documents themselves, not caller data.
func NewValidator() (*Validator, error) {
	documents := map[string]string{
		FederationConfigV1: federationConfigV1Document,
		EnvelopeV1:         envelopeV1Document,
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	compiled := make(map[string]*jsonschema.Schema, len(documents))
	for name, document := range documents {
		resource := "inmemory://fedcheck/" + name + ".json"
		if err := compiler.AddResource(resource, strings.NewReader(document)); err != nil {
			return nil, oerrors.Wrap(oerrors.CodeSchemaCompile, "failed to add schema resource "+name, err)
		}
		sch, err := compiler.Compile(resource)
		if err != nil {
			return nil, oerrors.Wrap(oerrors.CodeSchemaCompile, "failed to compile schema "+name, err)
		}
		compiled[name] = sch
	}

	return &Validator{compiled: compiled}, nil
}

// Validate checks value against the named schema. It is total over caller
// data: any JSON-decoded value yields an answer. An unknown schema name is a
// caller bug and returns an error instead of a Result.
func (v *Validator) Validate(name string, value any) (Result, error) {
	if v == nil || v.compiled == nil {
		return Result{}, oerrors.ErrMissingValidator
	}

	sch, ok := v.compiled[name]
	if !ok {
		return Result{}, oerrors.New(oerrors.CodeBadDocument, "unknown schema "+name, nil)
	}

	err := validate(sch, value)
	if err == nil {
		return Result{Valid: true, Errors: []envelope.ErrorItem{}}, nil
	}

	items := []envelope.ErrorItem{}
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		collectItems(ve, &items)
	}
	if len(items) == 0 {
		items = append(items, envelope.ErrorItem{
			Domain:       errorDomain,
			Location:     "(root)",
			LocationType: "field",
			Message:      err.Error(),
			Reason:       "invalid",
		})
	}
	return Result{Valid: false, Errors: items}, nil
}

// validate shields callers from panics raised for non-JSON Go values.
func validate(sch *jsonschema.Schema, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = oerrors.New(oerrors.CodeBadDocument, "value is not a decodable JSON document", nil)
		}
	}()
	return sch.Validate(value)
}

// collectItems flattens the cause tree into leaf violations, preserving
// traversal order.
func collectItems(ve *jsonschema.ValidationError, items *[]envelope.ErrorItem) {
	if len(ve.Causes) == 0 {
		*items = append(*items, envelope.ErrorItem{
			Domain:       errorDomain,
			Location:     pointerToPath(ve.InstanceLocation),
			LocationType: "field",
			Message:      ve.Message,
			Reason:       reasonFor(ve.KeywordLocation),
		})
		return
	}
	for _, cause := range ve.Causes {
		collectItems(cause, items)
	}
}

// pointerToPath rewrites a JSON pointer into the dotted/bracketed location
// format of the error contract: "/domains/0/domain" -> "domains[0].domain".
func pointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "(root)"
	}

	var b strings.Builder
	for _, segment := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if _, err := strconv.Atoi(segment); err == nil {
			b.WriteString("[" + segment + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	return b.String()
}

// reasonFor derives the stable machine reason from the failing keyword, the
// last non-index segment of the keyword location.
func reasonFor(keywordLocation string) string {
	segments := strings.Split(keywordLocation, "/")
	keyword := ""
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			continue
		}
		keyword = s
		break
	}

	switch keyword {
	case "required":
		return "required"
	case "additionalProperties":
		return "unknownProperty"
	case "type":
		return "type"
	case "minLength":
		return "minLength"
	case "minItems":
		return "minItems"
	case "minProperties":
		return "minProperties"
	case "enum":
		return "invalidValue"
	case "oneOf", "not":
		return "exactlyOneOf"
	case "anyOf":
		return "invalidValue"
	case "format":
		return "format"
	default:
		return "invalid"
	}
}
