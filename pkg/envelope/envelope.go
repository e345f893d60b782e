// Package envelope defines the response contract shared by every fedcheck
// surface: a response carries exactly one of a result list or an error value.
// The two branches are unexported so the only way to obtain an Envelope is
// through Success, Failure, or FailureText, which keeps the exclusivity
// invariant structural rather than conventional.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	StatusInvalidArgument  = "INVALID_ARGUMENT"
	StatusMethodNotAllowed = "METHOD_NOT_ALLOWED"
	StatusInternal         = "INTERNAL"
)

const (
	CodeInvalidArgument  = http.StatusBadRequest
	CodeMethodNotAllowed = http.StatusMethodNotAllowed
	CodeInternal         = http.StatusInternalServerError
)

// ErrorItem locates one structural violation inside a rejected payload.
type ErrorItem struct {
	Domain       string `json:"domain"`
	Location     string `json:"location"`
	LocationType string `json:"locationType"`
	Message      string `json:"message"`
	Reason       string `json:"reason"`
}

// ErrorDetail is the structured error branch. Errors is never nil once the
// detail passes through Failure; an empty list marshals as [].
type ErrorDetail struct {
	Code    int         `json:"code"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Errors  []ErrorItem `json:"errors"`
}

// errorValue is the string-or-detail variant carried by the error branch.
type errorValue struct {
	text   string
	detail *ErrorDetail
	isText bool
}

// Envelope is the response value handed back to callers. The zero Envelope is
// not valid; construct one with Success, Failure, or FailureText.
type Envelope struct {
	results []any
	err     *errorValue
}

// Success builds the result branch. A call with no arguments yields an empty
// (non-null) result list.
func Success(results ...any) Envelope {
	if results == nil {
		results = []any{}
	}
	return Envelope{results: results}
}

// Failure builds the structured error branch. A nil items slice becomes an
// empty list so the detail is never partially populated.
func Failure(code int, status, message string, items []ErrorItem) Envelope {
	if items == nil {
		items = []ErrorItem{}
	}
	return Envelope{err: &errorValue{detail: &ErrorDetail{
		Code:    code,
		Status:  status,
		Message: message,
		Errors:  items,
	}}}
}

// FailureText builds the plain-string error branch. Producers inside this
// module always use Failure; the text form exists because the contract admits
// it for external producers.
func FailureText(message string) Envelope {
	return Envelope{err: &errorValue{text: message, isText: true}}
}

func (e Envelope) IsError() bool {
	return e.err != nil
}

// Results returns the success branch, or nil on the error branch.
func (e Envelope) Results() []any {
	return e.results
}

// Detail returns the structured error detail when present.
func (e Envelope) Detail() (ErrorDetail, bool) {
	if e.err == nil || e.err.isText || e.err.detail == nil {
		return ErrorDetail{}, false
	}
	return *e.err.detail, true
}

// ErrorText returns the plain-string error when present.
func (e Envelope) ErrorText() (string, bool) {
	if e.err == nil || !e.err.isText {
		return "", false
	}
	return e.err.text, true
}

// HTTPStatus maps the envelope onto a transport status code: 200 for the
// result branch, the detail code for structured errors, and 400 for the
// plain-string form, which carries no code of its own.
func (e Envelope) HTTPStatus() int {
	if e.err == nil {
		return http.StatusOK
	}
	if e.err.isText || e.err.detail == nil {
		return http.StatusBadRequest
	}
	return e.err.detail.Code
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.err != nil {
		if e.err.isText {
			return json.Marshal(map[string]any{"error": e.err.text})
		}
		if e.err.detail == nil {
			return nil, errors.New("envelope: error branch without detail")
		}
		return json.Marshal(map[string]any{"error": e.err.detail})
	}
	results := e.results
	if results == nil {
		results = []any{}
	}
	return json.Marshal(map[string]any{"result": results})
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		Result *[]any          `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	hasResult := raw.Result != nil
	hasError := len(raw.Error) > 0 && string(raw.Error) != "null"
	if hasResult == hasError {
		return fmt.Errorf("envelope: exactly one of result or error is required")
	}

	if hasResult {
		*e = Success(*raw.Result...)
		return nil
	}

	var text string
	if err := json.Unmarshal(raw.Error, &text); err == nil {
		*e = FailureText(text)
		return nil
	}

	var detail ErrorDetail
	if err := json.Unmarshal(raw.Error, &detail); err != nil {
		return fmt.Errorf("envelope: error branch is neither string nor detail: %w", err)
	}
	*e = Failure(detail.Code, detail.Status, detail.Message, detail.Errors)
	return nil
}
