package storefront

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	ErrRequestError  = "request_error"
	ErrJsonDecode    = "json_decode_error"
	ErrGraphQLEncode = "graphql_encode_error"
	ErrGraphQLDecode = "graphql_decode_error"
)

// Errors represents the "errors" array in a response from a GraphQL server.
// If returned via error interface, the slice is expected to contain at least 1 element.
//
// Specification: https://facebook.github.io/graphql/#sec-Errors.
type Errors []Error

type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
	Locations  []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations"`
}

// Error implements error interface.
func (e Error) Error() string {
	return fmt.Sprintf("Message: %s, Locations: %+v", e.Message, e.Locations)
}

// Error implements error interface.
func (e Errors) Error() string {
	b := strings.Builder{}
	for _, err := range e {
		b.WriteString(err.Error())
	}
	return b.String()
}

// GetCode returns the error code from the extensions, or an empty string if
// not present.
func (e Error) GetCode() string {
	if e.Extensions == nil {
		return ""
	}
	code, ok := e.Extensions["code"].(string)
	if !ok {
		return ""
	}
	return code
}

// newError creates a new Error with the given code and underlying error.
func newError(code string, err error) Error {
	return Error{
		Message: err.Error(),
		Extensions: map[string]any{
			"code": code,
		},
	}
}

// newSimpleErrors creates an Errors slice with a single error, wrapping the
// given error with the specified code.
func newSimpleErrors(code string, err error) Errors {
	return Errors{newError(code, err)}
}

func (e Error) getInternalExtension() map[string]any {
	if e.Extensions == nil {
		return make(map[string]any)
	}
	if ex, ok := e.Extensions["internal"]; ok {
		return ex.(map[string]any)
	}
	return make(map[string]any)
}

// withDebugInfo adds debug information to the error's internal extensions.
// It reads the body from bodyReader and stores it along with headers under
// the specified infoType key ("request" or "response").
func (e Error) withDebugInfo(
	infoType string,
	headers http.Header,
	bodyReader io.Reader,
) Error {
	internal := e.getInternalExtension()
	bodyBytes, err := io.ReadAll(bodyReader)
	if err != nil {
		internal["error"] = err
	} else {
		internal[infoType] = map[string]any{
			"headers": headers,
			"body":    string(bodyBytes),
		}
	}

	if e.Extensions == nil {
		e.Extensions = make(map[string]any)
	}
	e.Extensions["internal"] = internal
	return e
}

func (e Error) withRequest(req *http.Request, bodyReader io.Reader) Error {
	return e.withDebugInfo("request", req.Header, bodyReader)
}

func (e Error) withResponse(res *http.Response, bodyReader io.Reader) Error {
	return e.withDebugInfo("response", res.Header, bodyReader)
}

// A UserError is a validation or business-rule failure the server reports
// for one mutation attempt, as opposed to a transport-level failure. Field
// is the path of the input field the error implicates.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (e UserError) String() string {
	if len(e.Field) == 0 {
		return e.Message
	}
	return strings.Join(e.Field, ".") + ": " + e.Message
}

// MutationRejectedError is returned when a mutation comes back with a
// non-empty user-error list. The mutation's payload is discarded: either
// the list is non-empty and the payload must not be trusted, or the list
// is empty and the payload is authoritative.
type MutationRejectedError struct {
	// Operation is the mutation field that was rejected, e.g. "checkoutCreate".
	Operation string
	// UserErrors holds the reported errors in server order.
	UserErrors []UserError
}

// Error renders the full error list in a stable form: entries in server
// order, field paths joined with dots.
func (e *MutationRejectedError) Error() string {
	b := strings.Builder{}
	b.WriteString(e.Operation)
	b.WriteString(" rejected: ")
	for i, ue := range e.UserErrors {
		if i != 0 {
			b.WriteString("; ")
		}
		b.WriteString(ue.String())
	}
	return b.String()
}
