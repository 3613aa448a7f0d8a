package mcp

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/memo/internal/errors"
)

// maxSafeID is the largest integer a JSON number carries exactly.
const maxSafeID = 1<<53 - 1

// validator is implemented by request types with checks beyond JSON types.
type validator interface {
	validate() error
}

// decode unmarshals MCP request arguments into a typed struct.
// Type mismatches and failed validation come back as INVALID_REQUEST.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	b, err := json.Marshal(args)
	if err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidRequest(describeDecodeError(err))
	}
	if v, ok := any(&result).(validator); ok {
		if err := v.validate(); err != nil {
			return result, err
		}
	}
	return result, nil
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "arguments"
		}
		return fmt.Sprintf("%s must be %s", field, describeKind(typeErr.Type))
	}
	return fmt.Sprintf("invalid arguments: %v", err)
}

func describeKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "a number"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return "an array of strings"
		}
		return "an array"
	default:
		return "an object"
	}
}

// requireString rejects a missing or whitespace-only value.
func requireString(name string, v *string) error {
	if v == nil || strings.TrimSpace(*v) == "" {
		return errors.NewInvalidRequest(name + " is required")
	}
	return nil
}

// requireID converts a JSON number to a memory id. Fractional and
// out-of-range values are rejected; non-positive ids are left to the
// store, which reports them as not found.
func requireID(v *float64) (int64, error) {
	if v == nil {
		return 0, errors.NewInvalidRequest("id is required")
	}
	id := *v
	if math.IsNaN(id) || math.IsInf(id, 0) || id != math.Trunc(id) {
		return 0, errors.NewInvalidRequest("id must be an integer")
	}
	if math.Abs(id) > maxSafeID {
		return 0, errors.NewInvalidRequest("id is out of range")
	}
	return int64(id), nil
}
