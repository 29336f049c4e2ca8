package remote

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

var (
	errInvalidJSON = errors.New("response body is not valid JSON")
	errNoData      = errors.New("response has no data value")
)

// InterpretBody extracts the flag value from a 2xx response body.
//
// The body must be valid JSON. A missing or null "data" field is a no-data
// failure. Any other value is coerced with these rules, kept for
// compatibility with the service's loosely typed responses:
//
//	true            -> true
//	false           -> false
//	number          -> value != 0
//	string          -> value != ""
//	object or array -> true
func InterpretBody(flagKey string, body []byte) (bool, error) {
	if !gjson.ValidBytes(body) {
		return false, domain.NewRemoteError(domain.FailureParse, flagKey, errInvalidJSON)
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return false, domain.NewRemoteError(domain.FailureNoData, flagKey, errNoData)
	}

	return Truthy(data), nil
}

// Truthy applies the coercion rules of InterpretBody to one JSON value.
func Truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.False, gjson.Null:
		return false
	case gjson.Number:
		return v.Float() != 0
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		return true
	default:
		return false
	}
}
