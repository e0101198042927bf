package domain

import "encoding/json"

// ErrorInfo is the serialized form of an Error inside an Envelope.
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Envelope is the single response shape of the bridge. Exactly one of
// Result/Error is present, gated by Success, so callers have one code
// path to branch on regardless of what failed where.
type Envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

// OK builds a success envelope around an already-serializable result.
func OK(result any) (Envelope, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Success: true, Result: raw}, nil
}

// Fail builds an error envelope from a taxonomy error.
func Fail(err *Error) Envelope {
	return Envelope{
		Success: false,
		Error:   &ErrorInfo{Type: err.Type, Message: err.Message},
	}
}

// FailWith builds an error envelope from raw tag + message, used by
// the client when passing a server-side error through untouched.
func FailWith(errType, message string) Envelope {
	return Envelope{
		Success: false,
		Error:   &ErrorInfo{Type: errType, Message: message},
	}
}

// DecodeResult unmarshals the result payload into out.
func (e Envelope) DecodeResult(out any) error {
	if e.Result == nil {
		return nil
	}
	return json.Unmarshal(e.Result, out)
}
