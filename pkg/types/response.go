package types

// SuccessEnvelope wraps every 2xx JSON body except the payment channel
// results, which keep their own {success, order, message} contract.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public half of an errors.Error. RequestID repeats the
// X-Request-ID header so a buyer can quote it to support.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
