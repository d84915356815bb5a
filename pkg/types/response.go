package types

// ErrorEnvelope is the wire shape the storefront expects on failure:
// a flat message plus optional provider details.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
