package types

// APIResponse is the uniform outcome shape for every mutating operation, so UI
// layers render success and failure the same way.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
