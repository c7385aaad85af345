// internal/app/features/projectors/types.go
package projectors

// createRequest is the body of POST /projectors.
type createRequest struct {
	Grade int    `json:"grade"`
	Group string `json:"group"`
	Shift string `json:"shift"`
	State string `json:"state"`
}

// stateRequest is the body of POST /projectors/{id}/state.
type stateRequest struct {
	State string `json:"state"`
}
