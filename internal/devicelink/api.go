package devicelink

// statusResponse is the body of GET /api/esp/status on the intermediary.
type statusResponse struct {
	Connected   bool    `json:"connected"`
	LastMessage *string `json:"last_message"`
	Port        *string `json:"port"`
}

// commandRequest is the body of POST /api/esp/command.
type commandRequest struct {
	Command string `json:"command"`
}

// commandResponse is the intermediary's acknowledgment. Success reflects
// delivery to the intermediary only, not to the physical device.
type commandResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
