package model

// Avatar mirrors the avatar props of the dashboard UI kit. The shape belongs to the UI,
// so it is stored and echoed as-is without validation.
type Avatar struct {
	Src  string `json:"src,omitempty"`
	Alt  string `json:"alt,omitempty"`
	Text string `json:"text,omitempty"`
	Icon string `json:"icon,omitempty"`
	Size string `json:"size,omitempty"`
}
