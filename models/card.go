package models

// Card payload kinds understood by the outbound channel sender.
const (
	CardKindButtons = "buttons"
	CardKindList    = "list"
	CardKindText    = "text"
)

// Channel rendering limits (WhatsApp-style interactive messages).
const (
	MaxButtons        = 3
	MaxListRows       = 10
	MaxButtonTitleLen = 20
	MaxRowTitleLen    = 24
)

// Button is one tap target on a button card. ID is a machine-parsable
// composite key so the orchestrator can resolve a tap without a lookup.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListRow is one selectable row inside a list section.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows under a header, typically one section per date.
type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

// CardPayload is the single outbound shape handed to the channel sender.
// Exactly one of Buttons / Sections is populated depending on Kind.
type CardPayload struct {
	Kind        string        `json:"kind"`
	Body        string        `json:"body"`
	Footer      string        `json:"footer,omitempty"`
	Buttons     []Button      `json:"buttons,omitempty"`
	ButtonLabel string        `json:"buttonLabel,omitempty"` // list opener label
	Sections    []ListSection `json:"sections,omitempty"`
}
