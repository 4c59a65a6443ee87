package model

// Action is what the bot expects from the next plain text message of the chat.
type Action int

const (
	DefaultAction Action = iota
	ExpectingHolding
	ExpectingPriceAlert
)

type Session struct {
	Action   Action `json:"action"`
	LiveMode bool   `json:"liveMode"`
}
