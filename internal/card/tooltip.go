package card

// TooltipState is the state of a card's copy tooltip.
type TooltipState int

// Tooltip states.
const (
	TooltipIdle TooltipState = iota
	TooltipCopied
	TooltipCopyFailed
)

// Tooltip messages.
const (
	MessageIdle       = "Click to copy"
	MessageCopied     = "Copied!"
	MessageCopyFailed = "Failed to copy - did you give us clipboard permission?"
)

// Message returns the text shown for the state.
func (s TooltipState) Message() string {
	switch s {
	case TooltipCopied:
		return MessageCopied
	case TooltipCopyFailed:
		return MessageCopyFailed
	default:
		return MessageIdle
	}
}

func (s TooltipState) String() string {
	switch s {
	case TooltipCopied:
		return "copied"
	case TooltipCopyFailed:
		return "copy-failed"
	default:
		return "idle"
	}
}

// CountState is what a card's click count badge shows.
type CountState struct {
	Known bool
	Value string
}

// UnknownCount is the placeholder state.
var UnknownCount = CountState{}

// KnownCount returns a state showing value.
func KnownCount(value string) CountState {
	return CountState{Known: true, Value: value}
}

// BadgeHidden reports whether the badge is hidden entirely. Zero counts are
// not shown.
func (c CountState) BadgeHidden() bool {
	return c.Known && c.Value == "0"
}
