package frame

import (
	"github.com/send2-name/delegate2name-api/util/monitor"
)

type StepKind int

const (
	StepStart StepKind = iota
	StepCheckDelegate
	StepNoDelegate
	StepConfirm
	StepPending
	StepTerminal
	StepShare
	StepError
)

func (k StepKind) String() string {
	switch k {
	case StepStart:
		return "start"
	case StepCheckDelegate:
		return "check-delegate"
	case StepNoDelegate:
		return "no-delegate"
	case StepConfirm:
		return "confirm"
	case StepPending:
		return "pending"
	case StepTerminal:
		return "terminal"
	case StepShare:
		return "share"
	default:
		return "error"
	}
}

type ButtonAction string

const (
	ActionPost ButtonAction = "post"
	ActionLink ButtonAction = "link"
	ActionTx   ButtonAction = "tx"
)

// Button of a frame. For post and link buttons Target is the URL to post to
// or open. For tx buttons Target serves the transaction data and PostURL
// receives the wallet callback.
type Button struct {
	Label   string
	Action  ButtonAction
	Target  string
	PostURL string
}

// Step is the content of one rendered frame.
type Step struct {
	Kind        StepKind
	Outcome     monitor.Outcome
	Title       string
	Description string
	ImageURL    string
	// InputPlaceholder enables the frame text input when set.
	InputPlaceholder string
	Buttons          []Button
	// Err is why an error or degraded step was rendered. It is never a
	// client error.
	Err error
}

func (s Step) Button(label string) (Button, bool) {
	for _, b := range s.Buttons {
		if b.Label == label {
			return b, true
		}
	}
	return Button{}, false
}
