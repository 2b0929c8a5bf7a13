package frame

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultComposeURL  = "https://warpcast.com/~/compose"
	DefaultShareCredit = "Frame made by @tempetechie.eth & @tekr0x.eth"
)

// ShareConfig builds cast composer links.
type ShareConfig struct {
	ComposeURL string
	Credit     string
}

func (s ShareConfig) composeURL() string {
	if s.ComposeURL == "" {
		return DefaultComposeURL
	}
	return s.ComposeURL
}

// Link returns a composer URL prefilled with text and one embedded URL.
func (s ShareConfig) Link(text, embed string) string {
	if s.Credit != "" {
		text = text + " " + s.Credit
	}
	q := url.Values{}
	q.Set("text", text)
	if embed != "" {
		q.Add("embeds[]", embed)
	}
	return s.composeURL() + "?" + q.Encode()
}

// Share renders a previously resolved delegate as a shareable frame. It
// resolves nothing.
func (m *Machine) Share(ctx context.Context, req Request) (Step, error) {
	flow, err := m.flow(req)
	if err != nil {
		return Step{}, err
	}
	m.observe(ctx, req)

	c, err := ParseContinuation(req.Query)
	if err != nil {
		return Step{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	missing := []string{}
	if c.User == "" {
		missing = append(missing, ParamUser)
	}
	if c.Delegate == "" {
		missing = append(missing, ParamDelegate)
	}
	if c.Balance == "" {
		missing = append(missing, ParamBalance)
	}
	if len(missing) > 0 {
		return Step{}, fmt.Errorf("%w: missing %s", ErrMalformedRequest, strings.Join(missing, ", "))
	}

	name := flow.Network.GetDisplayName()
	return Step{
		Kind:        StepShare,
		Title:       fmt.Sprintf("Share My %s Delegate", name),
		Description: fmt.Sprintf("Share your %s Delegate frame with your friends.", name),
		ImageURL: m.imageURL(req, flow, "share", Continuation{
			Timestamp:     m.timestamp(),
			User:          c.User,
			Balance:       c.Balance,
			Delegate:      c.Delegate,
			UserShort:     c.UserShort,
			DelegateShort: c.DelegateShort,
		}),
		Buttons: []Button{
			{Label: "Check My Delegate", Action: ActionPost, Target: m.frameURL(req, flow, "delegate", Continuation{Timestamp: m.timestamp()})},
		},
	}, nil
}
