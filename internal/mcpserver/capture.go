package mcpserver

import (
	"context"

	"github.com/martinemde/zhi/internal/interaction"
	"github.com/martinemde/zhi/internal/popup"
)

type presentationKey struct{}

// presentation holds what a single call sent to and got back from the popup
type presentation struct {
	req *popup.Request
	raw string
}

func (p *presentation) id() string {
	if p.req == nil {
		return ""
	}
	return p.req.ID
}

// capturingPresenter notes the popup request and raw response of the call
// whose context carries a presentation.
type capturingPresenter struct {
	next interaction.Presenter
}

func (c capturingPresenter) Present(ctx context.Context, req *popup.Request) (string, error) {
	raw, err := c.next.Present(ctx, req)
	if p, ok := ctx.Value(presentationKey{}).(*presentation); ok {
		p.req = req
		p.raw = raw
	}
	return raw, err
}
