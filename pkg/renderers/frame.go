package renderers

import (
	"time"

	"github.com/samvad-hq/samvad-market-pulse/internal/view"
)

// Frame is one view-model emitted by a dashboard session.
type Frame struct {
	SessionID  string         `json:"session_id"`
	Sequence   uint64         `json:"sequence"`
	Trigger    string         `json:"trigger"`
	RenderedAt time.Time      `json:"rendered_at"`
	View       view.ViewModel `json:"view"`
}

// NewFrame stamps vm with the session id, sequence number and trigger name.
func NewFrame(sessionID string, seq uint64, trigger string, vm view.ViewModel) Frame {
	return Frame{
		SessionID:  sessionID,
		Sequence:   seq,
		Trigger:    trigger,
		RenderedAt: time.Now().UTC(),
		View:       vm,
	}
}
