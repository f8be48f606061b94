package benchmark

import (
	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/handler"
)

type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return &noopHandler{}
}

func (h *noopHandler) Emit(e *core.Entry) error {
	_ = len(e.Message)
	return nil
}

func (h *noopHandler) Flush() error {
	return nil
}

func (h *noopHandler) Close() error {
	return nil
}
