package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/huynhanx03/servicequeue/pkg/common/apperr"
	"github.com/huynhanx03/servicequeue/pkg/datastructs/queue"
)

// Service is the queue surface the HTTP API serves.
type Service interface {
	queue.Queue[string]
	queue.Auditable
	EnqueueSize(item string) (int, error)
	Inspect() ([]string, queue.Checkpoint)
}

// Handler exposes a Service over HTTP.
type Handler struct {
	svc    Service
	logger *zap.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(svc Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Enqueue admits req.Item and reports the size the queue had right after it.
func (h *Handler) Enqueue(_ context.Context, req *EnqueueRequest) (*SizeResponse, error) {
	size, err := h.svc.EnqueueSize(*req.Item)
	if err != nil {
		h.logger.Debug("enqueue rejected", zap.Error(err))
		return nil, apperr.FromQueueError(err)
	}
	return &SizeResponse{Size: size}, nil
}

// Dequeue serves the next item.
func (h *Handler) Dequeue(_ context.Context, _ *Empty) (*ItemResponse, error) {
	item, err := h.svc.Dequeue()
	if err != nil {
		return nil, apperr.FromQueueError(err)
	}
	return &ItemResponse{Item: item}, nil
}

// Peek returns the next item without removing it.
func (h *Handler) Peek(_ context.Context, _ *Empty) (*ItemResponse, error) {
	item, err := h.svc.Peek()
	if err != nil {
		return nil, apperr.FromQueueError(err)
	}
	return &ItemResponse{Item: item}, nil
}

// State returns the items and their hash from one view of the queue.
func (h *Handler) State(_ context.Context, _ *Empty) (*StateResponse, error) {
	items, cp := h.svc.Inspect()
	return &StateResponse{
		Size:  cp.Size,
		Empty: cp.Size == 0,
		Items: items,
		Hash:  cp.Hash,
	}, nil
}

// Checkpoint returns the current hash and size.
func (h *Handler) Checkpoint(_ context.Context, _ *Empty) (queue.Checkpoint, error) {
	return h.svc.Checkpoint(), nil
}

// Verify checks a previously issued checkpoint against the current state.
func (h *Handler) Verify(_ context.Context, req *queue.Checkpoint) (*VerifyResponse, error) {
	if err := h.svc.Verify(*req); err != nil {
		h.logger.Warn("checkpoint mismatch", zap.Error(err))
		return nil, apperr.FromQueueError(err)
	}
	return &VerifyResponse{Valid: true}, nil
}
