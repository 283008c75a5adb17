package apperr

import (
	"errors"
	"net/http"

	"github.com/huynhanx03/servicequeue/pkg/common/http/response"
	"github.com/huynhanx03/servicequeue/pkg/datastructs/queue"
)

const queueService = "queue"

// FromQueueError maps queue errors to their client-facing AppError.
func FromQueueError(err error) *AppError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, queue.ErrEmptyQueue):
		return MapError(queueService, err, response.CodeQueueEmpty, MsgEmpty, http.StatusNotFound)
	case errors.Is(err, queue.ErrValidation):
		return MapError(queueService, err, response.CodeValidationFailed, MsgRejected, http.StatusUnprocessableEntity)
	case errors.Is(err, queue.ErrIntegrityMismatch):
		return MapError(queueService, err, response.CodeIntegrity, MsgIntegrity, http.StatusConflict)
	case errors.Is(err, queue.ErrUnknownPolicy):
		return MapError(queueService, err, response.CodeBadRequest, MsgUnknownPolicy, http.StatusBadRequest)
	}

	return NewError(queueService, response.CodeInternalServer, MsgProcessFailed, http.StatusInternalServerError, err)
}
