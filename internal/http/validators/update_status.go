package validators

import (
	"client-tasks.com/client-tasks/internal/constants"
	dto "client-tasks.com/client-tasks/internal/data_models"
	apperrors "client-tasks.com/client-tasks/internal/errors"
)

func ValidateUpdateTaskStatusRequest(r *dto.UpdateTaskStatusRequest) error {
	if !constants.TaskStatus(r.Status).IsValid() {
		return apperrors.ErrInvalidStatus
	}
	return nil
}
