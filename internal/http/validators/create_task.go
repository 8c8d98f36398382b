package validators

import (
	"strings"

	dto "client-tasks.com/client-tasks/internal/data_models"
	apperrors "client-tasks.com/client-tasks/internal/errors"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if r.ClientID == "" {
		return apperrors.ErrClientIDRequired
	}
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.ErrTitleRequired
	}
	return nil
}
