package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "client-tasks.com/client-tasks/internal/data_models"
	apperrors "client-tasks.com/client-tasks/internal/errors"
	"client-tasks.com/client-tasks/internal/http/validators"
	"client-tasks.com/client-tasks/internal/services"
)

type Handler struct {
	taskService *services.TaskService
}

func NewHandler(taskService *services.TaskService) *Handler {
	return &Handler{taskService: taskService}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Message: "Tasks API is running",
	})
}

func (h *Handler) ListClients(c echo.Context) error {
	clients, err := h.taskService.ListClients(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}

	return c.JSON(http.StatusOK, clients)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(apperrors.ErrInvalidJSON)
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return h.fail(err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), services.CreateTaskInput{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		ExternalID:  req.ExternalID,
	})
	if err != nil {
		return h.fail(err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	in, err := validators.ParseListTasksQuery(c.QueryParams())
	if err != nil {
		return h.fail(err)
	}

	page, err := h.taskService.ListTasks(c.Request().Context(), in)
	if err != nil {
		return h.fail(err)
	}

	return c.JSON(http.StatusOK, page)
}

func (h *Handler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTaskStatus(c echo.Context) error {
	var req dto.UpdateTaskStatusRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(apperrors.ErrInvalidJSON)
	}
	if err := validators.ValidateUpdateTaskStatusRequest(&req); err != nil {
		return h.fail(err)
	}

	task, err := h.taskService.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return h.fail(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

func (h *Handler) OverdueCount(c echo.Context) error {
	counts, err := h.taskService.OverdueCounts(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}

	return c.JSON(http.StatusOK, counts)
}

// fail maps domain errors to HTTP errors. Unknown errors become a generic
// 500 and travel as the internal error for the request logger.
func (h *Handler) fail(err error) error {
	status := apperrors.StatusCode(err)
	he := echo.NewHTTPError(status, apperrors.Message(err))
	if status == http.StatusInternalServerError {
		return he.SetInternal(err)
	}
	return he
}
