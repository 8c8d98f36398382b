package dto

import "time"

type CreateTaskRequest struct {
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	ExternalID  *string    `json:"external_id"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
