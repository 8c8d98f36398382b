package validators

import (
	"net/url"
	"strconv"

	"client-tasks.com/client-tasks/internal/constants"
	apperrors "client-tasks.com/client-tasks/internal/errors"
	"client-tasks.com/client-tasks/internal/services"
)

// ParseListTasksQuery reads client_id, limit, cursor and status. Unlike the
// service, which clamps, an out-of-range limit here is a client error.
func ParseListTasksQuery(q url.Values) (services.ListTasksInput, error) {
	in := services.ListTasksInput{
		ClientID: q.Get("client_id"),
		Status:   q.Get("status"),
		Cursor:   q.Get("cursor"),
		Limit:    services.DefaultPageLimit,
	}

	if in.ClientID == "" {
		return services.ListTasksInput{}, apperrors.ErrClientIDRequired
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > services.MaxPageLimit {
			return services.ListTasksInput{}, apperrors.ErrInvalidLimit
		}
		in.Limit = limit
	}

	if q.Has("status") && !constants.TaskStatus(in.Status).IsValid() {
		return services.ListTasksInput{}, apperrors.ErrInvalidStatus
	}

	return in, nil
}
