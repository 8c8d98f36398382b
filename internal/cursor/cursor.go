// Package cursor encodes the keyset position used to resume a task listing.
//
// A token is the base64 (standard alphabet) form of "<RFC3339Nano>|<uuid>",
// naming the last task of the previous page. It is opaque to clients but
// carries no secret.
package cursor

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "client-tasks.com/client-tasks/internal/errors"
)

const separator = "|"

type Position struct {
	CreatedAt time.Time
	ID        string
}

func Encode(p Position) string {
	raw := p.CreatedAt.UTC().Format(time.RFC3339Nano) + separator + p.ID
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func Decode(token string) (Position, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Position{}, fmt.Errorf("%w: not base64", apperrors.ErrInvalidCursor)
	}
	if !utf8.Valid(raw) {
		return Position{}, fmt.Errorf("%w: not utf-8", apperrors.ErrInvalidCursor)
	}

	parts := strings.Split(string(raw), separator)
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("%w: expected exactly one separator", apperrors.ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return Position{}, fmt.Errorf("%w: bad timestamp", apperrors.ErrInvalidCursor)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return Position{}, fmt.Errorf("%w: bad id", apperrors.ErrInvalidCursor)
	}

	return Position{CreatedAt: createdAt.UTC(), ID: id.String()}, nil
}
