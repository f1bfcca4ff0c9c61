package list

import (
	"errors"
	"fmt"

	"cartlog/pkg/platform/sentinel"
)

// Store-level facts, returned by every Store implementation. The not-found
// and duplicate errors wrap the shared sentinels so callers can match on the
// broad category or the exact condition; the service translates them into
// coded domain errors for transports.
var (
	ErrListNotFound     = fmt.Errorf("list: %w", sentinel.ErrNotFound)
	ErrItemNotFound     = fmt.Errorf("item: %w", sentinel.ErrNotFound)
	ErrDuplicateList    = fmt.Errorf("list name: %w", sentinel.ErrAlreadyExists)
	ErrQuantityOverflow = errors.New("quantity exceeds maximum")
)
