package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/attribution-backend/pkg/errors"
)

// ParseQueryInt reads an integer query parameter, applying the default when
// absent and enforcing the inclusive [min, max] range.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, fmt.Sprintf("%q is not an integer", raw))
	}
	if value < min || value > max {
		return 0, queryError(key, fmt.Sprintf("must be between %d and %d", min, max))
	}
	return value, nil
}

func queryError(key, reason string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameter").
		WithDetails(map[string]any{"param": key, "reason": reason})
}
