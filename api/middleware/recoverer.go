package middleware

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/attribution-backend/api/responses"
	pkgerrors "github.com/angelmondragon/attribution-backend/pkg/errors"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

// Recoverer converts handler panics into a coded 500 response instead of
// tearing down the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("recovered panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					logg.Error(ctx, "handler panicked", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "handler panicked"))
			}()
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
