package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"safenetwork-api/pkg/apierror"
	"safenetwork-api/pkg/response"
)

// Recovery is a middleware that recovers from panics.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC: %v\n%s", err, debug.Stack())
				response.Error(w, apierror.Internal(""))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
