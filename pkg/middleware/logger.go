package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/go-chi/chi/v5/middleware"
)

// NewStructuredLogger logs one line per request, including the caller once
// the auth middleware further down the chain identified them.
func NewStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			holder := &principalHolder{}
			r = r.WithContext(auth.WithPrincipalHolder(r.Context(), holder))

			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				requestAttrs := slog.Group("request",
					slog.String("id", middleware.GetReqID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				responseAttrs := slog.Group("response",
					slog.Int("status", status),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("latency", time.Since(start)),
				)
				attrs := []any{requestAttrs, responseAttrs}
				if p, ok := holder.get(); ok {
					attrs = append(attrs, slog.String("user_id", p.UserID), slog.String("role", string(p.Role)))
				}

				switch {
				case status >= 500:
					logger.Error("server error", attrs...)
				case status >= 400:
					logger.Warn("request failed", attrs...)
				default:
					logger.Info("request completed", attrs...)
				}
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

type principalHolder struct {
	p  auth.Principal
	ok bool
}

func (h *principalHolder) Set(p auth.Principal) { h.p, h.ok = p, true }

func (h *principalHolder) get() (auth.Principal, bool) { return h.p, h.ok }
