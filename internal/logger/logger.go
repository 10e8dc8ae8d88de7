package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cargoline/apiserver/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger from cfg.
func Setup(cfg config.LogConfig) {
	setup(cfg, os.Stderr)
}

func setup(cfg config.LogConfig, out io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

// Middleware logs one line per request and attaches a request-scoped
// logger, tagged with the chi request id, to the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		l := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(l.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := l.Info()
			switch {
			case status >= http.StatusInternalServerError:
				event = l.Error()
			case status >= http.StatusBadRequest:
				event = l.Warn()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()

		next.ServeHTTP(ww, r)
	})
}
