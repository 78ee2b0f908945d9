package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/metrics"
	"github.com/hearthside/homeschool-hub/internal/observability"
)

type errorBody struct {
	Error errorInfo `json:"error"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError переводит apperr.Kind в HTTP-статус. Нераспознанные ошибки
// считаются internal и уходят в Sentry.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Msg
	}

	if status >= http.StatusInternalServerError {
		metrics.HandlerErrors.Inc()
		observability.CaptureErr(err)
		s.log.Errorw("handler error", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	writeJSON(w, status, errorBody{Error: errorInfo{Code: string(kind), Message: msg}})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.PermissionDenied:
		return http.StatusForbidden
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.ResourceExhausted:
		return http.StatusTooManyRequests
	case apperr.FailedPrecondition:
		return http.StatusPreconditionFailed
	case apperr.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody читает JSON-тело и прогоняет структуру через validator.
func (s *Server) decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, "invalid request body", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, "request validation failed", err)
	}
	return nil
}
