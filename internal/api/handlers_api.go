package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/lox/routeweather/internal/compare"
	"github.com/lox/routeweather/internal/models"
)

// APIError is the JSON error envelope.
type APIError struct {
	Code    compare.Kind `json:"code"`
	Message string       `json:"message"`
	Point   models.Point `json:"point,omitempty"`
}

const maxBodyBytes = 1 << 16

// handleAPIWeather accepts the same fields as the form, either form encoded
// or as a JSON object.
func (s *Server) handleAPIWeather(w http.ResponseWriter, r *http.Request) {
	var req compare.Request
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]APIError{
				"error": {Code: "invalid_body", Message: "request body must be a JSON object"},
			})
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		req = compare.Request{
			StartLat: r.PostFormValue("start_lat"),
			StartLon: r.PostFormValue("start_lon"),
			EndLat:   r.PostFormValue("end_lat"),
			EndLon:   r.PostFormValue("end_lon"),
		}
	}

	result, err := s.comparer.Compare(r.Context(), req)
	if err != nil {
		s.logger.Warn("route check failed",
			"kind", compare.KindOf(err),
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
		s.writeAPIError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := APIError{Code: compare.KindOf(err), Message: userMessage(err)}
	var cerr *compare.Error
	if errors.As(err, &cerr) {
		apiErr.Point = cerr.Point
	}
	s.writeJSON(w, statusFor(apiErr.Code), map[string]APIError{"error": apiErr})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
