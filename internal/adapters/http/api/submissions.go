package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/okian/appraise/internal/domain/model"
)

// SubmissionsHandler handles answer submissions.
type SubmissionsHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps Dependencies, maxBodyBytes int64) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleSubmit handles POST /submissions. The submission is scored
// asynchronously; 202 carries the receipt, 200 a duplicate acknowledgement.
func (h *SubmissionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	sub, ok := h.decode(op, w, r)
	if !ok {
		return
	}
	receipt, err := h.deps.Submit(r.Context(), sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusAccepted
	if receipt.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, receipt)
}

// HandleScore handles POST /score and returns the report immediately.
func (h *SubmissionsHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	sub, ok := h.decode(op, w, r)
	if !ok {
		return
	}
	report, err := h.deps.Score(r.Context(), sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *SubmissionsHandler) decode(op string, w http.ResponseWriter, r *http.Request) (model.Submission, bool) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", wrapKind(op, ErrUnsupportedType, errors.New(ct)))
			return model.Submission{}, false
		}
	}

	var sub model.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", wrapKind(op, ErrBodyTooLarge, err))
			return model.Submission{}, false
		}
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return model.Submission{}, false
	}
	return sub, true
}
