package recording

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mager/makampitch/makam"
	"github.com/mager/makampitch/pipeline"
	"github.com/mager/makampitch/pitch"
	"go.uber.org/zap"
)

// CorrectedRunner runs the corrected pitch module.
type CorrectedRunner interface {
	Corrected(ctx context.Context, mbid string) (*pitch.CorrectedPitchOutput, error)
}

// DunyaRunner runs the display pitch module.
type DunyaRunner interface {
	Dunya(ctx context.Context, mbid string) (*pitch.DunyaPitchOutput, error)
}

// CorrectedPitchHandler is an http.Handler
type CorrectedPitchHandler struct {
	log    *zap.SugaredLogger
	runner CorrectedRunner
}

func (*CorrectedPitchHandler) Pattern() string {
	return "/recording/{mbid}/correctedpitch"
}

// Methods is POST only: a run writes artifacts.
func (*CorrectedPitchHandler) Methods() []string {
	return []string{http.MethodPost}
}

// NewCorrectedPitchHandler builds a new CorrectedPitchHandler.
func NewCorrectedPitchHandler(log *zap.SugaredLogger, p *pipeline.Pipeline) *CorrectedPitchHandler {
	return &CorrectedPitchHandler{log: log, runner: p}
}

// ServeHTTP corrects the pitch of a recording and returns every output.
func (h *CorrectedPitchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mbid, ok := recordingID(w, r)
	if !ok {
		return
	}
	h.log.Infow("correcting pitch", "mbid", mbid)

	out, err := h.runner.Corrected(r.Context(), mbid)
	if err != nil {
		writeError(w, h.log, mbid, err)
		return
	}
	writeJSON(w, h.log, out)
}

// DunyaPitchHandler is an http.Handler
type DunyaPitchHandler struct {
	log    *zap.SugaredLogger
	runner DunyaRunner
}

func (*DunyaPitchHandler) Pattern() string {
	return "/recording/{mbid}/dunyapitch"
}

func (*DunyaPitchHandler) Methods() []string {
	return []string{http.MethodPost}
}

// NewDunyaPitchHandler builds a new DunyaPitchHandler.
func NewDunyaPitchHandler(log *zap.SugaredLogger, p *pipeline.Pipeline) *DunyaPitchHandler {
	return &DunyaPitchHandler{log: log, runner: p}
}

// ServeHTTP packs the display pitch of a recording. The packed bytes are
// base64 encoded in the response.
func (h *DunyaPitchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mbid, ok := recordingID(w, r)
	if !ok {
		return
	}
	h.log.Infow("packing pitch", "mbid", mbid)

	out, err := h.runner.Dunya(r.Context(), mbid)
	if err != nil {
		writeError(w, h.log, mbid, err)
		return
	}
	writeJSON(w, h.log, out)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func recordingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	mbid := mux.Vars(r)["mbid"]
	if _, err := uuid.Parse(mbid); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid recording id"})
		return "", false
	}
	return mbid, true
}

func statusFor(err error) int {
	var (
		missing   *makam.MissingInputError
		malformed *makam.MalformedInputError
		upstream  *makam.UpstreamAlgorithmError
	)
	switch {
	case errors.As(err, &missing):
		return http.StatusNotFound
	case errors.As(err, &malformed), errors.Is(err, makam.ErrDegenerateRange):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, l *zap.SugaredLogger, mbid string, err error) {
	status := statusFor(err)
	l.Errorw("recording failed", "mbid", mbid, "status", status, "error", err)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, l *zap.SugaredLogger, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.Errorw("Failed to encode response", "error", err)
	}
}
