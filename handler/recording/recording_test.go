package recording

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/mager/makampitch/logger"
	"github.com/mager/makampitch/makam"
	"github.com/mager/makampitch/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mbid = "feda89e3-a50d-4ff8-87d4-c1e531cc1233"

type fakeRunner struct {
	corrected *pitch.CorrectedPitchOutput
	dunya     *pitch.DunyaPitchOutput
	err       error
	got       string
}

func (f *fakeRunner) Corrected(ctx context.Context, id string) (*pitch.CorrectedPitchOutput, error) {
	f.got = id
	return f.corrected, f.err
}

func (f *fakeRunner) Dunya(ctx context.Context, id string) (*pitch.DunyaPitchOutput, error) {
	f.got = id
	return f.dunya, f.err
}

func request(id string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/recording/"+id+"/dunyapitch", nil)
	return mux.SetURLVars(req, map[string]string{"mbid": id})
}

func TestDunyaPitchHandler(t *testing.T) {
	l, _ := logger.NewTestLogger()
	runner := &fakeRunner{dunya: &pitch.DunyaPitchOutput{
		Pitch:    []byte{0, 0, 0, 255},
		PitchMax: makam.PitchRange{Max: 440, Min: 220},
	}}
	h := &DunyaPitchHandler{log: l, runner: runner}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, request(mbid))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, mbid, runner.got)
	assert.JSONEq(t, `{"pitch": "AAAA/w==", "pitchmax": {"max": 440, "min": 220}}`, rr.Body.String())
}

func TestCorrectedPitchHandler(t *testing.T) {
	l, _ := logger.NewTestLogger()
	runner := &fakeRunner{corrected: &pitch.CorrectedPitchOutput{
		Pitch:      makam.PitchCurve{{Time: 0, Freq: 220}},
		NoteModels: json.RawMessage(`{}`),
		Histogram:  []makam.HistogramRecord{{Bins: []float64{0}, Vals: []float64{1}, KernelWidth: 7.5}},
	}}
	h := &CorrectedPitchHandler{log: l, runner: runner}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, request(mbid))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.JSONEq(t, `[[0, 220]]`, string(resp["pitch"]))
	assert.JSONEq(t, `[{"bins": [0], "vals": [1], "kernel_width": 7.5, "ref_freq": 0, "step_size": 0}]`, string(resp["histogram"]))
}

func TestInvalidRecordingID(t *testing.T) {
	l, _ := logger.NewTestLogger()
	runner := &fakeRunner{}
	h := &CorrectedPitchHandler{log: l, runner: runner}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, request("nope"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, runner.got)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing", &makam.MissingInputError{Artifact: "tonic"}, http.StatusNotFound},
		{"malformed", &makam.MalformedInputError{Key: "notes"}, http.StatusUnprocessableEntity},
		{"degenerate", &makam.DegenerateRangeError{}, http.StatusUnprocessableEntity},
		{"upstream", &makam.UpstreamAlgorithmError{Algorithm: "octave correction", Err: errors.New("x")}, http.StatusBadGateway},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, logs := logger.NewTestLogger()
			h := &DunyaPitchHandler{log: l, runner: &fakeRunner{err: tt.err}}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, request(mbid))

			assert.Equal(t, tt.want, rr.Code)
			assert.Equal(t, 1, logs.FilterMessage("recording failed").Len())
		})
	}
}
