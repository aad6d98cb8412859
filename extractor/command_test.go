package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mager/makampitch/logger"
	"github.com/mager/makampitch/makam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(run Runner) *Command {
	l, _ := logger.NewTestLogger()
	return &Command{
		CorrectorBin: "corrector",
		ModelerBin:   "modeler",
		ExtractorBin: "extractor",
		Run:          run,
		log:          l,
	}
}

func TestCorrect(t *testing.T) {
	var gotBin string
	var gotReq map[string]json.RawMessage
	c := newCommand(func(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
		gotBin = bin
		require.NoError(t, json.Unmarshal(stdin, &gotReq))
		return []byte(`{"pitch": [[0, 220]], "synth_pitch": [[0, 221]], "notes": [{"Interval": [0, 1], "Symbol": "A3"}]}`), nil
	})

	res, err := c.Correct(context.Background(), makam.PitchCurve{{Time: 0, Freq: 440}}, []makam.AlignedNote{{Symbol: "A3"}})
	require.NoError(t, err)

	assert.Equal(t, "corrector", gotBin)
	assert.JSONEq(t, `[[0,440]]`, string(gotReq["pitch"]))
	assert.Equal(t, makam.PitchCurve{{Time: 0, Freq: 220}}, res.Pitch)
	assert.Equal(t, makam.PitchCurve{{Time: 0, Freq: 221}}, res.SynthPitch)
	require.Len(t, res.Notes, 1)
	assert.Equal(t, "A3", res.Notes[0].Symbol)
}

func TestModel(t *testing.T) {
	c := newCommand(func(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
		var req ModelRequest
		require.NoError(t, json.Unmarshal(stdin, &req))
		assert.Equal(t, 7.5, req.KernelWidth)
		assert.Equal(t, 293.7, req.Tonic)
		return []byte(`{"notemodels": {"A4": {"mean": 440}}, "distribution": {"bins": [0, 7.5], "vals": [0.4, 0.6], "kernel_width": 7.5, "ref_freq": 293.7, "step_size": 7.5}, "tonic": 294.1}`), nil
	})

	res, err := c.Model(context.Background(), ModelRequest{Tonic: 293.7, Tuning: 7.5, KernelWidth: 7.5})
	require.NoError(t, err)

	assert.JSONEq(t, `{"A4": {"mean": 440}}`, string(res.NoteModels))
	assert.Equal(t, []float64{0, 7.5}, res.Distribution.Bins)
	assert.Equal(t, 7.5, res.Distribution.KernelWidth)
	assert.Equal(t, 294.1, res.Tonic)
}

func TestModelRejectsUnevenDistribution(t *testing.T) {
	c := newCommand(func(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
		return []byte(`{"notemodels": {}, "distribution": {"bins": [0, 7.5], "vals": [1]}}`), nil
	})

	_, err := c.Model(context.Background(), ModelRequest{})

	var upstream *makam.UpstreamAlgorithmError
	assert.True(t, errors.As(err, &upstream))
}

func TestExtract(t *testing.T) {
	var gotArgs []string
	c := newCommand(func(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
		gotArgs = args
		var s Settings
		require.NoError(t, json.Unmarshal(stdin, &s))
		assert.Equal(t, DefaultSettings(), s)
		return []byte(`{"pitch": [[0, 0], [0.0044, 220]], "matlab": "AAEC", "settings": {"hopSize": 196}}`), nil
	})

	res, err := c.Extract(context.Background(), "/audio/rec.mp3", DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{"-i", "/audio/rec.mp3"}, gotArgs)
	assert.Len(t, res.Pitch, 2)
	assert.Equal(t, []byte{0, 1, 2}, res.Matlab)
	assert.Contains(t, res.Settings, "hopSize")
}

func TestUpstreamFailure(t *testing.T) {
	boom := errors.New("exit status 1")
	c := newCommand(func(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
		return nil, boom
	})

	_, err := c.Correct(context.Background(), nil, nil)

	var upstream *makam.UpstreamAlgorithmError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "octave correction", upstream.Algorithm)
	assert.True(t, errors.Is(err, boom))
}

func TestUndecodableOutput(t *testing.T) {
	c := newCommand(func(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
		return []byte("Traceback (most recent call last):"), nil
	})

	_, err := c.Extract(context.Background(), "rec.mp3", DefaultSettings())

	var upstream *makam.UpstreamAlgorithmError
	assert.True(t, errors.As(err, &upstream))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner(context.Background(), "definitely-not-an-algorithm-binary", nil, nil)
	assert.Error(t, err)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 196, s.HopSize)
	assert.Equal(t, 2048, s.FrameSize)
	assert.Equal(t, 44100, s.SampleRate)
	assert.Equal(t, 7.5, s.BinResolution)
	assert.Equal(t, 55.0, s.MinFrequency)
	assert.Equal(t, 1760.0, s.MaxFrequency)
	assert.Equal(t, 0.0, s.MagnitudeThreshold)
	assert.Equal(t, 1.4, s.PeakDistributionThreshold)
	assert.True(t, s.FilterPitch)
	assert.Equal(t, 36, s.ConfidenceThreshold)
	assert.Equal(t, 50, s.MinChunkSize)
	assert.InDelta(t, 0.004444, s.FrameDuration(), 1e-6)
}
