package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/mager/makampitch/config"
	"github.com/mager/makampitch/makam"
	"go.uber.org/zap"
)

// Runner runs bin with args, feeding stdin, and returns stdout.
type Runner func(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error)

// ExecRunner runs a local executable.
func ExecRunner(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%s not found: %w", bin, err)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", bin, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out, nil
}

// Command implements the algorithm interfaces with external executables.
type Command struct {
	CorrectorBin string
	ModelerBin   string
	ExtractorBin string

	Run Runner
	log *zap.SugaredLogger
}

// ProvideCommand provides the command-backed algorithms.
func ProvideCommand(cfg config.Config, log *zap.SugaredLogger) *Command {
	return &Command{
		CorrectorBin: cfg.CorrectorCmd,
		ModelerBin:   cfg.ModelerCmd,
		ExtractorBin: cfg.ExtractorCmd,
		Run:          ExecRunner,
		log:          log,
	}
}

var Options = ProvideCommand

var (
	_ OctaveCorrector = (*Command)(nil)
	_ NoteModeler     = (*Command)(nil)
	_ MelodyExtractor = (*Command)(nil)
)

func (c *Command) call(ctx context.Context, algorithm, bin string, args []string, req, resp any) error {
	in, err := json.Marshal(req)
	if err != nil {
		return &makam.UpstreamAlgorithmError{Algorithm: algorithm, Err: err}
	}
	c.log.Debugw("running algorithm", "algorithm", algorithm, "bin", bin, "bytes", len(in))
	out, err := c.Run(ctx, bin, args, in)
	if err != nil {
		return &makam.UpstreamAlgorithmError{Algorithm: algorithm, Err: err}
	}
	if err := json.Unmarshal(out, resp); err != nil {
		return &makam.UpstreamAlgorithmError{Algorithm: algorithm, Err: fmt.Errorf("decoding output: %w", err)}
	}
	return nil
}

type correctRequest struct {
	Pitch makam.PitchCurve    `json:"pitch"`
	Notes []makam.AlignedNote `json:"notes"`
}

// Correct runs octave error correction.
func (c *Command) Correct(ctx context.Context, pitch makam.PitchCurve, notes []makam.AlignedNote) (*Correction, error) {
	var res Correction
	err := c.call(ctx, "octave correction", c.CorrectorBin, nil, correctRequest{Pitch: pitch, Notes: notes}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

type modelResponse struct {
	NoteModels   json.RawMessage       `json:"notemodels"`
	Distribution makam.HistogramRecord `json:"distribution"`
	Tonic        float64               `json:"tonic"`
}

// Model runs note modeling.
func (c *Command) Model(ctx context.Context, req ModelRequest) (*Models, error) {
	var res modelResponse
	if err := c.call(ctx, "note modeling", c.ModelerBin, nil, req, &res); err != nil {
		return nil, err
	}
	d := makam.PitchDistribution{
		Bins:        res.Distribution.Bins,
		Vals:        res.Distribution.Vals,
		KernelWidth: res.Distribution.KernelWidth,
		RefFreq:     res.Distribution.RefFreq,
		StepSize:    res.Distribution.StepSize,
	}
	if err := d.Validate(); err != nil {
		return nil, &makam.UpstreamAlgorithmError{Algorithm: "note modeling", Err: err}
	}
	return &Models{NoteModels: res.NoteModels, Distribution: d, Tonic: res.Tonic}, nil
}

// Extract runs predominant melody extraction on audioPath.
func (c *Command) Extract(ctx context.Context, audioPath string, settings Settings) (*Extraction, error) {
	var res Extraction
	err := c.call(ctx, "melody extraction", c.ExtractorBin, []string{"-i", audioPath}, settings, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
