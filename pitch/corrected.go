// Package pitch post-processes makam pitch tracks: octave error correction,
// note models and pitch distributions, and compact packing for display.
package pitch

import (
	"context"

	"github.com/mager/makampitch/config"
	"github.com/mager/makampitch/docserver"
	"github.com/mager/makampitch/extractor"
	"github.com/mager/makampitch/makam"
	"go.uber.org/zap"
)

// Store is the artifact store the modules read from and write to.
type Store interface {
	LoadPitch(mbid string) (makam.PitchCurve, error)
	LoadTonic(mbid string) (float64, error)
	LoadTuning(mbid string) (float64, error)
	LoadNotes(mbid string) ([]makam.AlignedNote, error)

	PutAll(mbid, slug, version string, artifacts []docserver.Artifact) ([]string, error)
}

// Output describes one artifact a module produces.
type Output struct {
	Name      string
	Extension string
	MimeType  string
}

const DefaultKernelWidth = 7.5

// CorrectedPitch corrects octave errors in the initial pitch track and
// builds note models and a pitch distribution from it.
type CorrectedPitch struct {
	store       Store
	corrector   extractor.OctaveCorrector
	modeler     extractor.NoteModeler
	kernelWidth float64
	log         *zap.SugaredLogger
}

// CorrectedPitchOutput holds every artifact of a CorrectedPitch run.
type CorrectedPitchOutput struct {
	Pitch      makam.PitchCurve `json:"pitch"`
	NoteModels makam.NoteModels `json:"notemodels"`
	// Histogram is a list so more distributions can be added later.
	Histogram             []makam.HistogramRecord `json:"histogram"`
	CorrectedAlignedNotes []makam.AlignedNote     `json:"corrected_alignednotes"`
}

func NewCorrectedPitch(
	store Store,
	corrector extractor.OctaveCorrector,
	modeler extractor.NoteModeler,
	kernelWidth float64,
	log *zap.SugaredLogger,
) *CorrectedPitch {
	if kernelWidth <= 0 {
		kernelWidth = DefaultKernelWidth
	}
	return &CorrectedPitch{
		store:       store,
		corrector:   corrector,
		modeler:     modeler,
		kernelWidth: kernelWidth,
		log:         log,
	}
}

// ProvideCorrectedPitch wires CorrectedPitch to the command-backed algorithms.
func ProvideCorrectedPitch(cfg config.Config, store *docserver.Store, cmd *extractor.Command, log *zap.SugaredLogger) *CorrectedPitch {
	return NewCorrectedPitch(store, cmd, cmd, cfg.KernelWidth, log)
}

func (*CorrectedPitch) Slug() string    { return "correctedpitchmakam" }
func (*CorrectedPitch) Version() string { return "0.2" }

func (*CorrectedPitch) Outputs() []Output {
	return []Output{
		{Name: "pitch", Extension: "json", MimeType: "application/json"},
		{Name: "notemodels", Extension: "json", MimeType: "application/json"},
		{Name: "histogram", Extension: "json", MimeType: "application/json"},
		{Name: "corrected_alignednotes", Extension: "json", MimeType: "application/json"},
	}
}

// Run produces the corrected pitch, note models and histogram of a
// recording. Nothing is returned unless every step succeeds.
func (c *CorrectedPitch) Run(ctx context.Context, mbid string) (*CorrectedPitchOutput, error) {
	l := c.log.With("mbid", mbid, "module", c.Slug())

	pitch, err := c.store.LoadPitch(mbid)
	if err != nil {
		return nil, err
	}
	tonic, err := c.store.LoadTonic(mbid)
	if err != nil {
		return nil, err
	}
	tuning, err := c.store.LoadTuning(mbid)
	if err != nil {
		return nil, err
	}
	notes, err := c.store.LoadNotes(mbid)
	if err != nil {
		return nil, err
	}

	corrected, err := c.corrector.Correct(ctx, pitch, notes)
	if err != nil {
		return nil, err
	}

	models, err := c.modeler.Model(ctx, extractor.ModelRequest{
		Pitch:       corrected.Pitch,
		Notes:       corrected.Notes,
		Tonic:       tonic,
		Tuning:      tuning,
		KernelWidth: c.kernelWidth,
	})
	if err != nil {
		return nil, err
	}
	if err := models.Distribution.Validate(); err != nil {
		return nil, &makam.UpstreamAlgorithmError{Algorithm: "note modeling", Err: err}
	}
	l.Debugw("note models built", "tonic", tonic, "refinedTonic", models.Tonic)

	return &CorrectedPitchOutput{
		Pitch:                 corrected.Pitch,
		NoteModels:            models.NoteModels,
		Histogram:             []makam.HistogramRecord{models.Distribution.Record()},
		CorrectedAlignedNotes: corrected.Notes,
	}, nil
}

// Save writes every output of a run to the store, or none of them.
func (c *CorrectedPitch) Save(mbid string, out *CorrectedPitchOutput) error {
	values := map[string]any{
		"pitch":                  out.Pitch,
		"notemodels":             out.NoteModels,
		"histogram":              out.Histogram,
		"corrected_alignednotes": out.CorrectedAlignedNotes,
	}
	var artifacts []docserver.Artifact
	for _, o := range c.Outputs() {
		a, err := docserver.JSONArtifact(o.Name, values[o.Name])
		if err != nil {
			return err
		}
		artifacts = append(artifacts, a)
	}
	_, err := c.store.PutAll(mbid, c.Slug(), c.Version(), artifacts)
	return err
}
