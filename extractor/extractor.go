// Package extractor talks to the external pitch algorithms: octave error
// correction, note modeling and predominant melody extraction.
//
// Each algorithm is a separate executable. It receives a JSON request on
// stdin and writes a JSON response on stdout.
package extractor

import (
	"context"
	"encoding/json"

	"github.com/mager/makampitch/makam"
)

// Correction is the result of octave error correction.
type Correction struct {
	Pitch makam.PitchCurve `json:"pitch"`
	// SynthPitch is a reference curve synthesized from the notes. It is
	// diagnostic only.
	SynthPitch makam.PitchCurve    `json:"synth_pitch"`
	Notes      []makam.AlignedNote `json:"notes"`
}

// OctaveCorrector removes octave jumps from a pitch track using aligned notes.
type OctaveCorrector interface {
	Correct(ctx context.Context, pitch makam.PitchCurve, notes []makam.AlignedNote) (*Correction, error)
}

// ModelRequest is the input of note modeling.
type ModelRequest struct {
	Pitch       makam.PitchCurve    `json:"pitch"`
	Notes       []makam.AlignedNote `json:"notes"`
	Tonic       float64             `json:"tonic"`
	Tuning      float64             `json:"tuning"`
	KernelWidth float64             `json:"kernel_width"`
}

// Models is the result of note modeling.
type Models struct {
	NoteModels   makam.NoteModels
	Distribution makam.PitchDistribution
	// Tonic is the tonic refined from the note models.
	Tonic float64
}

// NoteModeler builds per-note pitch models and a pitch distribution.
type NoteModeler interface {
	Model(ctx context.Context, req ModelRequest) (*Models, error)
}

// Extraction is everything predominant melody extraction returns.
type Extraction struct {
	Pitch    makam.PitchCurve           `json:"pitch"`
	Matlab   []byte                     `json:"matlab,omitempty"`
	Settings map[string]json.RawMessage `json:"settings,omitempty"`
}

// MelodyExtractor extracts the predominant melody of an audio file.
type MelodyExtractor interface {
	Extract(ctx context.Context, audioPath string, settings Settings) (*Extraction, error)
}
