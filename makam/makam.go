package makam

import (
	"encoding/json"
	"fmt"
)

// PitchSample is one analysis frame of a pitch track.
// It is encoded as a JSON array: [time, freq].
type PitchSample struct {
	// Time is the frame timestamp in seconds.
	Time float64
	// Freq is the detected frequency in Hz. Values <= 0 mean no pitch was detected.
	Freq float64
}

// Voiced reports whether a pitch was detected in the frame.
func (s PitchSample) Voiced() bool {
	return s.Freq > 0
}

func (s PitchSample) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{s.Time, s.Freq})
}

// UnmarshalJSON accepts [time, freq, ...]; trailing columns such as
// salience are dropped.
func (s *PitchSample) UnmarshalJSON(data []byte) error {
	var cols []float64
	if err := json.Unmarshal(data, &cols); err != nil {
		return err
	}
	if len(cols) < 2 {
		return fmt.Errorf("pitch sample needs [time, freq], got %d columns", len(cols))
	}
	s.Time, s.Freq = cols[0], cols[1]
	return nil
}

// PitchCurve is an ordered pitch track at a fixed hop size.
type PitchCurve []PitchSample

// Frequencies returns the frequency column. Frame index replaces the
// timestamp since the hop size is fixed.
func (c PitchCurve) Frequencies() []float64 {
	freqs := make([]float64, len(c))
	for i, s := range c {
		freqs[i] = s.Freq
	}
	return freqs
}

// Pitch is a value with its unit, e.g. {"Value": 293.66, "Unit": "Hz"}.
type Pitch struct {
	Value float64 `json:"Value"`
	Unit  string  `json:"Unit"`
}

// AlignedNote is a score note aligned to the audio.
type AlignedNote struct {
	// Interval is the [start, end] of the note in seconds.
	Interval         [2]float64 `json:"Interval"`
	Symbol           string     `json:"Symbol"`
	Index            int        `json:"Index,omitempty"`
	TheoreticalPitch *Pitch     `json:"TheoreticalPitch,omitempty"`
	PerformedPitch   *Pitch     `json:"PerformedPitch,omitempty"`
}

// Duration of the note in seconds.
func (n AlignedNote) Duration() float64 {
	return n.Interval[1] - n.Interval[0]
}

// NoteModels is produced by the note modeling algorithm and stored as is.
type NoteModels = json.RawMessage

// PitchDistribution is a kernel-smoothed pitch histogram over cent bins.
type PitchDistribution struct {
	Bins        []float64
	Vals        []float64
	KernelWidth float64
	RefFreq     float64
	StepSize    float64
}

// Validate checks that every bin has a value.
func (d PitchDistribution) Validate() error {
	if len(d.Bins) != len(d.Vals) {
		return fmt.Errorf("pitch distribution has %d bins and %d vals", len(d.Bins), len(d.Vals))
	}
	return nil
}

// Record shapes the distribution for storage.
func (d PitchDistribution) Record() HistogramRecord {
	return HistogramRecord{
		Bins:        d.Bins,
		Vals:        d.Vals,
		KernelWidth: d.KernelWidth,
		RefFreq:     d.RefFreq,
		StepSize:    d.StepSize,
	}
}

// HistogramRecord is the persisted form of a PitchDistribution.
type HistogramRecord struct {
	Bins        []float64 `json:"bins"`
	Vals        []float64 `json:"vals"`
	KernelWidth float64   `json:"kernel_width"`
	RefFreq     float64   `json:"ref_freq"`
	StepSize    float64   `json:"step_size"`
}

// PitchRange holds the frequencies needed to decode packed pitch.
type PitchRange struct {
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// PackedPitch is a pitch track quantized to one byte per frame.
type PackedPitch struct {
	Pitch    []byte
	PitchMax PitchRange
}

// Decode returns the frequency represented by byte b.
func (r PitchRange) Decode(b byte) float64 {
	return r.Min + float64(b)/255*(r.Max-r.Min)
}

// Step is the frequency width of one quantization step.
func (r PitchRange) Step() float64 {
	return (r.Max - r.Min) / 255
}
