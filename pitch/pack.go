package pitch

import (
	"github.com/mager/makampitch/makam"
	"gonum.org/v1/gonum/floats"
)

const height = 255

// Pack quantizes a frequency track to one byte per frame.
//
// The voiced range [min, max] maps linearly onto [0, 255], where min is the
// lowest positive frequency and max the highest frequency overall. Frames
// below min, which includes every unvoiced frame, pack to 0.
func Pack(freqs []float64) (*makam.PackedPitch, error) {
	voiced := make([]float64, 0, len(freqs))
	for _, f := range freqs {
		if f > 0 {
			voiced = append(voiced, f)
		}
	}
	if len(voiced) == 0 {
		return nil, &makam.DegenerateRangeError{Voiced: 0}
	}

	maxPitch := floats.Max(freqs)
	minPitch := floats.Min(voiced)
	if maxPitch <= minPitch {
		return nil, &makam.DegenerateRangeError{Max: maxPitch, Min: minPitch, Voiced: len(voiced)}
	}

	packed := make([]byte, len(freqs))
	for i, f := range freqs {
		if f < minPitch {
			continue
		}
		v := int((f - minPitch) / (maxPitch - minPitch) * height)
		if v > height {
			v = height
		}
		packed[i] = byte(v)
	}

	return &makam.PackedPitch{
		Pitch:    packed,
		PitchMax: makam.PitchRange{Max: maxPitch, Min: minPitch},
	}, nil
}
