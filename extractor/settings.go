package extractor

// Settings configures predominant melody extraction for makam recordings.
type Settings struct {
	// HopSize in samples. Default of PredominantMelody.
	HopSize int `json:"hopSize"`
	// FrameSize in samples. Default of PredominantMelody.
	FrameSize  int `json:"frameSize"`
	SampleRate int `json:"sampleRate"`
	// BinResolution in cents. ~1/3 Holderian comma, recommended for makams.
	BinResolution float64 `json:"binResolution"`
	// MinFrequency and MaxFrequency bound the pitch salience function, in Hz.
	MinFrequency float64 `json:"minFrequency"`
	MaxFrequency float64 `json:"maxFrequency"`
	// MagnitudeThreshold for spectral peaks, in dB.
	MagnitudeThreshold float64 `json:"magnitudeThreshold"`
	// PeakDistributionThreshold for pitch contours. Makams need a higher
	// value than the 0.9 default.
	PeakDistributionThreshold float64 `json:"peakDistributionThreshold"`
	// FilterPitch enables the pitch filter.
	FilterPitch         bool `json:"filterPitch"`
	ConfidenceThreshold int  `json:"confidenceThreshold"`
	// MinChunkSize is the minimum number of samples in a pitch chunk kept
	// by the filter.
	MinChunkSize int `json:"minChunkSize"`
}

// DefaultSettings returns the settings used for display pitch.
func DefaultSettings() Settings {
	return Settings{
		HopSize:                   196,
		FrameSize:                 2048,
		SampleRate:                44100,
		BinResolution:             7.5,
		MinFrequency:              55,
		MaxFrequency:              1760,
		MagnitudeThreshold:        0,
		PeakDistributionThreshold: 1.4,
		FilterPitch:               true,
		ConfidenceThreshold:       36,
		MinChunkSize:              50,
	}
}

// FrameDuration is the time between two frames in seconds.
func (s Settings) FrameDuration() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(s.HopSize) / float64(s.SampleRate)
}
