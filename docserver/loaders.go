package docserver

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/mager/makampitch/makam"
)

// LoadPitch reads the initial pitch track of a recording.
func (s *Store) LoadPitch(mbid string) (makam.PitchCurve, error) {
	p, err := s.Filename(mbid, InitialPitchSlug, "pitch", InitialPitchVersion)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &makam.MissingInputError{MBID: mbid, Slug: InitialPitchSlug, Artifact: "pitch", Version: InitialPitchVersion, Err: err}
	}
	var curve makam.PitchCurve
	if err := json.Unmarshal(data, &curve); err != nil {
		return nil, &makam.MalformedInputError{Path: p, Err: err}
	}
	return curve, nil
}

// LoadTonic reads the score-informed tonic in Hz.
func (s *Store) LoadTonic(mbid string) (float64, error) {
	return s.loadScoreInformed(mbid, "tonic")
}

// LoadTuning reads the score-informed tuning.
func (s *Store) LoadTuning(mbid string) (float64, error) {
	return s.loadScoreInformed(mbid, "tuning")
}

func (s *Store) loadScoreInformed(mbid, artifact string) (float64, error) {
	var v float64
	if err := s.loadKey(mbid, TonicTuningSlug, artifact, TonicTuningVersion, "scoreInformed", &v); err != nil {
		return 0, err
	}
	return v, nil
}

// LoadNotes reads the score-aligned notes of a recording.
func (s *Store) LoadNotes(mbid string) ([]makam.AlignedNote, error) {
	var notes []makam.AlignedNote
	if err := s.loadKey(mbid, ScoreAlignSlug, "notesalign", ScoreAlignVersion, "notes", &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// loadKey decodes the value under a required top-level key into v.
func (s *Store) loadKey(mbid, slug, artifact, version, key string, v any) error {
	p, err := s.Filename(mbid, slug, artifact, version)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return &makam.MissingInputError{MBID: mbid, Slug: slug, Artifact: artifact, Version: version, Err: err}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return &makam.MalformedInputError{Path: p, Err: err}
	}
	raw, ok := doc[key]
	if !ok {
		return &makam.MalformedInputError{Path: p, Key: key, Err: errors.New("key not found")}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &makam.MalformedInputError{Path: p, Key: key, Err: err}
	}
	return nil
}
