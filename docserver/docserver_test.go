package docserver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mager/makampitch/logger"
	"github.com/mager/makampitch/makam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mbid = "feda89e3-a50d-4ff8-87d4-c1e531cc1233"

func newStore(t *testing.T) *Store {
	l, _ := logger.NewTestLogger()
	return New(t.TempDir(), l)
}

func TestPathLayout(t *testing.T) {
	s := New("/data", nil)
	got := s.Path(mbid, "scorealign", "notesalign", "0.1", "json")
	want := filepath.Join("/data", "scorealign", "0.1", "fe", mbid, mbid+"-scorealign-0.1-notesalign.json")
	assert.Equal(t, want, got)
}

func TestLoadInputs(t *testing.T) {
	s := newStore(t)

	_, err := s.Put(mbid, InitialPitchSlug, "pitch", InitialPitchVersion, "json", []byte(`[[0.0, 0], [0.01, 220.0, 0.5]]`))
	require.NoError(t, err)
	_, err = s.PutJSON(mbid, TonicTuningSlug, "tonic", TonicTuningVersion, map[string]any{"scoreInformed": 293.7, "tonicTempo": 290.0})
	require.NoError(t, err)
	_, err = s.PutJSON(mbid, TonicTuningSlug, "tuning", TonicTuningVersion, map[string]any{"scoreInformed": 7.5})
	require.NoError(t, err)
	_, err = s.Put(mbid, ScoreAlignSlug, "notesalign", ScoreAlignVersion, "json", []byte(`{"notes": [{"Interval": [0.0, 0.02], "Symbol": "A4"}]}`))
	require.NoError(t, err)

	pitch, err := s.LoadPitch(mbid)
	require.NoError(t, err)
	assert.Equal(t, makam.PitchCurve{{Time: 0, Freq: 0}, {Time: 0.01, Freq: 220}}, pitch)

	tonic, err := s.LoadTonic(mbid)
	require.NoError(t, err)
	assert.Equal(t, 293.7, tonic)

	tuning, err := s.LoadTuning(mbid)
	require.NoError(t, err)
	assert.Equal(t, 7.5, tuning)

	notes, err := s.LoadNotes(mbid)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "A4", notes[0].Symbol)
}

func TestLoadMissing(t *testing.T) {
	s := newStore(t)

	_, err := s.LoadTonic(mbid)

	var missing *makam.MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "tonic", missing.Artifact)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadInvalidMBID(t *testing.T) {
	s := newStore(t)

	_, err := s.LoadNotes("../../etc")

	var missing *makam.MissingInputError
	assert.True(t, errors.As(err, &missing))
}

func TestLoadMissingKey(t *testing.T) {
	s := newStore(t)
	_, err := s.PutJSON(mbid, TonicTuningSlug, "tonic", TonicTuningVersion, map[string]any{"tonicTempo": 290.0})
	require.NoError(t, err)

	_, err = s.LoadTonic(mbid)

	var malformed *makam.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "scoreInformed", malformed.Key)
}

func TestLoadBrokenDocument(t *testing.T) {
	s := newStore(t)
	_, err := s.Put(mbid, ScoreAlignSlug, "notesalign", ScoreAlignVersion, "json", []byte(`{"notes": `))
	require.NoError(t, err)

	_, err = s.LoadNotes(mbid)

	var malformed *makam.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Empty(t, malformed.Key)
}

func TestLocate(t *testing.T) {
	s := newStore(t)
	p, err := s.Put(mbid, AudioSlug, "mp3", AudioVersion, "mp3", []byte("ID3"))
	require.NoError(t, err)

	got, err := s.Locate(mbid, "mp3", "mp3", "0.1", "mp3")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	got, err = s.AudioPath(mbid)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = s.Locate(mbid, "mp3", "mp3", "0.2", "mp3")
	assert.Error(t, err)
}

func TestPutAll(t *testing.T) {
	s := newStore(t)
	pitchMax, err := JSONArtifact("pitchmax", map[string]float64{"max": 440, "min": 220})
	require.NoError(t, err)

	paths, err := s.PutAll(mbid, "dunyapitchmakam", "0.2", []Artifact{
		{Name: "pitch", Extension: "dat", Data: []byte{0, 255}},
		pitchMax,
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255}, data)
	info, err := os.Stat(paths[1])
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(paths[0]))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPutAllRemovesEarlierArtifactsOnFailure(t *testing.T) {
	s := newStore(t)
	blocked := s.Path(mbid, "correctedpitchmakam", "histogram", "0.2", "json")
	require.NoError(t, os.MkdirAll(blocked, 0o755))

	_, err := s.PutAll(mbid, "correctedpitchmakam", "0.2", []Artifact{
		{Name: "pitch", Extension: "json", Data: []byte(`[]`)},
		{Name: "histogram", Extension: "json", Data: []byte(`[]`)},
		{Name: "notemodels", Extension: "json", Data: []byte(`{}`)},
	})
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Dir(blocked))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(blocked), entries[0].Name())
}
