package pitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mager/makampitch/docserver"
	"github.com/mager/makampitch/extractor"
	"github.com/mager/makampitch/makam"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// DunyaPitch extracts the predominant melody of a recording, corrects its
// octave errors and packs it into bytes for display.
//
// The correction here runs on a fresh extraction and is independent of
// CorrectedPitch, which works from the stored initial pitch.
type DunyaPitch struct {
	store     Store
	extractor extractor.MelodyExtractor
	corrector extractor.OctaveCorrector
	settings  extractor.Settings
	log       *zap.SugaredLogger
}

// DunyaPitchOutput is the display pitch of a recording.
type DunyaPitchOutput struct {
	Pitch    []byte           `json:"pitch"`
	PitchMax makam.PitchRange `json:"pitchmax"`
}

func NewDunyaPitch(
	store Store,
	melody extractor.MelodyExtractor,
	corrector extractor.OctaveCorrector,
	settings extractor.Settings,
	log *zap.SugaredLogger,
) *DunyaPitch {
	return &DunyaPitch{
		store:     store,
		extractor: melody,
		corrector: corrector,
		settings:  settings,
		log:       log,
	}
}

// ProvideDunyaPitch wires DunyaPitch to the command-backed algorithms.
func ProvideDunyaPitch(store *docserver.Store, cmd *extractor.Command, log *zap.SugaredLogger) *DunyaPitch {
	return NewDunyaPitch(store, cmd, cmd, extractor.DefaultSettings(), log)
}

func (*DunyaPitch) Slug() string    { return "dunyapitchmakam" }
func (*DunyaPitch) Version() string { return "0.2" }

func (*DunyaPitch) Outputs() []Output {
	return []Output{
		{Name: "pitch", Extension: "dat", MimeType: "application/octet-stream"},
		{Name: "pitchmax", Extension: "json", MimeType: "application/json"},
	}
}

// Settings returns the extraction settings.
func (d *DunyaPitch) Settings() extractor.Settings {
	return d.settings
}

// Run extracts and packs the pitch of the recording at audioPath.
func (d *DunyaPitch) Run(ctx context.Context, mbid, audioPath string) (*DunyaPitchOutput, error) {
	l := d.log.With("mbid", mbid, "module", d.Slug())

	extraction, err := d.extractor.Extract(ctx, audioPath, d.settings)
	if err != nil {
		return nil, err
	}
	for _, key := range mismatchedSettings(d.settings, extraction.Settings) {
		l.Warnw("extractor settings differ from requested", "setting", key)
	}

	tonic, err := d.store.LoadTonic(mbid)
	if err != nil {
		return nil, err
	}
	notes, err := d.store.LoadNotes(mbid)
	if err != nil {
		return nil, err
	}

	corrected, err := d.corrector.Correct(ctx, extraction.Pitch, notes)
	if err != nil {
		return nil, err
	}

	packed, err := Pack(corrected.Pitch.Frequencies())
	if err != nil {
		return nil, fmt.Errorf("packing pitch of %s: %w", mbid, err)
	}
	l.Debugw("pitch packed",
		"frames", len(packed.Pitch),
		"tonic", tonic,
		"min", packed.PitchMax.Min,
		"max", packed.PitchMax.Max,
	)

	return &DunyaPitchOutput{
		Pitch:    packed.Pitch,
		PitchMax: packed.PitchMax,
	}, nil
}

// Save writes the packed pitch and its range to the store, or neither.
func (d *DunyaPitch) Save(mbid string, out *DunyaPitchOutput) error {
	pitchMax, err := docserver.JSONArtifact("pitchmax", out.PitchMax)
	if err != nil {
		return err
	}
	_, err = d.store.PutAll(mbid, d.Slug(), d.Version(), []docserver.Artifact{
		{Name: "pitch", Extension: "dat", Data: out.Pitch},
		pitchMax,
	})
	return err
}

// mismatchedSettings lists the settings the extractor echoed back with a
// different value than requested, in key order.
func mismatchedSettings(want extractor.Settings, echo map[string]json.RawMessage) []string {
	if len(echo) == 0 {
		return nil
	}
	data, err := json.Marshal(want)
	if err != nil {
		return nil
	}
	var requested map[string]json.RawMessage
	if err := json.Unmarshal(data, &requested); err != nil {
		return nil
	}

	keys := maps.Keys(requested)
	slices.Sort(keys)

	var diff []string
	for _, k := range keys {
		got, ok := echo[k]
		if !ok {
			continue
		}
		var a, b bytes.Buffer
		if json.Compact(&a, requested[k]) != nil || json.Compact(&b, got) != nil {
			diff = append(diff, k)
			continue
		}
		if !jsonNumberEqual(a.Bytes(), b.Bytes()) {
			diff = append(diff, k)
		}
	}
	return diff
}

// jsonNumberEqual compares two compact JSON values, treating 55 and 55.0 as equal.
func jsonNumberEqual(a, b []byte) bool {
	if bytes.Equal(a, b) {
		return true
	}
	var x, y float64
	if json.Unmarshal(a, &x) != nil || json.Unmarshal(b, &y) != nil {
		return false
	}
	return x == y
}
