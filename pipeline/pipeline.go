// Package pipeline runs the pitch modules for recordings and persists what
// they produce.
package pipeline

import (
	"context"

	"github.com/mager/makampitch/database"
	"github.com/mager/makampitch/docserver"
	"github.com/mager/makampitch/firestore"
	"github.com/mager/makampitch/pitch"
	"go.uber.org/zap"
)

type Pipeline struct {
	store     *docserver.Store
	corrected *pitch.CorrectedPitch
	dunya     *pitch.DunyaPitch
	runs      *database.RunLog
	publisher *firestore.Publisher
	log       *zap.SugaredLogger
}

func ProvidePipeline(
	store *docserver.Store,
	corrected *pitch.CorrectedPitch,
	dunya *pitch.DunyaPitch,
	runs *database.RunLog,
	publisher *firestore.Publisher,
	log *zap.SugaredLogger,
) *Pipeline {
	return &Pipeline{
		store:     store,
		corrected: corrected,
		dunya:     dunya,
		runs:      runs,
		publisher: publisher,
		log:       log,
	}
}

var Options = ProvidePipeline

// Corrected runs octave correction and note modeling for a recording and
// stores the four outputs.
func (p *Pipeline) Corrected(ctx context.Context, mbid string) (*pitch.CorrectedPitchOutput, error) {
	m := p.corrected
	out, err := m.Run(ctx, mbid)
	if err == nil {
		err = m.Save(mbid, out)
	}
	if err != nil {
		p.fail(ctx, mbid, m.Slug(), m.Version(), err)
		return nil, err
	}
	p.done(ctx, mbid, m.Slug(), m.Version())

	if len(out.Histogram) > 0 {
		// Publishing is best effort; the artifacts are already stored.
		_ = p.publisher.PublishHistogram(ctx, mbid, firestore.NewHistogramDoc(out.Histogram[0]))
	}
	return out, nil
}

// Dunya extracts, corrects and packs the display pitch of a recording and
// stores the packed pitch and its range. The audio comes from the store.
func (p *Pipeline) Dunya(ctx context.Context, mbid string) (*pitch.DunyaPitchOutput, error) {
	audio, err := p.store.AudioPath(mbid)
	if err != nil {
		p.fail(ctx, mbid, p.dunya.Slug(), p.dunya.Version(), err)
		return nil, err
	}
	return p.DunyaFrom(ctx, mbid, audio)
}

// DunyaFrom is Dunya with the recording's audio read from audioPath.
func (p *Pipeline) DunyaFrom(ctx context.Context, mbid, audioPath string) (*pitch.DunyaPitchOutput, error) {
	m := p.dunya
	out, err := m.Run(ctx, mbid, audioPath)
	if err == nil {
		err = m.Save(mbid, out)
	}
	if err != nil {
		p.fail(ctx, mbid, m.Slug(), m.Version(), err)
		return nil, err
	}
	p.done(ctx, mbid, m.Slug(), m.Version())

	_ = p.publisher.PublishPitch(ctx, mbid, firestore.NewPitchDoc(out.Pitch, out.PitchMax))
	return out, nil
}

// Batch runs fn for every recording. Failed recordings are logged and
// skipped; their ids are returned.
func (p *Pipeline) Batch(ctx context.Context, mbids []string, fn func(ctx context.Context, mbid string) error) []string {
	var failed []string
	for i, mbid := range mbids {
		if err := ctx.Err(); err != nil {
			p.log.Warnw("batch interrupted", "remaining", len(mbids)-i, "error", err)
			return append(failed, mbids[i:]...)
		}
		if err := fn(ctx, mbid); err != nil {
			p.log.Errorw("recording failed", "mbid", mbid, "error", err)
			failed = append(failed, mbid)
			continue
		}
		p.log.Infow("recording done", "mbid", mbid)
	}
	return failed
}

func (p *Pipeline) fail(ctx context.Context, mbid, module, version string, err error) {
	_ = p.runs.Record(ctx, database.Failed(mbid, module, version, err))
}

func (p *Pipeline) done(ctx context.Context, mbid, module, version string) {
	_ = p.runs.Record(ctx, database.Done(mbid, module, version))
}
