package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/mager/makampitch/config"
	"github.com/mager/makampitch/makam"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

const recordings = "recordings"

// PitchDoc is the display summary of a recording's pitch.
type PitchDoc struct {
	PitchMax makam.PitchRange `json:"pitchmax" firestore:"pitchmax"`
	Frames   int              `json:"frames" firestore:"frames"`
	// Voiced is the share of frames packed above 0.
	Voiced float64 `json:"voiced" firestore:"voiced"`
}

// HistogramDoc summarizes a pitch distribution.
type HistogramDoc struct {
	// Peak is the bin with the highest value, in cents.
	Peak    float64 `json:"peak" firestore:"peak"`
	RefFreq float64 `json:"ref_freq" firestore:"ref_freq"`
}

// Publisher writes display summaries to Firestore. A Publisher without a
// client does nothing.
type Publisher struct {
	client *firestore.Client
	log    *zap.SugaredLogger
}

// ProvideDB provides a firestore client, or nil when no project is configured.
func ProvideDB(cfg config.Config, log *zap.SugaredLogger) (*firestore.Client, error) {
	if cfg.FirestoreProject == "" {
		log.Info("no firestore project configured, publishing disabled")
		return nil, nil
	}
	client, err := firestore.NewClient(context.Background(), cfg.FirestoreProject)
	if err != nil {
		log.Errorw("Failed to create firestore client", "project", cfg.FirestoreProject, "error", err)
		return nil, err
	}
	return client, nil
}

func ProvidePublisher(client *firestore.Client, log *zap.SugaredLogger) *Publisher {
	return &Publisher{client: client, log: log}
}

// NewPitchDoc summarizes packed pitch.
func NewPitchDoc(packed []byte, r makam.PitchRange) PitchDoc {
	doc := PitchDoc{PitchMax: r, Frames: len(packed)}
	if len(packed) == 0 {
		return doc
	}
	var voiced int
	for _, b := range packed {
		if b > 0 {
			voiced++
		}
	}
	doc.Voiced = float64(voiced) / float64(len(packed))
	return doc
}

// NewHistogramDoc summarizes a histogram record.
func NewHistogramDoc(h makam.HistogramRecord) HistogramDoc {
	doc := HistogramDoc{RefFreq: h.RefFreq}
	if len(h.Vals) == 0 || len(h.Vals) != len(h.Bins) {
		return doc
	}
	doc.Peak = h.Bins[floats.MaxIdx(h.Vals)]
	return doc
}

// PublishPitch stores the pitch summary of a recording.
func (p *Publisher) PublishPitch(ctx context.Context, mbid string, doc PitchDoc) error {
	return p.set(ctx, mbid, map[string]any{"pitch": doc})
}

// PublishHistogram stores the histogram summary of a recording.
func (p *Publisher) PublishHistogram(ctx context.Context, mbid string, doc HistogramDoc) error {
	return p.set(ctx, mbid, map[string]any{"histogram": doc})
}

func (p *Publisher) set(ctx context.Context, mbid string, data map[string]any) error {
	if p == nil || p.client == nil {
		return nil
	}
	_, err := p.client.Collection(recordings).Doc(mbid).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		p.log.Errorw("Failed to publish", "mbid", mbid, "error", err)
	}
	return err
}

var Options = ProvideDB
