package firestore

import (
	"context"
	"testing"

	"github.com/mager/makampitch/config"
	"github.com/mager/makampitch/logger"
	"github.com/mager/makampitch/makam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPitchDoc(t *testing.T) {
	r := makam.PitchRange{Max: 440, Min: 220}
	doc := NewPitchDoc([]byte{0, 0, 10, 255}, r)

	assert.Equal(t, 4, doc.Frames)
	assert.Equal(t, 0.5, doc.Voiced)
	assert.Equal(t, r, doc.PitchMax)

	assert.Zero(t, NewPitchDoc(nil, r).Voiced)
}

func TestNewHistogramDoc(t *testing.T) {
	doc := NewHistogramDoc(makam.HistogramRecord{
		Bins:    []float64{-7.5, 0, 7.5, 15},
		Vals:    []float64{0.1, 0.2, 0.6, 0.1},
		RefFreq: 293.7,
	})

	assert.Equal(t, 7.5, doc.Peak)
	assert.Equal(t, 293.7, doc.RefFreq)

	assert.Zero(t, NewHistogramDoc(makam.HistogramRecord{Bins: []float64{1}}).Peak)
}

func TestPublisherDisabled(t *testing.T) {
	l, _ := logger.NewTestLogger()
	client, err := ProvideDB(config.Config{}, l)
	require.NoError(t, err)
	assert.Nil(t, client)

	p := ProvidePublisher(client, l)
	assert.NoError(t, p.PublishPitch(context.Background(), "mbid", PitchDoc{}))
	assert.NoError(t, p.PublishHistogram(context.Background(), "mbid", HistogramDoc{}))
}
