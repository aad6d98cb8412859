// Package composition gathers the score and audio of a recording into one
// folder per SymbTr score.
package composition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScoreExtensions are the score formats copied next to the audio.
var ScoreExtensions = []string{".txt", ".pdf"}

// AudioSource resolves the audio file of a recording.
type AudioSource interface {
	AudioPath(mbid string) (string, error)
}

// Folder copies scores from SymbTrDir and audio from Audio into Root.
type Folder struct {
	SymbTrDir string
	Root      string
	Audio     AudioSource

	log *zap.SugaredLogger
}

func NewFolder(symbTrDir, root string, audio AudioSource, log *zap.SugaredLogger) *Folder {
	return &Folder{SymbTrDir: symbTrDir, Root: root, Audio: audio, log: log}
}

// StoreScoreAndAudio copies the scores named symbTrName and the audio of
// recording mbid into <Root>/<symbTrName>/ and returns that directory.
// Missing score files are skipped.
func (f *Folder) StoreScoreAndAudio(ctx context.Context, symbTrName, mbid string) (string, error) {
	if _, err := uuid.Parse(mbid); err != nil {
		return "", fmt.Errorf("invalid recording id %q: %w", mbid, err)
	}
	name := filepath.Base(symbTrName)
	l := f.log.With("symbtr", name, "mbid", mbid)

	target := filepath.Join(f.Root, name)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}

	for _, ext := range ScoreExtensions {
		src := filepath.Join(f.SymbTrDir, name+ext)
		err := copyFile(src, filepath.Join(target, name+ext))
		if errors.Is(err, fs.ErrNotExist) {
			l.Infow("score not found, skipping", "path", src)
			continue
		}
		if err != nil {
			return "", err
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	audio, err := f.Audio.AudioPath(mbid)
	if err != nil {
		return "", err
	}
	if err := copyFile(audio, filepath.Join(target, mbid+".mp3")); err != nil {
		return "", err
	}
	l.Infow("stored score and audio", "dir", target)
	return target, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
