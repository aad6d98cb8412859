// Package docserver is a file-backed store of pipeline artifacts.
//
// An artifact is addressed by (mbid, slug, artifact, version) and lives at
//
//	<root>/<slug>/<version>/<mbid[0:2]>/<mbid>/<mbid>-<slug>-<version>-<artifact>.<ext>
package docserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mager/makampitch/config"
	"github.com/mager/makampitch/makam"
	"go.uber.org/zap"
)

// Artifact versions read by the pitch modules.
const (
	InitialPitchSlug    = "initialmakampitch"
	InitialPitchVersion = "0.6"
	TonicTuningSlug     = "tonictempotuning"
	TonicTuningVersion  = "0.1"
	ScoreAlignSlug      = "scorealign"
	ScoreAlignVersion   = "0.1"
	AudioSlug           = "mp3"
	AudioVersion        = "0.1"
)

type Store struct {
	Root string
	log  *zap.SugaredLogger
}

// ProvideStore provides the artifact store rooted at cfg.DocserverRoot.
func ProvideStore(cfg config.Config, log *zap.SugaredLogger) *Store {
	return New(cfg.DocserverRoot, log)
}

func New(root string, log *zap.SugaredLogger) *Store {
	return &Store{Root: root, log: log}
}

// Path returns where an artifact lives, whether or not it exists.
func (s *Store) Path(mbid, slug, artifact, version, ext string) string {
	prefix := mbid
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	name := fmt.Sprintf("%s-%s-%s-%s.%s", mbid, slug, version, artifact, ext)
	return filepath.Join(s.Root, slug, version, prefix, mbid, name)
}

// Filename resolves an existing JSON artifact.
func (s *Store) Filename(mbid, slug, artifact, version string) (string, error) {
	return s.filename(mbid, slug, artifact, version, "json")
}

func (s *Store) filename(mbid, slug, artifact, version, ext string) (string, error) {
	missing := func(err error) error {
		return &makam.MissingInputError{MBID: mbid, Slug: slug, Artifact: artifact, Version: version, Err: err}
	}
	if _, err := uuid.Parse(mbid); err != nil {
		return "", missing(err)
	}
	p := s.Path(mbid, slug, artifact, version, ext)
	info, err := os.Stat(p)
	if err != nil {
		return "", missing(err)
	}
	if info.IsDir() {
		return "", missing(fmt.Errorf("%s is a directory", p))
	}
	return p, nil
}

// Put writes an artifact, creating parent directories as needed.
func (s *Store) Put(mbid, slug, artifact, version, ext string, data []byte) (string, error) {
	p := s.Path(mbid, slug, artifact, version, ext)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	s.log.Debugw("stored artifact", "mbid", mbid, "slug", slug, "artifact", artifact, "path", p)
	return p, nil
}

// PutJSON marshals v and stores it with a .json extension.
func (s *Store) PutJSON(mbid, slug, artifact, version string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", artifact, err)
	}
	return s.Put(mbid, slug, artifact, version, "json", data)
}

// Artifact is one output file of a module run.
type Artifact struct {
	Name      string
	Extension string
	Data      []byte
}

// JSONArtifact marshals v into a .json artifact.
func JSONArtifact(name string, v any) (Artifact, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Artifact{}, fmt.Errorf("encoding %s: %w", name, err)
	}
	return Artifact{Name: name, Extension: "json", Data: data}, nil
}

// PutAll writes every artifact of one run or none of them. Each artifact is
// staged in a temporary file next to its target and renamed into place once
// all of them are written. Targets renamed before a failure are removed.
func (s *Store) PutAll(mbid, slug, version string, artifacts []Artifact) ([]string, error) {
	type staged struct{ tmp, target string }
	var files []staged
	cleanup := func() {
		for _, f := range files {
			os.Remove(f.tmp)
		}
	}

	for _, a := range artifacts {
		target := s.Path(mbid, slug, a.Name, version, a.Extension)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			cleanup()
			return nil, err
		}
		tmp, err := stage(target, a.Data)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("writing %s: %w", a.Name, err)
		}
		files = append(files, staged{tmp: tmp, target: target})
	}

	for _, f := range files {
		if info, err := os.Stat(f.target); err == nil && info.IsDir() {
			cleanup()
			return nil, fmt.Errorf("writing %s: target is a directory", f.target)
		}
	}

	paths := make([]string, 0, len(files))
	for i, f := range files {
		if err := os.Rename(f.tmp, f.target); err != nil {
			for _, done := range paths {
				os.Remove(done)
			}
			for _, rest := range files[i:] {
				os.Remove(rest.tmp)
			}
			return nil, err
		}
		paths = append(paths, f.target)
	}
	s.log.Debugw("stored artifacts", "mbid", mbid, "slug", slug, "version", version, "count", len(paths))
	return paths, nil
}

func stage(target string, data []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Locate resolves an existing artifact with any extension.
func (s *Store) Locate(mbid, slug, artifact, version, ext string) (string, error) {
	return s.filename(mbid, slug, artifact, version, ext)
}

// AudioPath resolves the mp3 of a recording.
func (s *Store) AudioPath(mbid string) (string, error) {
	return s.Locate(mbid, AudioSlug, "mp3", AudioVersion, "mp3")
}

var Options = ProvideStore
