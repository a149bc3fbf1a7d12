package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/parser"
)

// DirStore keeps one JSON file per chart at Root/<source>/<difficulty>.json,
// readable by anything that understands the chart record.
type DirStore struct {
	Root   string
	parser parser.DefaultParser
}

func NewDirStore(root string) *DirStore {
	return &DirStore{Root: root}
}

func (s *DirStore) path(key Key) string {
	return filepath.Join(s.Root, key.SourceID, key.Difficulty+".json")
}

func (s *DirStore) Get(key Key) (*game.Chart, error) {
	if err := key.validate(); nil != err {
		return nil, err
	}
	chart, err := s.parser.Load(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if nil != err {
		return nil, fmt.Errorf("chart %s: %w", key, err)
	}
	return chart, nil
}

func (s *DirStore) Put(chart *game.Chart) error {
	key := KeyOf(chart)
	if err := key.validate(); nil != err {
		return err
	}
	if strings.ContainsAny(key.SourceID+key.Difficulty, `/\`) {
		return fmt.Errorf("%w: key %q is not a valid file name", game.ErrSerialization, key.String())
	}
	return s.parser.Save(s.path(key), chart)
}

func (s *DirStore) Delete(key Key) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return err
}

func (s *DirStore) List() ([]Entry, error) {
	entries := []Entry{}
	files, err := filepath.Glob(filepath.Join(s.Root, "*", "*.json"))
	if nil != err {
		return entries, err
	}
	for _, file := range files {
		key := Key{
			SourceID:   filepath.Base(filepath.Dir(file)),
			Difficulty: strings.TrimSuffix(filepath.Base(file), ".json"),
		}
		info, err := os.Stat(file)
		if nil != err {
			return entries, err
		}
		e := Entry{Key: key, Updated: info.ModTime().UTC()}
		if chart, err := s.parser.Load(file); nil == err {
			e.AudioReference = chart.AudioReference
			e.BPM = chart.BPM
			e.Notes = chart.NoteCount()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *DirStore) Close() error {
	return nil
}
