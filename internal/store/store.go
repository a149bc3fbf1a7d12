// Package store caches generated charts by source and difficulty.
package store

import (
	"errors"
	"fmt"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
)

var ErrNotFound = errors.New("chart not found")

type Key struct {
	SourceID   string `json:"sourceId"`
	Difficulty string `json:"difficultyTag"`
}

func KeyOf(c *game.Chart) Key {
	return Key{SourceID: c.SourceID, Difficulty: c.Difficulty}
}

func (k Key) String() string {
	return k.SourceID + "/" + k.Difficulty
}

func (k Key) validate() error {
	if "" == k.SourceID || "" == k.Difficulty {
		return fmt.Errorf("%w: incomplete key %q", game.ErrSerialization, k.String())
	}
	return nil
}

// Entry summarises a stored chart without decoding its notes.
type Entry struct {
	Key
	AudioReference string    `json:"audioReference"`
	BPM            float64   `json:"bpm"`
	Notes          int       `json:"notes"`
	Updated        time.Time `json:"updated"`
}

// Store is a plain key value mapping, it holds no chart logic. Get returns
// ErrNotFound for a missing key and an error wrapping game.ErrSerialization
// for a record that no longer decodes.
type Store interface {
	Get(key Key) (*game.Chart, error)
	Put(chart *game.Chart) error
	Delete(key Key) error
	List() ([]Entry, error)
	Close() error
}
