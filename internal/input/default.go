// Package input turns key presses into lane presses.
package input

import (
	"fmt"
	"log"
	"unicode"

	"git.lost.host/meutraa/autochart/internal/game"
	"github.com/eiannone/keyboard"
)

type Action uint8

const (
	None Action = iota
	Press
	Pause
	Restart
	Quit
)

type Event struct {
	Action Action
	Lane   int // Only set for Press
}

// Keymap assigns one key to each lane, left to right.
type Keymap struct {
	keys []rune
}

func NewKeymap(keys string, lanes int) (Keymap, error) {
	runes := []rune{}
	seen := map[rune]bool{}
	for _, r := range keys {
		r = unicode.ToLower(r)
		if seen[r] {
			return Keymap{}, fmt.Errorf("%w: key %q bound twice", game.ErrConfig, r)
		}
		if r == ' ' || r == 'r' {
			return Keymap{}, fmt.Errorf("%w: key %q is reserved", game.ErrConfig, r)
		}
		seen[r] = true
		runes = append(runes, r)
	}
	if len(runes) != lanes {
		return Keymap{}, fmt.Errorf("%w: %d keys for %d lanes", game.ErrConfig, len(runes), lanes)
	}
	return Keymap{keys: runes}, nil
}

// Lane returns the lane bound to r, or -1.
func (k Keymap) Lane(r rune) int {
	r = unicode.ToLower(r)
	for i, c := range k.keys {
		if r == c {
			return i
		}
	}
	return -1
}

func (k Keymap) Lanes() int {
	return len(k.keys)
}

func (k Keymap) Translate(ev keyboard.KeyEvent) Event {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return Event{Action: Quit}
	case keyboard.KeySpace:
		return Event{Action: Pause}
	}
	if ev.Rune == 'r' || ev.Rune == 'R' {
		return Event{Action: Restart}
	}
	if lane := k.Lane(ev.Rune); lane >= 0 {
		return Event{Action: Press, Lane: lane}
	}
	return Event{}
}

// Reader delivers translated key events until closed.
type Reader interface {
	Events() <-chan Event
	Close() error
}

type KeyboardReader struct {
	events chan Event
}

// OpenKeyboard puts the terminal in raw mode and starts reading keys.
func OpenKeyboard(keymap Keymap, buffer int) (*KeyboardReader, error) {
	keys, err := keyboard.GetKeys(buffer)
	if nil != err {
		return nil, fmt.Errorf("unable to open keyboard: %w", err)
	}
	r := &KeyboardReader{events: make(chan Event, buffer)}
	go func() {
		defer close(r.events)
		for key := range keys {
			if nil != key.Err {
				log.Println("unable to read keyboard input", key.Err)
				return
			}
			if ev := keymap.Translate(key); ev.Action != None {
				r.events <- ev
			}
		}
	}()
	return r, nil
}

func (r *KeyboardReader) Events() <-chan Event {
	return r.events
}

func (r *KeyboardReader) Close() error {
	return keyboard.Close()
}
