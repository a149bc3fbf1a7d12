package session

import (
	"errors"
	"fmt"
)

type State uint8

const (
	Idle State = iota
	Loading
	Ready
	Playing
	Paused
	Result
)

var stateNames = [...]string{
	Idle:    "idle",
	Loading: "loading",
	Ready:   "ready",
	Playing: "playing",
	Paused:  "paused",
	Result:  "result",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

var ErrState = errors.New("invalid session state")

// transitions lists the states each state may move to.
var transitions = map[State][]State{
	Idle:    {Loading, Ready},
	Loading: {Ready, Idle},
	Ready:   {Loading, Ready, Playing, Idle},
	Playing: {Paused, Result, Ready, Idle},
	Paused:  {Playing, Ready, Idle},
	Result:  {Loading, Ready, Idle},
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
