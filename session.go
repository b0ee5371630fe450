package main

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// SessionState is the lifecycle of one connection's player
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateActive
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

// Session binds one connection to one player: Connecting -> Active -> Closed
type Session struct {
	game      *Game
	analytics *Analytics
	remote    string

	state     atomic.Int32
	playerID  string
	closeOnce sync.Once
}

// NewSession creates a session in the Connecting state
func NewSession(game *Game, analytics *Analytics, remote string) *Session {
	return &Session{game: game, analytics: analytics, remote: remote}
}

// State returns the current lifecycle state
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// PlayerID returns the player owned by this session, empty before Open
func (s *Session) PlayerID() string {
	if s.State() == StateConnecting {
		return ""
	}
	return s.playerID
}

// Open creates the player and moves the session to Active
func (s *Session) Open() (WelcomeMsg, error) {
	if s.State() != StateConnecting {
		return WelcomeMsg{}, fmt.Errorf("open session: state is %s", s.State())
	}
	p := s.game.AddPlayer()
	s.playerID = p.ID
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		s.game.RemovePlayer(p.ID)
		return WelcomeMsg{}, fmt.Errorf("open session: state is %s", s.State())
	}

	log.WithFields(logrus.Fields{"player_id": p.ID, "remote": s.remote}).Info("player joined")
	s.analytics.Track(EvtSessionStart, p.ID, "")
	return WelcomeMsg{PlayerID: p.ID}, nil
}

// Apply executes one client intent. Intents that reference a missing player
// or cell, or that match no known shape, change nothing.
func (s *Session) Apply(in Intent) IntentKind {
	if s.State() != StateActive {
		return IntentNone
	}
	switch kind := in.Kind(); kind {
	case IntentMove:
		if s.game.MovePlayer(s.playerID, *in.X, *in.Y) {
			return kind
		}
	case IntentConsume:
		if _, ok := s.game.ConsumeCell(s.playerID, *in.ConsumedCellID); ok {
			return kind
		}
	case IntentFire:
		if b, ok := s.game.FireBlob(s.playerID, *in.Angle); ok {
			log.WithFields(logrus.Fields{"player_id": s.playerID, "blob_id": b.ID}).Debug("blob fired")
			s.analytics.Track(EvtBlobFired, s.playerID, eventData(FireData{Blob: b.ID, Angle: b.Angle}))
			return kind
		}
	}
	return IntentNone
}

// Close removes the player. Only the first call has any effect.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		prev := SessionState(s.state.Swap(int32(StateClosed)))
		if prev != StateActive {
			return
		}
		s.game.RemovePlayer(s.playerID)
		log.WithFields(logrus.Fields{"player_id": s.playerID, "remote": s.remote}).Info("player left")
		s.analytics.Track(EvtSessionEnd, s.playerID, "")
	})
}
