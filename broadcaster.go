package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Broadcaster periodically fans the world snapshot out to every client
type Broadcaster struct {
	game     *Game
	hub      *Hub
	interval time.Duration
}

// NewBroadcaster creates the snapshot loop
func NewBroadcaster(game *Game, hub *Hub, interval time.Duration) *Broadcaster {
	return &Broadcaster{game: game, hub: hub, interval: interval}
}

// Tick encodes one snapshot per wire format in use and queues it for every
// client. It returns how many clients received the frame.
func (b *Broadcaster) Tick() int {
	text, binary := b.hub.Formats()
	if text+binary == 0 {
		return 0
	}

	snap := b.game.Snapshot()
	var textFrame, binFrame []byte
	if text > 0 {
		textFrame = b.encode(snap, false)
	}
	if binary > 0 {
		binFrame = b.encode(snap, true)
	}
	if textFrame == nil && binFrame == nil {
		return 0
	}

	sent, dropped := b.hub.Broadcast(textFrame, binFrame)
	if dropped > 0 {
		log.WithFields(logrus.Fields{"sent": sent, "dropped": dropped}).Debug("snapshot dropped for slow clients")
	}
	return sent
}

// encode returns nil if the snapshot cannot be encoded in that format, so
// only that format's clients miss the tick
func (b *Broadcaster) encode(snap Snapshot, binary bool) []byte {
	frame, err := Encode(snap, binary)
	if err != nil {
		log.WithError(err).WithField("binary", binary).Warn("snapshot encode failed")
		return nil
	}
	return frame
}

// Run broadcasts until ctx is done
func (b *Broadcaster) Run(ctx context.Context) {
	runTicker(ctx, b.interval, func() { b.Tick() })
}
