// Package liveness advertises server liveness by pinging every open
// connection on a fixed interval. It tracks no responses and never
// force-closes a peer: stale connections are only reaped when their
// reads fail. A deployment that needs a missed-PONG reaper has to add
// one on top; the interval is the only policy knob exposed here.
package liveness

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classpulse/internal/protocol"
	"classpulse/pkg/interfaces"
)

// PeerSource lists the connections to ping.
type PeerSource interface {
	Peers() []interfaces.Peer
}

// Monitor sends a protocol-level PING (a JSON message, not a websocket
// control frame — the browser clients answer with a JSON PONG).
type Monitor struct {
	peers    PeerSource
	interval time.Duration
	log      zerolog.Logger
}

func NewMonitor(peers PeerSource, interval time.Duration, logger zerolog.Logger) *Monitor {
	return &Monitor{
		peers:    peers,
		interval: interval,
		log:      logger.With().Str("component", "liveness").Logger(),
	}
}

// Start runs the ping loop until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Info().Dur("interval", m.interval).Msg("liveness monitor started")
	for {
		select {
		case <-ticker.C:
			m.pingAll()
		case <-ctx.Done():
			m.log.Info().Msg("liveness monitor stopped")
			return
		}
	}
}

func (m *Monitor) pingAll() {
	ping := protocol.NewPing()
	for _, p := range m.peers.Peers() {
		if !p.IsOpen() {
			continue
		}
		if err := p.WriteJSON(ping); err != nil {
			m.log.Debug().Err(err).Msg("ping dropped")
		}
	}
}
