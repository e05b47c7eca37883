package liveness

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"classpulse/internal/protocol"
	"classpulse/pkg/interfaces"
)

type fakePeer struct {
	mu    sync.Mutex
	open  bool
	pings int
}

func (f *fakePeer) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := v.(protocol.Ping); ok {
		f.pings++
	}
	return nil
}
func (f *fakePeer) Close() error { return nil }
func (f *fakePeer) IsOpen() bool { return f.open }

func (f *fakePeer) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

type fakeSource struct {
	peers []interfaces.Peer
}

func (f *fakeSource) Peers() []interfaces.Peer { return f.peers }

func TestMonitor_PingsOpenPeersOnly(t *testing.T) {
	open := &fakePeer{open: true}
	closed := &fakePeer{open: false}
	source := &fakeSource{peers: []interfaces.Peer{open, closed}}

	m := NewMonitor(source, 10*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for open.pingCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("open peer never pinged twice")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on context cancel")
	}

	if closed.pingCount() != 0 {
		t.Errorf("closed peer must not be pinged, got %d", closed.pingCount())
	}
}
