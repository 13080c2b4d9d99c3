package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/mediscribe/scribe-gateway/internal/session"
)

func TestEventHubBroadcastDuringSubscribe(t *testing.T) {
	hub := NewEventHub()
	initial := session.State{ID: "sess-1", Status: session.StatusIdle}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Subscribe(w, r, "sess-1", initial)
	}))
	defer ts.Close()

	// Broadcast continuously while subscribers connect, so snapshot writes
	// and broadcast writes land on the same connections at the same time.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					hub.StateChanged(session.State{ID: "sess-1", Status: session.StatusRecording})
				}
			}
		}()
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	for i := 0; i < 20; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial %d error = %v", i, err)
		}

		// The first frame must be the intact initial snapshot, never torn by
		// a concurrent broadcast.
		var state session.State
		if err := conn.ReadJSON(&state); err != nil {
			t.Fatalf("reading snapshot %d: %v", i, err)
		}
		if state.ID != "sess-1" {
			t.Errorf("snapshot %d ID = %q, want sess-1", i, state.ID)
		}
		if state.Status != session.StatusIdle {
			t.Errorf("snapshot %d status = %q, want the registered snapshot first", i, state.Status)
		}
		conn.Close()
	}

	close(stop)
	wg.Wait()
}
