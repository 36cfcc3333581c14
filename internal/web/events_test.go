package web

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thibequation/trajectory/internal/core"
)

func TestEventHub_PublishFanOut(t *testing.T) {
	h := newEventHub(4)
	a, unsubA := h.subscribe()
	b, unsubB := h.subscribe()
	defer unsubB()
	require.Equal(t, 2, h.clientCount())

	require.NoError(t, h.publish(core.Event{Type: core.EventTrajectoryLoaded, Kind: core.KindDeterministic, Points: 3}))

	for _, ch := range []<-chan []byte{a, b} {
		frame := string(<-ch)
		assert.True(t, strings.HasPrefix(frame, "id: 1\nevent: onTrajectoryLoaded\n"), frame)
		assert.Contains(t, frame, `"points":3`)
		assert.True(t, strings.HasSuffix(frame, "\n\n"))
	}

	unsubA()
	unsubA()
	_, open := <-a
	assert.False(t, open, "unsubscribe closes the channel")
	assert.Equal(t, 1, h.clientCount())
}

func TestEventHub_ErrorEventCarriesCode(t *testing.T) {
	h := newEventHub(1)
	ch, unsub := h.subscribe()
	defer unsub()

	err := &core.SchemaError{Kind: core.KindDeterministic, Missing: []string{"vx"}}
	require.NoError(t, h.publish(core.Event{Type: core.EventTrajectoryError, Kind: core.KindDeterministic, Err: err}))

	frame := string(<-ch)
	assert.Contains(t, frame, `"code":"TRJ002"`)
	assert.Contains(t, frame, `"error":"missing required fields for deterministic: vx"`)
}

func TestEventHub_SlowClientDropsEvents(t *testing.T) {
	h := newEventHub(1)
	ch, unsub := h.subscribe()
	defer unsub()

	for i := 0; i < 3; i++ {
		require.NoError(t, h.publish(core.Event{Type: core.EventValidationComplete}))
	}
	assert.Contains(t, string(<-ch), "id: 1\n")
	select {
	case frame := <-ch:
		t.Fatalf("expected backlog to be dropped, got %q", frame)
	default:
	}
}

func TestEventHub_Close(t *testing.T) {
	h := newEventHub(1)
	ch, unsub := h.subscribe()

	h.close()
	_, open := <-ch
	assert.False(t, open)
	unsub()

	late, _ := h.subscribe()
	_, open = <-late
	assert.False(t, open, "subscribers after close get a closed channel")
	assert.Equal(t, 0, h.clientCount())
}

func TestHandleEvents_StreamsImports(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	require.Equal(t, ": connected", lines.Text())

	body := strings.NewReader(deterministicCSV(3))
	ireq, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/import/deterministic", body)
	require.NoError(t, err)
	ireq.Header.Set("Content-Type", "text/csv")
	iresp, err := http.DefaultClient.Do(ireq)
	require.NoError(t, err)
	iresp.Body.Close()
	require.Equal(t, http.StatusCreated, iresp.StatusCode)

	// Validation completes before the trajectory is stored.
	var events []string
	for lines.Scan() && len(events) < 2 {
		if name, ok := strings.CutPrefix(lines.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	assert.Equal(t, []string{"onValidationComplete", "onTrajectoryLoaded"}, events)
}

func TestHandleEvents_ServerShutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())

	require.NoError(t, s.Shutdown(context.Background()))

	var sawClose bool
	for lines.Scan() {
		if lines.Text() == "event: close" {
			sawClose = true
		}
	}
	assert.True(t, sawClose)
	assert.NoError(t, lines.Err())
}
