package api

import (
	"testing"
	"time"
)

func waitForClients(t *testing.T, h *SSEHub, chartID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.GetClientCount(chartID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients for %s, got %d", n, chartID, h.GetClientCount(chartID))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSSEHubDeliversToSubscribers(t *testing.T) {
	hub := NewSSEHub()
	defer hub.Close()

	events, unsubscribe := hub.Subscribe("chart-1")
	other, unsubscribeOther := hub.Subscribe("chart-2")
	defer unsubscribeOther()
	waitForClients(t, hub, "chart-1", 1)
	waitForClients(t, hub, "chart-2", 1)

	hub.Broadcast(ChartEvent{ChartID: "chart-1", EventType: "draw", Revision: 3})

	select {
	case ev := <-events:
		if ev.Revision != 3 {
			t.Errorf("expected revision 3, got %d", ev.Revision)
		}
		if ev.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-other:
		t.Fatalf("chart-2 received an event for %s", ev.ChartID)
	case <-time.After(20 * time.Millisecond):
	}

	unsubscribe()
	waitForClients(t, hub, "chart-1", 0)
	if _, ok := <-events; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
}

func TestSendLatestDropsOldestWhenFull(t *testing.T) {
	ch := make(chan ChartEvent, 2)
	for rev := 1; rev <= 2; rev++ {
		if dropped := sendLatest(ch, ChartEvent{Revision: rev}); dropped != 0 {
			t.Fatalf("unexpected drop while queue had room")
		}
	}

	if dropped := sendLatest(ch, ChartEvent{Revision: 3}); dropped != 1 {
		t.Fatalf("expected one dropped event, got %d", dropped)
	}

	var got []int
	for len(ch) > 0 {
		got = append(got, (<-ch).Revision)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("expected revisions [2 3], got %v", got)
	}
}

func TestSlowClientStillReceivesNewestRevision(t *testing.T) {
	hub := NewSSEHub()
	defer hub.Close()

	events, unsubscribe := hub.Subscribe("chart-1")
	defer unsubscribe()
	waitForClients(t, hub, "chart-1", 1)

	const last = 25
	for rev := 1; rev <= last; rev++ {
		hub.Broadcast(ChartEvent{ChartID: "chart-1", Revision: rev})
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Revision == last {
				return
			}
		case <-deadline:
			t.Fatalf("revision %d never delivered", last)
		}
	}
}
