package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hubClient(id string) *Client {
	return &Client{ID: id, Send: make(chan Message, 16)}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	client := hubClient("c1")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	sample := models.Sample{Timestamp: time.Now(), CPUStat: &models.CPUStat{CPUPercent: 42.5}}
	hub.BroadcastSample(sample)

	select {
	case msg := <-client.Send:
		assert.Equal(t, "sample", msg.Type)
		var got models.Sample
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, 42.5, got.CPUPercent)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestHubBroadcastAgentSample(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	client := hubClient("c1")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastAgentSample("web-1", models.Sample{Timestamp: time.Now(), CPUStat: &models.CPUStat{CPUPercent: 7}})

	select {
	case msg := <-client.Send:
		assert.Equal(t, "sample", msg.Type)
		var got AgentSamplePayload
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "web-1", got.Agent)
		assert.Equal(t, 7.0, got.Sample.CPUPercent)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	client := hubClient("c1")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastEvent(models.AlertEvent{
		Agent:  "web-1",
		Metric: models.MetricCPUPercent,
		Kind:   models.EventFired,
		Value:  95,
		Limit:  90,
	})

	select {
	case msg := <-client.Send:
		assert.Equal(t, "event", msg.Type)
		var got models.AlertEvent
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, models.EventFired, got.Kind)
		assert.Equal(t, "web-1", got.Agent)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	client := hubClient("c1")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Unregister("c1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel must be closed on unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHubStopDisconnectsClients(t *testing.T) {
	hub := NewHub()

	client := hubClient("c1")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Stop()
	hub.Stop() // second call is a no-op

	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel must be closed on stop")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	// Registration after shutdown must not block or resurrect the client map.
	hub.Register(hubClient("c2"))
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubSlowClientSkipsFrames(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	// A client that never drains its single-slot buffer.
	client := &Client{ID: "slow", Send: make(chan Message, 1)}
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	for i := 0; i < 50; i++ {
		hub.BroadcastSample(models.Sample{Timestamp: time.Now(), CPUStat: &models.CPUStat{CPUPercent: float64(i)}})
	}

	// The hub stays responsive; only the buffered frame is retained.
	require.Eventually(t, func() bool { return len(client.Send) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())
}
