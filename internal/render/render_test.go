package render

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
)

func TestRenderJSON(t *testing.T) {
	r := New()
	r.Add(NewSphere(geom.V3(1, 2, 3), 0.5, Red))
	r.Add(Textf("tick: %d", 7))
	r.Add(NewLine(geom.V3(0, 0, 0), geom.V3(1, 1, 1), 3, Gray))

	payload, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded, 3)

	var sphere map[string]float64
	require.NoError(t, json.Unmarshal(decoded[0]["Sphere"], &sphere))
	assert.Equal(t, map[string]float64{"x": 1, "y": 2, "z": 3, "radius": 0.5, "r": 0.8, "g": 0.1, "b": 0.1, "a": 0.8}, sphere)

	var text string
	require.NoError(t, json.Unmarshal(decoded[1]["Text"], &text))
	assert.Equal(t, "tick: 7", text)

	var line map[string]float64
	require.NoError(t, json.Unmarshal(decoded[2]["Line"], &line))
	assert.Equal(t, 3.0, line["width"])
	assert.Equal(t, 1.0, line["z2"])
}

func TestEmptyRenderIsArray(t *testing.T) {
	r := New()
	r.Add(Text("x"))
	r.Clear()

	payload, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(payload))
	assert.Equal(t, 0, r.Len())
}

func TestHubBroadcastsFrames(t *testing.T) {
	hub := NewHub(logger.Discard())
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	r := New()
	r.Add(Text("hello"))
	require.NoError(t, hub.Publish(42, r))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Type    string            `json:"type"`
		Tick    int               `json:"tick"`
		Objects []json.RawMessage `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Equal(t, "render", frame.Type)
	assert.Equal(t, 42, frame.Tick)
	require.Len(t, frame.Objects, 1)
	assert.JSONEq(t, `{"Text":"hello"}`, string(frame.Objects[0]))
}

func TestHubForgetsClosedViewers(t *testing.T) {
	hub := NewHub(logger.Discard())
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Broadcast([]byte("x")))
}
