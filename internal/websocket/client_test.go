package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_CreatesClientWithConnection(t *testing.T) {
	hub := NewHub(nil)

	// We can't easily create a real websocket.Conn in tests,
	// but we can test that NewClient returns a properly initialized client
	client := NewClient(hub, nil, nil)

	assert.NotNil(t, client)
	assert.Equal(t, hub, client.hub)
	assert.NotNil(t, client.send)
}

func TestClient_HandleMessage_ProcessesSubscribe(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := NewClient(hub, nil, nil)
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	msg := WSMessage{
		Type:   MessageTypeSubscribe,
		Folder: "code",
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	client.handleMessage(data)
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, exists := hub.subscriptions["code"]
	hub.mu.RUnlock()

	assert.True(t, exists)
}

func TestClient_HandleMessage_ProcessesUnsubscribe(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := NewClient(hub, nil, nil)
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Subscribe(client, "code")
	time.Sleep(10 * time.Millisecond)

	msg := WSMessage{
		Type:   MessageTypeUnsubscribe,
		Folder: "code",
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	client.handleMessage(data)
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	subscribers, exists := hub.subscriptions["code"]
	hub.mu.RUnlock()

	if exists {
		_, clientExists := subscribers[client]
		assert.False(t, clientExists)
	}
}

func TestClient_HandleMessage_SendsErrorForInvalidJSON(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(hub, nil, nil)

	client.handleMessage([]byte("invalid json"))

	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		err := json.Unmarshal(msg, &wsMsg)
		require.NoError(t, err)
		assert.Equal(t, MessageTypeError, wsMsg.Type)
		assert.Contains(t, wsMsg.Error, "invalid message format")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected error message to be sent")
	}
}

func TestClient_HandleMessage_SendsErrorForUnknownType(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(hub, nil, nil)

	msg := WSMessage{
		Type: "unknown_type",
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	client.handleMessage(data)

	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		err := json.Unmarshal(msg, &wsMsg)
		require.NoError(t, err)
		assert.Equal(t, MessageTypeError, wsMsg.Type)
		assert.Contains(t, wsMsg.Error, "unknown message type")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected error message to be sent")
	}
}

func TestClient_HandleMessage_SendsErrorForMissingFolder(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(hub, nil, nil)

	msg := WSMessage{
		Type: MessageTypeSubscribe,
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	client.handleMessage(data)

	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		err := json.Unmarshal(msg, &wsMsg)
		require.NoError(t, err)
		assert.Equal(t, MessageTypeError, wsMsg.Type)
		assert.Contains(t, wsMsg.Error, "folder is required")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected error message to be sent")
	}
}

func TestClient_SendError_SendsErrorMessage(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(hub, nil, nil)

	client.sendError("test error")

	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		err := json.Unmarshal(msg, &wsMsg)
		require.NoError(t, err)
		assert.Equal(t, MessageTypeError, wsMsg.Type)
		assert.Equal(t, "test error", wsMsg.Error)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected error message to be sent")
	}
}

func TestWSMessage_JSONSerialization(t *testing.T) {
	msg := WSMessage{
		Type:   MessageTypeEvent,
		Event:  "new_message",
		Folder: "code",
		Payload: map[string]interface{}{
			"message_id": 1,
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded WSMessage
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, MessageTypeEvent, decoded.Type)
	assert.Equal(t, "new_message", decoded.Event)
	assert.Equal(t, "code", decoded.Folder)
}

func TestMessageTypes_AreCorrectValues(t *testing.T) {
	assert.Equal(t, MessageType("subscribe"), MessageTypeSubscribe)
	assert.Equal(t, MessageType("unsubscribe"), MessageTypeUnsubscribe)
	assert.Equal(t, MessageType("event"), MessageTypeEvent)
	assert.Equal(t, MessageType("error"), MessageTypeError)
}

func TestClient_SendChannel_HasBuffer(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(hub, nil, nil)

	// Should be able to send multiple messages without blocking
	for i := 0; i < 10; i++ {
		client.sendError("test error")
	}

	count := 0
	for {
		select {
		case <-client.send:
			count++
		default:
			goto done
		}
	}
done:
	assert.Equal(t, 10, count)
}
