package services

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"daymark-app/daymark/broker"
	"daymark-app/daymark/models"
)

// ServerMessage is the envelope for every websocket push.
type ServerMessage struct {
	Type    string      `json:"type"`
	Event   string      `json:"event,omitempty"`
	Payload interface{} `json:"payload"`
}

type WebSocketServiceInterface interface {
	Start()
	Stop()
	Broadcast(message ServerMessage)
	HandleConnection(c *gin.Context)
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// WebSocketService pushes change events, reminder notifications and
// view-state snapshots to connected clients. Clients never send intents over
// the socket; the REST surface carries those.
type WebSocketService struct {
	mu          sync.RWMutex
	clients     map[string]*wsClient
	upgrader    websocket.Upgrader
	unsubscribe []func()
	running     bool
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		clients: make(map[string]*wsClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Start subscribes the service to every broker topic it forwards.
func (ws *WebSocketService) Start() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.running {
		return
	}
	ws.running = true

	for _, topic := range broker.EntityTopics {
		ws.unsubscribe = append(ws.unsubscribe, broker.Subscribe(topic, ws.handleEntityEvent))
	}
	ws.unsubscribe = append(ws.unsubscribe,
		broker.Subscribe(broker.NotificationTopic, ws.handleNotification))
}

func (ws *WebSocketService) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !ws.running {
		return
	}
	ws.running = false

	for _, unsub := range ws.unsubscribe {
		unsub()
	}
	ws.unsubscribe = nil

	for id, client := range ws.clients {
		close(client.send)
		delete(ws.clients, id)
	}
}

func (ws *WebSocketService) handleEntityEvent(event broker.Event) {
	ws.Broadcast(ServerMessage{
		Type:    "event",
		Event:   string(event.Type),
		Payload: event,
	})
}

func (ws *WebSocketService) handleNotification(event broker.Event) {
	notification := models.NotificationEvent{TodoID: event.EntityID}
	if title, ok := event.Payload["title"].(string); ok {
		notification.Title = title
	}
	if ts, ok := event.Payload["timestamp"].(string); ok {
		notification.Timestamp = ts
	}

	ws.Broadcast(ServerMessage{
		Type:    "notification",
		Event:   string(event.Type),
		Payload: notification,
	})
}

func (ws *WebSocketService) Broadcast(message ServerMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		zap.L().Error("failed to marshal websocket message", zap.Error(err))
		return
	}

	ws.mu.RLock()
	defer ws.mu.RUnlock()
	for _, client := range ws.clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop the message rather than block the bus.
			zap.L().Warn("dropping websocket message", zap.String("client", client.id))
		}
	}
}

// HandleConnection upgrades an HTTP request and registers the client.
func (ws *WebSocketService) HandleConnection(c *gin.Context) {
	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 64),
	}

	ws.mu.Lock()
	ws.clients[client.id] = client
	ws.mu.Unlock()

	zap.L().Info("websocket client connected", zap.String("client", client.id))

	go ws.writePump(client)
	go ws.readPump(client)
}

func (ws *WebSocketService) writePump(client *wsClient) {
	for message := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			ws.removeClient(client)
			return
		}
	}
	client.conn.Close()
}

// readPump only exists to notice the peer going away.
func (ws *WebSocketService) readPump(client *wsClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			ws.removeClient(client)
			return
		}
	}
}

func (ws *WebSocketService) removeClient(client *wsClient) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, ok := ws.clients[client.id]; ok {
		delete(ws.clients, client.id)
		close(client.send)
		client.conn.Close()
		zap.L().Info("websocket client disconnected", zap.String("client", client.id))
	}
}

func (ws *WebSocketService) clientCount() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.clients)
}

var WebSocketServiceInstance WebSocketServiceInterface
