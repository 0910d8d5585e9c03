package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"spelling-service/config"
	"spelling-service/internal/client"
	"spelling-service/internal/repository"
	"spelling-service/internal/room"
	"spelling-service/internal/selector"
	"spelling-service/internal/session"
	"spelling-service/pkg/cache"
	"spelling-service/pkg/messaging"
)

type ClientMessage struct {
	Client  *Client
	Message Message
}

// Hub is the broker: it keys connected clients by channel (a class id for
// live tests, a room id for multiplayer) and routes inbound events to the
// SessionBroadcaster, the RoomCoordinator, or the per-connection solo
// engine. It implements the Messenger interface both of those take.
type Hub struct {
	clients       map[string]map[*Client]bool
	Register      chan *Client
	Unregister    chan *Client
	HandleMessage chan *ClientMessage

	broadcaster *session.Broadcaster
	coordinator *room.Coordinator
	wordClient  *client.WordClient
	resultRepo  *repository.ResultRepository
	redisClient *cache.RedisClient
	rabbit      *messaging.RabbitMQClient
	selector    *selector.Selector
	gameCfg     config.GameConfig
	resultQueue string

	mu sync.RWMutex

	liveTests map[string]*liveTest
	liveMu    sync.Mutex
}

func NewHub(
	wordClient *client.WordClient,
	resultRepo *repository.ResultRepository,
	redisClient *cache.RedisClient,
	rabbit *messaging.RabbitMQClient,
	sel *selector.Selector,
	gameCfg config.GameConfig,
	resultQueue string,
) *Hub {
	h := &Hub{
		clients:       make(map[string]map[*Client]bool),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		HandleMessage: make(chan *ClientMessage),
		wordClient:    wordClient,
		resultRepo:    resultRepo,
		redisClient:   redisClient,
		rabbit:        rabbit,
		selector:      sel,
		gameCfg:       gameCfg,
		resultQueue:   resultQueue,
		liveTests:     make(map[string]*liveTest),
	}
	h.broadcaster = session.NewBroadcaster(sel, h, redisClient)
	h.coordinator = room.NewCoordinator(h)
	return h
}

// Broadcaster exposes the session state for the REST poll surface.
func (h *Hub) Broadcaster() *session.Broadcaster {
	return h.broadcaster
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case clientMsg := <-h.HandleMessage:
			h.handleClientMessage(clientMsg)
		}
	}
}

// Broadcast pushes an event to every client subscribed to the channel.
// Satisfies session.Messenger and room.Messenger.
func (h *Hub) Broadcast(channel, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[channel] {
		c.SendMessage(MessageType(event), payload)
	}
}

func (h *Hub) subscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[*Client]bool)
	}
	h.clients[channel][c] = true
	c.channels[channel] = true
}

func (h *Hub) unsubscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[channel]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
	delete(c.channels, channel)
}

func (h *Hub) registerClient(c *Client) {
	if c.ClassID != "" {
		h.subscribe(c, c.ClassID)
	}

	log.Printf("Client registered: user=%s class=%s role=%s", c.UserID, c.ClassID, c.Role)

	c.SendMessage(MessageTypeConnected, ConnectedPayload{
		UserID:  c.UserID,
		ClassID: c.ClassID,
		Role:    c.Role,
	})

	// Late-join catch-up: a subscriber arriving after startSession still
	// learns the active config and the word currently being shown.
	go h.sendCatchUp(c)
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	channels := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		channels = append(channels, ch)
	}
	h.mu.Unlock()

	for _, ch := range channels {
		h.unsubscribe(c, ch)
		if ch != c.ClassID {
			h.coordinator.LeaveRoom(ch, c.UserID)
		}
	}

	h.stopSoloRun(c)
	close(c.Send)

	log.Printf("Client unregistered: user=%s", c.UserID)
}

func (h *Hub) handleClientMessage(clientMsg *ClientMessage) {
	c := clientMsg.Client
	msg := clientMsg.Message

	switch msg.Type {
	case MessageTypeStartTest:
		if !c.IsTeacher() {
			c.SendError("Only a teacher can start a live test")
			return
		}
		h.handleStartTest(c, msg.Payload)

	case MessageTypeStopTest:
		if !c.IsTeacher() {
			c.SendError("Only a teacher can stop a live test")
			return
		}
		h.handleStopTest(c, msg.Payload)

	case MessageTypeSubmitAnswer:
		h.handleLiveAnswer(c, msg.Payload)

	case MessageTypeCreateRoom:
		h.handleCreateRoom(c)

	case MessageTypeJoinRoom:
		h.handleJoinRoom(c, msg.Payload)

	case MessageTypeLeaveRoom:
		h.handleLeaveRoom(c, msg.Payload)

	case MessageTypeBeginRound:
		h.handleBeginRound(c, msg.Payload)

	case MessageTypeAdvanceRound:
		h.handleAdvanceRound(c, msg.Payload)

	case MessageTypeMultiAnswer:
		h.handleMultiAnswer(c, msg.Payload)

	case MessageTypeEndRoom:
		h.handleEndRoom(c, msg.Payload)

	case MessageTypeStartGame:
		h.handleStartGame(c, msg.Payload)

	case MessageTypeAnswer:
		h.handleAnswer(c, msg.Payload)

	case MessageTypeChoose:
		h.handleChoose(c, msg.Payload)

	case MessageTypeSetInput:
		h.handleSetInput(c, msg.Payload)

	case MessageTypeHint:
		h.handleHint(c)

	case MessageTypeSkip:
		h.handleSkip(c)

	case MessageTypeStopGame:
		h.handleStopGame(c)

	case MessageTypePing:
		c.SendMessage(MessageTypePong, nil)

	default:
		c.SendError(fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

// decodePayload round-trips the loosely typed payload into the expected
// struct.
func decodePayload(payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
