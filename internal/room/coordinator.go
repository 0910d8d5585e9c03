package room

import (
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"

	"github.com/google/uuid"
)

// Events pushed on a room channel.
const (
	EventRoomUpdate = "room_update"
	EventGameStart  = "multi_game_start"
	EventNextWord   = "multi_next_word"
	EventGameEnd    = "multi_game_end"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrWrongPhase   = errors.New("operation not valid in current room phase")
)

// Messenger pushes events to every member of a room channel.
type Messenger interface {
	Broadcast(channel, event string, payload any)
}

type Room struct {
	ID          string
	Host        string
	Members     map[string]bool
	Scores      map[string]int
	Words       []models.Word
	Index       int
	PerWordSecs int
	Phase       string
}

type UpdatePayload struct {
	RoomID  string         `json:"room_id"`
	Members []string       `json:"members"`
	Scores  map[string]int `json:"scores"`
	Phase   string         `json:"phase"`
	Action  string         `json:"action,omitempty"` // "joined" or "left"
	Actor   string         `json:"actor,omitempty"`
}

type WordPayload struct {
	Word  models.Word `json:"word"`
	Index int         `json:"index"`
	Total int         `json:"total"`
}

type EndPayload struct {
	FinalScores map[string]int `json:"final_scores"`
	Winners     []string       `json:"winners"`
	MaxScore    int            `json:"max_score"`
}

// Coordinator groups ad-hoc multiplayer rooms: creation, joining,
// synchronized word advancement and final-score aggregation. Every member
// of a room observes begin/advance/end in the same relative order because
// all round transitions run under one lock and the room's timer is the
// only advancement trigger besides the host.
type Coordinator struct {
	mu    sync.Mutex
	rooms map[string]*Room

	messenger Messenger

	roundTimers map[string]*time.Timer
	timerMu     sync.Mutex
}

func NewCoordinator(messenger Messenger) *Coordinator {
	return &Coordinator{
		rooms:       make(map[string]*Room),
		messenger:   messenger,
		roundTimers: make(map[string]*time.Timer),
	}
}

// CreateRoom allocates a fresh room with the host as sole member.
func (c *Coordinator) CreateRoom(host string) *Room {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := &Room{
		ID:      uuid.NewString(),
		Host:    host,
		Members: map[string]bool{host: true},
		Scores:  map[string]int{host: 0},
		Phase:   constants.RoomPhaseWaiting,
	}
	c.rooms[room.ID] = room

	log.Printf("Room created: room=%s host=%s", room.ID, host)
	return room
}

// JoinRoom adds the identity to the member set (idempotent if already
// present) and pushes an updated member/score snapshot to all members.
func (c *Coordinator) JoinRoom(roomID, identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	if !room.Members[identity] {
		room.Members[identity] = true
		room.Scores[identity] = 0
		c.broadcastUpdate(room, constants.ActionJoined, identity)
		return nil
	}
	c.broadcastUpdate(room, "", "")
	return nil
}

// LeaveRoom removes the identity. The room is destroyed when the host
// leaves or the last member is gone.
func (c *Coordinator) LeaveRoom(roomID, identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok {
		return
	}

	delete(room.Members, identity)
	if identity == room.Host || len(room.Members) == 0 {
		delete(c.rooms, roomID)
		c.cancelRoundTimer(roomID)
		log.Printf("Room destroyed: room=%s", roomID)
		return
	}
	c.broadcastUpdate(room, constants.ActionLeft, identity)
}

// BeginRound starts the shared run: only valid from Waiting. All members
// receive the first word simultaneously and a per-word timer starts.
func (c *Coordinator) BeginRound(roomID string, words []models.Word, perWordSecs int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if room.Phase != constants.RoomPhaseWaiting {
		return ErrWrongPhase
	}
	if len(words) == 0 {
		return ErrWrongPhase
	}

	room.Phase = constants.RoomPhaseRunning
	room.Words = words
	room.Index = 0
	room.PerWordSecs = perWordSecs
	for id := range room.Members {
		room.Scores[id] = 0
	}

	c.messenger.Broadcast(roomID, EventGameStart, WordPayload{
		Word:  room.Words[0],
		Index: 0,
		Total: len(room.Words),
	})
	c.scheduleAdvance(room)

	log.Printf("Room round started: room=%s words=%d", roomID, len(words))
	return nil
}

// AdvanceRound moves every member to the next word at the same logical
// step. A participant who answered late still sees the next word only when
// the room advances. Past the last word the room ends.
func (c *Coordinator) AdvanceRound(roomID string) error {
	c.mu.Lock()

	room, ok := c.rooms[roomID]
	if !ok {
		c.mu.Unlock()
		return ErrRoomNotFound
	}
	if room.Phase != constants.RoomPhaseRunning {
		c.mu.Unlock()
		return ErrWrongPhase
	}

	room.Index++
	if room.Index >= len(room.Words) {
		c.mu.Unlock()
		_, _, err := c.EndRoom(roomID)
		return err
	}

	c.messenger.Broadcast(roomID, EventNextWord, WordPayload{
		Word:  room.Words[room.Index],
		Index: room.Index,
		Total: len(room.Words),
	})
	c.scheduleAdvance(room)
	c.mu.Unlock()
	return nil
}

// SubmitAnswer compares against the room's current word and updates the
// identity's running score. It never advances the round by itself.
func (c *Coordinator) SubmitAnswer(roomID, identity, answer string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok {
		return false, ErrRoomNotFound
	}
	if room.Phase != constants.RoomPhaseRunning || !room.Members[identity] {
		return false, ErrWrongPhase
	}

	target := room.Words[room.Index].Text
	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(target))
	if correct {
		room.Scores[identity]++
	}
	c.broadcastUpdate(room, "", "")
	return correct, nil
}

// EndRoom transitions to Ended, cancels the round timer and pushes final
// scores with the maximum-score winners. Ties are not broken: multiple
// winners are possible.
func (c *Coordinator) EndRoom(roomID string) (map[string]int, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	if room.Phase == constants.RoomPhaseEnded {
		return room.Scores, winners(room.Scores), nil
	}

	room.Phase = constants.RoomPhaseEnded
	c.cancelRoundTimer(roomID)

	final := make(map[string]int, len(room.Scores))
	for id, s := range room.Scores {
		final[id] = s
	}
	won := winners(final)
	maxScore := 0
	if len(won) > 0 {
		maxScore = final[won[0]]
	}

	c.messenger.Broadcast(roomID, EventGameEnd, EndPayload{
		FinalScores: final,
		Winners:     won,
		MaxScore:    maxScore,
	})

	log.Printf("Room ended: room=%s winners=%v", roomID, won)
	return final, won, nil
}

// Snapshot returns a copy of the room state, for catch-up and tests.
func (c *Coordinator) Snapshot(roomID string) (Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok {
		return Room{}, false
	}

	copied := *room
	copied.Members = make(map[string]bool, len(room.Members))
	for id := range room.Members {
		copied.Members[id] = true
	}
	copied.Scores = make(map[string]int, len(room.Scores))
	for id, s := range room.Scores {
		copied.Scores[id] = s
	}
	return copied, true
}

func (c *Coordinator) broadcastUpdate(room *Room, action, actor string) {
	members := make([]string, 0, len(room.Members))
	for id := range room.Members {
		members = append(members, id)
	}
	sort.Strings(members)

	scores := make(map[string]int, len(room.Scores))
	for id, s := range room.Scores {
		if room.Members[id] {
			scores[id] = s
		}
	}

	c.messenger.Broadcast(room.ID, EventRoomUpdate, UpdatePayload{
		RoomID:  room.ID,
		Members: members,
		Scores:  scores,
		Phase:   room.Phase,
		Action:  action,
		Actor:   actor,
	})
}

func (c *Coordinator) scheduleAdvance(room *Room) {
	if room.PerWordSecs <= 0 {
		return
	}

	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if timer, ok := c.roundTimers[room.ID]; ok {
		timer.Stop()
	}
	roomID := room.ID
	c.roundTimers[roomID] = time.AfterFunc(time.Duration(room.PerWordSecs)*time.Second, func() {
		if err := c.AdvanceRound(roomID); err != nil && !errors.Is(err, ErrRoomNotFound) && !errors.Is(err, ErrWrongPhase) {
			log.Printf("Round auto-advance failed: room=%s err=%v", roomID, err)
		}
	})
}

func (c *Coordinator) cancelRoundTimer(roomID string) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if timer, ok := c.roundTimers[roomID]; ok {
		timer.Stop()
		delete(c.roundTimers, roomID)
	}
}

func winners(scores map[string]int) []string {
	maxScore := -1
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	var won []string
	for id, s := range scores {
		if s == maxScore {
			won = append(won, id)
		}
	}
	sort.Strings(won)
	return won
}
