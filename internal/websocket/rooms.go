package websocket

import (
	"context"
	"errors"
	"log"
	"time"

	"spelling-service/internal/room"
	"spelling-service/internal/selector"
)

func (h *Hub) handleCreateRoom(c *Client) {
	r := h.coordinator.CreateRoom(c.UserID)
	h.subscribe(c, r.ID)
	c.SendMessage(MessageTypeRoomCreated, RoomRefPayload{RoomID: r.ID})
}

func (h *Hub) handleJoinRoom(c *Client, payload any) {
	var req JoinRoomPayload
	if err := decodePayload(payload, &req); err != nil || req.RoomID == "" {
		c.SendError("Invalid join_room payload")
		return
	}

	// Subscribe first so the membership update reaches the joiner too.
	h.subscribe(c, req.RoomID)
	if err := h.coordinator.JoinRoom(req.RoomID, c.UserID); err != nil {
		h.unsubscribe(c, req.RoomID)
		c.SendError("Room not found")
		return
	}
}

func (h *Hub) handleLeaveRoom(c *Client, payload any) {
	var req RoomRefPayload
	if err := decodePayload(payload, &req); err != nil || req.RoomID == "" {
		c.SendError("Invalid leave_room payload")
		return
	}
	h.coordinator.LeaveRoom(req.RoomID, c.UserID)
	h.unsubscribe(c, req.RoomID)
}

func (h *Hub) handleBeginRound(c *Client, payload any) {
	var req BeginRoundPayload
	if err := decodePayload(payload, &req); err != nil || req.RoomID == "" {
		c.SendError("Invalid begin_round payload")
		return
	}
	if !h.isRoomHost(req.RoomID, c.UserID) {
		c.SendError("Only the host can start the round")
		return
	}
	if req.ClassID == "" {
		req.ClassID = c.ClassID
	}
	if req.WordLimit <= 0 {
		req.WordLimit = h.gameCfg.DefaultWordLimit
	}
	if req.PerWordTimerSecs <= 0 {
		req.PerWordTimerSecs = h.gameCfg.DefaultPerWordSeconds
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := h.wordClient.GetWords(ctx, req.ClassID)
	if err != nil {
		log.Printf("Failed to fetch word pool for room %s: %v", req.RoomID, err)
		c.SendError("Could not load words for this round")
		return
	}
	words, err := h.selector.Select(pool, selector.Options{
		SourceFilter: selector.FilterAll,
		Count:        req.WordLimit,
	})
	if err != nil {
		c.SendError("No words available for this round")
		return
	}

	if err := h.coordinator.BeginRound(req.RoomID, words, req.PerWordTimerSecs); err != nil {
		if errors.Is(err, room.ErrWrongPhase) {
			c.SendError("The round has already started")
		} else {
			c.SendError("Room not found")
		}
	}
}

func (h *Hub) handleAdvanceRound(c *Client, payload any) {
	var req RoomRefPayload
	if err := decodePayload(payload, &req); err != nil || req.RoomID == "" {
		c.SendError("Invalid advance_round payload")
		return
	}
	if !h.isRoomHost(req.RoomID, c.UserID) {
		c.SendError("Only the host can advance the round")
		return
	}
	if err := h.coordinator.AdvanceRound(req.RoomID); err != nil {
		c.SendError("Could not advance the round")
	}
}

func (h *Hub) handleMultiAnswer(c *Client, payload any) {
	var req MultiAnswerPayload
	if err := decodePayload(payload, &req); err != nil || req.RoomID == "" {
		c.SendError("Invalid multi_answer payload")
		return
	}

	correct, err := h.coordinator.SubmitAnswer(req.RoomID, c.UserID, req.Answer)
	if err != nil {
		c.SendError("No round in progress for this room")
		return
	}
	c.SendMessage(MessageTypeAnswerResult, AnswerResultPayload{Correct: correct})
}

func (h *Hub) handleEndRoom(c *Client, payload any) {
	var req RoomRefPayload
	if err := decodePayload(payload, &req); err != nil || req.RoomID == "" {
		c.SendError("Invalid end_room payload")
		return
	}
	if !h.isRoomHost(req.RoomID, c.UserID) {
		c.SendError("Only the host can end the room")
		return
	}
	if _, _, err := h.coordinator.EndRoom(req.RoomID); err != nil {
		c.SendError("Room not found")
	}
}

func (h *Hub) isRoomHost(roomID, userID string) bool {
	snapshot, ok := h.coordinator.Snapshot(roomID)
	return ok && snapshot.Host == userID
}
