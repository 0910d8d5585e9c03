package websocket

import (
	"spelling-service/internal/engine"
	"spelling-service/internal/models"
)

type MessageType string

const (
	// Client -> Server
	MessageTypeStartTest    MessageType = "start_test"
	MessageTypeStopTest     MessageType = "stop_test"
	MessageTypeSubmitAnswer MessageType = "submit_answer"
	MessageTypeCreateRoom   MessageType = "create_room"
	MessageTypeJoinRoom     MessageType = "join_room"
	MessageTypeLeaveRoom    MessageType = "leave_room"
	MessageTypeBeginRound   MessageType = "begin_round"
	MessageTypeAdvanceRound MessageType = "advance_round"
	MessageTypeMultiAnswer  MessageType = "multi_answer"
	MessageTypeEndRoom      MessageType = "end_room"
	MessageTypeStartGame    MessageType = "start_game"
	MessageTypeAnswer       MessageType = "answer"
	MessageTypeChoose       MessageType = "choose"
	MessageTypeSetInput     MessageType = "set_input"
	MessageTypeHint         MessageType = "hint"
	MessageTypeSkip         MessageType = "skip"
	MessageTypeStopGame     MessageType = "stop_game"
	MessageTypePing         MessageType = "ping"

	// Server -> Client
	MessageTypeConnected     MessageType = "connected"
	MessageTypeTestStarted   MessageType = "test_started"
	MessageTypeTestStopped   MessageType = "test_stopped"
	MessageTypeNewWord       MessageType = "new_word"
	MessageTypeRoomCreated   MessageType = "room_created"
	MessageTypeRoomUpdate    MessageType = "room_update"
	MessageTypeMultiStart    MessageType = "multi_game_start"
	MessageTypeMultiNextWord MessageType = "multi_next_word"
	MessageTypeMultiEnd      MessageType = "multi_game_end"
	MessageTypeGameStarted   MessageType = "game_started"
	MessageTypePrompt        MessageType = "prompt"
	MessageTypeAnswerResult  MessageType = "answer_result"
	MessageTypeHintResult    MessageType = "hint_result"
	MessageTypeTick          MessageType = "tick"
	MessageTypeGameFinished  MessageType = "game_finished"
	MessageTypeWarning       MessageType = "warning"
	MessageTypeError         MessageType = "error"
	MessageTypePong          MessageType = "pong"
)

type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

type StartTestPayload struct {
	ClassID          string `json:"class_id"`
	Mode             string `json:"mode"`
	GlobalTimerSecs  int    `json:"global_timer_seconds,omitempty"`
	PerWordTimerSecs int    `json:"per_word_timer_seconds,omitempty"`
	WordLimit        int    `json:"word_limit,omitempty"`
}

type StopTestPayload struct {
	ClassID string `json:"class_id"`
}

type SubmitAnswerPayload struct {
	ClassID   string `json:"class_id"`
	Word      string `json:"word"`
	Answer    string `json:"answer"`
	TimeTaken int    `json:"time_taken"`
}

type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

type BeginRoundPayload struct {
	RoomID           string `json:"room_id"`
	ClassID          string `json:"class_id"`
	PerWordTimerSecs int    `json:"per_word_timer_seconds,omitempty"`
	WordLimit        int    `json:"word_limit,omitempty"`
}

type MultiAnswerPayload struct {
	RoomID string `json:"room_id"`
	Answer string `json:"answer"`
}

type RoomRefPayload struct {
	RoomID string `json:"room_id"`
}

type StartGamePayload struct {
	ClassID          string `json:"class_id"`
	Mode             string `json:"mode"`
	GameType         string `json:"game_type"`
	PerWordTimerSecs int    `json:"per_word_timer_seconds,omitempty"`
	GlobalTimerSecs  int    `json:"global_timer_seconds,omitempty"`
	WordLimit        int    `json:"word_limit,omitempty"`
}

type AnswerPayload struct {
	Answer string `json:"answer"`
}

type ChoosePayload struct {
	Correct bool `json:"is_correct"`
}

type SetInputPayload struct {
	Input string `json:"input"`
}

type ConnectedPayload struct {
	UserID  string `json:"user_id"`
	ClassID string `json:"class_id"`
	Role    string `json:"role"`
}

type GameStartedPayload struct {
	Mode     string `json:"mode"`
	GameType string `json:"game_type"`
	Total    int    `json:"total"`
	TimeLeft int    `json:"time_left"`
}

// PromptPayload presents the current word in whichever shape the game
// variant needs: the raw word for spelling, a scramble for unscramble,
// a blanked word for blanks, four options for quiz/origin.
type PromptPayload struct {
	Word     models.Word     `json:"word"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	TimeLeft int             `json:"time_left"`
	Scramble string          `json:"scramble,omitempty"`
	Blanks   string          `json:"blanks,omitempty"`
	Options  []engine.Option `json:"options,omitempty"`
}

type AnswerResultPayload struct {
	Correct bool `json:"is_correct"`
	Score   int  `json:"score"`
	Index   int  `json:"index"`
}

type HintResultPayload struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Budget int    `json:"budget"`
}

type TickPayload struct {
	TimeLeft int `json:"time_left"`
}

type GameFinishedPayload struct {
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	Mode      string `json:"mode"`
	TimeTaken int    `json:"time_taken_seconds"`
	Tier      string `json:"tier"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
