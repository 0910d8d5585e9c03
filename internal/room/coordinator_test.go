package room

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"
)

type fakeMessenger struct {
	mu       sync.Mutex
	events   []string
	payloads []any
}

func (f *fakeMessenger) Broadcast(channel, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	f.payloads = append(f.payloads, payload)
}

func (f *fakeMessenger) updates() []UpdatePayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []UpdatePayload
	for _, p := range f.payloads {
		if u, ok := p.(UpdatePayload); ok {
			out = append(out, u)
		}
	}
	return out
}

func (f *fakeMessenger) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	copy(out, f.events)
	return out
}

func roundWords() []models.Word {
	return []models.Word{
		{ID: "1", Text: "hive"},
		{ID: "2", Text: "nectar"},
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	c := NewCoordinator(&fakeMessenger{})
	if err := c.JoinRoom("nope", "A"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("JoinRoom() error = %v, want ErrRoomNotFound", err)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	c := NewCoordinator(&fakeMessenger{})
	room := c.CreateRoom("A")

	if err := c.JoinRoom(room.ID, "B"); err != nil {
		t.Fatal(err)
	}
	if err := c.JoinRoom(room.ID, "B"); err != nil {
		t.Fatal(err)
	}

	snap, _ := c.Snapshot(room.ID)
	if len(snap.Members) != 2 {
		t.Errorf("members = %d, want 2 after duplicate join", len(snap.Members))
	}
}

func TestRoomScenario(t *testing.T) {
	// Members A and B, round word "hive": A answers correctly, B does not.
	m := &fakeMessenger{}
	c := NewCoordinator(m)
	room := c.CreateRoom("A")
	if err := c.JoinRoom(room.ID, "B"); err != nil {
		t.Fatal(err)
	}

	if err := c.BeginRound(room.ID, roundWords(), 0); err != nil {
		t.Fatal(err)
	}

	correct, err := c.SubmitAnswer(room.ID, "A", "hive")
	if err != nil || !correct {
		t.Fatalf("A's answer correct=%v err=%v, want correct", correct, err)
	}
	correct, err = c.SubmitAnswer(room.ID, "B", "hiv")
	if err != nil || correct {
		t.Fatalf("B's answer correct=%v err=%v, want incorrect", correct, err)
	}

	final, won, err := c.EndRoom(room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final["A"] != 1 || final["B"] != 0 {
		t.Errorf("final scores = %v, want A:1 B:0", final)
	}
	if !reflect.DeepEqual(won, []string{"A"}) {
		t.Errorf("winners = %v, want [A] alone", won)
	}
}

func TestWinnersTiesAreShared(t *testing.T) {
	c := NewCoordinator(&fakeMessenger{})
	room := c.CreateRoom("A")
	if err := c.JoinRoom(room.ID, "B"); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginRound(room.ID, roundWords(), 0); err != nil {
		t.Fatal(err)
	}

	if _, err := c.SubmitAnswer(room.ID, "A", "hive"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SubmitAnswer(room.ID, "B", "hive"); err != nil {
		t.Fatal(err)
	}

	_, won, err := c.EndRoom(room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(won, []string{"A", "B"}) {
		t.Errorf("winners = %v, want both tied members", won)
	}
}

func TestBeginRoundPhaseGuard(t *testing.T) {
	c := NewCoordinator(&fakeMessenger{})
	room := c.CreateRoom("A")

	if err := c.BeginRound(room.ID, roundWords(), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginRound(room.ID, roundWords(), 0); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second BeginRound error = %v, want ErrWrongPhase", err)
	}
}

func TestAdvancePastLastWordEndsRoom(t *testing.T) {
	m := &fakeMessenger{}
	c := NewCoordinator(m)
	room := c.CreateRoom("A")
	if err := c.BeginRound(room.ID, roundWords(), 0); err != nil {
		t.Fatal(err)
	}

	if err := c.AdvanceRound(room.ID); err != nil {
		t.Fatal(err)
	}
	if err := c.AdvanceRound(room.ID); err != nil {
		t.Fatal(err)
	}

	snap, _ := c.Snapshot(room.ID)
	if snap.Phase != constants.RoomPhaseEnded {
		t.Errorf("phase = %s, want ended after advancing past the last word", snap.Phase)
	}

	events := m.all()
	want := []string{EventGameStart, EventNextWord, EventGameEnd}
	got := make([]string, 0, len(events))
	for _, e := range events {
		if e != EventRoomUpdate {
			got = append(got, e)
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round events = %v, want %v in order", got, want)
	}
}

func TestSubmitAfterEndRejected(t *testing.T) {
	c := NewCoordinator(&fakeMessenger{})
	room := c.CreateRoom("A")
	if err := c.BeginRound(room.ID, roundWords(), 0); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.EndRoom(room.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := c.SubmitAnswer(room.ID, "A", "hive"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("submit after end error = %v, want ErrWrongPhase", err)
	}
}

func TestMembershipUpdatesCarryAction(t *testing.T) {
	m := &fakeMessenger{}
	c := NewCoordinator(m)
	room := c.CreateRoom("A")

	if err := c.JoinRoom(room.ID, "B"); err != nil {
		t.Fatal(err)
	}
	c.LeaveRoom(room.ID, "B")

	ups := m.updates()
	if len(ups) != 2 {
		t.Fatalf("updates = %d, want 2", len(ups))
	}
	if ups[0].Action != constants.ActionJoined || ups[0].Actor != "B" {
		t.Errorf("join update action=%q actor=%q, want joined/B", ups[0].Action, ups[0].Actor)
	}
	if ups[1].Action != constants.ActionLeft || ups[1].Actor != "B" {
		t.Errorf("leave update action=%q actor=%q, want left/B", ups[1].Action, ups[1].Actor)
	}

	// A duplicate join is a plain snapshot with no action.
	if err := c.JoinRoom(room.ID, "A"); err != nil {
		t.Fatal(err)
	}
	ups = m.updates()
	if last := ups[len(ups)-1]; last.Action != "" || last.Actor != "" {
		t.Errorf("duplicate join update action=%q actor=%q, want empty", last.Action, last.Actor)
	}
}

func TestHostLeavingDestroysRoom(t *testing.T) {
	c := NewCoordinator(&fakeMessenger{})
	room := c.CreateRoom("A")
	if err := c.JoinRoom(room.ID, "B"); err != nil {
		t.Fatal(err)
	}

	c.LeaveRoom(room.ID, "A")
	if _, ok := c.Snapshot(room.ID); ok {
		t.Error("room must be destroyed when the host leaves")
	}
}
