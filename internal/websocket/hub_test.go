package websocket

import (
	"math/rand"
	"testing"

	"spelling-service/config"
	"spelling-service/internal/constants"
	"spelling-service/internal/engine"
	"spelling-service/internal/models"
	"spelling-service/internal/selector"
)

func newTestHub() *Hub {
	return NewHub(nil, nil, nil, nil,
		selector.New(rand.New(rand.NewSource(1))),
		config.GameConfig{
			DefaultWordLimit:      5,
			DefaultGlobalSeconds:  60,
			DefaultPerWordSeconds: 10,
		},
		"results")
}

func soloWords() []models.Word {
	return []models.Word{
		{ID: "1", Text: "hive", Definition: "a bee house"},
		{ID: "2", Text: "nectar", Definition: "flower sugar"},
		{ID: "3", Text: "pollen", Definition: "flower dust"},
	}
}

func newRunningEngine() *engine.Engine {
	eng := engine.New(engine.Config{
		Words:          soloWords(),
		Mode:           constants.ModePractice,
		GameType:       constants.GameTypeSpelling,
		PerWordSeconds: 5,
	}, rand.New(rand.NewSource(7)))
	eng.Start()
	return eng
}

// The tick callback closes over the engine its runner was created for;
// the hub loop swapping the connection's run must not race ticks still in
// flight for the old one.
func TestTickCallbackIgnoresReplacedRun(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "u1", "class-1", "school-1", "student")

	eng := newRunningEngine()
	c.engine = eng
	onTick := func(out engine.Outcome) { h.onSoloTick(c, eng, out) }

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				onTick(engine.Outcome{TimeLeft: 4})
			} else {
				onTick(engine.Outcome{Evaluated: true, Index: 1, TimeLeft: 5})
			}
		}
	}()
	for i := 0; i < 200; i++ {
		c.engine = nil
		c.engine = eng
	}
	<-done
}

func TestSetInputRoutedToEngine(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "u1", "class-1", "school-1", "student")
	eng := newRunningEngine()
	c.engine = eng

	h.handleClientMessage(&ClientMessage{
		Client:  c,
		Message: Message{Type: MessageTypeSetInput, Payload: map[string]any{"input": "nec"}},
	})

	if got := eng.Input(); got != "nec" {
		t.Errorf("engine input = %q, want %q", got, "nec")
	}
}

func TestLiveTestSupersedesSoloRuns(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "u1", "class-1", "school-1", "student")
	h.subscribe(c, c.ClassID)
	eng := newRunningEngine()
	c.engine = eng

	h.supersedeSoloRuns(c.ClassID)

	if got := eng.State(); got != engine.StateIdle {
		t.Errorf("engine state = %q, want idle after supersession", got)
	}
}

func TestLiveIdentitiesIncludeDisconnectedAnswerers(t *testing.T) {
	h := newTestHub()
	student := NewClient(h, nil, "u1", "class-1", "school-1", "student")
	teacher := NewClient(h, nil, "t1", "class-1", "school-1", "teacher")
	h.subscribe(student, "class-1")
	h.subscribe(teacher, "class-1")

	lt := &liveTest{
		classID: "class-1",
		scores:  map[string]int{"u1": 2, "u2": 3},
		schools: map[string]string{"u2": "school-2"},
	}

	ids := h.liveIdentities(lt)
	if len(ids) != 2 {
		t.Fatalf("identities = %v, want u1 and u2 only", ids)
	}
	if ids["u1"] != "school-1" {
		t.Errorf("u1 school = %q, want school-1", ids["u1"])
	}
	if ids["u2"] != "school-2" {
		t.Errorf("disconnected u2 school = %q, want school-2", ids["u2"])
	}
}
