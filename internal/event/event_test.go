package event

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stellarlinkco/aptname/internal/random"
	"github.com/stellarlinkco/aptname/internal/sched"
	"github.com/stellarlinkco/aptname/internal/textindex"
)

type harness struct {
	name     *textindex.Name
	src      *random.Scripted
	sched    *sched.Manual
	notified int
}

func newHarness(text string) *harness {
	return &harness{
		name:  textindex.NewName(text),
		src:   &random.Scripted{},
		sched: sched.NewManual(),
	}
}

func (h *harness) event(t *testing.T, kind Kind) *Event {
	t.Helper()
	e, err := New(kind, &Context{Name: h.name, Rand: h.src, Sched: h.sched}, func() { h.notified++ })
	require.NoError(t, err)
	return e
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New("quake", &Context{}, nil)
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestKinds_RegistrationOrder(t *testing.T) {
	got := Kinds()
	if len(got) != 2 || got[0] != Fire || got[1] != Flood {
		t.Errorf("Kinds() = %v, want [fire flood]", got)
	}
	for _, k := range got {
		if _, ok := kinds[k]; !ok {
			t.Errorf("kind %q has no behavior", k)
		}
	}
}

func TestActivate_Idempotent(t *testing.T) {
	h := newHarness("가나다")
	e := h.event(t, Flood)

	e.Activate()
	e.Activate()
	e.ForceActivate()
	h.sched.Advance(3 * time.Second)

	if e.Step() != 3 {
		t.Errorf("Step() = %d after 3 periods, want 3", e.Step())
	}
	if h.sched.Pending() != 1 {
		t.Errorf("armed timers = %d, want 1", h.sched.Pending())
	}
}

func TestDeactivate_StopsTicking(t *testing.T) {
	h := newHarness("가나다")
	e := h.event(t, Flood)
	e.Activate()
	e.Deactivate()
	e.Deactivate()
	h.sched.Advance(5 * time.Second)

	if e.Active() {
		t.Error("Active() = true after Deactivate")
	}
	if e.Step() != 0 {
		t.Errorf("Step() = %d after Deactivate, want 0", e.Step())
	}
}

func TestFire_PollActivatesOnMarker(t *testing.T) {
	h := newHarness("가나다")
	e := h.event(t, Fire)

	if e.PollActivation() {
		t.Fatal("fire activated without a marker")
	}
	require.NoError(t, h.name.Insert(1, fireMarker))
	h.src.Ints = []int{0}
	if !e.PollActivation() {
		t.Fatal("fire did not activate on a marker")
	}
	if e.PollActivation() {
		t.Error("second poll reported a new activation")
	}
	if got := h.name.String(); got != "🔥🔥가🔥나다" {
		t.Errorf("name = %q, want %q", got, "🔥🔥가🔥나다")
	}
	if h.notified != 1 {
		t.Errorf("notified = %d, want 1", h.notified)
	}
}

func TestFire_Tick(t *testing.T) {
	h := newHarness("가나다")
	e := h.event(t, Fire)

	h.src.Ints = []int{1}
	e.ForceActivate()
	require.Equal(t, "가🔥🔥나다", h.name.String())
	if e.TickPeriod() != 2*time.Second {
		t.Errorf("TickPeriod() = %v, want 2s", e.TickPeriod())
	}

	// burn: 가 survives (0.9), 나 burns (0.1)
	// grow: left marker stays (0.5), right marker sparks (0.3)
	h.src.Floats = []float64{0.9, 0.1, 0.5, 0.3}
	h.sched.Advance(2 * time.Second)

	if got := h.name.String(); got != "가🔥🔥🔥다" {
		t.Errorf("name = %q, want %q", got, "가🔥🔥🔥다")
	}
	if h.notified != 2 {
		t.Errorf("notified = %d, want 2", h.notified)
	}
}

func TestFire_IsolatedMarkersGoOut(t *testing.T) {
	h := newHarness("🔥")
	e := h.event(t, Fire)
	h.src.Ints = []int{0}
	require.True(t, e.PollActivation())
	require.Equal(t, "🔥🔥🔥", h.name.String())

	h.src.Floats = []float64{0.5, 0.5, 0.5}
	h.sched.Advance(2 * time.Second)
	if got := h.name.String(); got != "" {
		t.Fatalf("name = %q, want empty", got)
	}

	if e.PollActivation() {
		t.Error("poll on a burnt-out name reported activation")
	}
	if e.Active() {
		t.Error("fire still active without markers")
	}
}

func TestFire_NoChangeNoNotify(t *testing.T) {
	h := newHarness("가나")
	e := h.event(t, Fire)
	h.src.Ints = []int{2}
	e.Activate()
	h.notified = 0

	require.Equal(t, "가나🔥🔥", h.name.String())

	h.src.Floats = []float64{0.9, 0.9, 0.9}
	h.sched.Advance(2 * time.Second)
	if h.notified != 0 {
		t.Errorf("notified = %d for an unchanged name", h.notified)
	}
}

func TestFlood_NeverSelfActivates(t *testing.T) {
	h := newHarness("🌊가나")
	e := h.event(t, Flood)
	if e.PollActivation() || e.Active() {
		t.Error("flood activated from text")
	}
}

func TestFlood_RiseAndDriftRight(t *testing.T) {
	h := newHarness("가나")
	e := h.event(t, Flood)

	e.ForceActivate()
	require.Equal(t, "🌊가나", h.name.String())

	// the first marker is blocked by the second, the second drifts right
	h.src.Floats = []float64{0.5}
	h.sched.Advance(time.Second)

	if got := h.name.String(); got != "🌊가🌊나" {
		t.Errorf("name = %q, want %q", got, "🌊가🌊나")
	}
	if e.Step() != 1 {
		t.Errorf("Step() = %d, want 1", e.Step())
	}
}

func TestFlood_StopsRisingAfterTenTicks(t *testing.T) {
	h := newHarness(strings.Repeat("가", 40))
	e := h.event(t, Flood)
	e.ForceActivate()

	h.src.Floats = nil
	for range 15 {
		// every draw is 0: markers always drift right
		h.sched.Advance(time.Second)
	}
	if got := strings.Count(h.name.String(), floodMarker); got != 1+floodRiseTicks {
		t.Errorf("markers = %d, want %d", got, 1+floodRiseTicks)
	}
}

func TestFlood_DriftLeftAndDrain(t *testing.T) {
	h := newHarness("가🌊나")
	e := h.event(t, Flood)
	e.active = true
	e.step = floodRiseTicks

	h.src.Floats = []float64{0.9, 0.1}
	driftFlood(e)
	if got := h.name.String(); got != "🌊가나" {
		t.Fatalf("name = %q, want %q", got, "🌊가나")
	}

	require.NoError(t, h.name.Replace(0, h.name.Len(), "가나🌊"))
	driftFlood(e)
	if got := h.name.String(); got != "가나" {
		t.Fatalf("name = %q, want %q", got, "가나")
	}

	e.PollActivation()
	if e.Active() {
		t.Error("flood still active after draining")
	}
}
