package application_test

import (
	"sync"
	"testing"

	"jarvis/internal/application"
)

type duckRecorder struct {
	mu    sync.Mutex
	calls []bool
}

func (d *duckRecorder) SetDucked(ducked bool) {
	d.mu.Lock()
	d.calls = append(d.calls, ducked)
	d.mu.Unlock()
}

func (d *duckRecorder) recorded() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]bool(nil), d.calls...)
}

func TestSpeechGate_Speaking(t *testing.T) {
	g := application.NewSpeechGate()

	if g.Speaking() {
		t.Fatal("fresh gate must not report speaking")
	}

	g.BeginSpeaking()
	if !g.Speaking() {
		t.Fatal("gate must report speaking after BeginSpeaking")
	}

	g.EndSpeaking()
	if g.Speaking() {
		t.Fatal("gate must be released after EndSpeaking")
	}
}

func TestSpeechGate_Nesting(t *testing.T) {
	g := application.NewSpeechGate()

	g.BeginSpeaking()
	g.BeginSpeaking()
	g.EndSpeaking()

	if !g.Speaking() {
		t.Fatal("gate must stay held until every begin is matched")
	}

	g.EndSpeaking()
	if g.Speaking() {
		t.Fatal("gate must release after the last end")
	}

	// Unbalanced end must not wedge the counter below zero.
	g.EndSpeaking()
	g.BeginSpeaking()
	if !g.Speaking() {
		t.Fatal("gate must still work after an unbalanced end")
	}
}

func TestSpeechGate_DucksSensitivityOnEdges(t *testing.T) {
	g := application.NewSpeechGate()
	rec := &duckRecorder{}
	g.SetSensitivityControl(rec)

	g.BeginSpeaking()
	g.BeginSpeaking() // nested begin: no second duck
	g.EndSpeaking()
	g.EndSpeaking()

	got := rec.recorded()
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("expected duck edges [true false], got %v", got)
	}
}
