package application

import "sync"

// SensitivityControl lets the speech gate raise the capture trigger
// threshold while the assistant is speaking, a second line of defense
// against echo on top of the discard-while-speaking rule.
type SensitivityControl interface {
	SetDucked(ducked bool)
}

// SpeechGate is the mutual exclusion between speech playback and the
// consumer loop: while any playback is in flight, captured utterances are
// discarded unclassified so the assistant never transcribes its own voice.
//
// BeginSpeaking/EndSpeaking nest; the gate opens again only when every
// begin has been matched by an end.
type SpeechGate struct {
	mu          sync.Mutex
	depth       int
	sensitivity SensitivityControl
}

func NewSpeechGate() *SpeechGate {
	return &SpeechGate{}
}

// SetSensitivityControl attaches the capture-side control. Optional; safe to
// leave unset for sources without an adjustable threshold.
func (g *SpeechGate) SetSensitivityControl(c SensitivityControl) {
	g.mu.Lock()
	g.sensitivity = c
	g.mu.Unlock()
}

func (g *SpeechGate) BeginSpeaking() {
	g.mu.Lock()
	g.depth++
	first := g.depth == 1
	c := g.sensitivity
	g.mu.Unlock()

	if first && c != nil {
		c.SetDucked(true)
	}
}

// EndSpeaking must run on every playback exit path, failures included; a
// leaked begin leaves the assistant permanently deaf.
func (g *SpeechGate) EndSpeaking() {
	g.mu.Lock()
	if g.depth > 0 {
		g.depth--
	}
	last := g.depth == 0
	c := g.sensitivity
	g.mu.Unlock()

	if last && c != nil {
		c.SetDucked(false)
	}
}

func (g *SpeechGate) Speaking() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.depth > 0
}
