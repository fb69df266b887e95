package chat

import (
	"sync"
	"time"
)

// Sender identifies who a rendered message is attributed to.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Sink receives render actions. Implementations must not block for long:
// a guarded sink forwards while holding its session lock.
type Sink interface {
	RenderMessage(sender Sender, text string)
	RenderCard(card Card)
	ShowBusy()
	HideBusy()
}

// ActionKind names the kind of render an Action records.
type ActionKind string

const (
	ActionMessage ActionKind = "message"
	ActionCard    ActionKind = "card"
	ActionBusy    ActionKind = "busy"
	ActionIdle    ActionKind = "idle"
)

// Action is one render action in serializable form.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Sender Sender     `json:"sender,omitempty"`
	Text   string     `json:"text,omitempty"`
	Card   *Card      `json:"card,omitempty"`
	At     time.Time  `json:"at"`
}

// EmitFunc adapts a function to Sink, turning every call into an Action.
type EmitFunc func(Action)

func (f EmitFunc) RenderMessage(sender Sender, text string) {
	f(Action{Kind: ActionMessage, Sender: sender, Text: text, At: time.Now().UTC()})
}

func (f EmitFunc) RenderCard(card Card) {
	f(Action{Kind: ActionCard, Sender: SenderBot, Card: &card, Text: card.String(), At: time.Now().UTC()})
}

func (f EmitFunc) ShowBusy() { f(Action{Kind: ActionBusy, At: time.Now().UTC()}) }

func (f EmitFunc) HideBusy() { f(Action{Kind: ActionIdle, At: time.Now().UTC()}) }

// Recorder is a Sink that keeps every action in order.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) sink() EmitFunc {
	return func(a Action) {
		r.mu.Lock()
		r.actions = append(r.actions, a)
		r.mu.Unlock()
	}
}

func (r *Recorder) RenderMessage(sender Sender, text string) { r.sink().RenderMessage(sender, text) }
func (r *Recorder) RenderCard(card Card)                     { r.sink().RenderCard(card) }
func (r *Recorder) ShowBusy()                                { r.sink().ShowBusy() }
func (r *Recorder) HideBusy()                                { r.sink().HideBusy() }

// Actions returns a copy of everything recorded so far.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}
