package ecs

// Phase identifies one step of the per-frame dispatch.
type Phase int

const (
	PhaseInit Phase = iota
	PhasePreEvent
	PhaseEvent
	PhaseUpdate
	PhaseRender
	PhasePostRender
)

var phaseNames = [...]string{"OnInit", "OnPreEvent", "OnEvent", "OnUpdate", "OnRender", "OnPostRender"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Phase(?)"
	}
	return phaseNames[p]
}

// framePhases are the phases run by every GameLoop.Frame, in order.
var framePhases = [...]Phase{PhasePreEvent, PhaseEvent, PhaseUpdate, PhaseRender, PhasePostRender}

// EventType classifies an Event.
type EventType int

const (
	EventQuit EventType = iota
	EventKeyDown
	EventKeyUp
	EventMouseDown
	EventMouseUp
	EventMouseMove
	EventResize
	EventCustom
)

// Event is a platform event delivered to participants during OnEvent.
type Event struct {
	Type    EventType
	Key     string
	X, Y    float64
	Payload any
}

// UpdateFrame is passed to every phase callback.
type UpdateFrame struct {
	World     *World
	Commands  *Commands
	DeltaTime float64
	Phase     Phase
	Number    uint64
	Events    []Event
}

// FrameParticipant receives the per-frame phase callbacks. Systems and scenes
// are participants.
type FrameParticipant interface {
	OnInit(f *UpdateFrame)
	OnPreEvent(f *UpdateFrame)
	OnEvent(f *UpdateFrame)
	OnUpdate(f *UpdateFrame)
	OnRender(f *UpdateFrame)
	OnPostRender(f *UpdateFrame)
}

// Identifiable participants report a display name used in stats and logs.
type Identifiable interface {
	Name() string
}

// EventPhaseHandler participants receive each event of the frame, in order,
// right after their OnEvent callback.
type EventPhaseHandler interface {
	HandleEvent(f *UpdateFrame, ev Event)
}

// Shutdowner participants are notified when the GameLoop shuts down.
type Shutdowner interface {
	OnShutdown(w *World)
}

// NopParticipant implements FrameParticipant with empty callbacks. Embed it
// and override the phases you need.
type NopParticipant struct{}

func (NopParticipant) OnInit(*UpdateFrame)       {}
func (NopParticipant) OnPreEvent(*UpdateFrame)   {}
func (NopParticipant) OnEvent(*UpdateFrame)      {}
func (NopParticipant) OnUpdate(*UpdateFrame)     {}
func (NopParticipant) OnRender(*UpdateFrame)     {}
func (NopParticipant) OnPostRender(*UpdateFrame) {}

func dispatch(p FrameParticipant, phase Phase, f *UpdateFrame) {
	switch phase {
	case PhaseInit:
		p.OnInit(f)
	case PhasePreEvent:
		p.OnPreEvent(f)
	case PhaseEvent:
		p.OnEvent(f)
		if h, ok := p.(EventPhaseHandler); ok {
			for _, ev := range f.Events {
				h.HandleEvent(f, ev)
			}
		}
	case PhaseUpdate:
		p.OnUpdate(f)
	case PhaseRender:
		p.OnRender(f)
	case PhasePostRender:
		p.OnPostRender(f)
	}
}
