package playback

// Wails event names carrying Status / QueueState payloads to the webview.
const (
	EventNamePlayerState = "player:state"
	EventNameQueueState  = "queue:state"
	EventNamePlayerError = "player:error"
)

type EventType string

const (
	EventState    EventType = "state"
	EventTrack    EventType = "track"
	EventPosition EventType = "position"
	EventQueue    EventType = "queue"
	EventVolume   EventType = "volume"
	EventMute     EventType = "mute"
	EventShuffle  EventType = "shuffle"
	EventRepeat   EventType = "repeat"
	EventError    EventType = "error"
)

// Payloads per event type: EventState carries State, EventTrack *Track (nil
// when playback cleared), EventPosition float64 seconds, EventQueue
// QueueState, EventVolume int, EventMute bool, EventShuffle ShuffleMode,
// EventRepeat RepeatMode, EventError error.
type Handler func(payload any)

// Subscription is the handle returned by Subscribe. Cancel is idempotent.
type Subscription struct {
	manager *Manager
	event   EventType
	id      int
}

func (s Subscription) Cancel() {
	if s.manager == nil {
		return
	}

	s.manager.mu.Lock()
	defer s.manager.mu.Unlock()

	if handlers, ok := s.manager.listeners[s.event]; ok {
		delete(handlers, s.id)
	}
}

func (m *Manager) Subscribe(event EventType, handler Handler) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listeners == nil {
		m.listeners = make(map[EventType]map[int]Handler)
	}

	handlers, ok := m.listeners[event]
	if !ok {
		handlers = make(map[int]Handler)
		m.listeners[event] = handlers
	}

	m.nextSubscription++
	handlers[m.nextSubscription] = handler

	return Subscription{manager: m, event: event, id: m.nextSubscription}
}

// emit runs handlers outside the manager lock so they may call back into the
// public API.
func (m *Manager) emit(event EventType, payload any) {
	m.mu.Lock()
	registered := m.listeners[event]
	handlers := make([]Handler, 0, len(registered))
	for _, handler := range registered {
		handlers = append(handlers, handler)
	}
	m.mu.Unlock()

	for _, handler := range handlers {
		handler(payload)
	}
}
