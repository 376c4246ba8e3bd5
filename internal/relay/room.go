package relay

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	maxRoomMessages      = 1000
	maxIdempotencyRecord = 4000
)

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

type wsSession struct {
	mu     sync.Mutex
	userID int64
	room   *scopeRoom
	peer   *wsPeer
}

func newWSSession(userID int64, peer *wsPeer) *wsSession {
	return &wsSession{
		userID: userID,
		peer:   peer,
	}
}

func (s *wsSession) setRoom(next *scopeRoom) *scopeRoom {
	s.mu.Lock()
	previous := s.room
	s.room = next
	s.mu.Unlock()
	return previous
}

func (s *wsSession) currentRoom() *scopeRoom {
	s.mu.Lock()
	room := s.room
	s.mu.Unlock()
	return room
}

type roomHub struct {
	mu    sync.Mutex
	rooms map[int64]*scopeRoom
}

func newRoomHub() *roomHub {
	return &roomHub{rooms: make(map[int64]*scopeRoom)}
}

func (h *roomHub) room(scopeID int64) *scopeRoom {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[scopeID]
	if ok {
		return room
	}

	room = newScopeRoom(scopeID)
	h.rooms[scopeID] = room
	return room
}

// scopeRoom fans resolved messages out to every peer joined to one scope.
// Each inbound message can append several resolved messages, so idempotency
// tracks message batches by client message ID.
type scopeRoom struct {
	mu               sync.Mutex
	scopeID          int64
	nextSequence     int64
	messages         []relayMessage
	idempotencyBy    map[string][]relayMessage
	idempotencyOrder []string
	subscribers      map[*wsPeer]struct{}
}

func newScopeRoom(scopeID int64) *scopeRoom {
	return &scopeRoom{
		scopeID:       scopeID,
		idempotencyBy: make(map[string][]relayMessage),
		subscribers:   make(map[*wsPeer]struct{}),
	}
}

func (r *scopeRoom) join(peer *wsPeer) int64 {
	r.mu.Lock()
	r.subscribers[peer] = struct{}{}
	latest := r.nextSequence
	r.mu.Unlock()
	return latest
}

func (r *scopeRoom) leave(peer *wsPeer) bool {
	r.mu.Lock()
	delete(r.subscribers, peer)
	empty := len(r.subscribers) == 0
	r.mu.Unlock()
	return empty
}

// appendBatch records the resolved messages for one inbound send. A repeat
// client message ID returns the original batch and no subscribers.
func (r *scopeRoom) appendBatch(clientMessageID string, batch []relayMessage) ([]relayMessage, bool, []*wsPeer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.idempotencyBy[clientMessageID]; ok {
		return existing, true, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i := range batch {
		r.nextSequence++
		batch[i].ScopeID = r.scopeID
		batch[i].SequenceID = r.nextSequence
		batch[i].SentAt = now
		batch[i].ClientMessageID = clientMessageID
	}

	r.messages = append(r.messages, batch...)
	if len(r.messages) > maxRoomMessages {
		r.messages = r.messages[len(r.messages)-maxRoomMessages:]
	}

	r.idempotencyBy[clientMessageID] = batch
	r.idempotencyOrder = append(r.idempotencyOrder, clientMessageID)
	if len(r.idempotencyOrder) > maxIdempotencyRecord {
		evict := r.idempotencyOrder[0]
		r.idempotencyOrder = r.idempotencyOrder[1:]
		delete(r.idempotencyBy, evict)
	}

	subscribers := make([]*wsPeer, 0, len(r.subscribers))
	for subscriber := range r.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	return batch, false, subscribers
}

func (r *scopeRoom) historyBefore(beforeSequenceID int64, limit int) []relayMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := make([]relayMessage, 0, limit)
	for _, msg := range r.messages {
		if msg.SequenceID < beforeSequenceID {
			history = append(history, msg)
		}
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}
