package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/observability"
)

const viewBufferSize = 8

// viewHub fans session snapshots out to stream subscribers.
type viewHub struct {
	mu       sync.RWMutex
	sessions map[string]map[*viewSubscriber]struct{}
	log      zerolog.Logger
}

type viewSubscriber struct {
	send chan dto.SessionView
	once sync.Once
}

func newViewHub(logger zerolog.Logger) *viewHub {
	return &viewHub{
		sessions: make(map[string]map[*viewSubscriber]struct{}),
		log:      logger.With().Str("component", "view_hub").Logger(),
	}
}

func (h *viewHub) register(sessionID string) *viewSubscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.sessions[sessionID]; !exists {
		h.sessions[sessionID] = make(map[*viewSubscriber]struct{})
	}
	sub := &viewSubscriber{send: make(chan dto.SessionView, viewBufferSize)}
	h.sessions[sessionID][sub] = struct{}{}
	observability.StreamConnections().Inc()
	h.log.Debug().Str("session_id", sessionID).Msg("view subscriber connected")
	return sub
}

func (h *viewHub) unregister(sessionID string, sub *viewSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.sessions[sessionID]; ok {
		if _, present := subs[sub]; present {
			delete(subs, sub)
			sub.close()
		}
		if len(subs) == 0 {
			delete(h.sessions, sessionID)
		}
	}
	h.log.Debug().Str("session_id", sessionID).Msg("view subscriber disconnected")
}

func (h *viewHub) broadcast(sessionID string, view dto.SessionView) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.sessions[sessionID] {
		select {
		case sub.send <- view:
		default:
			h.log.Warn().Str("session_id", sessionID).Msg("dropping view for slow subscriber")
		}
	}
}

// closeSession disconnects every subscriber of an ended session.
func (h *viewHub) closeSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.sessions[sessionID] {
		sub.close()
	}
	delete(h.sessions, sessionID)
}

func (s *viewSubscriber) close() {
	s.once.Do(func() {
		close(s.send)
		observability.StreamConnections().Dec()
	})
}
