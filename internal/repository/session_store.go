package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"distrust-bot/internal/domain"
)

// ResolverFunc calcula la resolución de una partida pendiente. El store la invoca
// como mucho una vez por partida, con el lock de esa partida tomado.
type ResolverFunc func(session domain.Session) domain.Resolution

// SessionStore guarda las partidas activas y concluidas en memoria.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) (domain.Session, error)
	Activate(ctx context.Context, id string, expiresAt time.Time) (domain.Session, error)
	Get(ctx context.Context, id string) (domain.Session, error)
	GetPending(ctx context.Context, id string) (domain.Session, error)
	PendingFor(ctx context.Context, playerID string) (domain.Session, error)
	ResolveOnce(ctx context.Context, id string, fn ResolverFunc) (domain.Resolution, error)
	Expire(ctx context.Context, id string, fn ResolverFunc) (domain.Resolution, error)
	Delete(ctx context.Context, id string) error
	Prune(ctx context.Context, concludedBefore time.Time) int
}

type sessionEntry struct {
	mu       sync.Mutex
	session  domain.Session
	starting bool
}

// MemorySessionStore protege el índice con un RWMutex y cada partida con su propio
// mutex, de modo que resolver una partida no bloquea a las demás.
// Orden de locks: store.mu antes que entry.mu, nunca al revés.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	pending  map[string]string // playerID -> sessionID
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*sessionEntry),
		pending:  make(map[string]string),
	}
}

// Create reserva a los dos participantes en una partida que todavía no se puede jugar
// ni consultar: queda invisible hasta Activate. Falla con ErrAlreadyInSession si alguno
// de los participantes ya tiene una partida pendiente o reservada.
func (s *MemorySessionStore) Create(_ context.Context, session domain.Session) (domain.Session, error) {
	p1 := strings.TrimSpace(session.Participants[0])
	p2 := strings.TrimSpace(session.Participants[1])
	if p1 == "" || p2 == "" {
		return domain.Session{}, fmt.Errorf("%w: participants are required", domain.ErrInvalidInput)
	}
	if p1 == p2 {
		return domain.Session{}, domain.ErrInvalidSelfTarget
	}
	if len(session.Roles) != 2 || !session.Roles[p1].Valid() || !session.Roles[p2].Valid() {
		return domain.Session{}, fmt.Errorf("%w: roles must cover both participants", domain.ErrInvalidInput)
	}

	session = session.Clone()
	session.Participants = [2]string{p1, p2}
	session.Status = domain.StatusPending
	session.Resolution = nil
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range session.Participants {
		if id, ok := s.pending[p]; ok {
			return domain.Session{}, fmt.Errorf("%w: %s (session %s)", domain.ErrAlreadyInSession, p, id)
		}
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if _, exists := s.sessions[session.ID]; exists {
		return domain.Session{}, fmt.Errorf("%w: duplicate session id %s", domain.ErrInvalidInput, session.ID)
	}

	s.sessions[session.ID] = &sessionEntry{session: session, starting: true}
	s.pending[p1] = session.ID
	s.pending[p2] = session.ID
	return session.Clone(), nil
}

// Activate vuelve jugable una partida reservada, con el plazo contado desde ahora.
func (s *MemorySessionStore) Activate(_ context.Context, id string, expiresAt time.Time) (domain.Session, error) {
	entry, ok := s.lookup(id)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if !entry.starting {
		return domain.Session{}, fmt.Errorf("%w: session %s is already active", domain.ErrInvalidInput, id)
	}
	entry.starting = false
	if !expiresAt.IsZero() {
		entry.session.ExpiresAt = expiresAt
	}
	return entry.session.Clone(), nil
}

// Get devuelve una copia de la partida en cualquier estado, salvo las reservadas.
func (s *MemorySessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	entry, ok := s.lookup(id)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.starting {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (s *MemorySessionStore) GetPending(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	if session.Status != domain.StatusPending {
		return domain.Session{}, domain.ErrAlreadyResolved
	}
	return session, nil
}

// PendingFor busca la partida pendiente de un jugador.
func (s *MemorySessionStore) PendingFor(ctx context.Context, playerID string) (domain.Session, error) {
	s.mu.RLock()
	id, ok := s.pending[playerID]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s.GetPending(ctx, id)
}

func (s *MemorySessionStore) ResolveOnce(_ context.Context, id string, fn ResolverFunc) (domain.Resolution, error) {
	return s.conclude(id, domain.StatusResolved, fn)
}

func (s *MemorySessionStore) Expire(_ context.Context, id string, fn ResolverFunc) (domain.Resolution, error) {
	return s.conclude(id, domain.StatusExpired, fn)
}

// conclude es la única puerta de salida de Pending. El perdedor de una carrera
// recibe ErrAlreadyResolved y fn no se vuelve a ejecutar.
func (s *MemorySessionStore) conclude(id string, status domain.SessionStatus, fn ResolverFunc) (domain.Resolution, error) {
	if fn == nil {
		return domain.Resolution{}, fmt.Errorf("%w: resolver is required", domain.ErrInvalidInput)
	}
	entry, ok := s.lookup(id)
	if !ok {
		return domain.Resolution{}, domain.ErrSessionNotFound
	}

	entry.mu.Lock()
	if entry.starting {
		entry.mu.Unlock()
		return domain.Resolution{}, domain.ErrSessionNotFound
	}
	if entry.session.Status != domain.StatusPending {
		entry.mu.Unlock()
		return domain.Resolution{}, domain.ErrAlreadyResolved
	}
	res := fn(entry.session.Clone())
	res.SessionID = entry.session.ID
	res.Status = status
	if res.Winners == nil {
		res.Winners = []string{}
	}
	if res.ResolvedAt.IsZero() {
		res.ResolvedAt = time.Now().UTC()
	}
	entry.session.Status = status
	stored := res.Clone()
	entry.session.Resolution = &stored
	participants := entry.session.Participants
	entry.mu.Unlock()

	s.releasePlayers(id, participants)
	return res.Clone(), nil
}

// Delete revierte una partida que nunca llegó a jugarse (por ejemplo, si no se pudo
// entregar un rol). Solo aplica a partidas reservadas o Pending.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.session.Status != domain.StatusPending {
		return domain.ErrAlreadyResolved
	}
	delete(s.sessions, id)
	for _, p := range entry.session.Participants {
		if s.pending[p] == id {
			delete(s.pending, p)
		}
	}
	return nil
}

// Prune elimina partidas concluidas antes de concludedBefore. Devuelve cuántas borró.
func (s *MemorySessionStore) Prune(_ context.Context, concludedBefore time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		entry.mu.Lock()
		res := entry.session.Resolution
		stale := entry.session.Status.Concluded() && res != nil && res.ResolvedAt.Before(concludedBefore)
		entry.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len devuelve cuántas partidas hay en memoria, activas o concluidas.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemorySessionStore) lookup(id string) (*sessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	return entry, ok
}

func (s *MemorySessionStore) releasePlayers(id string, participants [2]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range participants {
		if s.pending[p] == id {
			delete(s.pending, p)
		}
	}
}
