package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"distrust-bot/internal/dm"
	"distrust-bot/internal/domain"
	"distrust-bot/internal/events"
	"distrust-bot/internal/repository"
)

const (
	DefaultSessionTimeout = 5 * time.Minute

	publishTimeout = 2 * time.Second
	revealTimeout  = 10 * time.Second
)

// Instructions acompaña cada revelación de rol.
const Instructions = "You are playing DISTRUST.\n" +
	"- If you are a CREWMATE: press Trust if you believe the other player is a Crewmate, Distrust if you believe they are an Impostor.\n" +
	"- If you are an IMPOSTOR: try to get the Crewmate to trust you. If both players are Impostors, the first to press a button wins.\n\n" +
	"The game ends immediately when someone presses a button. Good luck!"

// StartedSession es lo que devuelve CreateSession: la partida y un reveal por participante.
type StartedSession struct {
	Session domain.Session   `json:"session"`
	Reveals [2]domain.Reveal `json:"-"`
}

// MessageResult indica que hizo HandleMessage con un mensaje de texto.
type MessageResult struct {
	Started    *StartedSession          `json:"started,omitempty"`
	Resolution *domain.Resolution       `json:"resolution,omitempty"`
	Render     *domain.ResolutionRender `json:"render,omitempty"`
}

// GameService orquesta la creación de partidas, las jugadas y los vencimientos.
type GameService struct {
	logger    *zap.Logger
	store     repository.SessionStore
	assigner  RoleAssigner
	reveals   dm.Sender
	publisher events.Publisher
	watcher   *TimeoutWatcher
	limiter   StartRateLimiter
	timeout   time.Duration
	now       func() time.Time
}

// NewGameService arma el servicio. publisher puede ser nil.
func NewGameService(
	logger *zap.Logger,
	store repository.SessionStore,
	assigner RoleAssigner,
	reveals dm.Sender,
	publisher events.Publisher,
	timeout time.Duration,
) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if assigner == nil {
		assigner = NewRandomRoleAssigner(0)
	}
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	s := &GameService{
		logger:    logger,
		store:     store,
		assigner:  assigner,
		reveals:   reveals,
		publisher: publisher,
		timeout:   timeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.watcher = NewTimeoutWatcher(s.expireSession)
	return s
}

// WithStartLimiter limita cuántas partidas puede iniciar cada jugador. nil lo desactiva.
func (s *GameService) WithStartLimiter(limiter StartRateLimiter) *GameService {
	s.limiter = limiter
	return s
}

// CreateSession inicia una partida entre requesterID y targetID y entrega a cada
// uno su rol por separado. La partida no se puede jugar hasta que ambas entregas
// terminan; si alguna falla, se revierte.
func (s *GameService) CreateSession(ctx context.Context, requesterID, targetID string) (StartedSession, error) {
	if s.store == nil || s.reveals == nil {
		return StartedSession{}, errors.New("game service not configured")
	}
	requesterID = strings.TrimSpace(requesterID)
	targetID = strings.TrimSpace(targetID)
	if requesterID == "" || targetID == "" {
		return StartedSession{}, fmt.Errorf("%w: requester and target are required", domain.ErrInvalidInput)
	}
	if requesterID == targetID {
		return StartedSession{}, domain.ErrInvalidSelfTarget
	}
	if s.limiter != nil && !s.limiter.Allow(requesterID) {
		return StartedSession{}, domain.ErrRateLimited
	}

	assignment := s.assigner.Assign(requesterID, targetID)
	reserved, err := s.store.Create(ctx, domain.Session{
		Participants: [2]string{requesterID, targetID},
		Roles:        assignment.Roles,
		Combination:  assignment.Combination,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return StartedSession{}, err
	}

	var reveals [2]domain.Reveal
	for i, p := range reserved.Participants {
		reveals[i] = domain.Reveal{
			SessionID:    reserved.ID,
			PlayerID:     p,
			Role:         reserved.Roles[p],
			Instructions: Instructions,
		}
	}

	// Ningún lock tomado durante la entrega.
	revealCtx, cancel := context.WithTimeout(ctx, revealTimeout)
	defer cancel()
	for _, reveal := range reveals {
		if err := s.reveals.SendReveal(revealCtx, reveal); err != nil {
			s.logger.Warn("role reveal failed, rolling back session",
				zap.String("session_id", reserved.ID),
				zap.String("player_id", reveal.PlayerID),
				zap.Error(err),
			)
			s.rollback(reserved.ID)
			return StartedSession{}, fmt.Errorf("%w: %s: %v", domain.ErrDeliveryFailed, reveal.PlayerID, err)
		}
	}

	// El plazo corre desde que ambos conocen su rol.
	session, err := s.store.Activate(ctx, reserved.ID, s.now().Add(s.timeout))
	if err != nil {
		s.rollback(reserved.ID)
		return StartedSession{}, err
	}
	if s.limiter != nil {
		s.limiter.Record(requesterID)
	}

	s.watcher.Arm(session.ID, session.ExpiresAt)
	s.logger.Info("session started",
		zap.String("session_id", session.ID),
		zap.String("requester_id", requesterID),
		zap.String("target_id", targetID),
		zap.Time("expires_at", session.ExpiresAt),
	)

	public := session.Public()
	s.publish(domain.GameEvent{
		Type:      domain.EventSessionStarted,
		SessionID: session.ID,
		Session:   &public,
	})
	return StartedSession{Session: session, Reveals: reveals}, nil
}

func (s *GameService) rollback(sessionID string) {
	if err := s.store.Delete(context.Background(), sessionID); err != nil {
		s.logger.Error("rollback failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// SubmitAction aplica la primera jugada de una partida. Las jugadas tardías
// reciben ErrAlreadyResolved.
func (s *GameService) SubmitAction(ctx context.Context, event domain.ActionEvent) (domain.Resolution, error) {
	if s.store == nil {
		return domain.Resolution{}, errors.New("game service not configured")
	}
	action, err := domain.ParseAction(string(event.Action))
	if err != nil {
		return domain.Resolution{}, err
	}
	actorID := strings.TrimSpace(event.ActorID)

	session, err := s.store.Get(ctx, event.SessionID)
	if err != nil {
		return domain.Resolution{}, err
	}
	if !session.HasParticipant(actorID) {
		return domain.Resolution{}, domain.ErrNotAParticipant
	}
	if session.Status != domain.StatusPending {
		return domain.Resolution{}, domain.ErrAlreadyResolved
	}

	// La hora del adaptador queda como dato; la retención se mide con el reloj propio.
	var actedAt time.Time
	if !event.Timestamp.IsZero() {
		actedAt = event.Timestamp.UTC()
	}
	res, err := s.store.ResolveOnce(ctx, session.ID, func(current domain.Session) domain.Resolution {
		outcome := ResolveOutcome(current.Participants, current.Roles, actorID, action)
		return domain.Resolution{
			ActorID:    actorID,
			Action:     action,
			Winners:    outcome.Winners,
			Rationale:  outcome.Rationale,
			ActedAt:    actedAt,
			ResolvedAt: s.now(),
		}
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyResolved) {
			s.logger.Info("late action rejected",
				zap.String("session_id", session.ID),
				zap.String("actor_id", actorID),
			)
		}
		return domain.Resolution{}, err
	}

	s.watcher.Cancel(session.ID)
	s.logger.Info("session resolved",
		zap.String("session_id", session.ID),
		zap.String("actor_id", actorID),
		zap.String("action", string(action)),
		zap.Strings("winners", res.Winners),
		zap.String("rationale", res.Rationale),
	)
	s.publishConclusion(domain.EventSessionResolved, session, res)
	return res, nil
}

// HandleMessage enruta un mensaje de texto dirigido al bot: una sola mención sin
// palabra clave inicia partida; con "trust"/"distrust" juega en la partida pendiente del autor.
func (s *GameService) HandleMessage(ctx context.Context, msg domain.MessageEvent) (MessageResult, error) {
	author := strings.TrimSpace(msg.AuthorID)
	if author == "" {
		return MessageResult{}, fmt.Errorf("%w: author is required", domain.ErrInvalidInput)
	}

	action, hasKeyword := ParseActionKeyword(msg.Content)
	mentions := make([]string, 0, len(msg.Mentions))
	for _, m := range msg.Mentions {
		if m = strings.TrimSpace(m); m != "" {
			mentions = append(mentions, m)
		}
	}

	if len(mentions) == 1 && !hasKeyword {
		started, err := s.CreateSession(ctx, author, mentions[0])
		if err != nil {
			return MessageResult{}, err
		}
		return MessageResult{Started: &started}, nil
	}
	if !hasKeyword {
		return MessageResult{}, domain.ErrNoCommand
	}

	session, err := s.store.PendingFor(ctx, author)
	if err != nil {
		return MessageResult{}, err
	}
	res, err := s.SubmitAction(ctx, domain.ActionEvent{
		SessionID: session.ID,
		ActorID:   author,
		Action:    action,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		return MessageResult{}, err
	}
	render := BuildRender(session, res)
	return MessageResult{Resolution: &res, Render: &render}, nil
}

// GetSession devuelve la partida; los roles se ocultan mientras sigue pendiente.
func (s *GameService) GetSession(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	return session.Public(), nil
}

// Render reconstruye el render de una partida concluida.
func (s *GameService) Render(ctx context.Context, id string) (domain.ResolutionRender, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.ResolutionRender{}, err
	}
	if session.Resolution == nil {
		return domain.ResolutionRender{}, fmt.Errorf("%w: session %s is still pending", domain.ErrInvalidInput, id)
	}
	return BuildRender(session, *session.Resolution), nil
}

// Prune borra partidas concluidas hace más de retention.
func (s *GameService) Prune(ctx context.Context, retention time.Duration) int {
	removed := s.store.Prune(ctx, s.now().Add(-retention))
	if removed > 0 {
		s.logger.Info("pruned concluded sessions", zap.Int("removed", removed))
	}
	return removed
}

// RunJanitor poda periódicamente hasta que ctx se cancela.
func (s *GameService) RunJanitor(ctx context.Context, interval, retention time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune(ctx, retention)
		}
	}
}

// Shutdown detiene los timers pendientes. No hay durabilidad que preservar.
func (s *GameService) Shutdown() {
	s.watcher.Stop()
}

func (s *GameService) expireSession(sessionID string) {
	ctx := context.Background()
	res, err := s.store.Expire(ctx, sessionID, func(current domain.Session) domain.Resolution {
		outcome := TimeoutOutcome(current.Participants, current.Roles)
		return domain.Resolution{
			Winners:    outcome.Winners,
			Rationale:  outcome.Rationale,
			ResolvedAt: s.now(),
		}
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyResolved) || errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Debug("timeout fired on concluded session", zap.String("session_id", sessionID))
			return
		}
		s.logger.Error("session expire failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("expired session vanished before render", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	s.logger.Info("session expired",
		zap.String("session_id", sessionID),
		zap.Strings("winners", res.Winners),
		zap.String("rationale", res.Rationale),
	)
	s.publishConclusion(domain.EventSessionExpired, session, res)
}

func (s *GameService) publishConclusion(eventType string, session domain.Session, res domain.Resolution) {
	render := BuildRender(session, res)
	concluded := session.Clone()
	concluded.Status = res.Status
	concluded.Resolution = &res
	s.publish(domain.GameEvent{
		Type:      eventType,
		SessionID: session.ID,
		Session:   &concluded,
		Render:    &render,
	})
}

func (s *GameService) publish(event domain.GameEvent) {
	event.ID = uuid.NewString()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event not delivered to every sink",
			zap.String("event_type", event.Type),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}
}
