package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"distrust-bot/internal/domain"
	"distrust-bot/internal/service"
)

// GameHandler expone el motor de partidas al adaptador del chat.
type GameHandler struct {
	logger   *zap.Logger
	gameServ *service.GameService
}

// NewGameHandler crea una instancia de GameHandler con dependencias necesarias.
func NewGameHandler(logger *zap.Logger, gameServ *service.GameService) *GameHandler {
	return &GameHandler{
		logger:   logger,
		gameServ: gameServ,
	}
}

// CreateSession maneja POST /sessions.
func (h *GameHandler) CreateSession(c *gin.Context) {
	var req struct {
		RequesterID string `json:"requester_id" binding:"required"`
		TargetID    string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	started, err := h.gameServ.CreateSession(c.Request.Context(), req.RequesterID, req.TargetID)
	if err != nil {
		h.writeError(c, "create session", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": started.Session.Public()})
}

// SubmitAction maneja POST /sessions/:id/actions.
func (h *GameHandler) SubmitAction(c *gin.Context) {
	var req struct {
		ActorID   string     `json:"actor_id" binding:"required"`
		Action    string     `json:"action" binding:"required"`
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submit action request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	event := domain.ActionEvent{
		SessionID: c.Param("id"),
		ActorID:   req.ActorID,
		Action:    domain.Action(req.Action),
	}
	if req.Timestamp != nil {
		event.Timestamp = *req.Timestamp
	}

	res, err := h.gameServ.SubmitAction(c.Request.Context(), event)
	if err != nil {
		h.writeError(c, "submit action", err)
		return
	}
	render, err := h.gameServ.Render(c.Request.Context(), event.SessionID)
	if err != nil {
		// La partida pudo podarse entre la jugada y el render; la resolución sigue siendo válida.
		h.logger.Warn("render after action failed", zap.String("session_id", event.SessionID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"resolution": res})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resolution": res, "render": render})
}

// PostMessage maneja POST /messages: texto libre con menciones o palabras clave.
func (h *GameHandler) PostMessage(c *gin.Context) {
	var req struct {
		AuthorID  string     `json:"author_id" binding:"required"`
		Mentions  []string   `json:"mentions"`
		Content   string     `json:"content"`
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	msg := domain.MessageEvent{
		AuthorID: req.AuthorID,
		Mentions: req.Mentions,
		Content:  req.Content,
	}
	if req.Timestamp != nil {
		msg.Timestamp = *req.Timestamp
	}

	result, err := h.gameServ.HandleMessage(c.Request.Context(), msg)
	if err != nil {
		h.writeError(c, "handle message", err)
		return
	}

	if result.Started != nil {
		c.JSON(http.StatusCreated, gin.H{"session": result.Started.Session.Public()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolution": result.Resolution, "render": result.Render})
}

// GetSession maneja GET /sessions/:id.
func (h *GameHandler) GetSession(c *gin.Context) {
	session, err := h.gameServ.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// GetRender maneja GET /sessions/:id/render.
func (h *GameHandler) GetRender(c *gin.Context) {
	render, err := h.gameServ.Render(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get render", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"render": render})
}

// writeError traduce los errores del dominio a respuestas para el adaptador.
func (h *GameHandler) writeError(c *gin.Context, op string, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, domain.ErrAlreadyInSession):
		status, msg = http.StatusConflict, "player already in a game"
	case errors.Is(err, domain.ErrAlreadyResolved):
		status, msg = http.StatusConflict, "this game is already over"
	case errors.Is(err, domain.ErrSessionNotFound):
		status, msg = http.StatusNotFound, "no active game"
	case errors.Is(err, domain.ErrNotAParticipant):
		status, msg = http.StatusForbidden, "you are not a participant in this game"
	case errors.Is(err, domain.ErrInvalidSelfTarget):
		status, msg = http.StatusBadRequest, "you cannot play against yourself"
	case errors.Is(err, domain.ErrInvalidAction):
		status, msg = http.StatusBadRequest, "action must be trust or distrust"
	case errors.Is(err, domain.ErrNoCommand):
		status, msg = http.StatusUnprocessableEntity, "mention one player to start, or say trust/distrust"
	case errors.Is(err, domain.ErrInvalidInput):
		status, msg = http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, "too many games started, try again later"
	case errors.Is(err, domain.ErrDeliveryFailed):
		status, msg = http.StatusServiceUnavailable, "one of the players has DMs disabled"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
	} else {
		h.logger.Warn(op+" rejected", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}
