package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"distrust-bot/internal/dm"
	"distrust-bot/internal/domain"
	"distrust-bot/internal/repository"
	"distrust-bot/internal/service"
)

type gameAPI struct {
	router  *gin.Engine
	dmFails map[string]bool
}

func newGameAPI(t *testing.T, combination domain.RoleCombination, jwtSvc *service.JWTService) *gameAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := &gameAPI{dmFails: map[string]bool{}}
	sender := dm.SenderFunc(func(_ context.Context, r domain.Reveal) error {
		if api.dmFails[r.PlayerID] {
			return errors.New("cannot send messages to this user")
		}
		return nil
	})
	gameSvc := service.NewGameService(zap.NewNop(), repository.NewMemorySessionStore(),
		service.FixedRoleAssigner{Combination: combination}, sender, nil, time.Minute)
	t.Cleanup(gameSvc.Shutdown)
	api.router = NewRouter(zap.NewNop(), NewGameHandler(zap.NewNop(), gameSvc), nil, jwtSvc)
	return api
}

func (a *gameAPI) do(t *testing.T, method, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out map[string]json.RawMessage
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (a *gameAPI) start(t *testing.T, requester, target string) domain.Session {
	t.Helper()
	code, out := a.do(t, http.MethodPost, "/sessions", gin.H{"requester_id": requester, "target_id": target})
	require.Equal(t, http.StatusCreated, code)
	var session domain.Session
	require.NoError(t, json.Unmarshal(out["session"], &session))
	return session
}

func errorOf(t *testing.T, out map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(out["error"], &msg))
	return msg
}

func TestGameHandler_PlayThroughHTTP(t *testing.T) {
	api := newGameAPI(t, domain.CombinationCrewmateImpostor, nil)

	session := api.start(t, "P1", "P2")
	assert.Equal(t, domain.StatusPending, session.Status)
	assert.Nil(t, session.Roles, "roles stay hidden while pending")

	code, out := api.do(t, http.MethodGet, "/sessions/"+session.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(out["session"]), "impostor")

	code, out = api.do(t, http.MethodPost, "/sessions/"+session.ID+"/actions", gin.H{"actor_id": "P2", "action": "trust"})
	require.Equal(t, http.StatusOK, code)
	var res domain.Resolution
	require.NoError(t, json.Unmarshal(out["resolution"], &res))
	assert.Equal(t, []string{"P1"}, res.Winners)
	var render domain.ResolutionRender
	require.NoError(t, json.Unmarshal(out["render"], &render))
	assert.Equal(t, "<@P1> wins!", render.Headline)
	assert.Equal(t, domain.RoleImpostor, render.RolesRevealed["P2"])

	code, out = api.do(t, http.MethodPost, "/sessions/"+session.ID+"/actions", gin.H{"actor_id": "P1", "action": "distrust"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "this game is already over", errorOf(t, out))

	code, out = api.do(t, http.MethodGet, "/sessions/"+session.ID+"/render", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(out["render"]), "<@P1> wins!")

	code, out = api.do(t, http.MethodGet, "/sessions/"+session.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(out["session"]), "impostor", "roles are public once concluded")
}

func TestGameHandler_ErrorMapping(t *testing.T) {
	api := newGameAPI(t, domain.CombinationCrewmateCrewmate, nil)
	session := api.start(t, "A", "B")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"already in session", http.MethodPost, "/sessions", gin.H{"requester_id": "A", "target_id": "C"}, http.StatusConflict},
		{"self target", http.MethodPost, "/sessions", gin.H{"requester_id": "C", "target_id": "C"}, http.StatusBadRequest},
		{"missing fields", http.MethodPost, "/sessions", gin.H{"requester_id": "C"}, http.StatusBadRequest},
		{"unknown session", http.MethodPost, "/sessions/nope/actions", gin.H{"actor_id": "A", "action": "trust"}, http.StatusNotFound},
		{"not a participant", http.MethodPost, "/sessions/" + session.ID + "/actions", gin.H{"actor_id": "Z", "action": "trust"}, http.StatusForbidden},
		{"bad action", http.MethodPost, "/sessions/" + session.ID + "/actions", gin.H{"actor_id": "A", "action": "shrug"}, http.StatusBadRequest},
		{"render while pending", http.MethodGet, "/sessions/" + session.ID + "/render", nil, http.StatusBadRequest},
		{"get unknown", http.MethodGet, "/sessions/nope", nil, http.StatusNotFound},
		{"no command", http.MethodPost, "/messages", gin.H{"author_id": "X", "content": "hi all"}, http.StatusUnprocessableEntity},
		{"no active game", http.MethodPost, "/messages", gin.H{"author_id": "X", "content": "trust"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := api.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, errorOf(t, out))
		})
	}
}

func TestGameHandler_DeliveryFailure(t *testing.T) {
	api := newGameAPI(t, domain.CombinationCrewmateImpostor, nil)
	api.dmFails["B"] = true

	code, out := api.do(t, http.MethodPost, "/sessions", gin.H{"requester_id": "A", "target_id": "B"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "one of the players has DMs disabled", errorOf(t, out))

	api.dmFails["B"] = false
	api.start(t, "A", "B")
}

func TestGameHandler_Messages(t *testing.T) {
	api := newGameAPI(t, domain.CombinationImpostorImpostor, nil)

	code, out := api.do(t, http.MethodPost, "/messages", gin.H{"author_id": "A", "mentions": []string{"B"}, "content": "<@B> play?"})
	require.Equal(t, http.StatusCreated, code)
	assert.Contains(t, string(out["session"]), `"status":"pending"`)

	code, out = api.do(t, http.MethodPost, "/messages", gin.H{"author_id": "B", "content": "distrust"})
	require.Equal(t, http.StatusOK, code)
	var render domain.ResolutionRender
	require.NoError(t, json.Unmarshal(out["render"], &render))
	assert.Equal(t, []string{"B"}, render.Winners)
	assert.Equal(t, "<@B> wins!", render.Headline)
}

func TestRouter_RequiresTokenWhenConfigured(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", "distrust-bot", time.Hour)
	api := newGameAPI(t, domain.CombinationCrewmateCrewmate, jwtSvc)

	code, _ := api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(t, http.MethodPost, "/sessions", gin.H{"requester_id": "A", "target_id": "B"})
	assert.Equal(t, http.StatusUnauthorized, code)

	token, _, err := jwtSvc.IssueAdapterToken("discord")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{"requester_id":"A","target_id":"B"}`)))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
