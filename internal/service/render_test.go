package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"distrust-bot/internal/domain"
)

func TestHeadline(t *testing.T) {
	tests := []struct {
		name string
		res  domain.Resolution
		want string
	}{
		{"single winner", domain.Resolution{Status: domain.StatusResolved, Winners: []string{"p2"}}, "<@p2> wins!"},
		{"both win", domain.Resolution{Status: domain.StatusResolved, Winners: []string{"p2", "p1"}}, "Both <@p1> and <@p2> win!"},
		{"no winner", domain.Resolution{Status: domain.StatusResolved, Winners: []string{}}, "No clear winner."},
		{"timeout impostor", domain.Resolution{Status: domain.StatusExpired, Winners: []string{"p1"}}, "Time is up. <@p1> wins!"},
		{"timeout nobody", domain.Resolution{Status: domain.StatusExpired}, "Time is up. No clear winner."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Headline(pair, tt.res))
		})
	}
}

func TestBuildRender(t *testing.T) {
	session := domain.Session{
		ID:           "s1",
		Participants: pair,
		Roles:        roles(domain.RoleCrewmate, domain.RoleImpostor),
		Status:       domain.StatusPending,
	}
	res := domain.Resolution{
		SessionID:  "s1",
		Status:     domain.StatusResolved,
		ActorID:    p1,
		Action:     domain.ActionTrust,
		Winners:    []string{p2},
		ResolvedAt: time.Now(),
	}

	render := BuildRender(session, res)
	assert.Equal(t, "s1", render.SessionID)
	assert.Equal(t, domain.StatusResolved, render.Status)
	assert.Equal(t, pair, render.Participants)
	assert.Equal(t, p1, render.ActorID)
	assert.Equal(t, domain.ActionTrust, render.Action)
	assert.Equal(t, []string{p2}, render.Winners)
	assert.Equal(t, session.Roles, render.RolesRevealed)
	assert.Equal(t, "<@p2> wins!", render.Headline)

	render.RolesRevealed[p1] = domain.RoleImpostor
	render.Winners[0] = "tampered"
	assert.Equal(t, domain.RoleCrewmate, session.Roles[p1], "render must not alias session roles")
	assert.Equal(t, p2, res.Winners[0], "render must not alias resolution winners")
}
