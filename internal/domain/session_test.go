package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" TRUST ")
	require.NoError(t, err)
	assert.Equal(t, ActionTrust, a)

	a, err = ParseAction("distrust")
	require.NoError(t, err)
	assert.Equal(t, ActionDistrust, a)

	_, err = ParseAction("maybe")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestRoleCombinationRoles(t *testing.T) {
	seen := map[[2]Role]bool{}
	for _, c := range RoleCombinations {
		a, b := c.Roles()
		require.True(t, a.Valid() && b.Valid(), c.String())
		seen[[2]Role{a, b}] = true
	}
	assert.Len(t, seen, 4, "every ordered pair appears once")
	assert.Equal(t, "crewmate/impostor", CombinationCrewmateImpostor.String())
	assert.Equal(t, "combination(9)", RoleCombination(9).String())
}

func TestSessionCloneAndPublic(t *testing.T) {
	s := Session{
		ID:           "s1",
		Participants: [2]string{"a", "b"},
		Roles:        map[string]Role{"a": RoleCrewmate, "b": RoleImpostor},
		Status:       StatusPending,
	}
	assert.True(t, s.HasParticipant("a"))
	assert.False(t, s.HasParticipant(""))
	assert.Equal(t, "b", s.Opponent("a"))
	assert.Empty(t, s.Opponent("z"))

	clone := s.Clone()
	clone.Roles["a"] = RoleImpostor
	assert.Equal(t, RoleCrewmate, s.Roles["a"])

	assert.Nil(t, s.Public().Roles)
	assert.NotNil(t, s.Roles, "Public does not mutate the receiver")

	s.Status = StatusExpired
	s.Resolution = &Resolution{Winners: []string{"b"}}
	public := s.Public()
	assert.Equal(t, s.Roles, public.Roles)
	public.Resolution.Winners[0] = "a"
	assert.True(t, s.Resolution.HasWinner("b"))
	assert.False(t, s.Resolution.HasWinner("a"))
}
