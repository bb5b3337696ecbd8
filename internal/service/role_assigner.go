package service

import (
	"math/rand/v2"
	"sync"
	"time"

	"distrust-bot/internal/domain"
)

// Assignment liga el par sorteado a los dos participantes.
type Assignment struct {
	Combination domain.RoleCombination
	Roles       map[string]domain.Role
}

// RoleAssigner elige los roles de una partida nueva.
type RoleAssigner interface {
	Assign(participantA, participantB string) Assignment
}

// RandomRoleAssigner sortea uniformemente entre los cuatro pares ordenados,
// así que Crewmate/Impostor mixto sale el doble de veces que cada par puro.
type RandomRoleAssigner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRoleAssigner usa seed si es distinto de cero; si no, siembra con el reloj.
func NewRandomRoleAssigner(seed uint64) *RandomRoleAssigner {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomRoleAssigner{
		rng: rand.New(rand.NewPCG(seed, 1)),
	}
}

func (a *RandomRoleAssigner) Assign(participantA, participantB string) Assignment {
	a.mu.Lock()
	idx := a.rng.IntN(len(domain.RoleCombinations))
	a.mu.Unlock()
	return bindCombination(domain.RoleCombinations[idx], participantA, participantB)
}

// FixedRoleAssigner siempre devuelve la misma combinación. Útil para tests y partidas forzadas.
type FixedRoleAssigner struct {
	Combination domain.RoleCombination
}

func (a FixedRoleAssigner) Assign(participantA, participantB string) Assignment {
	return bindCombination(a.Combination, participantA, participantB)
}

func bindCombination(c domain.RoleCombination, participantA, participantB string) Assignment {
	roleA, roleB := c.Roles()
	return Assignment{
		Combination: c,
		Roles: map[string]domain.Role{
			participantA: roleA,
			participantB: roleB,
		},
	}
}
