package domain

import (
	"fmt"
	"strings"
)

// Role es el rol oculto asignado a un participante.
type Role string

const (
	RoleCrewmate Role = "crewmate"
	RoleImpostor Role = "impostor"
)

func (r Role) Valid() bool {
	return r == RoleCrewmate || r == RoleImpostor
}

// Title devuelve el rol capitalizado para mostrarlo en mensajes.
func (r Role) Title() string {
	switch r {
	case RoleCrewmate:
		return "Crewmate"
	case RoleImpostor:
		return "Impostor"
	default:
		return string(r)
	}
}

// RoleCombination enumera los cuatro pares ordenados posibles (participante A, participante B).
type RoleCombination int

const (
	CombinationCrewmateCrewmate RoleCombination = iota
	CombinationImpostorImpostor
	CombinationCrewmateImpostor
	CombinationImpostorCrewmate
)

// RoleCombinations lista los pares en el orden en que se sortean.
var RoleCombinations = []RoleCombination{
	CombinationCrewmateCrewmate,
	CombinationImpostorImpostor,
	CombinationCrewmateImpostor,
	CombinationImpostorCrewmate,
}

// Roles devuelve los roles para (A, B).
func (c RoleCombination) Roles() (Role, Role) {
	switch c {
	case CombinationCrewmateCrewmate:
		return RoleCrewmate, RoleCrewmate
	case CombinationImpostorImpostor:
		return RoleImpostor, RoleImpostor
	case CombinationCrewmateImpostor:
		return RoleCrewmate, RoleImpostor
	case CombinationImpostorCrewmate:
		return RoleImpostor, RoleCrewmate
	default:
		return "", ""
	}
}

func (c RoleCombination) String() string {
	a, b := c.Roles()
	if a == "" {
		return fmt.Sprintf("combination(%d)", int(c))
	}
	return string(a) + "/" + string(b)
}

// Action es una de las dos jugadas posibles. La primera que llega termina la partida.
type Action string

const (
	ActionTrust    Action = "trust"
	ActionDistrust Action = "distrust"
)

// ParseAction normaliza un valor recibido desde el adaptador.
func ParseAction(raw string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionTrust:
		return ActionTrust, nil
	case ActionDistrust:
		return ActionDistrust, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
}

func (a Action) Title() string {
	switch a {
	case ActionTrust:
		return "Trust"
	case ActionDistrust:
		return "Distrust"
	default:
		return string(a)
	}
}
