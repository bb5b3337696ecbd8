package service

import (
	"distrust-bot/internal/domain"
)

// Outcome es el resultado puro de aplicar la tabla de pagos.
type Outcome struct {
	Winners   []string
	Rationale string
}

const (
	RationaleImpostorsRace         = "impostors_race"
	RationaleCrewmateTrustedImp    = "crewmate_trusted_impostor"
	RationaleImpostorTrusted       = "impostor_trusted_crewmate"
	RationaleMixedDistrust         = "mixed_distrust"
	RationaleCrewmatesTrusted      = "crewmates_trusted"
	RationaleCrewmateDistrustedCrw = "crewmate_distrusted_crewmate"
	RationaleUnknownRoles          = "unknown_roles"
	RationaleTimeoutImpostor       = "timeout_impostor_default"
	RationaleTimeoutNoWinner       = "timeout_no_winner"
)

// ResolveOutcome aplica la tabla de pagos según los roles y la primera jugada.
// Es total: ante roles o actor desconocidos devuelve "sin ganador".
func ResolveOutcome(participants [2]string, roles map[string]domain.Role, actorID string, action domain.Action) Outcome {
	p1, p2 := participants[0], participants[1]
	r1, ok1 := roles[p1]
	r2, ok2 := roles[p2]
	if !ok1 || !ok2 || len(roles) != 2 || p1 == p2 {
		return noWinner(RationaleUnknownRoles)
	}

	var other string
	switch actorID {
	case p1:
		other = p2
	case p2:
		other = p1
	default:
		return noWinner(RationaleUnknownRoles)
	}
	if action != domain.ActionTrust && action != domain.ActionDistrust {
		return noWinner(RationaleUnknownRoles)
	}
	actorRole := roles[actorID]

	switch {
	// Dos impostores: gana quien pulsa primero, sin importar la jugada.
	case r1 == domain.RoleImpostor && r2 == domain.RoleImpostor:
		return Outcome{Winners: []string{actorID}, Rationale: RationaleImpostorsRace}

	case isMixed(r1, r2):
		crewmate, impostor := p1, p2
		if r1 == domain.RoleImpostor {
			crewmate, impostor = p2, p1
		}
		if action == domain.ActionDistrust {
			return Outcome{Winners: []string{crewmate}, Rationale: RationaleMixedDistrust}
		}
		if actorRole == domain.RoleCrewmate {
			return Outcome{Winners: []string{impostor}, Rationale: RationaleCrewmateTrustedImp}
		}
		return Outcome{Winners: []string{crewmate}, Rationale: RationaleImpostorTrusted}

	case r1 == domain.RoleCrewmate && r2 == domain.RoleCrewmate:
		if action == domain.ActionTrust {
			return Outcome{Winners: []string{p1, p2}, Rationale: RationaleCrewmatesTrusted}
		}
		return Outcome{Winners: []string{other}, Rationale: RationaleCrewmateDistrustedCrw}
	}

	return noWinner(RationaleUnknownRoles)
}

// TimeoutOutcome es el resultado por defecto cuando nadie juega antes del plazo.
func TimeoutOutcome(participants [2]string, roles map[string]domain.Role) Outcome {
	r1, r2 := roles[participants[0]], roles[participants[1]]
	if isMixed(r1, r2) {
		if r1 == domain.RoleImpostor {
			return Outcome{Winners: []string{participants[0]}, Rationale: RationaleTimeoutImpostor}
		}
		return Outcome{Winners: []string{participants[1]}, Rationale: RationaleTimeoutImpostor}
	}
	return noWinner(RationaleTimeoutNoWinner)
}

func isMixed(r1, r2 domain.Role) bool {
	return (r1 == domain.RoleCrewmate && r2 == domain.RoleImpostor) ||
		(r1 == domain.RoleImpostor && r2 == domain.RoleCrewmate)
}

func noWinner(rationale string) Outcome {
	return Outcome{Winners: []string{}, Rationale: rationale}
}
