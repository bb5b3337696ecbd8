package service

import (
	"fmt"

	"distrust-bot/internal/domain"
)

// BuildRender arma el payload público de una partida concluida, con los roles a la vista.
func BuildRender(session domain.Session, res domain.Resolution) domain.ResolutionRender {
	roles := make(map[string]domain.Role, len(session.Roles))
	for k, v := range session.Roles {
		roles[k] = v
	}
	status := res.Status
	if status == "" {
		status = session.Status
	}
	return domain.ResolutionRender{
		SessionID:     session.ID,
		Status:        status,
		Participants:  session.Participants,
		ActorID:       res.ActorID,
		Action:        res.Action,
		Winners:       append([]string{}, res.Winners...),
		RolesRevealed: roles,
		Headline:      Headline(session.Participants, res),
	}
}

// Headline resume el ganador en el formato de mención del chat.
func Headline(participants [2]string, res domain.Resolution) string {
	switch len(res.Winners) {
	case 0:
		if res.Status == domain.StatusExpired {
			return "Time is up. No clear winner."
		}
		return "No clear winner."
	case 1:
		if res.Status == domain.StatusExpired {
			return fmt.Sprintf("Time is up. <@%s> wins!", res.Winners[0])
		}
		return fmt.Sprintf("<@%s> wins!", res.Winners[0])
	default:
		return fmt.Sprintf("Both <@%s> and <@%s> win!", participants[0], participants[1])
	}
}
