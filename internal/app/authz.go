package app

import "quizhunt-service/internal/domain"

func requireAuthenticated(p domain.Principal) error {
	if p.ID == "" || !p.Role.Valid() {
		return domain.ErrUnauthenticated
	}
	return nil
}

func requireRole(p domain.Principal, role domain.Role) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if p.Role != role {
		return domain.ErrPermissionDenied
	}
	return nil
}

func requireSociety(p domain.Principal) error { return requireRole(p, domain.RoleSociety) }

func requirePlayer(p domain.Principal) error { return requireRole(p, domain.RolePlayer) }

// requireOwner checks the society owns the event.
func requireOwner(p domain.Principal, event domain.Event) error {
	if err := requireSociety(p); err != nil {
		return err
	}
	if event.SocietyID != p.ID {
		return domain.ErrPermissionDenied
	}
	return nil
}

// requireSelf checks the player owns the score row.
func requireSelf(p domain.Principal, score domain.Score) error {
	if err := requirePlayer(p); err != nil {
		return err
	}
	if score.PlayerID != p.ID {
		return domain.ErrPermissionDenied
	}
	return nil
}
