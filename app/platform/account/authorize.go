package account

import "connectcargo/app/database"

// Authorize decides whether the actor may reach a section gated on
// requiredRole. Company and carrier sections are mutually exclusive; an
// empty requiredRole gates on account status only.
func Authorize(user *database.User, requiredRole string) error {
	if user == nil {
		return ErrUnauthorized
	}

	if user.AccountStatus != database.StatusActive {
		return ErrAccountInactive
	}

	if requiredRole != "" && user.Role != requiredRole {
		return ErrUnauthorized
	}

	return nil
}
