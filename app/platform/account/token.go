package account

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"connectcargo/app/database"
	"connectcargo/app/mail"
	"connectcargo/pkg/utils"
)

const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour

	tokenEntropyBytes = 32
)

// IssueVerificationToken mints a fresh verification token for the user,
// invalidating any previous one. The reset token is left untouched.
func (s *Service) IssueVerificationToken(user *database.User) (string, error) {
	token := utils.GenerateSecureToken(tokenEntropyBytes)
	expires := time.Now().Add(VerificationTokenTTL)

	err := s.db.Model(user).Updates(map[string]any{
		"verification_token":         token,
		"verification_token_expires": expires,
	}).Error
	if err != nil {
		return "", err
	}

	user.VerificationToken = &token
	user.VerificationTokenExpires = &expires
	return token, nil
}

// IssueResetToken mints a fresh password-reset token, invalidating any
// previous one. The verification token is left untouched.
func (s *Service) IssueResetToken(user *database.User) (string, error) {
	token := utils.GenerateSecureToken(tokenEntropyBytes)
	expires := time.Now().Add(ResetTokenTTL)

	err := s.db.Model(user).Updates(map[string]any{
		"reset_token":         token,
		"reset_token_expires": expires,
	}).Error
	if err != nil {
		return "", err
	}

	user.ResetToken = &token
	user.ResetTokenExpires = &expires
	return token, nil
}

// VerifyEmail consumes a verification token: the account becomes active
// and verified and the token pair is cleared. Consumption is guarded on
// the token column itself, so two concurrent calls with the same token
// yield exactly one success.
func (s *Service) VerifyEmail(token string) (*database.User, error) {
	var user database.User
	result := s.db.First(&user, "verification_token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, result.Error
	}

	if user.VerificationTokenExpires == nil || !time.Now().Before(*user.VerificationTokenExpires) {
		return nil, ErrExpiredToken
	}

	now := time.Now()
	consume := s.db.Model(&database.User{}).
		Where("id = ? AND verification_token = ?", user.ID, token).
		Updates(map[string]any{
			"verification_token":         nil,
			"verification_token_expires": nil,
			"email_verified":             true,
			"verification_date":          now,
			"account_status":             database.StatusActive,
		})
	if consume.Error != nil {
		return nil, consume.Error
	}
	if consume.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}

	user.VerificationToken = nil
	user.VerificationTokenExpires = nil
	user.EmailVerified = true
	user.VerificationDate = &now
	user.AccountStatus = database.StatusActive

	return &user, nil
}

// ResendVerification issues a new token for an unverified account and
// mails it out.
func (s *Service) ResendVerification(email string) error {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return ErrInvalidToken
	}

	token, err := s.IssueVerificationToken(user)
	if err != nil {
		return err
	}

	return s.sendVerificationMail(user, token)
}

// InitiatePasswordReset issues a reset token and mails the reset link.
// Whether the address exists is for the handler to hide, not for us.
func (s *Service) InitiatePasswordReset(email string) error {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return err
	}

	if s.IsLocked(user) {
		return ErrAccountLocked
	}

	token, err := s.IssueResetToken(user)
	if err != nil {
		return err
	}

	message := mail.Email{
		Subject:  "ConnectCargo - Password reset",
		From:     fmt.Sprintf("ConnectCargo <no-reply@%s>", s.mailDomain),
		To:       []string{user.Email},
		Template: "reset-password",
		TemplateVars: map[string]any{
			"resetURL":  fmt.Sprintf("%s/auth/reset-password/%s", s.baseURL, token),
			"expiresIn": "1 hour",
		},
	}

	return s.mailer.SendTemplatedMail(&message)
}

// ResetPassword consumes a reset token and installs the new password.
// Clearing the token and updating the hash happen in one statement; the
// second of two concurrent calls sees ErrInvalidToken.
func (s *Service) ResetPassword(token, newPassword string) error {
	if ok, reason := IsStrongPassword(newPassword); !ok {
		return fmt.Errorf("%w: %s", ErrWeakPassword, reason)
	}

	var user database.User
	result := s.db.First(&user, "reset_token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return result.Error
	}

	if user.ResetTokenExpires == nil || !time.Now().Before(*user.ResetTokenExpires) {
		return ErrExpiredToken
	}

	consume := s.db.Model(&database.User{}).
		Where("id = ? AND reset_token = ?", user.ID, token).
		Updates(map[string]any{
			"password_hash":       utils.HashPassword(newPassword),
			"reset_token":         nil,
			"reset_token_expires": nil,
			"failed_attempts":     0,
			"lockout_date":        nil,
		})
	if consume.Error != nil {
		return consume.Error
	}
	if consume.RowsAffected == 0 {
		return ErrInvalidToken
	}

	return nil
}

func (s *Service) sendVerificationMail(user *database.User, token string) error {
	message := mail.Email{
		Subject:  "Verify your ConnectCargo account",
		From:     fmt.Sprintf("ConnectCargo <no-reply@%s>", s.mailDomain),
		To:       []string{user.Email},
		Template: "verify-email",
		TemplateVars: map[string]any{
			"verificationURL": fmt.Sprintf("%s/auth/verify-email/%s", s.baseURL, token),
			"expiresIn":       "24 hours",
		},
	}

	return s.mailer.SendTemplatedMail(&message)
}
