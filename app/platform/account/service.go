package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"connectcargo/app/database"
	"connectcargo/app/mail"
	"connectcargo/pkg/utils"
)

const lockoutThreshold = 5

type Service struct {
	db         *gorm.DB
	mailer     mail.Mailer
	baseURL    string
	mailDomain string
}

func NewService(db *gorm.DB, mailer mail.Mailer, baseURL, mailDomain string) *Service {
	return &Service{db: db, mailer: mailer, baseURL: baseURL, mailDomain: mailDomain}
}

type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	FullName        string
	Phone           string
}

// Register creates the account, binds the role-specific profile, issues a
// verification token and sends the verification mail. All of it happens in
// one transaction: if any step fails, no account exists afterwards.
func (s *Service) Register(input RegisterInput) (*database.User, error) {
	email := NormalizeEmail(input.Email)
	if !IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if ok, reason := IsStrongPassword(input.Password); !ok {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, reason)
	}

	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if input.Role != database.RoleCompany && input.Role != database.RoleCarrier {
		return nil, ErrInvalidRole
	}

	now := time.Now()
	token := utils.GenerateSecureToken(tokenEntropyBytes)
	expires := now.Add(VerificationTokenTTL)

	user := &database.User{
		Email:                    email,
		PasswordHash:             utils.HashPassword(input.Password),
		Role:                     input.Role,
		Phone:                    input.Phone,
		AccountStatus:            database.StatusPendingVerification,
		VerificationToken:        &token,
		VerificationTokenExpires: &expires,
		AcceptedTerms:            true,
		TermsAcceptanceDate:      &now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if err := s.bindProfile(tx, user, input.FullName); err != nil {
			return err
		}

		// Token-gated registration: an account nobody can verify is
		// worthless, so a failed mail delivery rolls everything back.
		return s.sendVerificationMail(user, token)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return user, nil
}

// bindProfile creates the Company or Carrier row matching the account
// role. The unique index on user_id backs the check against races.
func (s *Service) bindProfile(tx *gorm.DB, user *database.User, fullName string) error {
	switch user.Role {
	case database.RoleCompany:
		var count int64
		if err := tx.Model(&database.Company{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrProfileAlreadyBound
		}

		company := &database.Company{
			UserID:         user.ID,
			LegalName:      fullName,
			CommercialName: &fullName,
			CompanyType:    database.CompanyTypeLegal,
		}
		if err := tx.Create(company).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrProfileAlreadyBound
			}
			return err
		}
		user.Company = company
	case database.RoleCarrier:
		var count int64
		if err := tx.Model(&database.Carrier{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrProfileAlreadyBound
		}

		carrier := &database.Carrier{
			UserID:      user.ID,
			CarrierType: database.CarrierTypeIndividual,
		}
		if err := tx.Create(carrier).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrProfileAlreadyBound
			}
			return err
		}
		user.Carrier = carrier
	default:
		return ErrInvalidRole
	}

	return nil
}

// Authenticate verifies the credentials for the normalized email. Lookup
// misses and hash mismatches are indistinguishable to the caller.
func (s *Service) Authenticate(email, password string) (*database.User, error) {
	var user database.User
	result := s.db.First(&user, "email = ?", NormalizeEmail(email))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, result.Error
	}

	if s.IsLocked(&user) {
		return nil, ErrAccountLocked
	}

	if user.PasswordHash == "" || !utils.VerifyPassword(password, user.PasswordHash) {
		return nil, s.recordFailedAttempt(&user)
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if user.AccountStatus != database.StatusActive {
		return nil, ErrAccountInactive
	}

	now := time.Now()
	err := s.db.Model(&user).Updates(map[string]any{
		"failed_attempts": 0,
		"login_count":     gorm.Expr("login_count + ?", 1),
		"last_login":      now,
	}).Error
	if err != nil {
		return nil, err
	}

	user.FailedAttempts = 0
	user.LoginCount++
	user.LastLogin = &now

	return &user, nil
}

func (s *Service) IsLocked(user *database.User) bool {
	return user.FailedAttempts >= lockoutThreshold
}

func (s *Service) recordFailedAttempt(user *database.User) error {
	user.FailedAttempts++

	updates := map[string]any{"failed_attempts": user.FailedAttempts}
	if user.FailedAttempts >= lockoutThreshold && user.LockoutDate == nil {
		now := time.Now()
		user.LockoutDate = &now
		updates["lockout_date"] = &now
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return err
	}

	if user.FailedAttempts >= lockoutThreshold {
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// Unlock clears the lockout state. There is no automatic expiry; this is
// an administrative action.
func (s *Service) Unlock(user *database.User) error {
	err := s.db.Model(user).Updates(map[string]any{
		"failed_attempts": 0,
		"lockout_date":    nil,
	}).Error
	if err != nil {
		return err
	}

	user.FailedAttempts = 0
	user.LockoutDate = nil
	return nil
}

func (s *Service) SetStatus(user *database.User, status string) error {
	switch status {
	case database.StatusActive, database.StatusSuspended, database.StatusInactive:
	default:
		return fmt.Errorf("invalid account status %q", status)
	}

	if err := s.db.Model(user).Update("account_status", status).Error; err != nil {
		return err
	}

	user.AccountStatus = status
	return nil
}

func (s *Service) GetUserByID(userID uuid.UUID) (*database.User, error) {
	var user database.User

	result := s.db.First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*database.User, error) {
	var user database.User

	result := s.db.First(&user, "email = ?", NormalizeEmail(email))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// ChangePassword replaces the password after re-checking the current one.
// A wrong current password counts as a failed login attempt.
func (s *Service) ChangePassword(user *database.User, currentPassword, newPassword string) error {
	if s.IsLocked(user) {
		return ErrAccountLocked
	}

	if !utils.VerifyPassword(currentPassword, user.PasswordHash) {
		return s.recordFailedAttempt(user)
	}

	if ok, reason := IsStrongPassword(newPassword); !ok {
		return fmt.Errorf("%w: %s", ErrWeakPassword, reason)
	}

	hash := utils.HashPassword(newPassword)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Updates(map[string]any{
			"password_hash":       hash,
			"failed_attempts":     0,
			"reset_token":         nil,
			"reset_token_expires": nil,
		}).Error
	})
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.FailedAttempts = 0
	user.ResetToken = nil
	user.ResetTokenExpires = nil
	return nil
}
