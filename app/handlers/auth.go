package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"connectcargo/app/config"
	"connectcargo/app/database"
	"connectcargo/app/mail"
	"connectcargo/app/platform/account"
)

func accountService(c *fiber.Ctx) *account.Service {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	mailer := mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)

	return account.NewService(db, mailer, cfg.BaseURL, cfg.MailgunDomain)
}

// registrationError maps the account error taxonomy onto a response.
// Anything unexpected stays a generic 500: details go to the log, not to
// the caller.
func registrationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, account.ErrInvalidEmail):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_email"})
	case errors.Is(err, account.ErrWeakPassword):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "weak_password", "message": err.Error()})
	case errors.Is(err, account.ErrPasswordMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password_mismatch"})
	case errors.Is(err, account.ErrInvalidRole):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_role"})
	case errors.Is(err, account.ErrDuplicateEmail):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "duplicate_email"})
	default:
		log.Errorf("registration failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration_failed"})
	}
}

func Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		Email           string `json:"email" validate:"required"`
		Password        string `json:"password" validate:"required"`
		ConfirmPassword string `json:"confirm_password" validate:"required"`
		Role            string `json:"role" validate:"required"`
		FullName        string `json:"full_name" validate:"required"`
		Phone           string `json:"phone" validate:"required"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := accountService(c).Register(account.RegisterInput{
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		Role:            input.Role,
		FullName:        input.FullName,
		Phone:           input.Phone,
	})
	if err != nil {
		return registrationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func Login(c *fiber.Ctx) error {
	store := c.Locals("store").(*session.Store)

	type LoginInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := accountService(c).Authenticate(input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountLocked):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account_locked"})
		case errors.Is(err, account.ErrEmailNotVerified):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "email_not_verified"})
		case errors.Is(err, account.ErrAccountInactive):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account_inactive"})
		case errors.Is(err, account.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		default:
			log.Errorf("login failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
	}

	sess, err := store.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	sess.Set("authenticated", true)
	sess.Set("user_id", user.ID.String())
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(user)
}

func Logout(c *fiber.Ctx) error {
	store := c.Locals("store").(*session.Store)

	sess, err := store.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if err := sess.Destroy(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_token"})
	}

	user, err := accountService(c).VerifyEmail(token)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrExpiredToken):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "expired_token"})
		case errors.Is(err, account.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_token"})
		default:
			log.Errorf("email verification failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "verification_failed"})
		}
	}

	return c.JSON(fiber.Map{"message": "Email verified", "user_id": user.ID})
}

func ResendVerification(c *fiber.Ctx) error {
	type ResendInput struct {
		Email string `json:"email" validate:"required,email"`
	}

	var input ResendInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// Same response whether or not the address exists.
	if err := accountService(c).ResendVerification(input.Email); err != nil {
		if !errors.Is(err, account.ErrUserNotFound) && !errors.Is(err, account.ErrInvalidToken) {
			log.Errorf("resend verification failed: %v", err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func ForgotPassword(c *fiber.Ctx) error {
	type ForgotPasswordInput struct {
		Email string `json:"email" validate:"required,email"`
	}

	var input ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// The response never reveals whether the address is registered.
	if err := accountService(c).InitiatePasswordReset(input.Email); err != nil {
		if !errors.Is(err, account.ErrUserNotFound) && !errors.Is(err, account.ErrAccountLocked) {
			log.Errorf("password reset initiation failed: %v", err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func ResetPassword(c *fiber.Ctx) error {
	type ResetPasswordInput struct {
		ResetToken  string `json:"reset_token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required"`
	}

	var input ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	err := accountService(c).ResetPassword(input.ResetToken, input.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrWeakPassword):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "weak_password", "message": err.Error()})
		case errors.Is(err, account.ErrExpiredToken):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "expired_token"})
		case errors.Is(err, account.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_reset_key"})
		default:
			log.Errorf("password reset failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server_error"})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func ChangePassword(c *fiber.Ctx) error {
	user := c.Locals("user").(database.User)

	type ChangePasswordInput struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}

	var input ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	err := accountService(c).ChangePassword(&user, input.CurrentPassword, input.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountLocked):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account_locked"})
		case errors.Is(err, account.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		case errors.Is(err, account.ErrWeakPassword):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "weak_password", "message": err.Error()})
		default:
			log.Errorf("password change failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server_error"})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CheckEmail is used by the registration form for inline feedback.
func CheckEmail(c *fiber.Ctx) error {
	email := account.NormalizeEmail(c.Query("email"))
	if email == "" {
		return c.JSON(fiber.Map{"exists": false, "valid": false})
	}

	valid := account.IsValidEmail(email)

	_, err := accountService(c).GetUserByEmail(email)
	exists := err == nil

	message := "Email available"
	if exists {
		message = "Email already registered"
	}

	return c.JSON(fiber.Map{"exists": exists, "valid": valid, "message": message})
}
