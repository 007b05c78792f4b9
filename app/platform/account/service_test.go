package account

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"connectcargo/app/database"
	"connectcargo/app/mail"
)

type stubMailer struct {
	sent []*mail.Email
	fail bool
}

func (m *stubMailer) SendMail(e *mail.Email) error {
	return m.SendTemplatedMail(e)
}

func (m *stubMailer) SendTemplatedMail(e *mail.Email) error {
	if m.fail {
		return errors.New("mail delivery failed")
	}
	m.sent = append(m.sent, e)
	return nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&database.User{},
		&database.Company{},
		&database.Carrier{},
	)
	require.NoError(t, err)

	return db
}

func testService(t *testing.T) (*Service, *stubMailer) {
	t.Helper()

	mailer := &stubMailer{}
	svc := NewService(testDB(t), mailer, "http://localhost:3000", "mg.connectcargo.test")
	return svc, mailer
}

func carrierInput() RegisterInput {
	return RegisterInput{
		Email:           "driver1@example.com",
		Password:        "Str0ng!Pass",
		ConfirmPassword: "Str0ng!Pass",
		Role:            database.RoleCarrier,
		FullName:        "Juan Perez",
		Phone:           "3001234567",
	}
}

func TestRegisterCarrier(t *testing.T) {
	svc, mailer := testService(t)

	user, err := svc.Register(carrierInput())
	require.NoError(t, err)

	assert.Equal(t, "driver1@example.com", user.Email)
	assert.Equal(t, database.RoleCarrier, user.Role)
	assert.Equal(t, database.StatusPendingVerification, user.AccountStatus)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "Str0ng!Pass", user.PasswordHash)

	require.NotNil(t, user.VerificationToken)
	require.NotNil(t, user.VerificationTokenExpires)
	expires := time.Until(*user.VerificationTokenExpires)
	assert.InDelta(t, VerificationTokenTTL.Seconds(), expires.Seconds(), 60)

	require.NotNil(t, user.Carrier)
	assert.Equal(t, database.CarrierTypeIndividual, user.Carrier.CarrierType)
	assert.Equal(t, user.ID, user.Carrier.UserID)

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].TemplateVars["verificationURL"], *user.VerificationToken)
}

func TestRegisterCompanyBindsProfile(t *testing.T) {
	svc, _ := testService(t)

	input := carrierInput()
	input.Email = "shipper@example.com"
	input.Role = database.RoleCompany
	input.FullName = "Acme Logistics SAS"

	user, err := svc.Register(input)
	require.NoError(t, err)

	require.NotNil(t, user.Company)
	assert.Equal(t, "Acme Logistics SAS", user.Company.LegalName)
	assert.Equal(t, database.CompanyTypeLegal, user.Company.CompanyType)
	assert.Nil(t, user.Carrier)
}

func TestRegisterValidation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantErr error
	}{
		{"invalid email", func(i *RegisterInput) { i.Email = "abc@x" }, ErrInvalidEmail},
		{"weak password", func(i *RegisterInput) { i.Password = "weak"; i.ConfirmPassword = "weak" }, ErrWeakPassword},
		{"password mismatch", func(i *RegisterInput) { i.ConfirmPassword = "Other1!Pass" }, ErrPasswordMismatch},
		{"invalid role", func(i *RegisterInput) { i.Role = "admin" }, ErrInvalidRole},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := testService(t)

			input := carrierInput()
			tc.mutate(&input)

			_, err := svc.Register(input)
			assert.ErrorIs(t, err, tc.wantErr)

			var count int64
			svc.db.Model(&database.User{}).Count(&count)
			assert.Zero(t, count, "no account may be persisted on a failed registration")
		})
	}
}

func TestRegisterWeakPasswordPerRule(t *testing.T) {
	passwords := []string{
		"S0r!t",       // too short
		"str0ng!pass", // no uppercase
		"STR0NG!PASS", // no lowercase
		"Strong!Pass", // no digit
		"Str0ngPass1", // no symbol
	}

	for _, password := range passwords {
		svc, _ := testService(t)

		input := carrierInput()
		input.Password = password
		input.ConfirmPassword = password

		_, err := svc.Register(input)
		assert.ErrorIs(t, err, ErrWeakPassword, "password %q", password)

		var count int64
		svc.db.Model(&database.User{}).Count(&count)
		assert.Zero(t, count)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Register(carrierInput())
	require.NoError(t, err)

	// Same address with different casing still collides.
	input := carrierInput()
	input.Email = "Driver1@Example.com"

	_, err = svc.Register(input)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var count int64
	svc.db.Model(&database.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRegisterMailFailureRollsBack(t *testing.T) {
	svc, mailer := testService(t)
	mailer.fail = true

	_, err := svc.Register(carrierInput())
	require.Error(t, err)

	var users, carriers int64
	svc.db.Model(&database.User{}).Count(&users)
	svc.db.Model(&database.Carrier{}).Count(&carriers)
	assert.Zero(t, users)
	assert.Zero(t, carriers)
}

func TestBindProfileSecondBindRejected(t *testing.T) {
	svc, _ := testService(t)

	carrier, err := svc.Register(carrierInput())
	require.NoError(t, err)

	err = svc.bindProfile(svc.db, carrier, "Juan Perez")
	assert.ErrorIs(t, err, ErrProfileAlreadyBound)

	companyIn := carrierInput()
	companyIn.Email = "acme@example.com"
	companyIn.Role = database.RoleCompany
	companyIn.FullName = "Acme SAS"

	company, err := svc.Register(companyIn)
	require.NoError(t, err)

	err = svc.bindProfile(svc.db, company, "Acme SAS")
	assert.ErrorIs(t, err, ErrProfileAlreadyBound)

	// Still exactly one profile row per account.
	var carriers, companies int64
	svc.db.Model(&database.Carrier{}).Where("user_id = ?", carrier.ID).Count(&carriers)
	svc.db.Model(&database.Company{}).Where("user_id = ?", company.ID).Count(&companies)
	assert.EqualValues(t, 1, carriers)
	assert.EqualValues(t, 1, companies)
}

func registerVerified(t *testing.T, svc *Service) *database.User {
	t.Helper()

	user, err := svc.Register(carrierInput())
	require.NoError(t, err)

	verified, err := svc.VerifyEmail(*user.VerificationToken)
	require.NoError(t, err)

	return verified
}

func TestAuthenticate(t *testing.T) {
	svc, _ := testService(t)
	created := registerVerified(t, svc)

	user, err := svc.Authenticate("driver1@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	assert.Equal(t, created.ID, user.ID)
	assert.Zero(t, user.FailedAttempts)
	assert.NotNil(t, user.LastLogin)
	assert.Equal(t, 1, user.LoginCount)
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	svc, _ := testService(t)
	registerVerified(t, svc)

	_, err := svc.Authenticate("  DRIVER1@example.COM ", "Str0ng!Pass")
	assert.NoError(t, err)
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	svc, _ := testService(t)
	registerVerified(t, svc)

	// Unknown email and wrong password are indistinguishable.
	_, err := svc.Authenticate("nobody@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("driver1@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnverified(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Register(carrierInput())
	require.NoError(t, err)

	_, err = svc.Authenticate("driver1@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestAuthenticateSuspended(t *testing.T) {
	svc, _ := testService(t)
	user := registerVerified(t, svc)

	require.NoError(t, svc.SetStatus(user, database.StatusSuspended))

	_, err := svc.Authenticate("driver1@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLockoutAfterFiveFailures(t *testing.T) {
	svc, _ := testService(t)
	registerVerified(t, svc)

	for i := 0; i < 4; i++ {
		_, err := svc.Authenticate("driver1@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	// The fifth failure crosses the threshold.
	_, err := svc.Authenticate("driver1@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// Even the correct password is refused now.
	_, err = svc.Authenticate("driver1@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrAccountLocked)

	user, err := svc.GetUserByEmail("driver1@example.com")
	require.NoError(t, err)
	assert.NotNil(t, user.LockoutDate)
	assert.Equal(t, 5, user.FailedAttempts)
}

func TestFailedCounterResetsOnSuccess(t *testing.T) {
	svc, _ := testService(t)
	registerVerified(t, svc)

	for i := 0; i < 4; i++ {
		_, err := svc.Authenticate("driver1@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	user, err := svc.Authenticate("driver1@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Zero(t, user.FailedAttempts)
}

func TestUnlock(t *testing.T) {
	svc, _ := testService(t)
	registerVerified(t, svc)

	for i := 0; i < 5; i++ {
		svc.Authenticate("driver1@example.com", "wrong")
	}

	user, err := svc.GetUserByEmail("driver1@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Unlock(user))

	_, err = svc.Authenticate("driver1@example.com", "Str0ng!Pass")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := testService(t)
	user := registerVerified(t, svc)

	err := svc.ChangePassword(user, "Str0ng!Pass", "N3w!Secret")
	require.NoError(t, err)

	_, err = svc.Authenticate("driver1@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("driver1@example.com", "N3w!Secret")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, _ := testService(t)
	user := registerVerified(t, svc)

	err := svc.ChangePassword(user, "wrong", "N3w!Secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
