package account

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"connectcargo/app/database"
)

func TestAuthorize(t *testing.T) {
	company := &database.User{Role: database.RoleCompany, AccountStatus: database.StatusActive}
	carrier := &database.User{Role: database.RoleCarrier, AccountStatus: database.StatusActive}
	suspended := &database.User{Role: database.RoleCompany, AccountStatus: database.StatusSuspended}

	tests := []struct {
		name string
		user *database.User
		role string
		want error
	}{
		{"company as company", company, database.RoleCompany, nil},
		{"carrier as carrier", carrier, database.RoleCarrier, nil},
		{"company as carrier", company, database.RoleCarrier, ErrUnauthorized},
		{"carrier as company", carrier, database.RoleCompany, ErrUnauthorized},
		{"any active user", carrier, "", nil},
		{"suspended user", suspended, database.RoleCompany, ErrAccountInactive},
		{"suspended user, no role", suspended, "", ErrAccountInactive},
		{"nil user", nil, database.RoleCompany, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.user, tt.role)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
