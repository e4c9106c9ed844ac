package account_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
	sqlxrepos "github.com/madamaths/madamaths/storage/database/sqlx"
	testutil "github.com/madamaths/madamaths/tests"
)

func newService(t *testing.T) (*account.Service, account.Repository) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewAccountRepository(db)
	return account.NewService(repo, core.NewTestConfig()), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	acc, err := svc.Create(ctx, account.NewAccount{StudentCode: "S001", FullName: "Student", Role: account.RoleStudent})
	require.NoError(t, err)
	assert.True(t, acc.MustChangePassword)
	assert.True(t, acc.IsActive)
	assert.NoError(t, acc.CheckPassword(core.NewTestConfig().DefaultPassword), "default password")

	acc, err = svc.Create(ctx, account.NewAccount{Username: "teach", FullName: "Teacher", Role: account.RoleTeacher, Password: "Secret-123"})
	require.NoError(t, err)
	assert.NoError(t, acc.CheckPassword("Secret-123"))

	_, err = svc.Create(ctx, account.NewAccount{Username: "teach", FullName: "Other", Role: account.RoleTeacher})
	assert.Equal(t, account.ErrIdentityExists, err)
	assert.True(t, errors.Is(err, core.ErrConflict))
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	testutil.CreateAccount(t, repo, "admin", "", "Admin", "Adm1n-pwd", account.RoleAdmin, true)
	student := testutil.CreateAccount(t, repo, "", "S001", "Student", "Stud-pwd1", account.RoleStudent, true)
	testutil.CreateAccount(t, repo, "gone", "", "Gone", "Gone-pwd1", account.RoleTeacher, false)

	tests := []struct {
		name       string
		identifier string
		pwd        string
		wantErr    error
	}{
		{name: "unknown identifier", identifier: "nobody", pwd: "whatever", wantErr: account.ErrInvalidCredentials},
		{name: "blank identifier", identifier: "  ", pwd: "whatever", wantErr: account.ErrInvalidCredentials},
		{name: "wrong password", identifier: "admin", pwd: "nope", wantErr: account.ErrInvalidCredentials},
		{name: "disabled", identifier: "gone", pwd: "Gone-pwd1", wantErr: account.ErrAccountDisabled},
		{name: "username, case-insensitive", identifier: " ADMIN ", pwd: "Adm1n-pwd"},
		{name: "student code", identifier: "S001", pwd: "Stud-pwd1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.identifier, tt.pwd)
			assert.Equal(t, tt.wantErr, err)
		})
	}

	t.Run("no lockout", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := svc.Authenticate(ctx, "S001", "bad")
			assert.Equal(t, account.ErrInvalidCredentials, err)
		}
		acc, err := svc.Authenticate(ctx, "S001", "Stud-pwd1")
		require.NoError(t, err)
		assert.Equal(t, student.ID, acc.ID)
	})

	t.Run("same message for disabled and bad credentials", func(t *testing.T) {
		assert.Equal(t, account.ErrInvalidCredentials.Error(), account.ErrAccountDisabled.Error())
	})
}

func TestService_ChangePassword(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	acc, err := svc.Create(ctx, account.NewAccount{Username: "rakoto", StudentCode: "S042", FullName: "Jean Rakoto", Role: account.RoleStudent})
	require.NoError(t, err)
	own, err := svc.Create(ctx, account.NewAccount{StudentCode: "S001", FullName: "Student", Role: account.RoleStudent, Password: "Kintana-77!"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		acc     *account.Account // defaults to acc
		pwd     string
		wantErr bool
	}{
		{name: "default password kept", pwd: core.NewTestConfig().DefaultPassword, wantErr: true},
		{name: "current password kept", acc: &own, pwd: "Kintana-77!", wantErr: true},
		{name: "too short", pwd: "Ab1!", wantErr: true},
		{name: "whitespace", pwd: "Abcd 1234!", wantErr: true},
		{name: "all numeric", pwd: "1234567890", wantErr: true},
		{name: "no special", pwd: "Abcdefg123", wantErr: true},
		{name: "no upper", pwd: "abcdefg12!", wantErr: true},
		{name: "similar to username", pwd: "Rakoto12!", wantErr: true},
		{name: "similar to full name", pwd: "JeanRakoto1!", wantErr: true},
		{name: "valid", pwd: "Tsara-be-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := acc
			if tt.acc != nil {
				target = *tt.acc
			}
			err := svc.ChangePassword(ctx, target, tt.pwd)
			if tt.wantErr {
				var vErr *core.ValidationError
				if assert.True(t, errors.As(err, &vErr), "err = %v", err) {
					assert.Equal(t, "newPassword", vErr.Fields[0].Field)
				}
				assert.True(t, errors.Is(err, core.ErrInvalid))
				return
			}
			require.NoError(t, err)
			got, err := repo.GetAccountByID(ctx, target.ID)
			require.NoError(t, err)
			assert.False(t, got.MustChangePassword)
			assert.NoError(t, got.CheckPassword(tt.pwd))
		})
	}

	// a refused change leaves the forced-change flag set
	got, err := repo.GetAccountByID(ctx, own.ID)
	require.NoError(t, err)
	assert.True(t, got.MustChangePassword)
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	acc := testutil.CreateAccount(t, repo, "teach", "", "Teacher", "Old-pwd-1", account.RoleTeacher, true)

	_, err := svc.ResetPassword(ctx, "nobody", "x")
	assert.Equal(t, account.ErrNotFound, err)

	got, err := svc.ResetPassword(ctx, "Teach", "temp")
	require.NoError(t, err)
	assert.True(t, got.MustChangePassword)

	_, err = svc.Authenticate(ctx, "teach", "Old-pwd-1")
	assert.Equal(t, account.ErrInvalidCredentials, err)
	got, err = svc.Authenticate(ctx, "teach", "temp")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
	assert.True(t, got.MustChangePassword)
}

func TestService_SetActive(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	admin := testutil.CreateAccount(t, repo, "admin", "", "Admin", "", account.RoleAdmin, true)
	student := testutil.CreateAccount(t, repo, "", "S001", "Student", "", account.RoleStudent, true)

	_, err := svc.SetActive(ctx, admin, admin.ID, false)
	assert.Equal(t, account.ErrSelfDeactivation, err)

	_, err = svc.SetActive(ctx, admin, 999, false)
	assert.Equal(t, account.ErrNotFound, err)

	got, err := svc.SetActive(ctx, admin, student.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = svc.SetActive(ctx, admin, student.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestService_EnsureAdmin(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "Admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	acc, err := svc.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, acc.Role)
	assert.True(t, acc.MustChangePassword)

	created, err = svc.EnsureAdmin(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.False(t, created)

	cnt, err := repo.CountAccountsByRole(ctx, account.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)
}

func TestNewAccount_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	tests := []struct {
		name       string
		na         account.NewAccount
		wantFields []string
	}{
		{name: "no identifier", na: account.NewAccount{FullName: "X", Role: account.RoleStudent}, wantFields: []string{"username", "student_code"}},
		{name: "blank name", na: account.NewAccount{Username: "xx1", FullName: "  ", Role: account.RoleTeacher}, wantFields: []string{"full_name"}},
		{name: "bad role", na: account.NewAccount{Username: "xx1", FullName: "X", Role: "janitor"}, wantFields: []string{"role"}},
		{name: "class for teacher", na: account.NewAccount{Username: "xx1", FullName: "X", Role: account.RoleTeacher, ClassID: 1}, wantFields: []string{"class_id"}},
		{name: "valid student", na: account.NewAccount{StudentCode: "S001", FullName: "X", Role: account.RoleStudent, ClassID: 1}},
		{name: "valid admin", na: account.NewAccount{Username: " Boss ", FullName: "X", Role: account.RoleAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.na.Validate(validate)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "err = %v", err)
			fields := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				fields = append(fields, fe.Field())
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}
