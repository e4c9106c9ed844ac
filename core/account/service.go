package account

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/madamaths/madamaths/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("account not found")
	ErrIdentityExists     = core.NewConflictError("username or student code already exists")
	ErrClassNotFound      = core.NewNotFoundError("class not found")
	ErrInvalidCredentials = core.NewUnauthenticatedError("invalid credentials")
	// ErrAccountDisabled reads like ErrInvalidCredentials so that callers cannot probe accounts.
	ErrAccountDisabled  = core.NewUnauthenticatedError("invalid credentials")
	ErrSelfDeactivation = core.NewForbiddenError("you cannot deactivate your own account")

	dummyHash     []byte
	dummyHashInit sync.Once
)

type Repository interface {
	// CreateAccount inserts acc; a duplicate username or student code yields ErrIdentityExists
	// and an unknown class yields ErrClassNotFound.
	CreateAccount(ctx context.Context, acc Account) (Account, error)
	// QueryAccounts lists all accounts with their class name, in creation order.
	QueryAccounts(ctx context.Context) ([]Account, error)
	GetAccountByID(ctx context.Context, id int64) (Account, error)
	// GetAccountByIdentifier finds the account whose username or student code matches.
	GetAccountByIdentifier(ctx context.Context, username, studentCode string) (Account, error)
	UpdatePassword(ctx context.Context, id int64, hash []byte, mustChange bool) error
	SetActive(ctx context.Context, id int64, active bool) error
	CountAccountsByRole(ctx context.Context, role Role) (int, error)
}

type Service struct {
	repo            Repository
	defaultPassword string
	nowFunc         func() time.Time // mockable
}

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{
		repo:            repo,
		defaultPassword: conf.DefaultPassword,
		nowFunc:         time.Now,
	}
}

// Create creates an account that must change its password on first login.
// The configured default password is used when na.Password is empty.
func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	pwd := na.Password
	if pwd == "" {
		pwd = svc.defaultPassword
	}
	acc := Account{
		Username:           null.NewString(na.Username, na.Username != ""),
		StudentCode:        null.NewString(na.StudentCode, na.StudentCode != ""),
		FullName:           na.FullName,
		Role:               na.Role,
		ClassID:            null.NewInt64(na.ClassID, na.ClassID != 0),
		MustChangePassword: true,
		IsActive:           true,
		CreatedAt:          svc.nowFunc().UTC(),
	}
	if err := acc.SetPassword(pwd); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateAccount(ctx, acc)
}

func (svc *Service) Query(ctx context.Context) ([]Account, error) {
	return svc.repo.QueryAccounts(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

// GetByIdentifier finds an account by username (case-insensitive) or student code.
func (svc *Service) GetByIdentifier(ctx context.Context, identifier string) (Account, error) {
	uname := core.CleanString(identifier, true /* lower */)
	code := core.CleanString(identifier)
	if code == "" {
		return Account{}, ErrNotFound
	}
	return svc.repo.GetAccountByIdentifier(ctx, uname, code)
}

// Authenticate checks identifier/password. There is no lockout: every attempt is judged on its own.
func (svc *Service) Authenticate(ctx context.Context, identifier, pwd string) (Account, error) {
	acc, err := svc.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// spend the same time as a real comparison
			_ = bcrypt.CompareHashAndPassword(getDummyHash(), []byte(pwd))
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, errors.Wrap(err, "finding account by identifier")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return Account{}, ErrAccountDisabled
	}
	return acc, nil
}

// ChangePassword sets acc's new password and clears its forced-change flag.
// Keeping the current or the default password does not count as a change.
func (svc *Service) ChangePassword(ctx context.Context, acc Account, newPwd string) error {
	if msg := checkPasswordPolicy(newPwd, acc.FullName, acc.Username.String, acc.StudentCode.String); msg != "" {
		return core.NewValidationError(nil, core.FieldError{Field: "newPassword", Error: msg})
	}
	if newPwd == svc.defaultPassword || acc.CheckPassword(newPwd) == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "newPassword", Error: pwdReusedText})
	}
	if err := acc.SetPassword(newPwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdatePassword(ctx, acc.ID, acc.PasswordHash, false)
}

// ResetPassword is the operator's way out: the password is replaced
// and the account must change it again on next login.
func (svc *Service) ResetPassword(ctx context.Context, identifier, pwd string) (Account, error) {
	acc, err := svc.GetByIdentifier(ctx, identifier)
	if err != nil {
		return Account{}, err
	}
	if err = acc.SetPassword(pwd); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	if err = svc.repo.UpdatePassword(ctx, acc.ID, acc.PasswordHash, true); err != nil {
		return Account{}, err
	}
	acc.MustChangePassword = true
	return acc, nil
}

// SetActive enables or disables the account id. Deactivation takes effect on the next request
// even for outstanding tokens.
func (svc *Service) SetActive(ctx context.Context, actor Account, id int64, active bool) (Account, error) {
	if actor.ID == id && !active {
		return Account{}, ErrSelfDeactivation
	}
	if err := svc.repo.SetActive(ctx, id, active); err != nil {
		return Account{}, err
	}
	return svc.repo.GetAccountByID(ctx, id)
}

// EnsureAdmin creates the bootstrap admin when no admin account exists yet.
// It reports whether an account was created.
func (svc *Service) EnsureAdmin(ctx context.Context, username, pwd string) (bool, error) {
	cnt, err := svc.repo.CountAccountsByRole(ctx, RoleAdmin)
	if err != nil {
		return false, errors.Wrap(err, "counting admins")
	}
	if cnt > 0 {
		return false, nil
	}
	_, err = svc.Create(ctx, NewAccount{
		Username: core.CleanString(username, true /* lower */),
		FullName: "Administrateur Principal",
		Role:     RoleAdmin,
		Password: pwd,
	})
	if err != nil {
		return false, errors.Wrap(err, "creating bootstrap admin")
	}
	return true, nil
}

func getDummyHash() []byte {
	dummyHashInit.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return dummyHash
}
