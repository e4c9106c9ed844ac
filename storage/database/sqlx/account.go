package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/storage/database"
)

const (
	accountColumns = `a.id, a.username, a.student_code, a.full_name, r.name AS role, a.class_id,
		c.name AS class_name, a.must_change_password, a.is_active, a.password, a.created_at`
	accountTables = `accounts a
		JOIN roles r ON r.id = a.role_id
		LEFT JOIN classes c ON c.id = a.class_id`
)

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

// trapNoRowsErr maps "no rows" err to account.ErrNotFound
func (repo accountRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	q := repo.db.Rebind(`
		INSERT INTO accounts (username, student_code, password, full_name, role_id, class_id,
			must_change_password, is_active, created_at)
		VALUES (?, ?, ?, ?, (SELECT id FROM roles WHERE name = ?), ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err := repo.db.QueryRowxContext(ctx, q,
		acc.Username, acc.StudentCode, acc.PasswordHash, acc.FullName, string(acc.Role), acc.ClassID,
		acc.MustChangePassword, acc.IsActive, acc.CreatedAt.UTC(),
	).Scan(&id)
	switch {
	case err == nil:
	case database.IsUniqueViolation(err):
		return account.Account{}, account.ErrIdentityExists
	case database.IsForeignKeyViolation(err):
		return account.Account{}, account.ErrClassNotFound
	default:
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return repo.GetAccountByID(ctx, id)
}

func (repo accountRepository) QueryAccounts(ctx context.Context) ([]account.Account, error) {
	accs := make([]account.Account, 0)
	q := `SELECT ` + accountColumns + ` FROM ` + accountTables + ` ORDER BY a.id`
	if err := repo.db.SelectContext(ctx, &accs, q); err != nil {
		return nil, errors.Wrap(err, "selecting accounts")
	}
	return accs, nil
}

func (repo accountRepository) GetAccountByID(ctx context.Context, id int64) (account.Account, error) {
	var acc account.Account
	q := repo.db.Rebind(`SELECT ` + accountColumns + ` FROM ` + accountTables + ` WHERE a.id = ?`)
	if err := repo.db.GetContext(ctx, &acc, q, id); err != nil {
		return account.Account{}, repo.trapNoRowsErr(err, "getting account by id")
	}
	return acc, nil
}

func (repo accountRepository) GetAccountByIdentifier(ctx context.Context, username, studentCode string) (account.Account, error) {
	var acc account.Account
	// a username match wins over another account's student code
	q := repo.db.Rebind(`SELECT ` + accountColumns + ` FROM ` + accountTables + `
		WHERE a.username = ? OR a.student_code = ?
		ORDER BY CASE WHEN a.username = ? THEN 0 ELSE 1 END
		LIMIT 1`)
	if err := repo.db.GetContext(ctx, &acc, q, username, studentCode, username); err != nil {
		return account.Account{}, repo.trapNoRowsErr(err, "getting account by identifier")
	}
	return acc, nil
}

func (repo accountRepository) exec(ctx context.Context, msg, query string, args ...interface{}) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return errors.Wrap(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (repo accountRepository) UpdatePassword(ctx context.Context, id int64, hash []byte, mustChange bool) error {
	return repo.exec(ctx, "updating password",
		`UPDATE accounts SET password = ?, must_change_password = ? WHERE id = ?`, hash, mustChange, id)
}

func (repo accountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return repo.exec(ctx, "updating account status", `UPDATE accounts SET is_active = ? WHERE id = ?`, active, id)
}

func (repo accountRepository) CountAccountsByRole(ctx context.Context, role account.Role) (int, error) {
	var cnt int
	q := repo.db.Rebind(`SELECT COUNT(*) FROM accounts a JOIN roles r ON r.id = a.role_id WHERE r.name = ?`)
	if err := repo.db.GetContext(ctx, &cnt, q, string(role)); err != nil {
		return 0, errors.Wrap(err, "counting accounts by role")
	}
	return cnt, nil
}
