package repository

import (
	"context"
	"database/sql"

	"github.com/roamnest/roamnest-backend/internal/model"
)

// RoleRepo is the role/permission authority. Roles are named rows with a
// curated permission set; accounts reference roles through a join table and
// every permission check is the union across the account's roles, computed
// fresh per call. Permission strings are opaque to this layer: only set
// membership is ever tested.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Seed installs the built-in roles and their default permission sets if
// they are not present yet. Safe to run on every boot.
func (r *RoleRepo) Seed(ctx context.Context) error {
	for role, perms := range model.DefaultRolePermissions {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT IGNORE INTO roles (name) VALUES (?)", role); err != nil {
			return err
		}
		for _, p := range perms {
			if _, err := r.DB.ExecContext(ctx,
				"INSERT IGNORE INTO permissions (name) VALUES (?)", p); err != nil {
				return err
			}
			if _, err := r.DB.ExecContext(ctx,
				"INSERT IGNORE INTO role_permissions (role_name, permission_name) VALUES (?,?)",
				role, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// AssignRole attaches a named role to an account. Assigning a role the
// account already holds is a no-op; an unknown role is ErrNotFound.
func (r *RoleRepo) AssignRole(ctx context.Context, accountID, roleName string) error {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM roles WHERE name=? LIMIT 1", roleName).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO account_roles (account_id, role_name) VALUES (?,?)",
		accountID, roleName)
	return err
}

// RolesFor lists the role names currently assigned to an account.
func (r *RoleRepo) RolesFor(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT role_name FROM account_roles WHERE account_id=? ORDER BY role_name",
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// PermissionsFor computes the union of permissions across every role the
// account holds. No caching: the result always reflects the latest role
// and permission assignments.
func (r *RoleRepo) PermissionsFor(ctx context.Context, accountID string) (map[string]struct{}, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT rp.permission_name
		 FROM account_roles ar
		 JOIN role_permissions rp ON rp.role_name = ar.role_name
		 WHERE ar.account_id=?`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = struct{}{}
	}
	return out, rows.Err()
}

// HasPermission reports whether the account's permission union contains
// the given permission string.
func (r *RoleRepo) HasPermission(ctx context.Context, accountID, permission string) (bool, error) {
	perms, err := r.PermissionsFor(ctx, accountID)
	if err != nil {
		return false, err
	}
	_, ok := perms[permission]
	return ok, nil
}

// SyncPermissions replaces a role's permission set in one transaction.
// The next PermissionsFor call observes the new set; there is no cache to
// go stale. Administrative operation, never on the request hot path.
func (r *RoleRepo) SyncPermissions(ctx context.Context, roleName string, perms []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM roles WHERE name=? LIMIT 1", roleName).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM role_permissions WHERE role_name=?", roleName); err != nil {
		return err
	}
	for _, p := range perms {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO permissions (name) VALUES (?)", p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO role_permissions (role_name, permission_name) VALUES (?,?)",
			roleName, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}
