package model

// Role names the built-in roles.  Accounts may hold several; permission
// checks always operate on the union of the assigned roles' permission
// sets, never on role names directly.
const (
    RoleGuest = "guest"
    RoleHost  = "host"
    RoleAdmin = "admin"
)

// Well-known permission strings.  The authority treats permissions as
// opaque dotted identifiers and only ever tests set membership; the
// constants below exist so call sites cannot drift on spelling.
const (
    PermBookingsCreate   = "bookings.create"
    PermStaysManageOwn   = "properties.manage_own"
    PermVehiclesManage   = "vehicles.manage_own"
    PermSettingsUpdate   = "settings.update"
    PermRolesManage      = "roles.manage"
)

// DefaultRolePermissions is the curated permission set each role starts
// with.  The auth service seeds these into the database at first boot and
// admins may re-sync them later; downstream services use this same table to
// expand the role claims of a verified token without calling back into the
// auth service on the request path.
var DefaultRolePermissions = map[string][]string{
    RoleGuest: {PermBookingsCreate},
    RoleHost:  {PermBookingsCreate, PermStaysManageOwn, PermVehiclesManage},
    RoleAdmin: {PermSettingsUpdate, PermRolesManage},
}

// PermissionUnion folds the permission sets of the given roles into one
// membership set using the supplied role→permissions table.  Unknown roles
// contribute nothing.
func PermissionUnion(table map[string][]string, roles []string) map[string]struct{} {
    out := make(map[string]struct{})
    for _, r := range roles {
        for _, p := range table[r] {
            out[p] = struct{}{}
        }
    }
    return out
}
