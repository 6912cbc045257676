package user

// HasRole reports whether usr is present and holds role.
func HasRole(usr *User, role Role) bool {
	return usr != nil && usr.Role == role
}

// HasAnyRole reports whether usr is present and holds one of roles.
func HasAnyRole(usr *User, roles ...Role) bool {
	if usr == nil {
		return false
	}
	for _, r := range roles {
		if usr.Role == r {
			return true
		}
	}
	return false
}

// CanAccessResource reports whether usr may mutate a resource owned by ownerID.
// Admins may access anything, and so may anyone when the resource has no recorded owner.
func CanAccessResource(usr *User, ownerID string) bool {
	if usr == nil {
		return false
	}
	return usr.IsAdmin() || ownerID == "" || usr.ID == ownerID
}
