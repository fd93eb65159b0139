// Package validation holds checks shared by the HTTP and service layers.
package validation

import "strings"

// Usernames and group names become path segments under /api/users/:username
// and /api/groups/:name, so anything that collides with a static route (or a
// likely future one) is off limits.
var reservedNames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"devices":  {},
	"featured": {},
	"groups":   {},
	"health":   {},
	"login":    {},
	"logout":   {},
	"me":       {},
	"metrics":  {},
	"notices":  {},
	"signup":   {},
	"tags":     {},
	"timeline": {},
	"users":    {},
}

// ReservedName reports whether the given username or group name is held back
// from registration. The check is case-insensitive.
func ReservedName(name string) bool {
	_, ok := reservedNames[strings.ToLower(name)]
	return ok
}
