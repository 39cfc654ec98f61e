package service

import "quantumflux/internal/http-api/models"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Forbidden Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "forbidden"
}

type Action string

// Admin-gated actions. Everything else only needs an authenticated caller.
const (
	ActionAdminPost     Action = "comment:admin_post"
	ActionDeleteComment Action = "comment:delete"
)

// Authorize decides whether a caller with the given role may perform action.
// Unknown actions and roles are forbidden.
func Authorize(role string, action Action) Decision {
	switch action {
	case ActionAdminPost, ActionDeleteComment:
		if role == models.RoleAdmin {
			return Authorized
		}
	}
	return Forbidden
}
