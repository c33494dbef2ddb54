package authz

import "strings"

// AllowList is the flat admin gate: an identity is an admin iff its
// email is on the configured list. Not a role system. The list is
// injected at construction so tests can swap admin sets.
type AllowList struct {
	emails map[string]struct{}
}

func NewAllowList(emails []string) *AllowList {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if trimmed := strings.TrimSpace(email); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return &AllowList{emails: set}
}

// IsAdmin reports whether email is on the allow-list.
// An empty email (identity resolver gave no email) is never an admin.
func (a *AllowList) IsAdmin(email string) bool {
	if email == "" {
		return false
	}
	_, ok := a.emails[email]
	return ok
}
