package model

import "time"

// User represents a registered learner account.
//
// WHY Username AS THE IDENTITY?
// Accounts are local to this service — there is no external identity provider.
// The username is the unique, case-sensitive key that namespaces every
// progress record. We still generate an internal xid for the primary key so a
// future rename feature wouldn't have to rewrite every progress row.
//
// PasswordHash is a bcrypt hash, never the plaintext. It is excluded from
// JSON so it cannot leak through an API response.
type User struct {
	ID            string    `json:"id"            db:"id"`
	Username      string    `json:"username"      db:"username"`
	PasswordHash  string    `json:"-"             db:"password_hash"`
	Email         string    `json:"email"         db:"email"`       // derived: <lower(username)>@engineer.ai
	JoinedDate    string    `json:"joinedDate"    db:"joined_date"` // display string, e.g. "August 2026"
	ClaimedChests []string  `json:"claimedChests" db:"claimed_chests"`
	Theme         string    `json:"theme"         db:"theme"` // "light" or "dark"
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt"     db:"updated_at"`
}

// HasClaimed reports whether the mastery chest for moduleID has been claimed.
func (u *User) HasClaimed(moduleID string) bool {
	for _, id := range u.ClaimedChests {
		if id == moduleID {
			return true
		}
	}
	return false
}
