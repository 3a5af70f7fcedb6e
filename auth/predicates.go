package auth

func (i Identity) Authenticated() bool { return i.AccountID != 0 }

func (i Identity) Anonymous() bool { return !i.Authenticated() }

// IsStaff requires an authenticated staff account.
func (i Identity) IsStaff() bool { return i.Authenticated() && i.Staff }

// Owns reports whether the identity is the account named username.
func (i Identity) Owns(username string) bool {
	return i.Authenticated() && i.Username == username
}
