package gitpen

// CredentialStore holds the single-slot bearer token obtained from login.
// Save overwrites any previous token; Load returns ErrNotLoggedIn when no
// token has been stored.
type CredentialStore interface {
	Save(token string) error
	Load() (string, error)
}
