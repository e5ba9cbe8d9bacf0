package ports

type AccessPolicy interface {
	Allowed(userID int64) bool
}
