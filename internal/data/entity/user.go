package entity

// User is the identity anchor. Email is stored exactly as validated and never changes.
type User struct {
	BaseSimple
	Email string `db:"email"`
}
