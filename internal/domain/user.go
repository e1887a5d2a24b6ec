package domain

// User is the authenticated AniList viewer.
type User struct {
	ID   int
	Name string
}
