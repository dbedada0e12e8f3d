package domain

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the authenticated caller. Identity itself is owned by the auth provider.
type User struct {
	ID   string
	Role Role
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
