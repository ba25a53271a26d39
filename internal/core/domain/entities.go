package domain

// Role represents a staff role in the clinic
type Role string

const (
	RoleManager   Role = "manager"
	RoleDoctor    Role = "doctor"
	RoleSecretary Role = "secretary"
	RoleNurse     Role = "nurse"
)

// ValidRole reports whether r is one of the known staff roles
func ValidRole(r Role) bool {
	switch r {
	case RoleManager, RoleDoctor, RoleSecretary, RoleNurse:
		return true
	}
	return false
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
