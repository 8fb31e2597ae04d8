package domain

const RoleAdmin = "admin"

type SavedAddress struct {
	ID        string `json:"_id"`
	Label     string `json:"label"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	PinCode   string `json:"pinCode"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"isDefault"`
}

// ProfileSnapshot is the last-known copy of the user's profile. It may lag the backend.
type ProfileSnapshot struct {
	ID        string         `json:"_id"`
	FullName  string         `json:"fullName"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Role      string         `json:"role,omitempty"`
	Addresses []SavedAddress `json:"addresses"`
}

func (p *ProfileSnapshot) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Session pairs an opaque token with the cached profile. User is never set without Token.
type Session struct {
	Token string
	User  *ProfileSnapshot
}

func (s Session) Active() bool {
	return s.Token != ""
}

type AuthResult struct {
	Token string          `json:"token"`
	User  ProfileSnapshot `json:"user"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdate struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type AddressInput struct {
	Label     string `json:"label"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	PinCode   string `json:"pinCode"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"isDefault"`
}

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
