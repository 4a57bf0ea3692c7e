package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DirectoryUser is an entry in the admin-managed user directory.
// Username is the stable key for update and delete.
type DirectoryUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// NewUser carries the fields for creating a directory user or registering an account.
type NewUser struct {
	Name     string `json:"name"     validate:"required,notblank"`
	Company  string `json:"company"  validate:"required,notblank"`
	Address  string `json:"address"  validate:"required,notblank"`
	Email    string `json:"email"    validate:"required,email"`
	Phone    string `json:"phone"    validate:"required,notblank"`
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required,notblank"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

// Trimmed returns u with surrounding whitespace removed from every field
// except the password.
func (u NewUser) Trimmed() NewUser {
	u.Name = trimSpace(u.Name)
	u.Company = trimSpace(u.Company)
	u.Address = trimSpace(u.Address)
	u.Email = trimSpace(u.Email)
	u.Phone = trimSpace(u.Phone)
	u.Username = trimSpace(u.Username)
	u.Role = trimSpace(u.Role)
	return u
}

// UserPatch carries an update. Empty fields mean "leave unchanged"; there is
// no way to clear a field through a patch.
type UserPatch struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Fields returns the non-empty fields of the patch keyed by their wire name.
func (p UserPatch) Fields() map[string]string {
	out := make(map[string]string)
	add := func(k, v string) {
		if v = trimSpace(v); v != "" {
			out[k] = v
		}
	}
	add("name", p.Name)
	add("company", p.Company)
	add("address", p.Address)
	add("email", p.Email)
	add("phone", p.Phone)
	add("password", p.Password)
	add("role", p.Role)
	return out
}
