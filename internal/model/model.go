// Package model defines the core domain types for the event platform.
package model

// User is a registered platform user.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserShort is the public projection of a user embedded in other views.
type UserShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Short returns the public projection of u.
func (u *User) Short() UserShort {
	return UserShort{ID: u.ID, Name: u.Name}
}

// Category groups events. Names are unique.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Role identifies the kind of caller performing an operation.
type Role string

const (
	RolePublic Role = "public"
	RoleUser   Role = "user"
	RoleAdmin  Role = "admin"
)

// Caller is the identity an operation runs on behalf of. It is established
// by the transport layer; services never read identifiers from paths.
type Caller struct {
	UserID int64
	Role   Role
}

// UserCaller returns a caller acting as the given user.
func UserCaller(id int64) Caller {
	return Caller{UserID: id, Role: RoleUser}
}

// AdminCaller returns a caller with administrative rights.
func AdminCaller() Caller {
	return Caller{Role: RoleAdmin}
}

// PublicCaller returns an anonymous caller.
func PublicCaller() Caller {
	return Caller{Role: RolePublic}
}

// IsAdmin reports whether c carries administrative rights.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// ErrorResponse is the JSON error envelope returned by the main service.
type ErrorResponse struct {
	Errors    []string `json:"errors"`
	Message   string   `json:"message"`
	Reason    string   `json:"reason"`
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
}
