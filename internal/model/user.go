package model

// Roles known to the user directory.
const (
	RoleStudent  = "Student"
	RoleLecturer = "Lecturer"
	RoleHoD      = "HoD"
	RoleAdmin    = "Admin"
)

// User is the read-only view of a directory entry.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
}
