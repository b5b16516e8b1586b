package domain

// Roles carried in the JWT and on the user record.
const (
	RoleBuyer   = "BUYER"
	RoleCreator = "CREATOR"
	RoleStaff   = "STAFF"
)

// Role is the public description of an account role.
type Role struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Roles lists the roles a user can pick at registration. Staff is granted out of band.
var Roles = []Role{
	{Name: RoleBuyer, Description: "Browses offers and requests commissions"},
	{Name: RoleCreator, Description: "Publishes offers and manages incoming commissions"},
}
