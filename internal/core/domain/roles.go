package domain

// Roles accepted on tokens presented to the viewer API.
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
)
