package auth

import "strings"

// Role define los roles soportados por el sistema.
// @Enum admin, user, viewer
type Role string

const (
	RoleAdmin  Role = "admin"  // acceso a registros de cualquier usuario
	RoleUser   Role = "user"   // acceso solo a sus propios registros
	RoleViewer Role = "viewer" // solo lectura
)

func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "viewer":
		return RoleViewer
	default:
		return RoleUser
	}
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanWrite indica si el rol permite mutaciones (viewer es solo lectura).
func (c Claims) CanWrite() bool {
	return c.Role == RoleAdmin || c.Role == RoleUser
}

// CanAccess es el chequeo de propiedad único del sistema:
// admin accede a cualquier recurso, el resto solo a los propios.
// Los módulos deben usar esta función en vez de repetir la regla rol+dueño.
func (c Claims) CanAccess(ownerUserID string) bool {
	if c.IsAdmin() {
		return true
	}
	return c.UserID != "" && c.UserID == ownerUserID
}
