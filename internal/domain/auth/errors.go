package auth

import "errors"

// Token issuance lives in the identity service; this API only verifies.
var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenExpired           = errors.New("token has expired")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
