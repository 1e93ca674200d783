package models

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is an operator account. The password hash never leaves the
// persistence layer.
type User struct {
	ID      string         `json:"id"`
	Email   string         `json:"email"`
	Role    string         `json:"role"`
	Created types.DateTime `json:"createdAt"`
}

func UserFromRecord(record *core.Record) User {
	return User{
		ID:      record.Id,
		Email:   record.GetString("email"),
		Role:    record.GetString("role"),
		Created: record.GetDateTime("created"),
	}
}
