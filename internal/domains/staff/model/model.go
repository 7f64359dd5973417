package model

import "resa/shared/model"

const (
	TableName  = "staff"
	EntityName = "staff"

	FieldID        = "id"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldFullName  = "full_name"
	FieldLastLogin = "last_login"
	FieldActive    = "active"
)

type Staff struct {
	ID        string  `db:"id"`
	Email     string  `db:"email"`
	Password  string  `db:"password"`
	FullName  *string `db:"full_name"`
	LastLogin *string `db:"last_login"`
	Active    bool    `db:"active"`
	model.Metadata
}
