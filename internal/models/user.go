package models

import (
	"time"
)

// User is an author identity. Users are created by the auth side and the
// admin CLI; the feed code only reads them.
type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Username   string    `gorm:"type:varchar(150);not null;uniqueIndex:users_username_ux;column:username"`
	DateJoined time.Time `gorm:"not null;column:date_joined"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
