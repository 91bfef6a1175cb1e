package models

import (
	"time"
)

// Follow records that UserID receives AuthorID's posts in their followed feed
type Follow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64     `gorm:"not null;uniqueIndex:follows_user_author_ux,priority:1;check:chk_follows_no_self,user_id <> author_id;column:user_id"`
	AuthorID  int64     `gorm:"not null;uniqueIndex:follows_user_author_ux,priority:2;index:follows_author_idx;column:author_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User   *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
	}
}
