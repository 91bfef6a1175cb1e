package models

import (
	"time"
)

// Post represents a blog post
type Post struct {
	ID       int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Text     string    `gorm:"type:text;not null;column:text"`
	PubDate  time.Time `gorm:"not null;index:posts_pub_date_idx;column:pub_date"`
	AuthorID int64     `gorm:"not null;index:posts_author_idx;column:author_id"`
	GroupID  *int64    `gorm:"index:posts_group_idx;column:group_id"`
	Image    string    `gorm:"type:varchar(255);not null;default:'';column:image"`

	// Relationships
	Author *User  `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Group  *Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Comment is a reply left on a post
type Comment struct {
	ID       int64     `gorm:"primaryKey;autoIncrement;column:id"`
	PostID   int64     `gorm:"not null;index:comments_post_idx;column:post_id"`
	AuthorID int64     `gorm:"not null;column:author_id"`
	Text     string    `gorm:"type:text;not null;column:text"`
	Created  time.Time `gorm:"not null;index:comments_created_idx;column:created"`

	// Relationships
	Post   *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
