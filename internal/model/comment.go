package model

import "time"

// Comment 帖子评论
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	Author    User      `gorm:"foreignKey:UserID" json:"author"`
}

func (Comment) TableName() string { return "comment" }
