package model

import "time"

// Post 链接帖子，创建后不可修改
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Source    string    `gorm:"size:255;index" json:"source"` // URL 的 host 部分
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Author    User      `gorm:"foreignKey:UserID" json:"author"`

	// 只读、不建列，由查询中的子查询填充
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}

func (Post) TableName() string { return "post" }
