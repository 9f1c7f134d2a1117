package model

import "time"

// User 注册用户。username/email 在服务层按小写判重，库里另有 lower() 唯一索引兜底
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:120;uniqueIndex;not null" json:"-"`
	PasswordHash string     `gorm:"size:128;not null" json:"-"`
	FirstName    string     `gorm:"size:64" json:"first_name"`
	LastName     string     `gorm:"size:64" json:"last_name"`
	Birthday     *time.Time `gorm:"type:date" json:"birthday,omitempty"`
	AboutYou     string     `gorm:"type:text" json:"about_you"`
	Joined       time.Time  `gorm:"not null" json:"joined"`
	LastSeen     time.Time  `gorm:"not null" json:"last_seen"`
}

func (User) TableName() string { return "user" }

// FullName 展示用姓名
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
