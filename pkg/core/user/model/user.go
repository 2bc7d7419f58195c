package model

import (
	"time"
)

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Nickname     string    `gorm:"type:varchar(50);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "users"
}

// Profile 对外公开的用户信息，不包含密码哈希
type Profile struct {
	ID        int64
	Email     string
	Nickname  string
	CreatedAt time.Time
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		CreatedAt: u.CreatedAt,
	}
}
