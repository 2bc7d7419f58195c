package model

import "time"

// Post 帖子是不可变值，修改内容通过 WithContent 生成新值后交给仓储保存
type Post struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	Content    string     `gorm:"type:varchar(280);not null"`
	Author     string     `gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time  `gorm:"type:datetime(6);not null;index"`
	ModifiedAt *time.Time `gorm:"type:datetime(6)"`
}

func (Post) TableName() string {
	return "posts"
}

// WithContent 返回替换内容后的副本，id/author/created_at 保持不变
func (p Post) WithContent(content string, at time.Time) Post {
	p.Content = content
	p.ModifiedAt = &at
	return p
}
