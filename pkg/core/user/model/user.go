package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 生成主键
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// mysqlEmailCollation 邮箱按存储值区分大小写，默认 ci 排序规则会让唯一索引忽略大小写
const mysqlEmailCollation = "ALTER TABLE users MODIFY email varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"

// postMigrate 按方言返回建表后需要执行的语句
func postMigrate(dialect string) []string {
	if dialect == "mysql" {
		return []string{mysqlEmailCollation}
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	dialect := db.Dialector.Name()
	if dialect == "mysql" {
		db = db.Set("gorm:table_options", "COMMENT='用户基础表'")
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return err
	}
	for _, stmt := range postMigrate(dialect) {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
