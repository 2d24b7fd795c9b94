package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxImages 单条记录允许的图片上限
const MaxImages = 10

// Car 归属于单个用户，创建后不可修改
type Car struct {
	ID          string                      `gorm:"type:varchar(36);primaryKey" json:"_id"`
	UserID      string                      `gorm:"type:varchar(36);not null;index:idx_cars_owner_created,priority:1" json:"userId"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Images      datatypes.JSONSlice[string] `json:"images"` // 对象存储中的公开 URL
	CreatedAt   time.Time                   `gorm:"autoCreateTime;index:idx_cars_owner_created,priority:2" json:"createdAt"`
}

func (Car) TableName() string {
	return "cars"
}

// BeforeCreate 生成主键并保证数组字段非 nil
func (c *Car) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Tags == nil {
		c.Tags = datatypes.JSONSlice[string]{}
	}
	if c.Images == nil {
		c.Images = datatypes.JSONSlice[string]{}
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		db = db.Set("gorm:table_options", "COMMENT='车辆记录表'")
	}
	return db.AutoMigrate(&Car{})
}
