package models

import "time"

// Product represents a catalog item that can belong to many categories.
type Product struct {
	ID          int64      `gorm:"primaryKey"`
	Name        string     `gorm:"type:varchar(80);not null"`
	Description string     `gorm:"type:text;not null"`
	Price       float64    `gorm:"not null"`
	ImgURL      string     `gorm:"column:img_url;type:varchar(255)"`
	Categories  []Category `gorm:"many2many:product_categories"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category groups products.
type Category struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(80);uniqueIndex;not null"`
}

// ProductCategory is a row of the product_categories join table.
type ProductCategory struct {
	ProductID  int64 `gorm:"primaryKey;autoIncrement:false"`
	CategoryID int64 `gorm:"primaryKey;autoIncrement:false"`
}
