// Package model contains the persisted data structures of the service.
package model

import (
	"time"
)

// News is the gorm model for a news item stored in the "noticia" table.
//
// The column names follow the table the frontend already consumes
// (Spanish field names, snake_case). Title, author, introduction and
// description are mandatory at creation time; the image and attachment
// columns hold public storage URLs and may be null.
type News struct {
	ID              uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	Titulo          string    `gorm:"type:text;not null" json:"titulo"`
	Autor           string    `gorm:"type:text;not null" json:"autor"`
	Introduccion    string    `gorm:"type:text;not null" json:"introduccion"`
	Descripcion     string    `gorm:"type:text;not null" json:"descripcion"`
	ImagenPrincipal *string   `gorm:"column:imagen_principal;type:text" json:"imagen_principal"`
	Archivo         *string   `gorm:"type:text" json:"archivo"`
	CreatedAt       time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName keeps the table name the rest of the stack expects.
func (News) TableName() string {
	return "noticia"
}

// MigrateAble lists every model that AutoMigrate should manage.
var MigrateAble = []interface{}{
	&News{},
}
