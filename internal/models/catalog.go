package models

import "regexp"

// TagColorPattern matches #RGB and #RRGGBB colors.
var TagColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// SlugPattern matches the characters allowed in a tag slug.
var SlugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

const DefaultTagColor = "#FF0000"

type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;not null;uniqueIndex;uniqueIndex:idx_tags_name_color_slug" json:"name"`
	// The check is written in SQLite's GLOB dialect for auto-migration.
	// migrations/0001_init.sql carries the same rule as a regex check.
	Color string `gorm:"size:7;not null;default:'#FF0000';uniqueIndex:idx_tags_name_color_slug;check:chk_tags_color,length(color) IN (4,7) AND substr(color,1,1) = '#' AND substr(color,2) NOT GLOB '*[^0-9A-Fa-f]*'" json:"color"`
	Slug  string `gorm:"size:200;not null;uniqueIndex;uniqueIndex:idx_tags_name_color_slug" json:"slug"`
}

type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;index;uniqueIndex:idx_ingredients_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredients_name_unit" json:"measurement_unit"`
}
