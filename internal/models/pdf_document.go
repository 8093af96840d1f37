package models

import "time"

// PDFDocument is a downloadable document entry. The file itself lives
// outside this service.
type PDFDocument struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title   string `gorm:"type:text;not null"` // Document title.
	TitleEn string `gorm:"type:text"`          // English title.

	FilePath    string `gorm:"type:text;not null"` // Relative path to the PDF file.
	FileSize    int64  `gorm:"not null;default:0"` // Size in bytes.
	Description string `gorm:"type:text"`          // Optional description.

	Active       bool `gorm:"not null;default:true"` // Hidden from public listings when false.
	DisplayOrder int  `gorm:"not null;default:0"`    // Ascending sort key.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	CreatedBy *uint64   ``                               // Admin who created the entry.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	UpdatedBy *uint64   ``                               // Admin who last updated the entry.
}

// TableName keeps the table name used by the original schema.
func (PDFDocument) TableName() string {
	return "pdf_documents"
}
