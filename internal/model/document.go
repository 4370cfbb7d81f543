// Package model provides the persisted data models of the estate assistant.
package model

import (
	"time"
)

// Document status values. A document moves pending → processing →
// completed / failed; failed documents keep the error message.
const (
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusCompleted  = "completed"
	DocStatusFailed     = "failed"
)

// Document categories produced by the classifier. The set is closed:
// anything the model cannot place lands in CategoryOther.
const (
	CategoryRegulation  = "regulation"
	CategoryNotice      = "notice"
	CategoryMaintenance = "maintenance"
	CategoryMeeting     = "meeting"
	CategoryContract    = "contract"
	CategoryFinancial   = "financial"
	CategoryComplaint   = "complaint"
	CategoryFacility    = "facility"
	CategorySafety      = "safety"
	CategoryOther       = "other"
)

// Categories lists all valid document categories.
var Categories = []string{
	CategoryRegulation, CategoryNotice, CategoryMaintenance,
	CategoryMeeting, CategoryContract, CategoryFinancial,
	CategoryComplaint, CategoryFacility, CategorySafety, CategoryOther,
}

// IsValidCategory reports whether c is one of the closed category labels.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Document represents an uploaded property document and its index state.
type Document struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	PropertyID int64     `json:"property_id" gorm:"index;not null"`
	Title      string    `json:"title" gorm:"type:varchar(255);not null"`
	FileName   string    `json:"file_name" gorm:"type:varchar(255)"`
	FilePath   string    `json:"file_path" gorm:"type:varchar(512)"`
	FileSize   int64     `json:"file_size" gorm:"default:0"`
	Category   string    `json:"category" gorm:"type:varchar(32);default:'other'"`
	Summary    string    `json:"summary" gorm:"type:text"`
	ChunkNum   int       `json:"chunk_num" gorm:"default:0"`
	Status     string    `json:"status" gorm:"type:varchar(32);default:'pending'"`
	Error      string    `json:"error,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "assistant_documents"
}

// ChunkSource is a retrieved chunk returned alongside a chat answer.
type ChunkSource struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
}

// PropertyStats aggregates document/index counts for one property.
type PropertyStats struct {
	PropertyID    int64            `json:"property_id"`
	Documents     int64            `json:"documents"`
	ByStatus      map[string]int64 `json:"by_status"`
	ByCategory    map[string]int64 `json:"by_category"`
	IndexedChunks int64            `json:"indexed_chunks"`
}
