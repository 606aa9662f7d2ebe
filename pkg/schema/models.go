// Package schema provides database schema models for gncontent.
//
// The same models are used by GORM sessions of the CRUD layer, by the
// AutoMigrate fallback when versioned migrations fail, and as the
// expected schema during schema validation. Versioned migrations in the
// migrations package must stay in sync with these definitions.
package schema

import (
	"time"
)

// Article statuses.
const (
	ArticleDraft     = "draft"
	ArticleEdited    = "edited"
	ArticlePublished = "published"
)

// Job statuses.
const (
	JobPending   = "pending"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Topic is a subject that groups outlines and articles.
type Topic struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"index"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Outlines []Outline `gorm:"foreignKey:TopicID"`
	Articles []Article `gorm:"foreignKey:TopicID"`
}

// Outline is a structure of a future article.
type Outline struct {
	ID uint `gorm:"primaryKey"`

	// Structure is a JSON document with sections of the outline.
	Structure string `gorm:"not null"`

	// OutlineMetadata is a JSON document with generation instructions,
	// for example {"style": "detailed"}.
	OutlineMetadata string
	TopicID         uint `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Article is a piece of content that belongs to a topic and optionally
// follows an outline.
type Article struct {
	ID    uint   `gorm:"primaryKey"`
	Title string `gorm:"not null;index"`

	// Status is "draft", "edited" or "published".
	Status string `gorm:"not null;default:draft"`

	// ArticleMetadata is a JSON document with generation instructions,
	// for example {"tone": "formal"}.
	ArticleMetadata string
	TopicID         uint `gorm:"not null;index"`
	OutlineID       *uint
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Outline *Outline        `gorm:"foreignKey:OutlineID"`
	Links   []ArticleSource `gorm:"foreignKey:ArticleID"`
}

// Source is a publication an article refers to.
type Source struct {
	ID              uint   `gorm:"primaryKey"`
	URL             string `gorm:"unique"`
	Title           string `gorm:"index"`
	Publication     string
	PublicationDate *time.Time
	Summary         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ArticleSource links articles to their sources.
type ArticleSource struct {
	ArticleID uint `gorm:"primaryKey;autoIncrement:false"`
	SourceID  uint `gorm:"primaryKey;autoIncrement:false"`

	Source Source `gorm:"foreignKey:SourceID"`
}

// Prompt is a reusable template for AI generation.
type Prompt struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null;unique"`
	TemplateText string `gorm:"not null"`
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Providers []PromptProvider `gorm:"foreignKey:PromptID"`
}

// Provider is an AI service. API key and endpoint are shared by all
// models of the provider.
type Provider struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"not null;unique"`
	APIKey   string `gorm:"not null"`
	Endpoint string `gorm:"not null"`

	// ModelName is a JSON array of model names, for example
	// ["gpt-4o", "gpt-4o-mini"].
	ModelName string

	// DefaultModel is "auto" or one of models from ModelName.
	DefaultModel string `gorm:"default:auto"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PromptProvider links prompts to providers with provider-specific
// metadata.
type PromptProvider struct {
	PromptID       uint `gorm:"primaryKey;autoIncrement:false"`
	ProviderID     uint `gorm:"primaryKey;autoIncrement:false"`
	PromptMetadata string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Provider Provider `gorm:"foreignKey:ProviderID"`
}

// Job is an asynchronous AI generation task.
type Job struct {
	ID uint `gorm:"primaryKey"`

	// Status is "pending", "completed" or "failed".
	Status     string `gorm:"not null;default:pending;index"`
	ArticleID  *uint
	ProviderID *uint
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Article  *Article  `gorm:"foreignKey:ArticleID"`
	Provider *Provider `gorm:"foreignKey:ProviderID"`
}
