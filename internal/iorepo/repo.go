// Package iorepo reads and writes gncontent entities with GORM sessions
// provided by the database manager. It needs only lifecycle.Sessioner,
// so it works the same way with SQLite and PostgreSQL.
package iorepo

import (
	"context"
	"errors"

	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/gnames/gncontent/pkg/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo provides composite reads and writes of content entities.
type Repo struct {
	db lifecycle.Sessioner
}

// New creates a Repo on top of scoped sessions.
func New(db lifecycle.Sessioner) *Repo {
	return &Repo{db: db}
}

// TopicWithArticles returns a topic with all its articles.
func (r *Repo) TopicWithArticles(
	ctx context.Context,
	id uint,
) (*schema.Topic, error) {
	var res schema.Topic
	err := r.db.Session(ctx, func(tx *gorm.DB) error {
		return tx.Preload("Articles", orderByID).First(&res, id).Error
	})
	if err != nil {
		return nil, readError("topic", id, err)
	}
	return &res, nil
}

// ArticleFull returns an article with its outline and sources.
func (r *Repo) ArticleFull(
	ctx context.Context,
	id uint,
) (*schema.Article, error) {
	var res schema.Article
	err := r.db.Session(ctx, func(tx *gorm.DB) error {
		return tx.
			Preload("Outline").
			Preload("Links", orderBySource).
			Preload("Links.Source").
			First(&res, id).Error
	})
	if err != nil {
		return nil, readError("article", id, err)
	}
	return &res, nil
}

// CreateArticleWithDeps saves an article, its outline and links to
// sources in one transaction. The outline is optional. It gets the topic
// of the article when its own topic is not set. If anything fails,
// nothing is saved.
func (r *Repo) CreateArticleWithDeps(
	ctx context.Context,
	article *schema.Article,
	outline *schema.Outline,
	sourceIDs []uint,
) error {
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if outline != nil {
			if outline.TopicID == 0 {
				outline.TopicID = article.TopicID
			}
			if err := tx.Create(outline).Error; err != nil {
				return err
			}
			article.OutlineID = &outline.ID
		}

		if err := tx.Omit(clause.Associations).Create(article).Error; err != nil {
			return err
		}
		return linkSources(tx, article.ID, sourceIDs)
	})
	if err != nil {
		return SaveError("article", err)
	}
	return nil
}

// LinkSources links an article to sources. Existing links are kept
// without errors.
func (r *Repo) LinkSources(
	ctx context.Context,
	articleID uint,
	sourceIDs []uint,
) error {
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		return linkSources(tx, articleID, sourceIDs)
	})
	if err != nil {
		return SaveError("article sources", err)
	}
	return nil
}

func linkSources(tx *gorm.DB, articleID uint, sourceIDs []uint) error {
	if len(sourceIDs) == 0 {
		return nil
	}
	links := make([]schema.ArticleSource, len(sourceIDs))
	for i, id := range sourceIDs {
		links[i] = schema.ArticleSource{ArticleID: articleID, SourceID: id}
	}
	return tx.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

// PromptWithProviders returns a prompt with its providers and
// provider-specific metadata.
func (r *Repo) PromptWithProviders(
	ctx context.Context,
	id uint,
) (*schema.Prompt, error) {
	var res schema.Prompt
	err := r.db.Session(ctx, func(tx *gorm.DB) error {
		return tx.
			Preload("Providers", func(db *gorm.DB) *gorm.DB {
				return db.Order("provider_id")
			}).
			Preload("Providers.Provider").
			First(&res, id).Error
	})
	if err != nil {
		return nil, readError("prompt", id, err)
	}
	return &res, nil
}

// SaveJob creates a job, or updates it when it has an ID.
func (r *Repo) SaveJob(ctx context.Context, job *schema.Job) error {
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if job.Status == "" {
			job.Status = schema.JobPending
		}
		return tx.Omit(clause.Associations).Save(job).Error
	})
	if err != nil {
		return SaveError("job", err)
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func orderBySource(db *gorm.DB) *gorm.DB {
	return db.Order("source_id")
}

func readError(entity string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError(entity, id)
	}
	return QueryError(entity, err)
}
