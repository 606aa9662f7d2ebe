package iorepo_test

import (
	"context"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gncontent/internal/iodb"
	"github.com/gnames/gncontent/internal/iorepo"
	"github.com/gnames/gncontent/internal/iotesting"
	"github.com/gnames/gncontent/pkg/errcode"
	"github.com/gnames/gncontent/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRepo(t *testing.T) (*iorepo.Repo, *iodb.Manager) {
	t.Helper()
	m, err := iodb.New(iotesting.SQLiteConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	_, err = m.Setup(context.Background(), true)
	require.NoError(t, err)
	return iorepo.New(m), m
}

func create(t *testing.T, m *iodb.Manager, records ...any) {
	t.Helper()
	err := m.Transaction(context.Background(), func(tx *gorm.DB) error {
		for _, r := range records {
			if err := tx.Create(r).Error; err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func count(t *testing.T, m *iodb.Manager, model any) int64 {
	t.Helper()
	var res int64
	err := m.Session(context.Background(), func(tx *gorm.DB) error {
		return tx.Model(model).Count(&res).Error
	})
	require.NoError(t, err)
	return res
}

func TestTopicWithArticles(t *testing.T) {
	ctx := context.Background()
	repo, m := newRepo(t)

	topic := &schema.Topic{Title: "Birds"}
	create(t, m, topic)
	create(t, m,
		&schema.Article{Title: "Owls", TopicID: topic.ID},
		&schema.Article{Title: "Crows", TopicID: topic.ID},
	)

	res, err := repo.TopicWithArticles(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, "Birds", res.Title)
	require.Len(t, res.Articles, 2)
	assert.Equal(t, "Owls", res.Articles[0].Title)
	assert.Equal(t, schema.ArticleDraft, res.Articles[0].Status)

	_, err = repo.TopicWithArticles(ctx, 42)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.RepoNotFoundError, gnErr.Code)
}

func TestCreateArticleWithDeps(t *testing.T) {
	ctx := context.Background()
	repo, m := newRepo(t)

	topic := &schema.Topic{Title: "Birds"}
	src1 := &schema.Source{URL: "https://example.org/owls", Title: "Owls"}
	src2 := &schema.Source{URL: "https://example.org/crows", Title: "Crows"}
	create(t, m, topic, src1, src2)

	article := &schema.Article{Title: "Night birds", TopicID: topic.ID}
	outline := &schema.Outline{Structure: `{"sections":["intro"]}`}
	err := repo.CreateArticleWithDeps(ctx, article, outline,
		[]uint{src2.ID, src1.ID})
	require.NoError(t, err)
	assert.NotZero(t, article.ID)
	assert.Equal(t, topic.ID, outline.TopicID)
	require.NotNil(t, article.OutlineID)

	res, err := repo.ArticleFull(ctx, article.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Outline)
	assert.Equal(t, outline.Structure, res.Outline.Structure)
	require.Len(t, res.Links, 2)
	assert.Equal(t, "Owls", res.Links[0].Source.Title)
	assert.Equal(t, "Crows", res.Links[1].Source.Title)

	// without outline and sources
	plain := &schema.Article{Title: "Sparrows", TopicID: topic.ID}
	require.NoError(t, repo.CreateArticleWithDeps(ctx, plain, nil, nil))
	res, err = repo.ArticleFull(ctx, plain.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Outline)
	assert.Empty(t, res.Links)
}

func TestCreateArticleWithDepsRollback(t *testing.T) {
	ctx := context.Background()
	repo, m := newRepo(t)

	topic := &schema.Topic{Title: "Birds"}
	create(t, m, topic)

	article := &schema.Article{Title: "Night birds", TopicID: topic.ID}
	outline := &schema.Outline{Structure: "{}"}
	err := repo.CreateArticleWithDeps(ctx, article, outline, []uint{404})
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.RepoSaveError, gnErr.Code)

	assert.Zero(t, count(t, m, &schema.Article{}))
	assert.Zero(t, count(t, m, &schema.Outline{}))
	assert.Zero(t, count(t, m, &schema.ArticleSource{}))
}

func TestLinkSources(t *testing.T) {
	ctx := context.Background()
	repo, m := newRepo(t)

	topic := &schema.Topic{Title: "Birds"}
	create(t, m, topic)
	article := &schema.Article{Title: "Owls", TopicID: topic.ID}
	src1 := &schema.Source{URL: "https://example.org/1"}
	src2 := &schema.Source{URL: "https://example.org/2"}
	create(t, m, article, src1, src2)

	require.NoError(t, repo.LinkSources(ctx, article.ID, []uint{src1.ID}))
	// repeated links are ignored
	require.NoError(t, repo.LinkSources(ctx, article.ID,
		[]uint{src1.ID, src2.ID}))
	require.NoError(t, repo.LinkSources(ctx, article.ID, nil))

	assert.Equal(t, int64(2), count(t, m, &schema.ArticleSource{}))
}

func TestPromptWithProviders(t *testing.T) {
	ctx := context.Background()
	repo, m := newRepo(t)

	prompt := &schema.Prompt{Name: "intro", TemplateText: "Write about {topic}"}
	openai := &schema.Provider{
		Name: "openai", APIKey: "key", Endpoint: "https://api.openai.com",
		ModelName: `["gpt-4o"]`,
	}
	create(t, m, prompt, openai)
	create(t, m, &schema.PromptProvider{
		PromptID:       prompt.ID,
		ProviderID:     openai.ID,
		PromptMetadata: `{"temperature":0.2}`,
	})

	res, err := repo.PromptWithProviders(ctx, prompt.ID)
	require.NoError(t, err)
	require.Len(t, res.Providers, 1)
	assert.Equal(t, `{"temperature":0.2}`, res.Providers[0].PromptMetadata)
	assert.Equal(t, "openai", res.Providers[0].Provider.Name)
	assert.Equal(t, "auto", res.Providers[0].Provider.DefaultModel)
}

func TestSaveJob(t *testing.T) {
	ctx := context.Background()
	repo, m := newRepo(t)

	job := &schema.Job{}
	require.NoError(t, repo.SaveJob(ctx, job))
	assert.NotZero(t, job.ID)
	assert.Equal(t, schema.JobPending, job.Status)

	job.Status = schema.JobCompleted
	require.NoError(t, repo.SaveJob(ctx, job))
	assert.Equal(t, int64(1), count(t, m, &schema.Job{}))

	var res schema.Job
	err := m.Session(ctx, func(tx *gorm.DB) error {
		return tx.First(&res, job.ID).Error
	})
	require.NoError(t, err)
	assert.Equal(t, schema.JobCompleted, res.Status)

	bad := &schema.Job{ArticleID: new(uint)}
	*bad.ArticleID = 404
	err = repo.SaveJob(ctx, bad)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.RepoSaveError, gnErr.Code)
}
