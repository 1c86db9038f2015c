package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func seedCategory(t *testing.T, f *fixture, name string, parentID *string) *domain.KBCategory {
	t.Helper()
	c, err := NewKnowledgeService(f.deps).CreateCategory(context.Background(), f.admin, CategoryInput{Name: strPtr(name), ParentID: parentID})
	require.NoError(t, err)
	return c
}

func seedArticle(t *testing.T, f *fixture, categoryID, title, content string, published bool) *domain.KBArticle {
	t.Helper()
	a, err := NewKnowledgeService(f.deps).CreateArticle(context.Background(), f.admin, ArticleInput{
		Title:       strPtr(title),
		Content:     strPtr(content),
		CategoryID:  &categoryID,
		IsPublished: boolPtr(published),
	})
	require.NoError(t, err)
	return a
}

func TestCategoryHierarchyRejectsCycles(t *testing.T) {
	f := newFixture(t)
	svc := NewKnowledgeService(f.deps)
	ctx := context.Background()

	root := seedCategory(t, f, "Network", nil)
	child := seedCategory(t, f, "VPN", &root.ID)
	grandchild := seedCategory(t, f, "Tokens", &child.ID)

	_, err := svc.UpdateCategory(ctx, root.ID, f.admin, CategoryInput{ParentID: &grandchild.ID})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.UpdateCategory(ctx, child.ID, f.admin, CategoryInput{ParentID: &child.ID})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.CreateCategory(ctx, f.admin, CategoryInput{Name: strPtr("Orphan"), ParentID: strPtr("missing")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	moved, err := svc.UpdateCategory(ctx, grandchild.ID, f.admin, CategoryInput{ClearParent: true})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)

	index, err := svc.Index(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, index.Categories, 2)
	assert.Equal(t, "Network", index.Categories[0].Name)
	assert.Equal(t, "Tokens", index.Categories[1].Name)
}

func TestCategoryDeleteBlockedByContent(t *testing.T) {
	f := newFixture(t)
	svc := NewKnowledgeService(f.deps)
	ctx := context.Background()

	root := seedCategory(t, f, "Hardware", nil)
	child := seedCategory(t, f, "Printers", &root.ID)
	article := seedArticle(t, f, child.ID, "Clear a jam", "Open tray 2.", true)

	assert.True(t, apperrors.HasCode(svc.DeleteCategory(ctx, root.ID, f.admin), apperrors.CodeConflict))
	assert.True(t, apperrors.HasCode(svc.DeleteCategory(ctx, child.ID, f.admin), apperrors.CodeConflict))
	assert.True(t, apperrors.HasCode(svc.DeleteCategory(ctx, child.ID, f.agent), apperrors.CodeForbidden))

	require.NoError(t, svc.DeleteArticle(ctx, article.ID, f.admin))
	require.NoError(t, svc.DeleteCategory(ctx, child.ID, f.admin))
	require.NoError(t, svc.DeleteCategory(ctx, root.ID, f.admin))
}

func TestArticleVisibilityAndViews(t *testing.T) {
	f := newFixture(t)
	svc := NewKnowledgeService(f.deps)
	ctx := context.Background()

	category := seedCategory(t, f, "Accounts", nil)
	published := seedArticle(t, f, category.ID, "Reset your password", "## Steps\n\nUse the **portal**.", true)
	draft := seedArticle(t, f, category.ID, "Password policy v2", "draft", false)
	related := seedArticle(t, f, category.ID, "Unlock an account", "Call the desk.", true)

	view, err := svc.GetArticle(ctx, published.ID, f.user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Article.ViewCount)
	assert.Contains(t, view.HTML, "<strong>portal</strong>")
	require.Len(t, view.Related, 1)
	assert.Equal(t, related.ID, view.Related[0].ID)

	_, err = svc.GetArticle(ctx, draft.ID, f.user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	_, err = svc.GetArticle(ctx, draft.ID, f.admin)
	require.NoError(t, err)

	userList, err := svc.ListArticles(ctx, f.user, nil)
	require.NoError(t, err)
	assert.Len(t, userList, 2)
	adminList, err := svc.ListArticles(ctx, f.admin, &category.ID)
	require.NoError(t, err)
	assert.Len(t, adminList, 3)

	stored, err := f.store.Knowledge().GetArticle(ctx, published.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ViewCount)
}

func TestCreateArticleValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewKnowledgeService(f.deps)
	ctx := context.Background()

	_, err := svc.CreateArticle(ctx, f.admin, ArticleInput{Title: strPtr("No category"), Content: strPtr("body")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.CreateArticle(ctx, f.admin, ArticleInput{Title: strPtr("Ghost"), Content: strPtr("body"), CategoryID: strPtr("missing")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	category := seedCategory(t, f, "General", nil)
	_, err = svc.CreateArticle(ctx, f.agent, ArticleInput{Title: strPtr("Hi"), Content: strPtr("body"), CategoryID: &category.ID})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	article, err := svc.CreateArticle(ctx, f.admin, ArticleInput{Title: strPtr(" Welcome "), Content: strPtr("body"), CategoryID: &category.ID})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", article.Title)
	assert.True(t, article.IsPublished)
}

func TestUpdateArticleTracksEditor(t *testing.T) {
	f := newFixture(t)
	svc := NewKnowledgeService(f.deps)
	ctx := context.Background()

	category := seedCategory(t, f, "General", nil)
	article := seedArticle(t, f, category.ID, "Welcome", "body", true)

	other := f.addUser(t, "editor", domain.RoleAdministrator)
	f.advance(time.Hour)
	updated, err := svc.UpdateArticle(ctx, article.ID, other, ArticleInput{IsPublished: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)
	assert.Equal(t, other.ID, updated.UpdatedBy)
	assert.Equal(t, f.admin.ID, updated.CreatedBy)
	assert.Equal(t, f.now, updated.UpdatedAt)
}

func TestSearchArticlesMatchesAnyTerm(t *testing.T) {
	f := newFixture(t)
	svc := NewKnowledgeService(f.deps)
	ctx := context.Background()

	network := seedCategory(t, f, "Network", nil)
	office := seedCategory(t, f, "Office", nil)
	seedArticle(t, f, network.ID, "VPN setup", "Install the client.", true)
	seedArticle(t, f, office.ID, "Printer drivers", "Use the vpn share for drivers.", true)
	seedArticle(t, f, network.ID, "Wifi", "Guest network.", true)
	seedArticle(t, f, network.ID, "VPN draft", "unpublished", false)

	found, err := svc.SearchArticles(ctx, f.user, "vpn  wifi", nil)
	require.NoError(t, err)
	titles := make([]string, 0, len(found))
	for _, a := range found {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"Printer drivers", "VPN setup", "Wifi"}, titles)

	found, err = svc.SearchArticles(ctx, f.user, "vpn", &network.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "VPN setup", found[0].Title)

	_, err = svc.SearchArticles(ctx, f.user, "   ", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}
