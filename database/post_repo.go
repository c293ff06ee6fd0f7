package database

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

// PostSort selects the ordering of a post listing. Every mode tie-breaks on
// creation time, newest first.
type PostSort string

const (
	SortNewest   PostSort = "newest"
	SortPopular  PostSort = "popular"
	SortViews    PostSort = "views"
	SortComments PostSort = "comments"
)

// PostFilter is the explicit query builder for post listings: the repository
// composes filter, sort and pagination from it in one place instead of
// scattering query chains through handlers.
type PostFilter struct {
	Status         string
	AuthorID       uuid.UUID
	AuthorUsername string
	TagSlug        string
	Search         string
	FeaturedOnly   bool
	Since          *time.Time
	Sort           PostSort
	Page           int
	PageSize       int
}

// AuthorStats aggregates a single author's dashboard numbers.
type AuthorStats struct {
	PublishedCount int64 `json:"publishedCount"`
	DraftCount     int64 `json:"draftCount"`
	TotalLikes     int64 `json:"totalLikes"`
	TotalViews     int64 `json:"totalViews"`
	TotalComments  int64 `json:"totalComments"`
}

// SiteStats aggregates whole-site numbers for the public stats endpoint.
type SiteStats struct {
	TotalPosts    int64 `json:"totalPosts"`
	TotalAuthors  int64 `json:"totalAuthors"`
	TotalComments int64 `json:"totalComments"`
	TotalLikes    int64 `json:"totalLikes"`
	TotalViews    int64 `json:"totalViews"`
}

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// Add inserts a new post into the database. A slug collision surfaces as
// gorm.ErrDuplicatedKey for the caller to map to a conflict.
func (r *PostRepo) Add(post *models.Post) error {
	return r.db.Create(post).Error
}

// FindBySlug returns a post with its author and tags, or nil when absent.
func (r *PostRepo) FindBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Tags").Preload("Author").Where("slug = ?", slug).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByID returns a post without associations, or nil when absent.
func (r *PostRepo) FindByID(id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update persists the user-editable and derived columns of an existing post.
// ViewCount is deliberately excluded: concurrent detail views bump it through
// IncrementViewCount and a full-row write must not clobber them.
func (r *PostRepo) Update(post *models.Post) error {
	return r.db.Model(post).
		Select("title", "slug", "content", "excerpt", "featured_image",
			"status", "published_at", "reading_time", "is_featured", "updated_at").
		Updates(post).Error
}

// SetFeaturedImage stores the object key of an uploaded featured image.
func (r *PostRepo) SetFeaturedImage(id uuid.UUID, objectKey string) error {
	return r.db.Model(&models.Post{}).Where("id = ?", id).
		Update("featured_image", objectKey).Error
}

// ReplaceTags swaps the post's tag set for the given one.
func (r *PostRepo) ReplaceTags(post *models.Post, tags []models.Tag) error {
	return r.db.Model(post).Association("Tags").Replace(tags)
}

// Delete removes a post together with its comments, likes and tag links in one
// transaction, matching the cascade the schema promises.
func (r *PostRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Select(clause.Associations).Delete(&models.Post{ID: id}).Error
	})
}

// IncrementViewCount bumps view_count by one as a single atomic statement.
// It touches only that column: no derived-field pipeline, no updated_at bump.
func (r *PostRepo) IncrementViewCount(id uuid.UUID) error {
	return r.db.Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// List runs the composed filter and returns one page of posts plus the total
// number of matches before pagination.
func (r *PostRepo) List(filter PostFilter) ([]models.Post, int64, error) {
	q := r.db.Model(&models.Post{})
	joined := false

	if filter.Status != "" {
		q = q.Where("posts.status = ?", filter.Status)
	}
	if filter.AuthorID != uuid.Nil {
		q = q.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.AuthorUsername != "" {
		q = q.Joins("JOIN users ON users.id = posts.author_id").
			Where("users.username = ?", filter.AuthorUsername)
	}
	if filter.TagSlug != "" || filter.Search != "" {
		q = q.Joins("LEFT JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("LEFT JOIN tags ON tags.id = post_tags.tag_id")
		joined = true
	}
	if filter.TagSlug != "" {
		q = q.Where("tags.slug = ?", filter.TagSlug)
	}
	if filter.Search != "" {
		// Case-insensitive substring match OR-combined across title, content,
		// excerpt and tag name. LOWER/LIKE instead of ILIKE keeps the query
		// portable between Postgres and the SQLite test driver.
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where(
			"LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ? OR LOWER(posts.excerpt) LIKE ? OR LOWER(tags.name) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.FeaturedOnly {
		q = q.Where("posts.is_featured = ?", true)
	}
	if filter.Since != nil {
		q = q.Where("posts.created_at >= ?", *filter.Since)
	}

	// Tag joins can match a post more than once; count distinct ids so the
	// total stays honest.
	var total int64
	if err := q.Session(&gorm.Session{}).Distinct("posts.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sort keys computed as correlated subqueries stay in the select list,
	// which DISTINCT requires when ordering by them.
	selectExpr := "posts.*"
	var order string
	switch filter.Sort {
	case SortPopular:
		selectExpr += ", (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count"
		order = "like_count DESC, posts.created_at DESC"
	case SortViews:
		order = "posts.view_count DESC, posts.created_at DESC"
	case SortComments:
		selectExpr += ", (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"
		order = "comment_count DESC, posts.created_at DESC"
	default:
		order = "posts.created_at DESC"
	}

	if joined {
		q = q.Distinct(selectExpr)
	} else {
		q = q.Select(selectExpr)
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var posts []models.Post
	err := q.Preload("Tags").Preload("Author").Order(order).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Related returns up to limit published posts that share at least one tag
// with the given post, newest publication first. The post itself is excluded
// and a post sharing several tags appears once.
func (r *PostRepo) Related(postID uuid.UUID, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Model(&models.Post{}).
		Distinct("posts.*").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("JOIN post_tags shared ON shared.tag_id = post_tags.tag_id AND shared.post_id = ?", postID).
		Where("posts.id <> ?", postID).
		Where("posts.status = ?", models.StatusPublished).
		Order("posts.published_at DESC").
		Limit(limit).
		Preload("Tags").
		Preload("Author").
		Find(&posts).Error
	return posts, err
}

// StatsForAuthor aggregates the dashboard numbers over one author's posts.
func (r *PostRepo) StatsForAuthor(authorID uuid.UUID) (AuthorStats, error) {
	var stats AuthorStats

	err := r.db.Model(&models.Post{}).
		Where("author_id = ? AND status = ?", authorID, models.StatusPublished).
		Count(&stats.PublishedCount).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&models.Post{}).
		Where("author_id = ? AND status = ?", authorID, models.StatusDraft).
		Count(&stats.DraftCount).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&models.Like{}).
		Joins("JOIN posts ON posts.id = likes.post_id").
		Where("posts.author_id = ?", authorID).
		Count(&stats.TotalLikes).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.author_id = ?", authorID).
		Count(&stats.TotalComments).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&stats.TotalViews).Error
	return stats, err
}

// StatsForSite aggregates the public statistics over published content.
func (r *PostRepo) StatsForSite() (SiteStats, error) {
	var stats SiteStats

	err := r.db.Model(&models.Post{}).
		Where("status = ?", models.StatusPublished).
		Count(&stats.TotalPosts).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&models.Post{}).
		Where("status = ?", models.StatusPublished).
		Distinct("author_id").
		Count(&stats.TotalAuthors).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&models.Comment{}).
		Where("is_approved = ?", true).
		Count(&stats.TotalComments).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&models.Like{}).Count(&stats.TotalLikes).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&models.Post{}).
		Where("status = ?", models.StatusPublished).
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&stats.TotalViews).Error
	return stats, err
}
