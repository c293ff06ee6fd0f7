package database

import (
	"errors"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

// TagWithCount is a tag annotated with how many posts carry it.
type TagWithCount struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PostCount int64  `json:"postCount"`
}

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindBySlug returns a tag or nil when absent.
func (r *TagRepo) FindBySlug(tagSlug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("slug = ?", tagSlug).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindOrCreate resolves the given names to tag rows, creating any that do not
// exist yet. Names are matched as-is; slugs are derived once at creation.
func (r *TagRepo) FindOrCreate(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag models.Tag
		err := r.db.Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, Slug: slug.Make(name)}
			if err := r.db.Create(&tag).Error; err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Popular returns tags ordered by how many posts carry them, busiest first,
// tags with no posts excluded.
func (r *TagRepo) Popular(limit int) ([]TagWithCount, error) {
	var tags []TagWithCount
	err := r.db.Model(&models.Tag{}).
		Select("tags.name, tags.slug, COUNT(post_tags.post_id) AS post_count").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.name, tags.slug").
		Order("post_count DESC").
		Limit(limit).
		Scan(&tags).Error
	return tags, err
}
