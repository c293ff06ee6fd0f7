package services

import (
	"math"
	"time"

	"github.com/gosimple/slug"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

const (
	// Average reading speed used for the reading-time estimate.
	wordsPerMinute = 200

	// Excerpts are the first excerptRunes characters of the plain-text content
	// plus a trailing ellipsis, which keeps them inside the 300-char field limit.
	excerptRunes = 297
)

// NormalizePost applies the derived-field pipeline to a post before it is
// written. It runs the same way on create and update:
//
//  1. a blank slug is derived from the title (uniqueness is enforced by the
//     store; a collision surfaces as a conflict to the caller)
//  2. a blank excerpt is filled from the plain-text content; a caller-supplied
//     excerpt is never re-derived
//  3. the reading time is recomputed unconditionally
//  4. the first transition to published stamps PublishedAt with now; an
//     already-set PublishedAt is never modified or cleared
//
// The function only mutates the passed post. Persistence is the caller's job,
// so the pipeline stays testable without a database.
func NormalizePost(post *models.Post, now time.Time) {
	if post.Slug == "" {
		post.Slug = slug.Make(post.Title)
	}

	if post.Excerpt == "" && post.Content != "" {
		post.Excerpt = MakeExcerpt(post.Content)
	}

	post.ReadingTime = ReadingTime(post.Content)

	if post.Status == models.StatusPublished && post.PublishedAt == nil {
		stamped := now
		post.PublishedAt = &stamped
	}
}

// ReadingTime estimates minutes to read the given markup, never less than one.
func ReadingTime(content string) int {
	words := WordCount(StripMarkup(content))
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// MakeExcerpt builds the auto-generated excerpt from markup content.
func MakeExcerpt(content string) string {
	plain := []rune(StripMarkup(content))
	if len(plain) > excerptRunes {
		plain = plain[:excerptRunes]
	}
	return string(plain) + "..."
}
