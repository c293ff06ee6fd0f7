package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

// words builds deterministic filler content with the given word count.
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestReadingTime(t *testing.T) {
	t.Run("short content rounds up to one minute", func(t *testing.T) {
		assert.Equal(t, 1, ReadingTime("just a few words"))
		assert.Equal(t, 1, ReadingTime(words(60)))
	})

	t.Run("empty content still reads one minute", func(t *testing.T) {
		assert.Equal(t, 1, ReadingTime(""))
	})

	t.Run("rounds to nearest minute", func(t *testing.T) {
		assert.Equal(t, 1, ReadingTime(words(200)))
		// 299 words is 1.495 minutes, rounds to 1
		assert.Equal(t, 1, ReadingTime(words(299)))
		// 300 words is exactly 1.5 minutes, rounds to 2
		assert.Equal(t, 2, ReadingTime(words(300)))
		assert.Equal(t, 5, ReadingTime(words(1000)))
	})

	t.Run("half minutes round away from zero", func(t *testing.T) {
		// 500 words is exactly 2.5 minutes; half-to-even would give 2.
		assert.Equal(t, 3, ReadingTime(words(500)))
		assert.Equal(t, 4, ReadingTime(words(700)))
	})

	t.Run("markup does not count as words", func(t *testing.T) {
		assert.Equal(t, 1, ReadingTime("<p><strong>two</strong> words</p>"))
	})
}

func TestMakeExcerpt(t *testing.T) {
	t.Run("short content used whole", func(t *testing.T) {
		assert.Equal(t, "a short post...", MakeExcerpt("a short post"))
	})

	t.Run("long content truncated by runes", func(t *testing.T) {
		excerpt := MakeExcerpt(words(200))
		assert.Equal(t, 300, len([]rune(excerpt)))
		assert.True(t, strings.HasSuffix(excerpt, "..."))
	})

	t.Run("markup stripped before truncation", func(t *testing.T) {
		excerpt := MakeExcerpt("<h1>Title</h1><p>body text</p>")
		assert.NotContains(t, excerpt, "<")
		assert.Contains(t, excerpt, "Title")
		assert.Contains(t, excerpt, "body text")
	})
}

func TestNormalizePost(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("derives everything for a fresh published post", func(t *testing.T) {
		post := models.Post{
			Title:   "Hello World Today",
			Content: words(60),
			Status:  models.StatusPublished,
		}

		NormalizePost(&post, now)

		assert.Equal(t, "hello-world-today", post.Slug)
		assert.NotEmpty(t, post.Excerpt)
		assert.Equal(t, 1, post.ReadingTime)
		if assert.NotNil(t, post.PublishedAt) {
			assert.Equal(t, now, *post.PublishedAt)
		}
	})

	t.Run("draft gets no publication timestamp", func(t *testing.T) {
		post := models.Post{
			Title:   "Still Cooking",
			Content: words(60),
			Status:  models.StatusDraft,
		}

		NormalizePost(&post, now)

		assert.Nil(t, post.PublishedAt)
		assert.Equal(t, "still-cooking", post.Slug)
	})

	t.Run("existing slug survives edits", func(t *testing.T) {
		post := models.Post{
			Title:   "New Title After Edit",
			Slug:    "original-slug",
			Content: words(60),
			Status:  models.StatusPublished,
		}

		NormalizePost(&post, now)

		assert.Equal(t, "original-slug", post.Slug)
	})

	t.Run("author supplied excerpt is kept", func(t *testing.T) {
		post := models.Post{
			Title:   "Handwritten Excerpt",
			Content: words(400),
			Excerpt: "my own summary",
			Status:  models.StatusPublished,
		}

		NormalizePost(&post, now)

		assert.Equal(t, "my own summary", post.Excerpt)
	})

	t.Run("publication time is stamped once", func(t *testing.T) {
		post := models.Post{
			Title:   "Republished",
			Content: words(60),
			Status:  models.StatusPublished,
		}
		first := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		post.PublishedAt = &first

		NormalizePost(&post, now)

		assert.Equal(t, first, *post.PublishedAt)
	})

	t.Run("reading time follows content edits", func(t *testing.T) {
		post := models.Post{
			Title:       "Growing Post",
			Content:     words(1000),
			ReadingTime: 1,
			Status:      models.StatusDraft,
		}

		NormalizePost(&post, now)

		assert.Equal(t, 5, post.ReadingTime)
	})
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "plain text", StripMarkup("plain text"))
	assert.Equal(t, "bold and linked", StripMarkup(`<b>bold</b> and <a href="x">linked</a>`))
	assert.Equal(t, "a < b", StripMarkup("a &lt; b"))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t"))
	assert.Equal(t, 3, WordCount("one  two\nthree"))
}
