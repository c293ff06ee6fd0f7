package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/inkwell-blog-backend/database"
)

// newTestServer spins up the full router over an in-memory store. Image
// storage is absent, as it is in most deployments.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	router := newRouter(database.New(db), nil, withConfig(map[string]string{
		"JWT_SECRET":       "test-secret",
		"ACCEPTED_ORIGINS": "*",
	}))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// doJSON sends a JSON request and decodes the JSON response into out when the
// caller passes one.
func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// registerAndLogin creates a user and returns a bearer token for it.
func registerAndLogin(t *testing.T, server *httptest.Server, username string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "long enough password",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	resp = doJSON(t, http.MethodPost, server.URL+"/auth/login", "", map[string]string{
		"username": username,
		"password": "long enough password",
	}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, login.Token)
	return login.Token
}

// longContent clears the minimum content length with room to spare.
var longContent = strings.Repeat("every word counts toward the reading time estimate ", 10)

func createPost(t *testing.T, server *httptest.Server, token, title, status string) map[string]any {
	t.Helper()

	var post map[string]any
	resp := doJSON(t, http.MethodPost, server.URL+"/posts", token, map[string]any{
		"title":   title,
		"content": longContent,
		"status":  status,
	}, &post)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return post
}

func TestAuth(t *testing.T) {
	server := newTestServer(t)

	t.Run("register and login round trip", func(t *testing.T) {
		token := registerAndLogin(t, server, "walter")
		assert.NotEmpty(t, token)
	})

	t.Run("short password is rejected before any write", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", map[string]string{
			"username": "shorty",
			"email":    "shorty@example.com",
			"password": "short",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		registerAndLogin(t, server, "taken")
		resp := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", map[string]string{
			"username": "taken",
			"email":    "other@example.com",
			"password": "long enough password",
		}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		registerAndLogin(t, server, "careful")
		resp := doJSON(t, http.MethodPost, server.URL+"/auth/login", "", map[string]string{
			"username": "careful",
			"password": "not the right password",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPostLifecycle(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "author")

	t.Run("creating requires a token", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/posts", "", map[string]any{
			"title":   "No Token Here",
			"content": longContent,
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("short title is rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/posts", token, map[string]any{
			"title":   "Hey",
			"content": longContent,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("created post carries derived fields", func(t *testing.T) {
		post := createPost(t, server, token, "Hello World Today", "published")
		assert.Equal(t, "hello-world-today", post["slug"])
		assert.Equal(t, float64(1), post["readingTime"])
		assert.NotEmpty(t, post["excerpt"])
		assert.NotNil(t, post["publishedAt"])
	})

	t.Run("draft is invisible to strangers but not its author", func(t *testing.T) {
		post := createPost(t, server, token, "A Work In Progress", "draft")
		slug := post["slug"].(string)

		resp := doJSON(t, http.MethodGet, server.URL+"/posts/"+slug, "", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = doJSON(t, http.MethodGet, server.URL+"/posts/"+slug, token, nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("viewing a published post bumps the view count", func(t *testing.T) {
		post := createPost(t, server, token, "Counting Views Here", "published")
		slug := post["slug"].(string)

		var detail PostDetail
		resp := doJSON(t, http.MethodGet, server.URL+"/posts/"+slug, "", nil, &detail)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(1), detail.Post.ViewCount)

		resp = doJSON(t, http.MethodGet, server.URL+"/posts/"+slug, "", nil, &detail)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(2), detail.Post.ViewCount)
	})

	t.Run("only the author can edit or delete", func(t *testing.T) {
		stranger := registerAndLogin(t, server, "stranger")
		post := createPost(t, server, token, "Hands Off My Post", "published")
		slug := post["slug"].(string)

		resp := doJSON(t, http.MethodPut, server.URL+"/posts/"+slug, stranger, map[string]any{
			"title":   "Hijacked Title Change",
			"content": longContent,
		}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = doJSON(t, http.MethodDelete, server.URL+"/posts/"+slug, stranger, nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("editing keeps slug and publication time", func(t *testing.T) {
		post := createPost(t, server, token, "Stable Address Post", "published")
		slug := post["slug"].(string)
		publishedAt, err := time.Parse(time.RFC3339Nano, post["publishedAt"].(string))
		require.NoError(t, err)

		var updated map[string]any
		resp := doJSON(t, http.MethodPut, server.URL+"/posts/"+slug, token, map[string]any{
			"title":   "A Completely New Title",
			"content": longContent,
			"status":  "published",
		}, &updated)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, slug, updated["slug"])

		republishedAt, err := time.Parse(time.RFC3339Nano, updated["publishedAt"].(string))
		require.NoError(t, err)
		assert.WithinDuration(t, publishedAt, republishedAt, time.Second)
	})

	t.Run("delete removes the post", func(t *testing.T) {
		post := createPost(t, server, token, "Not Long For This World", "published")
		slug := post["slug"].(string)

		resp := doJSON(t, http.MethodDelete, server.URL+"/posts/"+slug, token, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, http.MethodGet, server.URL+"/posts/"+slug, token, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("duplicate title collides on slug", func(t *testing.T) {
		createPost(t, server, token, "One Of A Kind", "published")
		resp := doJSON(t, http.MethodPost, server.URL+"/posts", token, map[string]any{
			"title":   "One Of A Kind",
			"content": longContent,
		}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestComments(t *testing.T) {
	server := newTestServer(t)
	author := registerAndLogin(t, server, "author")
	reader := registerAndLogin(t, server, "reader")

	post := createPost(t, server, author, "Much To Discuss Here", "published")
	slug := post["slug"].(string)
	commentsURL := server.URL + "/posts/" + slug + "/comments"

	t.Run("nine characters is too short, ten is enough", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, commentsURL, reader, map[string]any{
			"content": "nine char",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = doJSON(t, http.MethodPost, commentsURL, reader, map[string]any{
			"content": "ten chars!",
		}, nil)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("replying to a reply re-parents onto the top level", func(t *testing.T) {
		var top struct {
			ID string `json:"id"`
		}
		resp := doJSON(t, http.MethodPost, commentsURL, reader, map[string]any{
			"content": "starting a brand new thread",
		}, &top)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var reply struct {
			ID       string `json:"id"`
			ParentID string `json:"parentId"`
		}
		resp = doJSON(t, http.MethodPost, commentsURL, author, map[string]any{
			"content":  "a direct reply to the thread",
			"parentId": top.ID,
		}, &reply)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, top.ID, reply.ParentID)

		var deep struct {
			ParentID string `json:"parentId"`
		}
		resp = doJSON(t, http.MethodPost, commentsURL, reader, map[string]any{
			"content":  "trying to reply to the reply",
			"parentId": reply.ID,
		}, &deep)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, top.ID, deep.ParentID, "nesting never goes past one level")
	})

	t.Run("parent from another post is rejected", func(t *testing.T) {
		other := createPost(t, server, author, "A Different Post Entirely", "published")
		var stray struct {
			ID string `json:"id"`
		}
		resp := doJSON(t, http.MethodPost, server.URL+"/posts/"+other["slug"].(string)+"/comments", reader, map[string]any{
			"content": "commenting somewhere else",
		}, &stray)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = doJSON(t, http.MethodPost, commentsURL, reader, map[string]any{
			"content":  "this parent is on another post",
			"parentId": stray.ID,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("thread view groups replies under their parent", func(t *testing.T) {
		var threads []CommentThread
		resp := doJSON(t, http.MethodGet, commentsURL, "", nil, &threads)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, threads)

		for _, thread := range threads {
			assert.Nil(t, thread.Comment.ParentID)
			for _, reply := range thread.Replies {
				require.NotNil(t, reply.ParentID)
				assert.Equal(t, thread.Comment.ID, *reply.ParentID)
			}
		}
	})

	t.Run("commenting requires a token", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, commentsURL, "", map[string]any{
			"content": "anonymous thoughts here",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLikes(t *testing.T) {
	server := newTestServer(t)
	author := registerAndLogin(t, server, "author")
	reader := registerAndLogin(t, server, "reader")

	post := createPost(t, server, author, "Worth A Like Or Two", "published")
	likeURL := server.URL + "/posts/" + post["slug"].(string) + "/like"

	t.Run("toggle on, then off", func(t *testing.T) {
		var state LikeState
		resp := doJSON(t, http.MethodPost, likeURL, reader, nil, &state)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, state.Liked)
		assert.Equal(t, int64(1), state.LikeCount)

		resp = doJSON(t, http.MethodPost, likeURL, reader, nil, &state)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, state.Liked)
		assert.Equal(t, int64(0), state.LikeCount)
	})

	t.Run("anonymous detail view reports hasLiked false", func(t *testing.T) {
		var state LikeState
		resp := doJSON(t, http.MethodPost, likeURL, reader, nil, &state)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, state.Liked)

		var detail PostDetail
		resp = doJSON(t, http.MethodGet, server.URL+"/posts/"+post["slug"].(string), "", nil, &detail)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, detail.HasLiked)
		assert.Equal(t, int64(1), detail.LikeCount)

		resp = doJSON(t, http.MethodGet, server.URL+"/posts/"+post["slug"].(string), reader, nil, &detail)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, detail.HasLiked)
	})

	t.Run("liking requires a token", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, likeURL, "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDiscovery(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "prolific")

	var kubernetesPost map[string]any
	resp := doJSON(t, http.MethodPost, server.URL+"/posts", token, map[string]any{
		"title":   "Kubernetes For Skeptics",
		"content": longContent,
		"status":  "published",
		"tags":    []string{"DevOps", "Kubernetes"},
	}, &kubernetesPost)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	createPost(t, server, token, "Completely Unrelated Writing", "published")

	t.Run("search by free text", func(t *testing.T) {
		var page Page[map[string]any]
		resp := doJSON(t, http.MethodGet, server.URL+"/search?q=skeptics", "", nil, &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, discoveryPageSize, page.PageSize)
	})

	t.Run("search by tag", func(t *testing.T) {
		var page Page[map[string]any]
		resp := doJSON(t, http.MethodGet, server.URL+"/search?tag=devops", "", nil, &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("popular tags", func(t *testing.T) {
		var tags []database.TagWithCount
		resp := doJSON(t, http.MethodGet, server.URL+"/tags", "", nil, &tags)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, tags, 2)
		assert.Equal(t, int64(1), tags[0].PostCount)
	})

	t.Run("tag archive bundles the tag and its posts", func(t *testing.T) {
		var page tagPage
		resp := doJSON(t, http.MethodGet, server.URL+"/tags/kubernetes", "", nil, &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Kubernetes", page.Tag.Name)
		assert.Equal(t, int64(1), page.Posts.Total)
	})

	t.Run("unknown tag is a 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/tags/nonexistent", "", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("author page bundles posts and stats", func(t *testing.T) {
		var page authorPage
		resp := doJSON(t, http.MethodGet, server.URL+"/users/prolific/posts", "", nil, &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "prolific", page.Username)
		assert.Equal(t, int64(2), page.Posts.Total)
		assert.Equal(t, int64(2), page.Stats.PublishedCount)
	})

	t.Run("unknown author is a 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/users/ghost/posts", "", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("trending lists recent posts", func(t *testing.T) {
		var page Page[map[string]any]
		resp := doJSON(t, http.MethodGet, server.URL+"/trending", "", nil, &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("dashboard shows drafts too", func(t *testing.T) {
		createPost(t, server, token, "Unfinished Business Draft", "draft")

		var view dashboardView
		resp := doJSON(t, http.MethodGet, server.URL+"/dashboard", token, nil, &view)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(3), view.Posts.Total)
		assert.Equal(t, int64(1), view.Stats.DraftCount)
		assert.Equal(t, dashboardPageSize, view.Posts.PageSize)
	})

	t.Run("detail bundles related posts sharing a tag", func(t *testing.T) {
		var companion map[string]any
		resp := doJSON(t, http.MethodPost, server.URL+"/posts", token, map[string]any{
			"title":   "Kubernetes Networking Notes",
			"content": longContent,
			"status":  "published",
			"tags":    []string{"Kubernetes"},
		}, &companion)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var detail PostDetail
		resp = doJSON(t, http.MethodGet, server.URL+"/posts/"+kubernetesPost["slug"].(string), "", nil, &detail)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, detail.RelatedPosts, 1)
		assert.Equal(t, "Kubernetes Networking Notes", detail.RelatedPosts[0].Title)
	})
}

func TestProfile(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "detailed")

	t.Run("profile exists from first read", func(t *testing.T) {
		var profile map[string]any
		resp := doJSON(t, http.MethodGet, server.URL+"/profile", token, nil, &profile)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "", profile["bio"])
	})

	t.Run("update round trip", func(t *testing.T) {
		var updated map[string]any
		resp := doJSON(t, http.MethodPut, server.URL+"/profile", token, map[string]any{
			"bio":      "writing about distributed systems",
			"website":  "https://example.com",
			"location": "Berlin",
		}, &updated)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Berlin", updated["location"])
	})

	t.Run("invalid website is rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, server.URL+"/profile", token, map[string]any{
			"website": "not a url",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestNewsletter(t *testing.T) {
	server := newTestServer(t)

	t.Run("first subscription is a 201", func(t *testing.T) {
		var sub subscribeResponse
		resp := doJSON(t, http.MethodPost, server.URL+"/newsletter/subscribe", "", map[string]string{
			"email": "reader@example.com",
		}, &sub)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.True(t, sub.Subscribed)
	})

	t.Run("repeat subscription stays a 200", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/newsletter/subscribe", "", map[string]string{
			"email": "reader@example.com",
		}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad email is rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/newsletter/subscribe", "", map[string]string{
			"email": "not-an-email",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSystem(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "author")

	createPost(t, server, token, "Published And Projected", "published")
	createPost(t, server, token, "Hidden From The Feed", "draft")

	t.Run("health probe", func(t *testing.T) {
		var status healthStatus
		resp := doJSON(t, http.MethodGet, server.URL+"/health", "", nil, &status)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, "ok", status.Database)
	})

	t.Run("site stats count published content only", func(t *testing.T) {
		var stats database.SiteStats
		resp := doJSON(t, http.MethodGet, server.URL+"/stats", "", nil, &stats)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(1), stats.TotalPosts)
		assert.Equal(t, int64(1), stats.TotalAuthors)
	})

	t.Run("projection lists published posts only", func(t *testing.T) {
		var posts []projectedPost
		resp := doJSON(t, http.MethodGet, server.URL+"/api/posts", "", nil, &posts)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, posts, 1)
		assert.Equal(t, "published-and-projected", posts[0].Slug)
		assert.Equal(t, "author", posts[0].Author)
	})

	t.Run("projection detail keeps the view count untouched", func(t *testing.T) {
		var before projectedPostDetail
		resp := doJSON(t, http.MethodGet, server.URL+"/api/posts/published-and-projected", "", nil, &before)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var after projectedPostDetail
		resp = doJSON(t, http.MethodGet, server.URL+"/api/posts/published-and-projected", "", nil, &after)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, before.ViewCount, after.ViewCount)
	})

	t.Run("projection hides drafts", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/posts/hidden-from-the-feed", "", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
