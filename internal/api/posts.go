package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sentimenthq/pulse/internal/analytics"
	"github.com/sentimenthq/pulse/internal/cache"
	"github.com/sentimenthq/pulse/internal/db"
	"github.com/sentimenthq/pulse/internal/errs"
)

// PostsAPI serves the post list and lifecycle endpoints
type PostsAPI struct {
	posts *db.PostRepository
	list  *analytics.PostQuery
	cache *cache.Cache
}

// NewPostsAPI creates the posts handler group
func NewPostsAPI(repo *db.Repository, list *analytics.PostQuery, redisCache *cache.Cache) *PostsAPI {
	return &PostsAPI{
		posts: db.NewPostRepository(repo),
		list:  list,
		cache: redisCache,
	}
}

// List handles GET /posts with pagination and filters
func (p *PostsAPI) List(c *gin.Context) {
	filter := analytics.PostFilter{
		Platform:  c.Query("platform"),
		Sentiment: c.Query("sentiment"),
		Query:     c.Query("query"),
	}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, errs.Validation("invalid page",
				errs.FieldDetail{Field: "page", Message: "must be an integer"}))
			return
		}
		filter.Page = n
	}
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, errs.Validation("invalid pageSize",
				errs.FieldDetail{Field: "pageSize", Message: "must be an integer"}))
			return
		}
		filter.PageSize = n
	}

	switch s := filter.Sentiment; s {
	case "", "positive", "neutral", "negative":
	default:
		respondError(c, errs.Validation("unknown sentiment filter",
			errs.FieldDetail{Field: "sentiment", Message: "must be positive, neutral or negative"}))
		return
	}

	if raw := c.Query("fromDate"); raw != "" {
		ts, err := parseDate(raw)
		if err != nil {
			respondError(c, errs.Validation("invalid fromDate",
				errs.FieldDetail{Field: "fromDate", Message: "must be RFC3339 or YYYY-MM-DD"}))
			return
		}
		filter.FromDate = &ts
	}
	if raw := c.Query("toDate"); raw != "" {
		ts, err := parseDate(raw)
		if err != nil {
			respondError(c, errs.Validation("invalid toDate",
				errs.FieldDetail{Field: "toDate", Message: "must be RFC3339 or YYYY-MM-DD"}))
			return
		}
		filter.ToDate = &ts
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		respondError(c, errs.Validation("toDate precedes fromDate"))
		return
	}
	filter.SortAscending = c.Query("sort") == "asc"

	page, err := p.list.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /posts/:id. Direct lookups return soft-deleted posts too.
func (p *PostsAPI) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errs.Validation("invalid post id",
			errs.FieldDetail{Field: "id", Message: "must be a UUID"}))
		return
	}

	post, err := p.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		respondError(c, errs.NotFound("post not found"))
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /posts/:id as a soft delete; the post drops out of
// list and aggregate queries but stays reachable by id
func (p *PostsAPI) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errs.Validation("invalid post id",
			errs.FieldDetail{Field: "id", Message: "must be a UUID"}))
		return
	}

	ctx := c.Request.Context()
	if err := p.posts.SoftDelete(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	// The deleted post drops out of aggregates, so cached snapshots are stale
	if err := p.cache.InvalidateSnapshots(ctx); err != nil && err != cache.ErrCacheDisabled {
		logComponentWarn("posts", "snapshot invalidation failed", err)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true, "deletedAt": time.Now().UTC()})
}
