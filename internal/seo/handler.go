package seo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/blog"
	"github.com/2beens/serjblog/internal/cache"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

const sitemapCacheKeyPrefix = "sitemap::"

type postsLister interface {
	AllPublished(ctx context.Context) ([]*blog.Post, error)
}

type Handler struct {
	posts    postsLister
	cache    cache.Cache
	cacheTTL time.Duration
	siteURL  string
}

func NewHandler(posts postsLister, cache cache.Cache, cacheTTL time.Duration, siteURL string) *Handler {
	return &Handler{
		posts:    posts,
		cache:    cache,
		cacheTTL: cacheTTL,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/sitemap.xml", handler.handleSitemap).Methods("GET").Name("sitemap")
}

func (handler *Handler) handleSitemap(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "seoHandler.sitemap")
	defer span.End()

	siteURL := handler.siteURL
	if siteURL == "" {
		siteURL = "http://" + r.Host
		if r.TLS != nil {
			siteURL = "https://" + r.Host
		}
	}

	cacheKey := sitemapCacheKeyPrefix + siteURL
	if cached, ok := handler.cache.Get(cacheKey); ok {
		log.Trace("sitemap served from cache")
		pkg.WriteResponseBytesOK(w, pkg.ContentType.XML, cached)
		return
	}

	sitemap, err := handler.build(ctx, siteURL)
	if err != nil {
		log.Errorf("build sitemap: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(cacheKey, sitemap, handler.cacheTTL); err != nil {
		log.Warnf("cache sitemap: %s", err)
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.XML, sitemap)
}

func (handler *Handler) build(ctx context.Context, siteURL string) ([]byte, error) {
	posts, err := handler.posts.AllPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("get published posts: %w", err)
	}

	builder := NewSitemapBuilder(siteURL)
	builder.AddPosts(posts)
	return builder.Build()
}
