package blog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/middleware"
	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/pkg"
)

type formErrorsResponse struct {
	Form   any         `json:"form"`
	Errors FieldErrors `json:"errors"`
}

type commentResponse struct {
	Post    *Post    `json:"post"`
	Comment *Comment `json:"comment"`
}

type shareResponse struct {
	Post *Post     `json:"post"`
	Form ShareForm `json:"form"`
	Sent bool      `json:"sent"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results []*SearchResult `json:"results"`
}

type Handler struct {
	service        *Service
	moderator      *Moderator
	dispatcher     *Dispatcher
	metricsManager *metrics.Manager
	// siteURL is the public origin used in shared links, e.g. https://blog.serj-tubin.com
	siteURL string
}

func NewHandler(
	service *Service,
	moderator *Moderator,
	dispatcher *Dispatcher,
	metricsManager *metrics.Manager,
	siteURL string,
) *Handler {
	return &Handler{
		service:        service,
		moderator:      moderator,
		dispatcher:     dispatcher,
		metricsManager: metricsManager,
		siteURL:        strings.TrimSuffix(siteURL, "/"),
	}
}

func (handler *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	commentsAllowedPerMin int,
	sharesAllowedPerMin int,
) {
	router.HandleFunc("/blog/", handler.handleList).Methods("GET").Name("blog-list")
	router.HandleFunc("/blog/search/", handler.handleSearch).Methods("GET").Name("blog-search")
	router.HandleFunc("/blog/tag/{tag}/", handler.handleList).Methods("GET").Name("blog-list-by-tag")
	router.HandleFunc(
		"/blog/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/{slug}/",
		handler.handleDetail,
	).Methods("GET").Name("blog-detail")
	router.HandleFunc("/blog/{id:[0-9]+}/share/", handler.handleShareForm).Methods("GET").Name("blog-share-form")

	router.Handle(
		"/blog/{id:[0-9]+}/share/",
		middleware.RateLimit(rateLimiter, "blog-share", sharesAllowedPerMin, handler.metricsManager)(
			http.HandlerFunc(handler.handleShare),
		),
	).Methods("POST", "OPTIONS").Name("blog-share")
	router.Handle(
		"/blog/{id:[0-9]+}/comment/",
		middleware.RateLimit(rateLimiter, "blog-comment", commentsAllowedPerMin, handler.metricsManager)(
			http.HandlerFunc(handler.handleComment),
		),
	).Methods("POST", "OPTIONS").Name("blog-comment")
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tagSlug := mux.Vars(r)["tag"]
	res, err := handler.service.List(r.Context(), tagSlug, r.URL.Query().Get("page"))
	if err != nil {
		handler.handleError(w, err, fmt.Sprintf("list posts, tag [%s]", tagSlug))
		return
	}

	pkg.WriteJSON(w, http.StatusOK, res)
}

func (handler *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, errY := strconv.Atoi(vars["year"])
	month, errM := strconv.Atoi(vars["month"])
	day, errD := strconv.Atoi(vars["day"])
	if err := errors.Join(errY, errM, errD); err != nil {
		// only on overflow, the route only matches digits
		handler.handleError(w, ErrPostNotFound, "post detail")
		return
	}

	res, err := handler.service.Detail(r.Context(), year, month, day, vars["slug"])
	if err != nil {
		handler.handleError(w, err, fmt.Sprintf("post detail [%s]", vars["slug"]))
		return
	}

	pkg.WriteJSON(w, http.StatusOK, res)
}

func (handler *Handler) handleShareForm(w http.ResponseWriter, r *http.Request) {
	post, ok := handler.publishedPost(w, r)
	if !ok {
		return
	}

	pkg.WriteJSON(w, http.StatusOK, shareResponse{Post: post})
}

func (handler *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	post, ok := handler.publishedPost(w, r)
	if !ok {
		return
	}

	var form ShareForm
	if err := decodeForm(r, &form); err != nil {
		log.Errorf("share post %d: %s", post.ID, err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	fieldErrs, err := handler.dispatcher.Share(r.Context(), post, handler.postURL(r, post), form)
	if err != nil {
		handler.handleError(w, err, fmt.Sprintf("share post %d", post.ID))
		return
	}
	if !fieldErrs.Valid() {
		pkg.WriteJSON(w, http.StatusBadRequest, formErrorsResponse{Form: form, Errors: fieldErrs})
		return
	}

	handler.metricsManager.CounterSharesSent.Inc()
	form.Clean()
	pkg.WriteJSON(w, http.StatusOK, shareResponse{
		Post: post,
		Form: form,
		Sent: true,
	})
}

func (handler *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		handler.handleError(w, ErrPostNotFound, "new comment")
		return
	}

	var form CommentForm
	if err := decodeForm(r, &form); err != nil {
		log.Errorf("new comment for post %d: %s", postID, err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	comment, fieldErrs, err := handler.moderator.Submit(r.Context(), postID, form)
	if err != nil {
		handler.handleError(w, err, fmt.Sprintf("new comment for post %d", postID))
		return
	}
	if !fieldErrs.Valid() {
		handler.metricsManager.CounterCommentsRejected.Inc()
		pkg.WriteJSON(w, http.StatusBadRequest, formErrorsResponse{Form: form, Errors: fieldErrs})
		return
	}

	handler.metricsManager.CounterCommentsAdded.Inc()
	log.Tracef("new comment %d for post %d", comment.ID, postID)

	post, err := handler.service.PublishedPost(r.Context(), postID)
	if err != nil {
		handler.handleError(w, err, fmt.Sprintf("new comment for post %d", postID))
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, commentResponse{
		Post:    post,
		Comment: comment,
	})
}

func (handler *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	results, err := handler.service.Search(r.Context(), query)
	if err != nil {
		handler.handleError(w, err, "search")
		return
	}

	if query != "" {
		handler.metricsManager.CounterSearches.Inc()
	}

	pkg.WriteJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Results: results,
	})
}

func (handler *Handler) publishedPost(w http.ResponseWriter, r *http.Request) (*Post, bool) {
	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		handler.handleError(w, ErrPostNotFound, "get post")
		return nil, false
	}

	post, err := handler.service.PublishedPost(r.Context(), postID)
	if err != nil {
		handler.handleError(w, err, fmt.Sprintf("get post %d", postID))
		return nil, false
	}

	return post, true
}

// postURL builds the absolute link to the post, from the configured site URL
// if there is one, otherwise from the request itself.
func (handler *Handler) postURL(r *http.Request, post *Post) string {
	if handler.siteURL != "" {
		return handler.siteURL + post.AbsolutePath()
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	return fmt.Sprintf("%s://%s%s", scheme, r.Host, post.AbsolutePath())
}

func (handler *Handler) handleError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrTagNotFound):
		log.Tracef("%s: %s", action, err)
		http.Error(w, "resource not found", http.StatusNotFound)
	case errors.Is(err, context.Canceled):
		log.Debugf("%s: %s", action, err)
		http.Error(w, "request canceled", http.StatusInternalServerError)
	default:
		log.Errorf("%s: %s", action, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
