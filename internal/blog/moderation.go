package blog

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=moderation_mocks_test.go -package=blog_test

type commentsRepo interface {
	PublishedByID(ctx context.Context, id int) (*Post, error)
	AddComment(ctx context.Context, comment *Comment) error
	SetCommentActive(ctx context.Context, id int, active bool) error
}

// Moderator is the gate every visitor comment goes through.
type Moderator struct {
	repo commentsRepo
	now  func() time.Time
}

func NewModerator(repo commentsRepo) *Moderator {
	return &Moderator{
		repo: repo,
		now:  time.Now,
	}
}

// Submit validates the comment form and stores it, active, under the
// published post postID. When the form is invalid, nothing is stored and
// the returned FieldErrors are not empty.
func (m *Moderator) Submit(ctx context.Context, postID int, form CommentForm) (_ *Comment, _ FieldErrors, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "moderator.Submit")
	defer tracing.EndSpanWithErrCheck(span, &err)
	span.SetAttributes(attribute.Int("post.id", postID))

	post, err := m.repo.PublishedByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}

	form.Clean()
	if fieldErrs := form.Validate(); !fieldErrs.Valid() {
		log.Tracef("comment for post %d rejected: %v", postID, fieldErrs)
		return nil, fieldErrs, nil
	}

	now := m.now().UTC()
	comment := &Comment{
		PostID:  post.ID,
		Name:    form.Name,
		Email:   form.Email,
		Body:    form.Body,
		Created: now,
		Updated: now,
		Active:  true,
	}
	if err := m.repo.AddComment(ctx, comment); err != nil {
		return nil, nil, fmt.Errorf("add comment to post %d: %w", post.ID, err)
	}

	log.Debugf("comment %d added to post %d", comment.ID, post.ID)

	return comment, FieldErrors{}, nil
}

// Deactivate hides the comment. Comments are never deleted.
func (m *Moderator) Deactivate(ctx context.Context, commentID int) error {
	return m.repo.SetCommentActive(ctx, commentID, false)
}

func (m *Moderator) Activate(ctx context.Context, commentID int) error {
	return m.repo.SetCommentActive(ctx, commentID, true)
}
