package blog

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/mail"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=share_mocks_test.go -package=blog_test

type mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Dispatcher composes "recommend this post" emails.
type Dispatcher struct {
	mailer mailer
	from   string
}

func NewDispatcher(mailer mailer, from string) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		from:   from,
	}
}

// Share sends the post recommendation to form.To. A transport error is
// returned as is.
func (d *Dispatcher) Share(ctx context.Context, post *Post, postURL string, form ShareForm) (_ FieldErrors, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dispatcher.Share")
	defer tracing.EndSpanWithErrCheck(span, &err)
	span.SetAttributes(attribute.Int("post.id", post.ID))

	form.Clean()
	if fieldErrs := form.Validate(); !fieldErrs.Valid() {
		return fieldErrs, nil
	}

	msg := ComposeShareMessage(post, postURL, form)
	msg.From = d.from
	if err := d.mailer.Send(ctx, msg); err != nil {
		return nil, err
	}

	log.Debugf("post %d shared by [%s] with [%s]", post.ID, form.Email, form.To)

	return FieldErrors{}, nil
}

func ComposeShareMessage(post *Post, postURL string, form ShareForm) mail.Message {
	return mail.Message{
		To:      []string{form.To},
		Subject: fmt.Sprintf("%s recommends you read %s", form.Name, post.Title),
		Body: fmt.Sprintf(
			"Read %s at %s\n\n%s's comments: %s",
			post.Title, postURL, form.Name, form.Comments,
		),
	}
}
