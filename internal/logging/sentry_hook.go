package logging

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

var logrusToSentryLevel = map[logrus.Level]sentry.Level{
	logrus.PanicLevel: sentry.LevelFatal,
	logrus.FatalLevel: sentry.LevelFatal,
	logrus.ErrorLevel: sentry.LevelError,
	logrus.WarnLevel:  sentry.LevelWarning,
	logrus.InfoLevel:  sentry.LevelInfo,
	logrus.DebugLevel: sentry.LevelDebug,
	logrus.TraceLevel: sentry.LevelDebug,
}

// SentryHook forwards logrus entries of the given levels to sentry.
type SentryHook struct {
	levels []logrus.Level
	hub    *sentry.Hub
}

func NewSentryHook(levels []logrus.Level) *SentryHook {
	return &SentryHook{
		levels: levels,
		hub:    sentry.CurrentHub(),
	}
}

func (h *SentryHook) Levels() []logrus.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	event := h.eventFromEntry(entry)
	if h.hub.CaptureEvent(event) == nil {
		return errors.New("sentry event not captured")
	}
	return nil
}

func (h *SentryHook) eventFromEntry(entry *logrus.Entry) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = logrusToSentryLevel[entry.Level]
	event.Message = entry.Message
	event.Timestamp = entry.Time

	for k, v := range entry.Data {
		if err, ok := v.(error); ok && k == logrus.ErrorKey {
			event.Exception = append(event.Exception, sentry.Exception{
				Type:  "error",
				Value: err.Error(),
			})
			continue
		}
		event.Extra[k] = v
	}

	return event
}
