package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

// Audited actions.
const (
	ActionStreamStart = "stream.start"
	ActionStreamEnd   = "stream.end"
	ActionTipSend     = "tip.send"
)

const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log writes an info entry tagged log_type=audit through the context logger.
func Log(ctx context.Context, action, userID, streamID, msg string) {
	l := log.Ctx(ctx)
	entry(&l, action, userID, streamID).Msg(msg)
}

// LogWithDetail is Log with a free-form detail field, e.g. a tip amount.
func LogWithDetail(ctx context.Context, action, userID, streamID, detail, msg string) {
	l := log.Ctx(ctx)
	entry(&l, action, userID, streamID).Str(FieldDetail, detail).Msg(msg)
}

func entry(l *zerolog.Logger, action, userID, streamID string) *zerolog.Event {
	e := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldStreamID, streamID)
	if userID != "" {
		e = e.Str(log.FieldUserID, userID)
	}
	return e
}
