package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"chorebot/internal/chores"
	"chorebot/internal/recurrence"
	"chorebot/internal/transport"
	"chorebot/pkg/logx"
)

type HandlerFunc func(ctx context.Context, req *Request) error

type Middleware func(next HandlerFunc) HandlerFunc

func Chain(h HandlerFunc, m ...Middleware) HandlerFunc {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func MWTimeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			if d <= 0 {
				return next(ctx, req)
			}
			cctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(cctx, req)
		}
	}
}

func MWPanicRecover() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (err error) {
			defer func() {
				if r := recover(); r != nil {
					req.Logger.Error("panic recovered",
						logx.Any("panic", r),
						logx.String("stack", string(debug.Stack())),
					)
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(ctx, req)
		}
	}
}

// MWRequestLog logs each request; failures are also reported to the chat.
func MWRequestLog() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			start := time.Now()
			err := next(ctx, req)
			d := time.Since(start)

			fields := []logx.Field{logx.String("kind", string(req.Update.Kind)), logx.Duration("dur", d)}
			switch {
			case err != nil:
				req.Logger.Warn("request failed", append(fields, logx.Err(err))...)
				if req.Update.Kind == transport.UpdateMessage {
					_ = req.Reply(ctx, "⚠️ "+replyText(req, err))
				}
			case d >= 750*time.Millisecond:
				req.Logger.Info("request ok", fields...)
			default:
				req.Logger.Debug("request ok", fields...)
			}
			return err
		}
	}
}

// userError carries text written for the person who sent the request.
type userError struct{ msg string }

func (e userError) Error() string { return e.msg }

func userErrorf(format string, args ...any) error {
	return userError{msg: fmt.Sprintf(format, args...)}
}

// replyText is what the chat sees for a failed request. Lookup and
// validation failures are shown as is; anything else only carries the
// request id so it can be found in the log.
func replyText(req *Request, err error) string {
	var ue userError
	switch {
	case errors.As(err, &ue),
		errors.Is(err, chores.ErrNotFound),
		errors.Is(err, chores.ErrValidation),
		recurrence.IsConfigError(err):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out, try again"
	default:
		return "something went wrong (ref " + req.ReqID + ")"
	}
}
