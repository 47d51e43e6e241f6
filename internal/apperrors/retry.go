package apperrors

import (
	"context"
	"errors"
	"net"
	"time"
)

// IsTemporary reports whether err is worth another attempt
func IsTemporary(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindNetwork:
			return true
		case KindHTTP:
			return e.Status == 502 || e.Status == 503 || e.Status == 504
		}
	}
	return false
}

// WithRetry runs operation up to maxRetries times, backing off linearly
func WithRetry(ctx context.Context, maxRetries int, backoff time.Duration, operation func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if !IsTemporary(err) || i == maxRetries-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return err
}
