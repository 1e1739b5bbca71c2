// SPDX-License-Identifier: Apache-2.0
// Package resilience provides timeout and retry patterns for Metis.
package resilience

import (
	"context"
	"time"

	"github.com/metislabs/metis/pkg/errors"
)

// TimeoutConfig controls timeout behavior.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the operation. Zero disables
	// the local timeout; the context deadline still applies.
	Duration time.Duration
}

// WithTimeoutResult executes fn bounded by both the config duration and the
// context deadline, returning errors.CodeTimeout when either expires first.
// fn keeps running in its goroutine after a timeout; callers must treat the
// operation as abandoned, not interrupted.
func WithTimeoutResult(ctx context.Context, config TimeoutConfig, fn func() (any, error)) (any, error) {
	if config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Duration)
		defer cancel()
	}

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value, err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.New(errors.CodeTimeout, "operation exceeded timeout", ctx.Err()).
			WithContext("timeout", config.Duration.String()).
			WithRecoverable(true)
	case res := <-done:
		return res.value, res.err
	}
}
