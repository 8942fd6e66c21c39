// Package mocks provides in-memory stand-ins for otel.Otel.
package mocks

import (
	"context"
	"sync"

	"aspen/infras/otel"
)

// Otel opens recording scopes and keeps every span name and traced error.
type Otel struct {
	mu     sync.Mutex
	Spans  []string
	Errors []error
}

func (o *Otel) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	o.mu.Lock()
	o.Spans = append(o.Spans, spanName)
	o.mu.Unlock()

	return ctx, &scope{parent: o}
}

// TracedErrors returns a copy of the errors recorded so far.
func (o *Otel) TracedErrors() []error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]error(nil), o.Errors...)
}

func (o *Otel) record(err error) {
	o.mu.Lock()
	o.Errors = append(o.Errors, err)
	o.mu.Unlock()
}

func NewOtel() otel.Otel {
	return NewRecorder()
}

func NewRecorder() *Otel {
	return &Otel{}
}
