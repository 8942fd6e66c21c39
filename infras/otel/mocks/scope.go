package mocks

import "aspen/infras/otel"

var _ otel.Scope = (*scope)(nil)

type scope struct {
	parent *Otel
}

func (s *scope) End() {}
func (s *scope) AddEvent(_ string) {}
func (s *scope) SetAttribute(_ string, _ any) {}
func (s *scope) SetAttributes(_ map[string]any) {}

func (s *scope) TraceError(err error) {
	if err != nil && s.parent != nil {
		s.parent.record(err)
	}
}

func (s *scope) TraceIfError(errp *error) {
	if errp != nil {
		s.TraceError(*errp)
	}
}
