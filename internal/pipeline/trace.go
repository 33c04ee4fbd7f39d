package pipeline

import "time"

type trace struct {
	steps []TraceStep
}

func newTrace() *trace {
	return &trace{}
}

func (t *trace) add(name, detail string) {
	t.steps = append(t.steps, TraceStep{Name: name, Detail: detail, At: time.Now()})
}
