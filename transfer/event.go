// Package transfer implements the resumable, pausable byte-streaming engine.
package transfer

// Event is a typed notification emitted by a running task.
// Exactly one terminal event (Completed or Failed) is emitted per run, always
// last, after which the event channel is closed.
type Event interface {
	isEvent()
}

// Progress reports the completion percentage of a transfer whose total size is known.
// Percentages for a given task are monotonically non-decreasing.
type Progress struct {
	Percent int
}

// Completed carries the terminal outcome of a successful transfer.
type Completed struct {
	Outcome Outcome
}

// Failed carries the error that terminated a transfer.
// The partial file is left in place for a future resume.
type Failed struct {
	Err error
}

func (Progress) isEvent()  {}
func (Completed) isEvent() {}
func (Failed) isEvent()    {}
