// Package memory provides in-process record and blob stores. They back the
// dev profile and let tests inject failures and count remote calls.
package memory

import (
	"sync"

	"portfolio-backend/internal/remote"
)

// Op names a remote call.
type Op string

const (
	OpSelect Op = "select"
	OpGet    Op = "get"
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpUpload Op = "upload"
	OpRemove Op = "remove"
	OpOpen   Op = "open"
)

// Call describes one remote call as seen by a Fault.
type Call struct {
	Op     Op
	ID     string
	Fields remote.Fields
	Paths  []string
}

// Fault decides whether a call fails. Returning nil lets it through.
type Fault func(call Call) error

type faults struct {
	mu     sync.Mutex
	hooks  map[Op]Fault
	counts map[Op]int
}

func newFaults() *faults {
	return &faults{hooks: map[Op]Fault{}, counts: map[Op]int{}}
}

func (f *faults) set(op Op, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fault == nil {
		delete(f.hooks, op)
		return
	}
	f.hooks[op] = fault
}

// enter counts the call and returns the injected error, if any.
func (f *faults) enter(call Call) error {
	f.mu.Lock()
	f.counts[call.Op]++
	hook := f.hooks[call.Op]
	f.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(call)
}

func (f *faults) calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[op]
}

func (f *faults) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.counts {
		n += c
	}
	return n
}

// FailAlways returns a Fault that fails every call with err.
func FailAlways(err error) Fault {
	return func(Call) error { return err }
}

// FailOnce returns a Fault that fails only the first call with err.
func FailOnce(err error) Fault {
	var once sync.Once
	return func(Call) error {
		var out error
		once.Do(func() { out = err })
		return out
	}
}
