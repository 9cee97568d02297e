// Package except implements the try/catch/finally/throw engine: a
// goroutine-local, frame-stack-driven exception mechanism built on Go's
// native panic/recover, with LIFO-ordered protected cleanup.
package except

import "fmt"

// Descriptor is the static identity of a named exception. Two descriptors
// match iff they are the same pointer; there is no structural equality.
type Descriptor struct {
	Name           string
	DefaultMessage string
}

// NewDescriptor declares a new exception descriptor. Declare it once, at
// package scope, and reference the same *Descriptor everywhere — its
// address is its identity.
func NewDescriptor(name string, defaultMessage ...string) *Descriptor {
	d := &Descriptor{Name: name}
	if len(defaultMessage) > 0 {
		d.DefaultMessage = defaultMessage[0]
	}
	return d
}

func (d *Descriptor) String() string {
	if d == nil {
		return "<nil descriptor>"
	}
	return d.Name
}

// Built-in descriptors, registered once at package init.
var (
	ErrOutOfMemory      = NewDescriptor("out_of_memory", "allocation failed")
	ErrInvalidArgument  = NewDescriptor("invalid_argument")
	ErrAssertionFailure = NewDescriptor("assertion_failure")
)

// Signal-derived descriptors. These are declared here (rather than in
// pkg/sigbridge) so that pkg/except's registry is the single source of
// descriptor identity, matching spec.md's "one per signal" built-in set;
// pkg/sigbridge only decides when to throw them.
var (
	SigSegv = NewDescriptor("sig_segv", "segmentation fault")
	SigFpe  = NewDescriptor("sig_fpe", "floating point exception")
	SigBus  = NewDescriptor("sig_bus", "bus error")
	SigIll  = NewDescriptor("sig_ill", "illegal instruction")
	SigAbrt = NewDescriptor("sig_abrt", "aborted")
	SigInt  = NewDescriptor("sig_int", "interrupt")
	SigTerm = NewDescriptor("sig_term", "terminated")
)

// Exception is the raised record: the live description of the exception
// currently propagating on a goroutine. It implements error so it composes
// naturally with the rest of Go, but it is normally transported by panic,
// not by a returned error value.
type Exception struct {
	Descriptor *Descriptor
	File       string
	Line       int
	Message    string
	Data       any
}

func (e *Exception) Error() string {
	name := "<nil>"
	if e.Descriptor != nil {
		name = e.Descriptor.Name
	}
	if e.Message == "" {
		return fmt.Sprintf("%s at %s:%d", name, e.File, e.Line)
	}
	return fmt.Sprintf("%s at %s:%d: %s", name, e.File, e.Line, e.Message)
}

// Is reports whether the exception's descriptor is identical to d.
func (e *Exception) Is(d *Descriptor) bool {
	return e != nil && e.Descriptor == d
}
