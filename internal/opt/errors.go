package opt

// NotImplementedError is returned by Base methods whose behavior a concrete
// optimizer is required to supply. It always propagates; the driver never
// recovers from it.
type NotImplementedError struct {
	Op string
}

func (e *NotImplementedError) Error() string {
	if e.Op != "" {
		return "method " + e.Op + " must be implemented by the concrete optimizer"
	}
	return "not implemented"
}

func (e *NotImplementedError) Is(target error) bool {
	_, ok := target.(*NotImplementedError)
	return ok
}

// ErrNotImplemented can be used with errors.Is to detect any
// unimplemented-contract failure.
var ErrNotImplemented = &NotImplementedError{}

// InvalidArgumentError reports a malformed argument detected before any
// iteration runs (e.g. an iteration budget below the minimum-iterations
// floor, or mismatched solution/value lengths).
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Field + " " + e.Reason
}

func (e *InvalidArgumentError) Is(target error) bool {
	_, ok := target.(*InvalidArgumentError)
	return ok
}
