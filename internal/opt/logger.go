package opt

// Logging frequency values understood by Logger.Add.
const (
	// ModuloDefault lets the logger apply its own configured cadence.
	ModuloDefault = -1

	// ModuloNever skips the data point.
	ModuloNever = 0

	// ModuloForce records the data point unconditionally. The driver uses
	// it for the forced final flush on loop termination.
	ModuloForce = 1
)

// Logger is the data-sink contract the driver understands. A richer logger
// (registration, display, plotting) lives behind this interface; the driver
// only ever adds data points.
//
// Add failures during the forced final flush are reported and swallowed by
// the driver, never propagated.
type Logger interface {
	// Add records one data point from the state of o. modulo is one of
	// ModuloDefault, ModuloNever, ModuloForce, or a positive cadence n
	// meaning "every n-th iteration".
	Add(o Optimizer, modulo int) error

	// Modulo reports the logger's configured cadence; 0 means the logger
	// is disabled and the driver skips the forced final flush.
	Modulo() int
}
