package gop

import (
	"log/slog"
	"reflect"
)

// Observer receives accounting and diagnostic notifications from pools and
// storage arenas. Implementations must not panic; the core calls into them
// on allocation paths and on fault paths without any recovery.
type Observer interface {
	// Allocated is invoked once per chunk allocation or release with the
	// element type's label, the slot count delta and the byte size delta.
	// Both deltas are negative when storage is released.
	Allocated(label string, slots int, bytes int)

	// Fault is invoked with a human-readable message when an operation is
	// about to fail on an internal fault path, before the error is
	// returned to the caller.
	Fault(label string, msg string)
}

// NopObserver is the default Observer. It discards all notifications.
type NopObserver struct{}

func (NopObserver) Allocated(string, int, int) {}
func (NopObserver) Fault(string, string)       {}

// SlogObserver returns an Observer that routes notifications to the given
// structured logger. Allocation accounting is logged at debug level, faults
// at error level.
func SlogObserver(l *slog.Logger) Observer {
	return slogObserver{l: l}
}

type slogObserver struct {
	l *slog.Logger
}

func (o slogObserver) Allocated(label string, slots, bytes int) {
	if bytes >= 0 {
		o.l.Debug("storage allocated", "type", label, "slots", slots, "bytes", bytes)
	} else {
		o.l.Debug("storage released", "type", label, "slots", -slots, "bytes", -bytes)
	}
}

func (o slogObserver) Fault(label, msg string) {
	o.l.Error("pool fault", "type", label, "msg", msg)
}

// typeLabels maps element types to the labels used in notifications.
// The package is single-threaded by design, so a plain map suffices.
var typeLabels = map[reflect.Type]string{}

// RegisterTypeLabel registers a label for T, overriding the reflected type
// name in allocation and fault notifications.
func RegisterTypeLabel[T any](name string) {
	typeLabels[reflect.TypeOf((*T)(nil)).Elem()] = name
}

// typeLabel resolves the notification label for T. Types without a
// registered label fall back to their reflected name.
func typeLabel[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if name, ok := typeLabels[t]; ok {
		return name
	}
	return t.String()
}
