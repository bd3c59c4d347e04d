// Package toast contains a sink for transient user-visible notifications.
//
// Stores report every operation outcome here so a front end can surface it
// without the stores knowing how it is rendered.
package toast

import (
	"github.com/sirupsen/logrus"
)

// Toaster ...
type Toaster interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

type logToaster struct {
	log *logrus.Entry
}

// NewLog returns a Toaster which writes through logrus. It is the default
// sink for headless consumers.
func NewLog() Toaster {
	return logToaster{
		log: logrus.WithField("package", "toast"),
	}
}

func (t logToaster) Success(msg string) {
	t.log.Info(msg)
}

func (t logToaster) Info(msg string) {
	t.log.Info(msg)
}

func (t logToaster) Error(msg string) {
	t.log.Error(msg)
}

type writeToaster struct {
	w func(format string, a ...interface{})
}

// NewWriter returns a Toaster which renders toasts with printf-style f,
// e.g. for a CLI front end.
func NewWriter(f func(format string, a ...interface{})) Toaster {
	return writeToaster{w: f}
}

func (t writeToaster) Success(msg string) {
	t.w("✓ %s\n", msg)
}

func (t writeToaster) Info(msg string) {
	t.w("• %s\n", msg)
}

func (t writeToaster) Error(msg string) {
	t.w("✗ %s\n", msg)
}
