package logger

import (
	"bytes"
	"fmt"

	"github.com/logrusorgru/aurora/v3"
)

type Printer interface {
	Output(calldepth int, s string) error
}

type Logger interface {
	Successf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Error(err error)
	Op(operation string, args ...interface{})
}

type ColoredLogger struct {
	printer Printer
	debug   bool
	ops     bool
}

type BWLogger struct {
	printer Printer
	debug   bool
	ops     bool
}

type NullLogger struct{}

var _ Logger = (*ColoredLogger)(nil)
var _ Logger = (*BWLogger)(nil)
var _ Logger = (*NullLogger)(nil)

func NewColorLogger(p Printer, ops, debug bool) *ColoredLogger {
	return &ColoredLogger{
		printer: p,
		debug:   debug,
		ops:     ops,
	}
}

func NewBWLogger(p Printer, ops, debug bool) *BWLogger {
	return &BWLogger{
		printer: p,
		debug:   debug,
		ops:     ops,
	}
}

func (cl *ColoredLogger) Debugf(format string, args ...interface{}) {
	if cl.debug {
		msg := fmt.Sprintf("\nHeron debug: "+format, args...)
		_ = cl.printer.Output(2, aurora.Yellow(msg).String())
	}
}

func (cl *ColoredLogger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf("\nHeron: "+format, args...)
	_ = cl.printer.Output(2, aurora.Green(msg).String())
}

func (cl *ColoredLogger) Error(err error) {
	msg := fmt.Sprintf("\nHeron error: %s", err.Error())
	_ = cl.printer.Output(2, aurora.Red(msg).String())
}

func (cl *ColoredLogger) Op(operation string, args ...interface{}) {
	if cl.ops {
		_ = cl.printer.Output(2, aurora.Gray(15, opMessage(operation, args...)).String())
	}
}

func (bwl *BWLogger) Debugf(format string, args ...interface{}) {
	if bwl.debug {
		msg := fmt.Sprintf("\nHeron debug: "+format, args...)
		_ = bwl.printer.Output(2, msg)
	}
}

func (bwl *BWLogger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf("\nHeron: "+format, args...)
	_ = bwl.printer.Output(2, msg)
}

func (bwl *BWLogger) Error(err error) {
	msg := fmt.Sprintf("\nHeron error: %s", err.Error())
	_ = bwl.printer.Output(2, msg)
}

func (bwl *BWLogger) Op(operation string, args ...interface{}) {
	if bwl.ops {
		_ = bwl.printer.Output(2, opMessage(operation, args...))
	}
}

func (*NullLogger) Successf(format string, args ...interface{}) {}
func (*NullLogger) Debugf(format string, args ...interface{})   {}
func (*NullLogger) Error(err error)                             {}
func (*NullLogger) Op(operation string, args ...interface{})    {}

func opMessage(operation string, args ...interface{}) string {
	var buf bytes.Buffer
	buf.WriteString("\nHeron ledger op: ")
	buf.WriteString(operation)

	if len(args) > 0 {
		buf.WriteString(" args: ")
	}

	for i := range args {
		if i+1 < len(args) {
			buf.WriteString(fmt.Sprintf("{%#v}, ", args[i]))
		} else {
			buf.WriteString(fmt.Sprintf("{%#v}", args[i]))
		}
	}

	return buf.String()
}
