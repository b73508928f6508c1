// Command hanoivm runs a HanoiVM bytecode image and prints the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/copyleftcultivars/hanoivm/bytecode"
	"github.com/copyleftcultivars/hanoivm/fault"
	"github.com/copyleftcultivars/hanoivm/op"
	"github.com/copyleftcultivars/hanoivm/telemetry"
	"github.com/copyleftcultivars/hanoivm/vm"
)

func main() {
	var (
		demo    bool
		trace   bool
		noColor bool
	)
	flag.BoolVar(&demo, "demo", false, "run a built-in demo program")
	flag.BoolVar(&trace, "trace", false, "log dispatch and tier events")
	flag.BoolVar(&noColor, "no-color", false, "disable colored output")
	flag.Parse()

	if noColor {
		color.NoColor = true
	}

	code, err := loadProgram(demo, flag.Arg(0))
	if err != nil {
		fatal(err)
	}

	var options []vm.Option
	if trace {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
		options = append(options, vm.WithTracer(telemetry.NewSink(log)))
	}

	machine := vm.New(code, options...)
	if trace {
		fmt.Fprintln(os.Stderr, "session:", machine.Session())
	}

	if err := machine.Run(); err != nil {
		var f *fault.Fault
		if errors.As(err, &f) {
			fatal(fmt.Errorf("fault at ip=%d (%s): %w", f.IP, op.Code(f.Opcode), err))
		}
		fatal(err)
	}

	if tos, ok := machine.TOS(); ok {
		color.Green("%s", tos.Inspect())
	} else {
		color.Yellow("halted with empty stack")
	}
}

func loadProgram(demo bool, path string) ([]byte, error) {
	if demo {
		return demoProgram(), nil
	}
	if path == "" {
		return nil, fmt.Errorf("usage: hanoivm [-demo] [-trace] <image.hvm>")
	}
	return os.ReadFile(path)
}

// demoProgram computes 18+33 and leaves the sum on the stack.
func demoProgram() []byte {
	return bytecode.NewBuilder().
		PushInt(18).
		PushInt(33).
		Op(op.Add).
		Op(op.Halt).
		Bytes()
}

func fatal(err error) {
	color.Red("hanoivm: %s", err)
	os.Exit(1)
}
