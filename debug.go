package uniws

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/uniws/uniws/internal/sync"
	"github.com/xiegeo/coloredgoroutine"
)

type (
	Debugger interface {
		Log(main string, v ...any)
		WithContext(context string) Debugger
		WithDynamicContext(context string, dynamicContext func() string) Debugger
	}

	noopDebugger struct{}

	printDebugger struct {
		stdout         io.Writer
		context        string
		dynamicContext func() string
	}
)

func NewNoopDebugger() Debugger { return noopDebugger{} }

func (d noopDebugger) Log(main string, _v ...any) {}

func (d noopDebugger) WithContext(context string) Debugger { return d }

func (d noopDebugger) WithDynamicContext(context string, _ func() string) Debugger { return d }

func NewPrintDebugger() Debugger {
	return &printDebugger{stdout: coloredgoroutine.Colors(os.Stdout)}
}

var printMu sync.Mutex

func (d *printDebugger) Log(main string, v ...any) {
	var b strings.Builder
	if len(d.context) != 0 {
		b.WriteString(d.context)
	}
	if d.dynamicContext != nil {
		if b.Len() != 0 {
			b.WriteString(": ")
		}
		b.WriteString(d.dynamicContext())
	}
	if len(main) != 0 {
		if b.Len() != 0 {
			b.WriteString(": ")
		}
		b.WriteString(main)
	}
	for _, value := range v {
		if b.Len() != 0 {
			b.WriteString(": ")
		}
		fmt.Fprint(&b, value)
	}
	b.WriteString("\n")

	printMu.Lock()
	defer printMu.Unlock()
	fmt.Fprint(d.stdout, b.String())
	os.Stdout.Sync()
}

func (d printDebugger) WithContext(context string) Debugger {
	d.context = context
	return &d
}

func (d printDebugger) WithDynamicContext(context string, dynamicContext func() string) Debugger {
	d.context = context
	d.dynamicContext = dynamicContext
	return &d
}
