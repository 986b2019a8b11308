package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	verbosePrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnPrefix    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorPrefix   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// ConsoleLogger writes log messages to stderr, or to the writer given to
// NewConsoleLoggerWithWriter.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	styled  bool
	out     io.Writer
	mu      sync.Mutex
}

// NewConsoleLogger creates a new ConsoleLogger writing to stderr.
// If verbose is true, Verbose() calls will produce output.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// NewConsoleLoggerWithWriter creates a ConsoleLogger writing to w. When
// styled is true the level prefixes are colored.
func NewConsoleLoggerWithWriter(w io.Writer, verbose, styled bool) *ConsoleLogger {
	return &ConsoleLogger{
		verbose: verbose,
		styled:  styled,
		out:     w,
	}
}

func (l *ConsoleLogger) write(prefix string, style lipgloss.Style, format string, args []interface{}) {
	if prefix != "" {
		if l.styled {
			prefix = style.Render(prefix)
		}
		prefix += " "
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(args) > 0 {
		fmt.Fprintf(l.out, prefix+format+"\n", args...)
	} else {
		fmt.Fprint(l.out, prefix+format+"\n")
	}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write("[VERBOSE]", verbosePrefix, format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", lipgloss.Style{}, format, args)
}

// Warn logs conditions that do not stop the run.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.write("[WARN]", warnPrefix, format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write("[ERROR]", errorPrefix, format, args)
}
