// Package progress renders install pipeline events for humans and for logs.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tie/modinstaller/models"
)

// Options configures a Printer.
type Options struct {
	// Output is where status lines are written.
	// Default: os.Stdout
	Output io.Writer

	// Total is the number of files in the run, shown in the counter.
	// Zero hides the total.
	Total int

	// Verbose prints unpacked override paths.
	Verbose bool
}

// Printer prints one status line per completed file.
type Printer struct {
	opts Options

	mu   sync.Mutex
	done int

	kinds   map[models.FileKind]lipgloss.Style
	counter lipgloss.Style
	skipped lipgloss.Style
	failed  lipgloss.Style
	warn    lipgloss.Style
}

// NewPrinter creates a Printer. Colors are used only when Output is a
// terminal that supports them.
func NewPrinter(opts Options) *Printer {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	r := lipgloss.NewRenderer(opts.Output)
	return &Printer{
		opts: opts,
		kinds: map[models.FileKind]lipgloss.Style{
			models.KindMod:       r.NewStyle().Foreground(lipgloss.Color("6")),
			models.KindResource:  r.NewStyle().Foreground(lipgloss.Color("5")),
			models.KindConfig:    r.NewStyle().Foreground(lipgloss.Color("2")),
			models.KindScript:    r.NewStyle().Foreground(lipgloss.Color("3")),
			models.KindOverrides: r.NewStyle().Foreground(lipgloss.Color("4")),
		},
		counter: r.NewStyle().Faint(true),
		skipped: r.NewStyle().Foreground(lipgloss.Color("2")),
		failed:  r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (p *Printer) OnItemComplete(f models.PackFile, o models.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++

	w := p.opts.Output
	count := p.counter.Render(p.count())
	if !o.OK() {
		fmt.Fprintf(w, "%s %s\n", count, p.failed.Render(
			fmt.Sprintf("Error occurred while %s %s: %v", failedAction(o), f.Path(), errText(o))))
		return
	}
	if o.Status == models.StatusAlreadyValid {
		fmt.Fprintf(w, "%s %s\n", count, p.skipped.Render(f.Path()+" already installed. Skipping..."))
	} else {
		fmt.Fprintf(w, "%s %s\n", count, p.fileInfo(f))
	}

	if u := o.Unpacked; u != nil {
		fmt.Fprintf(w, "%s unpacked %d override files from %s\n", p.kindLabel(f.Kind), len(u.Files), f.Path())
		if p.opts.Verbose {
			for _, name := range u.Files {
				fmt.Fprintf(w, "    %s\n", name)
			}
		}
		if n := len(u.Unresolved); n > 0 {
			fmt.Fprintf(w, "%s %s\n", p.warn.Render("[warn]"),
				fmt.Sprintf("%s references %d mods that were not installed", f.Path(), n))
		}
	}
}

func (p *Printer) OnAllComplete(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.opts.Output, "Done. %d files processed.\n", total)
}

func (p *Printer) count() string {
	if p.opts.Total > 0 {
		return fmt.Sprintf("[%d/%d]", p.done, p.opts.Total)
	}
	return fmt.Sprintf("[%d]", p.done)
}

func (p *Printer) kindLabel(k models.FileKind) string {
	name := k.String()
	if k == models.KindOverrides {
		name = "package"
	}
	return "[" + p.kinds[k].Render(name) + "]"
}

// fileInfo formats f as "[mod] mods/foo.jar - 1.2 MiB".
func (p *Printer) fileInfo(f models.PackFile) string {
	size := "unknown"
	if f.Size > 0 {
		size = FormatBytes(f.Size)
	}
	return fmt.Sprintf("%s %s - %s", p.kindLabel(f.Kind), f.Path(), size)
}

// failedAction names the step that failed for o.
func failedAction(o models.Outcome) string {
	if o.Err == nil {
		return "installing"
	}
	switch o.Err.Kind {
	case models.KindNetwork:
		return "downloading"
	case models.KindIO:
		return "writing"
	case models.KindArchive, models.KindManifest:
		return "unpacking"
	}
	return "installing"
}

func errText(o models.Outcome) string {
	if o.Err == nil {
		return "unknown error"
	}
	return o.Err.Err.Error()
}

// Log reports pipeline events as structured log entries.
type Log struct {
	Logger zerolog.Logger
}

func (l Log) OnItemComplete(f models.PackFile, o models.Outcome) {
	if !o.OK() {
		ev := l.Logger.Error().Str("file", f.Path()).Str("url", f.URL)
		if o.Err != nil {
			ev = ev.Str("kind", o.Err.Kind.String()).Err(o.Err.Err)
		}
		ev.Msg("file failed")
		return
	}
	ev := l.Logger.Info().
		Str("file", f.Path()).
		Str("kind", f.Kind.String()).
		Str("status", o.Status.String()).
		Int64("size", f.Size)
	if u := o.Unpacked; u != nil {
		ev = ev.Int("unpacked", len(u.Files)).Int("unresolved", len(u.Unresolved))
	}
	ev.Msg("file complete")
}

func (l Log) OnAllComplete(total int) {
	l.Logger.Info().Int("total", total).Msg("all files complete")
}

// Tee fans events out to several reporters in order.
type Tee []interface {
	OnItemComplete(models.PackFile, models.Outcome)
	OnAllComplete(int)
}

func (t Tee) OnItemComplete(f models.PackFile, o models.Outcome) {
	for _, r := range t {
		r.OnItemComplete(f, o)
	}
}

func (t Tee) OnAllComplete(total int) {
	for _, r := range t {
		r.OnAllComplete(total)
	}
}
