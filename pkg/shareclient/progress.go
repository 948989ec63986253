package shareclient

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	barWidth     = 32
	renderPeriod = 120 * time.Millisecond
)

// progressBar рисует однострочный ASCII-индикатор передачи в out.
// Нулевой out отключает вывод.
type progressBar struct {
	out   io.Writer
	label string
	total int64

	mu         sync.Mutex
	current    int64
	lastRender time.Time
	lastWidth  int
	finished   bool
}

func newProgressBar(out io.Writer, label string, total int64) *progressBar {
	if out == nil {
		return nil
	}
	return &progressBar{out: out, label: label, total: total}
}

// Write counts p so the bar can sit behind an io.TeeReader.
func (p *progressBar) Write(b []byte) (int, error) {
	p.add(int64(len(b)))
	return len(b), nil
}

func (p *progressBar) add(n int64) {
	if p == nil || n <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.current += n
	if time.Since(p.lastRender) >= renderPeriod {
		p.drawLocked("", false)
	}
}

// finish draws the final line with a ✓ or the error.
func (p *progressBar) finish(err error) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true

	suffix := " ✓"
	if err != nil {
		suffix = fmt.Sprintf(" ✗ %v", err)
	}
	p.drawLocked(suffix, true)
}

func (p *progressBar) drawLocked(suffix string, final bool) {
	line := p.lineLocked() + suffix
	pad := ""
	if p.lastWidth > len(line) {
		pad = strings.Repeat(" ", p.lastWidth-len(line))
	}
	p.lastWidth = len(line)
	p.lastRender = time.Now()

	end := ""
	if final {
		end = "\n"
	}
	fmt.Fprintf(p.out, "\r%s%s%s", line, pad, end)
}

func (p *progressBar) lineLocked() string {
	var b strings.Builder
	b.WriteString(p.label)
	b.WriteByte(' ')

	if p.total <= 0 {
		b.WriteString(humanBytes(p.current))
		b.WriteString(" transferred")
		return b.String()
	}

	ratio := float64(p.current) / float64(p.total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*barWidth + 0.5)
	b.WriteByte('[')
	b.WriteString(strings.Repeat("=", filled))
	b.WriteString(strings.Repeat(" ", barWidth-filled))
	fmt.Fprintf(&b, "] %3d%% %s/%s", int(ratio*100+0.5), humanBytes(p.current), humanBytes(p.total))

	return b.String()
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	units := "KMGTP"
	value := float64(v) / unit
	i := 0
	for value >= unit && i < len(units)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.1f %cB", value, units[i])
}
