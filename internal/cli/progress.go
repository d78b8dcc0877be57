package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/moffa90/go-ws63flash/flasher"
)

// Progress turns flasher progress reports into operator output: one bar
// per transfer on a terminal, plain lines otherwise.
type Progress struct {
	w        io.Writer
	terminal bool

	bar    *progressbar.ProgressBar
	target string
	phase  string
}

// NewProgress writes to stdout, drawing bars when it is a terminal.
func NewProgress() *Progress {
	return &Progress{
		w:        os.Stdout,
		terminal: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewPlainProgress writes plain lines to w.
func NewPlainProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

// Callback returns the flasher.ProgressCallback feeding p.
func (p *Progress) Callback() flasher.ProgressCallback {
	return p.update
}

func (p *Progress) update(pr flasher.Progress) {
	switch pr.Phase {
	case flasher.PhaseLoaderBoot, flasher.PhaseTransfer:
		p.transfer(pr)
		return
	}

	p.finishBar()
	if pr.Phase == p.phase {
		return
	}
	p.phase = pr.Phase

	switch pr.Phase {
	case flasher.PhaseHandshake:
		fmt.Fprintln(p.w, "Waiting for device reset...")
	case flasher.PhaseBaud:
		fmt.Fprintln(p.w, "Switching baud...")
	case flasher.PhaseErase:
		fmt.Fprintln(p.w, "Erasing flash...")
	case flasher.PhaseReset:
		fmt.Fprintln(p.w, "Done. Resetting device...")
	case flasher.PhaseComplete:
		fmt.Fprintf(p.w, "Complete: %d bytes in %v\n", pr.BytesSent, pr.Elapsed.Round(time.Millisecond))
	}
}

func (p *Progress) transfer(pr flasher.Progress) {
	if pr.Target != p.target || p.phase != pr.Phase {
		p.finishBar()
		p.target = pr.Target
		p.phase = pr.Phase
		if p.terminal {
			p.bar = progressbar.NewOptions64(pr.TotalBytes,
				progressbar.OptionSetWriter(p.w),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Xfer: "+pr.Target),
				progressbar.OptionShowBytes(true),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.w) }),
			)
		} else {
			fmt.Fprintf(p.w, "Xfer: %s (0x%x)\n", pr.Target, pr.TotalBytes)
		}
	}

	if p.bar != nil {
		_ = p.bar.Set64(pr.BytesSent)
	}
}

func (p *Progress) finishBar() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
	p.target = ""
}
