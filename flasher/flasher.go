package flasher

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-ws63flash/fwpkg"
	"github.com/moffa90/go-ws63flash/protocol"
	"github.com/moffa90/go-ws63flash/ymodem"
)

// resetMarker is searched case-insensitively in the reset replies.
var resetMarker = []byte("reset")

// Flasher sequences handshakes, YMODEM transfers and command frames into
// flash, write and erase operations on a WS63.
//
// A Flasher drives a single channel and must not be used by more than one
// goroutine at a time.
type Flasher struct {
	ch     protocol.Channel
	config Config

	start      time.Time
	totalBytes int64
	doneBytes  int64
}

// New creates a new Flasher talking over ch.
//
// Example:
//
//	port, _ := serial.Open("/dev/ttyUSB0")
//	f := flasher.New(port,
//	    flasher.WithBaudRate(921600),
//	    flasher.WithProgressCallback(progressFunc),
//	)
func New(ch protocol.Channel, opts ...Option) *Flasher {
	if ch == nil {
		panic("channel cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Flasher{
		ch:     ch,
		config: cfg,
	}
}

// Flash burns the ordinary partitions of img named in names, or all of
// them when names is empty:
//  1. Handshake with the boot ROM, switching speed unless deferred
//  2. Send the loaderboot and wait for it to announce itself
//  3. Switch speed through the loaderboot when deferred
//  4. For each partition: download command, YMODEM transfer, settle
//  5. Reset the device
//
// The channel is always returned to 115200 baud.
//
// Example:
//
//	img, _ := fwpkg.Open("ws63-liteos-app_all.fwpkg")
//	defer img.Close()
//	err := f.Flash(context.Background(), img, nil)
func (f *Flasher) Flash(ctx context.Context, img *fwpkg.Image, names []string) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	loader, parts, err := ContainerTargets(img, names)
	if err != nil {
		return err
	}
	return f.program(ctx, loader, parts)
}

// Write burns standalone images. targets[0] is sent as the loaderboot, the
// rest are written at their addresses.
//
// Example:
//
//	targets, _ := flasher.LoadTargets([]string{"loaderboot.bin", "app.bin@0x230000"})
//	err := f.Write(ctx, targets)
func (f *Flasher) Write(ctx context.Context, targets []Target) error {
	if len(targets) == 0 {
		return &NoTargetsError{Operation: "write"}
	}
	return f.program(ctx, targets[0], targets[1:])
}

// Erase wipes the whole flash using loader to run the erase command. The
// transfer stays at 115200 baud.
func (f *Flasher) Erase(ctx context.Context, loader Target) error {
	defer f.restoreBaudRate()
	f.begin([]Target{loader})

	if err := f.Handshake(ctx, protocol.DefaultBaudRate); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if err := f.bootLoader(ctx, loader); err != nil {
		return err
	}

	f.reportProgress(Progress{Phase: PhaseErase, Percentage: f.percentage()})
	f.logInfo("erasing flash")
	if err := f.sendFrame(protocol.BuildEraseCmd()); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	if _, err := f.WaitMagic(ctx); err != nil {
		return fmt.Errorf("erase: %w", err)
	}

	if err := f.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	f.complete()
	return nil
}

func (f *Flasher) program(ctx context.Context, loader Target, parts []Target) error {
	defer f.restoreBaudRate()
	f.begin(append([]Target{loader}, parts...))

	baud := f.config.BaudRate
	early := !f.config.LateBaud && baud != protocol.DefaultBaudRate

	hsBaud := protocol.DefaultBaudRate
	if early {
		hsBaud = baud
	}
	if err := f.Handshake(ctx, uint32(hsBaud)); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if early {
		f.reportProgress(Progress{Phase: PhaseBaud, Percentage: f.percentage()})
		if err := f.ch.SetBaudRate(baud); err != nil {
			return fmt.Errorf("set baud rate %d: %w", baud, err)
		}
		f.logDebug("baud rate switched", "baud", baud)
	}

	if err := f.bootLoader(ctx, loader); err != nil {
		return err
	}

	if f.config.LateBaud && baud != protocol.DefaultBaudRate {
		if err := f.SwitchBaudRate(ctx, baud); err != nil {
			return fmt.Errorf("switch baud rate: %w", err)
		}
	}

	for i, t := range parts {
		if err := f.Download(ctx, t); err != nil {
			return fmt.Errorf("write %s (%d/%d): %w", t.Name, i+1, len(parts), err)
		}
	}

	if err := f.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	f.complete()
	return nil
}

// bootLoader transfers the loaderboot and waits for it to start.
func (f *Flasher) bootLoader(ctx context.Context, loader Target) error {
	if err := f.SendFile(ctx, PhaseLoaderBoot, loader); err != nil {
		return fmt.Errorf("send loaderboot: %w", err)
	}
	if _, err := f.WaitMagic(ctx); err != nil {
		return fmt.Errorf("loaderboot did not start: %w", err)
	}
	f.logInfo("loaderboot running", "name", loader.Name)
	return nil
}

// Handshake sends handshake frames carrying baud until the ROM answers
// with the acknowledgement signature or HandshakeTimeout expires. The
// signature is matched in the raw stream, across read boundaries.
func (f *Flasher) Handshake(ctx context.Context, baud uint32) error {
	f.reportProgress(Progress{Phase: PhaseHandshake})
	f.logInfo("waiting for device", "baud", baud)

	frame := protocol.BuildHandshakeCmd(baud)
	deadline := time.Now().Add(f.config.HandshakeTimeout)
	buf := make([]byte, 32)
	var window []byte

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		var err error
		if attempt == 0 {
			err = f.sendFrame(frame)
		} else {
			err = protocol.Send(f.ch, frame)
		}
		if err != nil {
			return err
		}

		if time.Now().After(deadline) {
			return protocol.Errorf(protocol.KindTimeout, "handshake",
				"no answer after %d attempts in %v", attempt+1, f.config.HandshakeTimeout)
		}

		n, err := f.ch.Read(buf, f.config.PollInterval)
		if err != nil {
			return protocol.NewError(protocol.KindIO, "handshake", err)
		}
		window = append(window, buf[:n]...)
		if bytes.Contains(window, protocol.HandshakeAck) {
			f.logDebug("handshake acknowledged", "attempts", attempt+1)
			return nil
		}
		if keep := len(protocol.HandshakeAck) - 1; len(window) > keep {
			window = append(window[:0], window[len(window)-keep:]...)
		}
	}
}

// SendFile transfers t over YMODEM, reporting progress under phase.
func (f *Flasher) SendFile(ctx context.Context, phase string, t Target) error {
	f.logInfo("sending", "name", t.Name, "bytes", len(t.Data), "address", fmt.Sprintf("0x%08X", t.Address))

	base := f.doneBytes
	sender := ymodem.NewSender(f.ch,
		ymodem.WithConfig(f.config.YModem),
		ymodem.WithEcho(f.config.Echo),
		ymodem.WithLogger(f.config.Logger),
		ymodem.WithBlockFunc(func(name string, block, total int, sent int64) {
			f.doneBytes = base + sent
			f.reportProgress(Progress{
				Phase:       phase,
				Target:      name,
				Block:       block,
				TotalBlocks: total,
				BytesSent:   sent,
				TotalBytes:  t.Size(),
				Percentage:  f.percentage(),
			})
		}),
	)

	if err := sender.Send(ctx, t.Name, bytes.NewReader(t.Data), t.Size()); err != nil {
		return err
	}
	f.doneBytes = base + t.Size()
	return nil
}

// WaitMagic waits for the next reply frame. Corrupt frames are skipped
// until ReplyTimeout runs out; silence for MagicTimeout is an error.
func (f *Flasher) WaitMagic(ctx context.Context) (*protocol.Frame, error) {
	deadline := time.Now().Add(f.config.ReplyTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled: %w", err)
		}

		frame, err := protocol.ScanForResponse(f.ch, f.config.MagicTimeout, f.config.Echo)
		if err == nil {
			f.logDebug("reply frame", "command", fmt.Sprintf("0x%02X", frame.Command), "payload_len", len(frame.Payload))
			return frame, nil
		}
		if protocol.IsChecksum(err) {
			f.logError("discarding corrupt frame", "error", err)
			if time.Now().After(deadline) {
				return nil, protocol.Errorf(protocol.KindTimeout, "wait for reply",
					"no valid frame in %v, last error: %v", f.config.ReplyTimeout, err)
			}
			continue
		}
		return nil, err
	}
}

// SwitchBaudRate asks the running loaderboot to change speed, follows it
// and waits for it to answer at the new rate.
func (f *Flasher) SwitchBaudRate(ctx context.Context, baud int) error {
	f.reportProgress(Progress{Phase: PhaseBaud, Percentage: f.percentage()})

	if err := f.sendFrame(protocol.BuildSetBaudRateCmd(uint32(baud))); err != nil {
		return err
	}
	if _, err := f.WaitMagic(ctx); err != nil {
		return err
	}
	if err := f.ch.SetBaudRate(baud); err != nil {
		return err
	}
	if _, err := f.WaitMagic(ctx); err != nil {
		return fmt.Errorf("no answer at %d baud: %w", baud, err)
	}

	f.logDebug("baud rate switched", "baud", baud)
	return nil
}

// Download erases and writes one target: a download frame for its range,
// the acknowledgement, the YMODEM transfer and the settle delay.
func (f *Flasher) Download(ctx context.Context, t Target) error {
	length := uint32(len(t.Data))
	erase := protocol.EraseSize(length)
	f.logDebug("download",
		"name", t.Name,
		"address", fmt.Sprintf("0x%08X", t.Address),
		"length", length,
		"erase_size", fmt.Sprintf("0x%X", erase),
	)

	if err := f.sendFrame(protocol.BuildDownloadCmd(t.Address, length, erase)); err != nil {
		return err
	}
	if _, err := f.WaitMagic(ctx); err != nil {
		return err
	}
	if err := f.SendFile(ctx, PhaseTransfer, t); err != nil {
		return err
	}
	return sleep(ctx, f.config.SettleDelay)
}

// Reset sends reset frames until the device reports it is resetting or
// ResetTimeout expires.
func (f *Flasher) Reset(ctx context.Context) error {
	f.reportProgress(Progress{Phase: PhaseReset, Percentage: f.percentage()})

	frame := protocol.BuildResetCmd()
	deadline := time.Now().Add(f.config.ResetTimeout)
	buf := make([]byte, 32)
	var window []byte

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		var err error
		if attempt == 0 {
			err = f.sendFrame(frame)
		} else {
			err = protocol.Send(f.ch, frame)
		}
		if err != nil {
			return err
		}

		n, err := f.ch.Read(buf, f.config.PollInterval)
		if err != nil {
			return protocol.NewError(protocol.KindIO, "reset", err)
		}
		window = append(window, buf[:n]...)
		if bytes.Contains(bytes.ToLower(window), resetMarker) {
			f.logInfo("device reset")
			return nil
		}
		if time.Now().After(deadline) {
			return protocol.Errorf(protocol.KindTimeout, "reset",
				"no confirmation after %d attempts in %v", attempt+1, f.config.ResetTimeout)
		}
		if keep := len(resetMarker) - 1; len(window) > keep {
			window = append(window[:0], window[len(window)-keep:]...)
		}
	}
}

// sendFrame writes a command frame, passing it to the trace hook first.
func (f *Flasher) sendFrame(frame []byte) error {
	if f.config.FrameTrace != nil {
		f.config.FrameTrace(frame)
	}
	return protocol.Send(f.ch, frame)
}

// restoreBaudRate puts the channel back to the ROM speed.
func (f *Flasher) restoreBaudRate() {
	if err := f.ch.SetBaudRate(protocol.DefaultBaudRate); err != nil {
		f.logError("restore baud rate", "error", err)
	}
}

func (f *Flasher) begin(targets []Target) {
	f.start = time.Now()
	f.doneBytes = 0
	f.totalBytes = 0
	for _, t := range targets {
		f.totalBytes += t.Size()
	}
}

func (f *Flasher) complete() {
	f.reportProgress(Progress{
		Phase:      PhaseComplete,
		BytesSent:  f.doneBytes,
		TotalBytes: f.totalBytes,
		Percentage: 100,
	})
	f.logInfo("operation complete",
		"bytes", f.doneBytes,
		"elapsed", time.Since(f.start).String(),
	)
}

// percentage maps transferred bytes onto 0..95; the rest is the reset.
func (f *Flasher) percentage() float64 {
	if f.totalBytes == 0 {
		return 0
	}
	return float64(f.doneBytes) / float64(f.totalBytes) * 95
}

// reportProgress calls the progress callback if configured.
func (f *Flasher) reportProgress(progress Progress) {
	if f.config.ProgressCallback != nil {
		if !f.start.IsZero() {
			progress.Elapsed = time.Since(f.start)
		}
		f.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (f *Flasher) logDebug(msg string, keysAndValues ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (f *Flasher) logInfo(msg string, keysAndValues ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (f *Flasher) logError(msg string, keysAndValues ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Error(msg, keysAndValues...)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("cancelled: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
