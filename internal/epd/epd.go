//go:build linux && arm

// Package epd drives the Waveshare 7.5" tri-color (B) e-paper panel over
// SPI using periph.io. It implements the minimal command set the daemon
// needs: init, full-frame display, and deep sleep.
package epd

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	appLog "agendacal/internal/log"
)

// BCM pin numbers for the standard Waveshare HAT wiring.
const (
	bcmRST  = 17
	bcmDC   = 25
	bcmBusy = 24
)

// UC8179 controller commands used by this driver.
const (
	cmdPanelSetting     = 0x00
	cmdPowerOff         = 0x02
	cmdPowerOn          = 0x04
	cmdDeepSleep        = 0x07
	cmdDataBlack        = 0x10
	cmdRefresh          = 0x12
	cmdDataRed          = 0x13
	cmdResolutionSet    = 0x61
	cmdVCOMDataInterval = 0x50
)

// Panel geometry in controller orientation (landscape).
const (
	panelWidth  = 800
	panelHeight = 480
)

// Driver is the handle for one panel.
type Driver struct {
	conn spi.Conn
	port spi.PortCloser

	rst  gpio.PinOut
	dc   gpio.PinOut
	busy gpio.PinIn
}

// Init initializes periph.io, opens the SPI bus, configures the control
// pins, and runs the panel's power-on sequence.
func Init(ctx context.Context) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("epd: periph host init failed: %w", err)
	}

	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("epd: failed to open SPI port: %w", err)
	}
	conn, err := port.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("epd: failed to connect SPI: %w", err)
	}

	d := &Driver{conn: conn, port: port}
	if d.rst = gpioreg.ByName(fmt.Sprintf("GPIO%d", bcmRST)); d.rst == nil {
		_ = port.Close()
		return nil, fmt.Errorf("epd: reset pin GPIO%d not found", bcmRST)
	}
	if d.dc = gpioreg.ByName(fmt.Sprintf("GPIO%d", bcmDC)); d.dc == nil {
		_ = port.Close()
		return nil, fmt.Errorf("epd: dc pin GPIO%d not found", bcmDC)
	}
	if d.busy = gpioreg.ByName(fmt.Sprintf("GPIO%d", bcmBusy)); d.busy == nil {
		_ = port.Close()
		return nil, fmt.Errorf("epd: busy pin GPIO%d not found", bcmBusy)
	}

	if err := d.reset(ctx); err != nil {
		_ = port.Close()
		return nil, err
	}
	if err := d.powerOn(ctx); err != nil {
		_ = port.Close()
		return nil, err
	}

	appLog.Info("epd initialized", "width", panelWidth, "height", panelHeight)
	return d, nil
}

// Display writes both 1bpp planes and triggers a full refresh. Plane
// sizes must match the panel (width/8 * height bytes each).
func (d *Driver) Display(ctx context.Context, black, red []byte) error {
	want := panelWidth / 8 * panelHeight
	if len(black) != want || len(red) != want {
		return fmt.Errorf("epd: plane size mismatch: want %d, got black=%d red=%d", want, len(black), len(red))
	}

	if err := d.command(cmdDataBlack, black...); err != nil {
		return err
	}
	// The controller expects red ink inverted relative to the packed form.
	inverted := make([]byte, len(red))
	for i, b := range red {
		inverted[i] = ^b
	}
	if err := d.command(cmdDataRed, inverted...); err != nil {
		return err
	}

	if err := d.command(cmdRefresh); err != nil {
		return err
	}
	// A full tri-color refresh takes on the order of 15-20 seconds.
	return d.waitIdle(ctx, 40*time.Second)
}

// Sleep puts the panel into deep sleep. The panel must be reset (via a
// new Init) before it accepts further commands.
func (d *Driver) Sleep() error {
	if err := d.command(cmdPowerOff); err != nil {
		return err
	}
	if err := d.command(cmdDeepSleep, 0xA5); err != nil {
		return err
	}
	return nil
}

// Close releases the SPI port.
func (d *Driver) Close() error {
	return d.port.Close()
}

func (d *Driver) reset(ctx context.Context) error {
	for _, step := range []struct {
		level gpio.Level
		wait  time.Duration
	}{
		{gpio.High, 20 * time.Millisecond},
		{gpio.Low, 2 * time.Millisecond},
		{gpio.High, 20 * time.Millisecond},
	} {
		if err := d.rst.Out(step.level); err != nil {
			return fmt.Errorf("epd: reset pin write failed: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step.wait):
		}
	}
	return nil
}

func (d *Driver) powerOn(ctx context.Context) error {
	// KW/R mode, LUT from OTP.
	if err := d.command(cmdPanelSetting, 0x0F); err != nil {
		return err
	}
	if err := d.command(cmdResolutionSet,
		byte(panelWidth>>8), byte(panelWidth&0xFF),
		byte(panelHeight>>8), byte(panelHeight&0xFF)); err != nil {
		return err
	}
	if err := d.command(cmdVCOMDataInterval, 0x11, 0x07); err != nil {
		return err
	}
	if err := d.command(cmdPowerOn); err != nil {
		return err
	}
	return d.waitIdle(ctx, 5*time.Second)
}

// command sends one command byte followed by optional data bytes.
func (d *Driver) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("epd: dc pin write failed: %w", err)
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("epd: command 0x%02x failed: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("epd: dc pin write failed: %w", err)
	}
	// SPI transfers are chunked; large planes exceed the driver's single
	// transfer limit.
	const chunk = 4096
	for off := 0; off < len(data); off += chunk {
		end := off + chunk
		if end > len(data) {
			end = len(data)
		}
		if err := d.conn.Tx(data[off:end], nil); err != nil {
			return fmt.Errorf("epd: data for 0x%02x failed: %w", cmd, err)
		}
	}
	return nil
}

// waitIdle polls the busy pin (low = busy) until the controller is idle
// or the timeout elapses.
func (d *Driver) waitIdle(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if d.busy.Read() == gpio.High {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("epd: busy wait timed out after %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
