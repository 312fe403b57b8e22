// Package battery reports the battery state of the (typically
// PiSugar-powered) panel so the UI can warn before the display dies.
package battery

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PiSugar3 register map (7-bit address 0x57):
// 0x22/0x23 voltage high/low in millivolts, 0x2A percentage.
const (
	defaultI2CAddr = 0x57
	regVoltageHigh = 0x22
	regVoltageLow  = 0x23
	regPercent     = 0x2A
)

// Status is the battery state exposed over the API.
type Status struct {
	// Percent is the battery level in 0–100%.
	Percent int `json:"percent"`
	// VoltageMv is the battery voltage in millivolts, 0 when unknown.
	VoltageMv int `json:"voltage_mv"`
}

// Reader abstracts how battery information is obtained, so development
// machines get a mock and the Raspberry Pi gets the real I2C controller.
type Reader interface {
	Read(ctx context.Context) (Status, error)
}

type mockReader struct {
	rnd *rand.Rand
}

type i2cReader struct {
	busName string
	addr    uint16
}

// NewMockReader returns a Reader that generates plausible random
// percentages, for development off the target hardware.
func NewMockReader() Reader {
	return &mockReader{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewI2CReader returns a Reader backed by a PiSugar3-style controller.
// busName "" selects periph's default bus. The connection is opened per
// Read, not at construction.
func NewI2CReader(busName string, addr uint16) Reader {
	return &i2cReader{busName: busName, addr: addr}
}

func (m *mockReader) Read(_ context.Context) (Status, error) {
	// 20..100 inclusive; voltage stays unknown.
	return Status{Percent: 20 + m.rnd.Intn(81)}, nil
}

func (r *i2cReader) Read(_ context.Context) (Status, error) {
	if runtime.GOOS != "linux" {
		return Status{}, errors.New("battery: i2c reader unavailable on this platform")
	}
	if _, err := host.Init(); err != nil {
		return Status{}, err
	}

	bus, err := i2creg.Open(r.busName)
	if err != nil {
		return Status{}, err
	}
	defer bus.Close()

	dev := &i2c.Dev{Bus: bus, Addr: r.addr}
	readReg := func(reg byte) (byte, error) {
		buf := []byte{0}
		if err := dev.Tx([]byte{reg}, buf); err != nil {
			return 0, err
		}
		return buf[0], nil
	}

	high, err := readReg(regVoltageHigh)
	if err != nil {
		return Status{}, err
	}
	low, err := readReg(regVoltageLow)
	if err != nil {
		return Status{}, err
	}
	pct, err := readReg(regPercent)
	if err != nil {
		return Status{}, err
	}
	if pct > 100 {
		pct = 100
	}

	return Status{
		Percent:   int(pct),
		VoltageMv: int(uint16(high)<<8 | uint16(low)),
	}, nil
}

// DefaultReader returns the Reader the daemon should use: the I2C
// controller when it responds, otherwise the mock. Callers only ever see
// the Reader interface, so missing hardware degrades silently.
func DefaultReader() Reader {
	if runtime.GOOS != "linux" {
		return NewMockReader()
	}
	r := NewI2CReader("", defaultI2CAddr)
	if _, err := r.Read(context.Background()); err != nil {
		return NewMockReader()
	}
	return r
}
