//go:build linux

package vio

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"github.com/teslashibe/go-headbridge/pkg/mapping"
	"golang.org/x/sys/unix"
)

// Linux input constants used by the joystick.
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport = 0x00

	absX = 0x00
	absY = 0x01
	absZ = 0x02

	btnTrigger = 0x120

	busVirtual = 0x06
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputSetup struct {
	ID           inputID
	Name         [uinputMaxNameSize]byte
	FFEffectsMax uint32
}

type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

type uinputAbsSetup struct {
	Code uint16
	_    uint16
	Info absInfo
}

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocNone  = 0
	iocWrite = 1
)

func ioc(dir, typ, nr, size uint32) uint {
	return uint(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

var (
	uiDevCreate  = ioc(iocNone, 'U', 1, 0)
	uiDevDestroy = ioc(iocNone, 'U', 2, 0)
	uiDevSetup   = ioc(iocWrite, 'U', 3, uint32(unsafe.Sizeof(uinputSetup{})))
	uiAbsSetup   = ioc(iocWrite, 'U', 4, uint32(unsafe.Sizeof(uinputAbsSetup{})))
	uiSetEvBit   = ioc(iocWrite, 'U', 100, uint32(unsafe.Sizeof(int32(0))))
	uiSetKeyBit  = ioc(iocWrite, 'U', 101, uint32(unsafe.Sizeof(int32(0))))
	uiSetAbsBit  = ioc(iocWrite, 'U', 103, uint32(unsafe.Sizeof(int32(0))))
)

// Joystick is a uinput virtual joystick with X, Y and Z absolute axes.
type Joystick struct {
	mu     sync.Mutex
	fd     int
	closed bool
	buf    []byte
}

// NewJoystick creates the virtual device described by cfg.
func NewJoystick(cfg JoystickConfig) (*Joystick, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fd, err := unix.Open(cfg.Path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}

	if err := setupJoystick(fd, cfg); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Joystick{fd: fd, buf: make([]byte, 0, 4*inputEventSize)}, nil
}

func setupJoystick(fd int, cfg JoystickConfig) error {
	for _, ev := range []int{evKey, evAbs, evSyn} {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, ev); err != nil {
			return fmt.Errorf("UI_SET_EVBIT %d: %w", ev, err)
		}
	}
	if err := unix.IoctlSetInt(fd, uiSetKeyBit, btnTrigger); err != nil {
		return fmt.Errorf("UI_SET_KEYBIT: %w", err)
	}

	axes := []struct {
		code uint16
		r    axisRange
	}{{absX, rangeXY}, {absY, rangeXY}, {absZ, rangeZ}}
	for _, a := range axes {
		if err := unix.IoctlSetInt(fd, uiSetAbsBit, int(a.code)); err != nil {
			return fmt.Errorf("UI_SET_ABSBIT %d: %w", a.code, err)
		}
		setup := uinputAbsSetup{
			Code: a.code,
			Info: absInfo{Minimum: a.r.min, Maximum: a.r.max},
		}
		if err := ioctlPtr(fd, uiAbsSetup, unsafe.Pointer(&setup)); err != nil {
			return fmt.Errorf("UI_ABS_SETUP %d: %w", a.code, err)
		}
	}

	setup := uinputSetup{
		ID: inputID{
			Bustype: busVirtual,
			Vendor:  cfg.Vendor,
			Product: cfg.Product,
			Version: 1,
		},
	}
	copy(setup.Name[:], cfg.Name)
	if err := ioctlPtr(fd, uiDevSetup, unsafe.Pointer(&setup)); err != nil {
		return fmt.Errorf("UI_DEV_SETUP: %w", err)
	}
	if err := ioctlPtr(fd, uiDevCreate, nil); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

func ioctlPtr(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Write emits ABS_X, ABS_Y, ABS_Z and a SYN_REPORT.
func (j *Joystick) Write(o mapping.Output) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}

	j.buf = encodeAxes(j.buf[:0], axisCounts(o))
	if _, err := unix.Write(j.fd, j.buf); err != nil {
		return fmt.Errorf("uinput write: %w", err)
	}
	return nil
}

// Close destroys the virtual device.
func (j *Joystick) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true

	destroyErr := ioctlPtr(j.fd, uiDevDestroy, nil)
	if err := unix.Close(j.fd); err != nil {
		return err
	}
	return destroyErr
}

// inputEventSize is sizeof(struct input_event): a timeval followed by
// type (u16), code (u16) and value (s32).
var inputEventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

// appendEvent appends one input_event with a zero timestamp; the kernel stamps it.
func appendEvent(b []byte, typ, code uint16, value int32) []byte {
	tv := int(unsafe.Sizeof(unix.Timeval{}))
	start := len(b)
	b = append(b, make([]byte, inputEventSize)...)
	ev := b[start:]
	binary.NativeEndian.PutUint16(ev[tv:], typ)
	binary.NativeEndian.PutUint16(ev[tv+2:], code)
	binary.NativeEndian.PutUint32(ev[tv+4:], uint32(value))
	return b
}

func encodeAxes(b []byte, c [3]int32) []byte {
	b = appendEvent(b, evAbs, absX, c[0])
	b = appendEvent(b, evAbs, absY, c[1])
	b = appendEvent(b, evAbs, absZ, c[2])
	return appendEvent(b, evSyn, synReport, 0)
}

var _ Device = (*Joystick)(nil)
