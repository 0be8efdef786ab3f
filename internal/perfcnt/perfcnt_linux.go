//go:build linux

package perfcnt

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// perfEventAttr mirrors only the fields of struct perf_event_attr this
// adapter actually reads/writes.
type perfEventAttr struct {
	Type             uint32
	Size             uint32
	Config           uint64
	SamplePeriod     uint64
	SampleType       uint64
	ReadFormat       uint64
	Flags            uint64
	WakeupEvents     uint32
	BPType           uint32
	BPAddr           uint64
	BPLen            uint64
	BranchSampleType uint64
	SampleRegsUser   uint64
	SampleStackUser  uint32
	ClockID          int32
	SampleRegsIntr   uint64
	AuxWatermark     uint32
	SampleMaxStack   uint16
	_                uint16
}

const (
	perfTypeHardware = 0

	perfCountHWCPUCycles    = 0
	perfCountHWInstructions = 1
	perfCountHWBranchInst   = 4
	perfCountHWBranchMisses = 5

	perfEventIoctlReset  = 0x2403
	perfEventIoctlEnable = 0x2400
)

type linuxCollector struct {
	fds map[int][4]int // pid -> {cycles, instructions, branches, branch-misses} fds
}

// InitPerf probes whether perf_event_open is usable on this host and
// returns a Collector if so; unavailability surfaces as a non-nil error
// before any benchmark runs.
func InitPerf() (Collector, error) {
	fd, err := openHW(perfCountHWCPUCycles, os.Getpid(), -1)
	if err != nil {
		if err == unix.EACCES || err == unix.EPERM {
			return nil, ErrPermission
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_ = unix.Close(fd)
	return &linuxCollector{fds: map[int][4]int{}}, nil
}

func openHW(config uint64, pid, cpu int) (int, error) {
	attr := perfEventAttr{
		Type:   perfTypeHardware,
		Config: config,
		Size:   uint32(unsafe.Sizeof(perfEventAttr{})),
	}
	// Flags holds the kernel's bitfield (disabled is bit 0); it is left zero,
	// so the event starts counting as soon as it is opened. Arm resets it
	// right after opening.
	fd, _, errno := unix.Syscall6(
		unix.SYS_PERF_EVENT_OPEN,
		uintptr(unsafe.Pointer(&attr)),
		uintptr(pid), uintptr(cpu), ^uintptr(0), 0, 0,
	)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

// Arm opens the four counters for pid, then resets and enables each one
// while the child is still held by the SIGSTOP gate, so counting is in
// place before the SIGCONT release lets the workload run.
func (c *linuxCollector) Arm(pid int) error {
	configs := [4]uint64{perfCountHWCPUCycles, perfCountHWInstructions, perfCountHWBranchInst, perfCountHWBranchMisses}
	var fds [4]int
	for i, cfg := range configs {
		fd, err := openHW(cfg, pid, -1)
		if err != nil {
			for j := 0; j < i; j++ {
				_ = unix.Close(fds[j])
			}
			return fmt.Errorf("%w: %v", ErrArmFailed, err)
		}
		fds[i] = fd
	}
	for _, fd := range fds {
		_, _, _ = unix.Syscall(unix.SYS_IOCTL, uintptr(fd), perfEventIoctlReset, 0)
		_, _, _ = unix.Syscall(unix.SYS_IOCTL, uintptr(fd), perfEventIoctlEnable, 0)
	}
	c.fds[pid] = fds
	return nil
}

// Collect reads final counter values once the child has exited; on read
// failure the adapter kills the child and returns false.
func (c *linuxCollector) Collect(pid int) (Counters, bool) {
	fds, ok := c.fds[pid]
	if !ok {
		return Counters{}, false
	}
	delete(c.fds, pid)

	var out [4]uint64
	for i, fd := range fds {
		buf := make([]byte, 8)
		n, err := unix.Read(fd, buf)
		_ = unix.Close(fd)
		if err != nil || n != 8 {
			_ = syscall.Kill(pid, syscall.SIGKILL)
			return Counters{}, false
		}
		out[i] = *(*uint64)(unsafe.Pointer(&buf[0]))
	}
	return Counters{
		Cycles:       out[0],
		Instructions: out[1],
		Branches:     out[2],
		BranchMisses: out[3],
	}, true
}

func (c *linuxCollector) Close() error {
	for pid, fds := range c.fds {
		for _, fd := range fds {
			_ = unix.Close(fd)
		}
		delete(c.fds, pid)
	}
	return nil
}
