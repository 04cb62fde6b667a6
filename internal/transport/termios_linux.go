package transport

import (
	"fmt"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// termiosPort is a raw-mode serial port on Linux. A self-pipe lets Close
// interrupt the blocking poll in the reader goroutine.
type termiosPort struct {
	fd        int
	file      *os.File
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	pipeR     int
	pipeW     int
}

// SystemOpener opens real serial devices.
var SystemOpener Opener = OpenerFunc(openTermios)

func openTermios(path string, baud int) (Port, error) {
	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode: no line discipline, no echo, 8 data bits, no parity.
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baudToUnix(baud)

	// VMIN=1, VTIME=0: return as soon as a single byte is available.
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	syscall.SetNonblock(fd, false)

	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	p := &termiosPort{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), path),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}
	go p.readLoop()
	return p, nil
}

func (p *termiosPort) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

func (p *termiosPort) Events() <-chan Event {
	return p.events
}

// readLoop pumps raw chunks into the event channel. It is the only sender
// on p.events and the only goroutine that closes it.
func (p *termiosPort) readLoop() {
	defer close(p.events)

	buf := make([]byte, 4096)
	for {
		pfd := []unix.PollFd{
			{Fd: int32(p.fd), Events: unix.POLLIN},
			{Fd: int32(p.pipeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(pfd, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			p.events <- Event{Kind: EventError, Err: err}
			p.events <- Event{Kind: EventClosed}
			return
		}

		select {
		case <-p.done:
			p.events <- Event{Kind: EventClosed}
			return
		default:
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			var b [1]byte
			unix.Read(p.pipeR, b[:])
			p.events <- Event{Kind: EventClosed}
			return
		}

		if pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			n, err := p.file.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				p.events <- Event{Kind: EventData, Data: chunk}
			}
			if err != nil {
				p.events <- Event{Kind: EventError, Err: err}
				p.events <- Event{Kind: EventClosed}
				return
			}
		}
	}
}

// Close shuts the port down and wakes the reader. Subsequent calls are
// no-ops.
func (p *termiosPort) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		unix.Write(p.pipeW, []byte{1})
		err = p.file.Close()
		unix.Close(p.pipeR)
		unix.Close(p.pipeW)
	})
	return err
}

func baudToUnix(baud int) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	default:
		return unix.B115200
	}
}
