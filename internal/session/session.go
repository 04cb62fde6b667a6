// Package session owns one serial connection's lifecycle: it drives the
// connection state machine, frames and accounts for inbound bytes, applies
// filtering, recovers from link drops with capped exponential backoff, and
// publishes a normalized event feed that any sink (TUI, remote feed, tests)
// can consume.
package session

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Sigmakib2/serialconsole/internal/sysinfo"
	"github.com/Sigmakib2/serialconsole/internal/transport"
)

// connectTimeout bounds a single open attempt. An open that exceeds it is
// treated as a transient failure.
const connectTimeout = 5 * time.Second

// Options tune a new session. Zero values fall back to defaults.
type Options struct {
	LineEnding  LineEnding
	StatsTick   time.Duration // interval between statsTick events, default 1s
	EventBuffer int           // sink channel capacity, default 256
	Footprint   func() sysinfo.Footprint
}

// Snapshot is a consistent copy of the session's observable state, taken on
// the loop goroutine so renderers never race with it.
type Snapshot struct {
	PortPath       string          `json:"portPath"`
	Baud           int             `json:"baud"`
	State          ConnectionState `json:"state"`
	Config         Config          `json:"config"`
	Stats          StatsSnapshot   `json:"stats"`
	Attempt        int             `json:"attempt"`
	RetryDelay     time.Duration   `json:"retryDelay"`
	ReconnectStart time.Time       `json:"reconnectStart"`
}

// RetryRemaining returns how much of the backoff delay is left at the given
// instant, floored at zero. Only meaningful while reconnecting.
func (s Snapshot) RetryRemaining(now time.Time) time.Duration {
	if s.State != Reconnecting || s.ReconnectStart.IsZero() {
		return 0
	}
	remaining := s.RetryDelay - now.Sub(s.ReconnectStart)
	if remaining < 0 {
		return 0
	}
	return remaining
}

type taggedPortEvent struct {
	gen uint64
	ev  transport.Event
}

type openResult struct {
	gen  uint64
	port transport.Port
	err  error
}

// Session is the orchestrator. All mutable state below the marker comment
// is owned by the run goroutine; external callers interact only through
// channels, so the loop needs no locks.
type Session struct {
	portPath string
	baud     int
	opener   transport.Opener

	statsTick time.Duration
	footprint func() sysinfo.Footprint

	cmds        chan func()
	events      chan Event
	portEvents  chan taggedPortEvent
	openResults chan openResult
	done        chan struct{}
	startOnce   sync.Once

	// loop-owned state
	state          ConnectionState
	cfg            Config
	stats          Stats
	port           transport.Port
	generation     uint64
	attempt        int
	retryTimer     *time.Timer
	retryDelay     time.Duration
	reconnectStart time.Time
	lineBuf        []byte
	closing        bool
	delayFn        func(int) time.Duration // swapped in tests
	dropped        int64
	lastDropLog    time.Time
}

// New creates a session bound to a port path and baud rate. The opener is
// held for the session's whole lifetime and asked for a fresh handle on
// every connection attempt.
func New(portPath string, baud int, opener transport.Opener, opts Options) *Session {
	if opts.StatsTick <= 0 {
		opts.StatsTick = time.Second
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 256
	}
	return &Session{
		portPath:    portPath,
		baud:        baud,
		opener:      opener,
		statsTick:   opts.StatsTick,
		footprint:   opts.Footprint,
		cmds:        make(chan func()),
		events:      make(chan Event, opts.EventBuffer),
		portEvents:  make(chan taggedPortEvent, 64),
		openResults: make(chan openResult, 1),
		done:        make(chan struct{}),
		state:       Disconnected,
		cfg: Config{
			AutoReconnect: true,
			LineEnding:    opts.LineEnding,
		},
		stats:   Stats{SessionStart: time.Now()},
		delayFn: Delay,
	}
}

// Events is the sink feed. It is closed when the session shuts down.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Start launches the run loop and begins the first connection attempt.
// Subsequent calls are no-ops.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Shutdown closes any open handle, cancels pending timers and stops the
// loop. It is idempotent: a second call neither closes anything again nor
// errors. It blocks until the loop has exited.
func (s *Session) Shutdown() {
	_ = s.exec(func() {
		s.beginShutdown()
	})
	<-s.done
}

// Send writes the payload plus the current line-ending bytes to the open
// port. It returns ErrNotConnected when no handle is open, and the byte
// count written on success.
func (s *Session) Send(text string) (int, error) {
	return s.sendWith(text, func() LineEnding { return s.cfg.LineEnding })
}

// SendWith is Send with an explicit line-ending override for this one
// message.
func (s *Session) SendWith(text string, ending LineEnding) (int, error) {
	return s.sendWith(text, func() LineEnding { return ending })
}

func (s *Session) sendWith(text string, ending func() LineEnding) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	if err := s.exec(func() {
		n, err := s.doSend(text, ending())
		ch <- result{n, err}
	}); err != nil {
		return 0, ErrNotConnected
	}
	r := <-ch
	return r.n, r.err
}

// SetFilter replaces the message filter text. Empty text disables the
// filter.
func (s *Session) SetFilter(text string) {
	_ = s.exec(func() {
		s.cfg.Filter.Set(text)
		if s.cfg.Filter.Enabled {
			s.emitSystem(ColorInfo, fmt.Sprintf("filter set to %q", text))
		} else {
			s.emitSystem(ColorInfo, "filter cleared")
		}
	})
}

// SetPause toggles delivery of ordinary message and hex events. Counters
// and error/system events are unaffected.
func (s *Session) SetPause(paused bool) {
	_ = s.exec(func() {
		s.cfg.Paused = paused
		if paused {
			s.emitSystem(ColorWarning, "output paused")
		} else {
			s.emitSystem(ColorInfo, "output resumed")
		}
	})
}

// SetEcho toggles local echo of outbound sends.
func (s *Session) SetEcho(echo bool) {
	_ = s.exec(func() {
		s.cfg.Echo = echo
		s.emitSystem(ColorInfo, "echo "+onOff(echo))
	})
}

// SetShowHex toggles the raw hex chunk stream.
func (s *Session) SetShowHex(show bool) {
	_ = s.exec(func() {
		s.cfg.ShowHex = show
		s.emitSystem(ColorInfo, "hex view "+onOff(show))
	})
}

// SetLineEnding selects the byte sequence appended to sends.
func (s *Session) SetLineEnding(mode LineEnding) {
	_ = s.exec(func() {
		s.cfg.LineEnding = mode
		s.emitSystem(ColorInfo, "line ending set to "+strings.ToUpper(mode.String()))
	})
}

// CycleLineEnding advances LF → CR → CRLF → LF and returns nothing; the
// resulting mode shows up in the next snapshot and a system message.
func (s *Session) CycleLineEnding() {
	_ = s.exec(func() {
		s.cfg.LineEnding = s.cfg.LineEnding.Next()
		s.emitSystem(ColorInfo, "line ending set to "+strings.ToUpper(s.cfg.LineEnding.String()))
	})
}

// SetAutoReconnect enables or disables the reconnect policy. Disabling while
// a retry is pending cancels it and settles in Disconnected; enabling while
// disconnected starts a fresh attempt immediately.
func (s *Session) SetAutoReconnect(on bool) {
	_ = s.exec(func() {
		s.cfg.AutoReconnect = on
		switch {
		case !on && s.state == Reconnecting:
			s.stopRetry()
			s.setState(Disconnected, ColorWarning, "auto-reconnect disabled, retry cancelled")
		case on && s.state == Disconnected && s.port == nil:
			s.attempt = 0
			s.emitSystem(ColorInfo, "auto-reconnect enabled")
			s.beginConnect()
		default:
			s.emitSystem(ColorInfo, "auto-reconnect "+onOff(on))
		}
	})
}

// ForceReconnect drops any open handle or pending retry and starts a fresh
// connection attempt with a clean counter.
func (s *Session) ForceReconnect() {
	_ = s.exec(func() {
		if s.state == PermanentlyFailed {
			// A manual kick out of the terminal state re-arms the policy.
			s.cfg.AutoReconnect = true
		}
		s.attempt = 0
		s.beginConnect()
	})
}

// Snapshot returns the state, statistics and config for rendering. After
// shutdown it keeps returning the terminal snapshot.
func (s *Session) Snapshot() Snapshot {
	ch := make(chan Snapshot, 1)
	if err := s.exec(func() {
		ch <- s.snapshotLocked()
	}); err != nil {
		return Snapshot{
			PortPath: s.portPath,
			Baud:     s.baud,
			State:    Disconnected,
		}
	}
	return <-ch
}

// exec runs fn on the loop goroutine. The command channel is unbuffered, so
// a function either executes or, after shutdown, is refused; it can never
// sit queued while the loop dies.
func (s *Session) exec(fn func()) error {
	select {
	case s.cmds <- fn:
		return nil
	case <-s.done:
		return ErrShutdown
	}
}

// --- run loop -----------------------------------------------------------

func (s *Session) run() {
	ticker := time.NewTicker(s.statsTick)
	defer ticker.Stop()

	s.beginConnect()

	for !s.closing {
		var retryC <-chan time.Time
		if s.retryTimer != nil {
			retryC = s.retryTimer.C
		}
		select {
		case fn := <-s.cmds:
			fn()
		case res := <-s.openResults:
			s.onOpenResult(res)
		case tev := <-s.portEvents:
			s.onPortEvent(tev)
		case <-retryC:
			s.onRetryElapsed()
		case now := <-ticker.C:
			s.emitStatsTick(now)
		}
	}

	s.teardown()
	close(s.done)
	close(s.events)
}

func (s *Session) beginShutdown() {
	s.stopRetry()
	s.teardown()
	if s.state != Disconnected {
		s.setState(Disconnected, ColorInfo, "session closed")
	}
	s.closing = true
}

// teardown closes the current handle, if any, and bumps the generation so
// events still in flight from the old handle are recognized as stale and
// discarded. This must happen before any new handle is created.
func (s *Session) teardown() {
	if s.port != nil {
		s.port.Close()
		s.port = nil
	}
	s.generation++
}

// beginConnect replaces whatever handle or retry is in flight with a fresh
// open attempt. The open itself runs off-loop, bounded by connectTimeout,
// and reports back tagged with the generation it belongs to.
func (s *Session) beginConnect() {
	s.stopRetry()
	s.teardown()
	s.reconnectStart = time.Time{}
	s.retryDelay = 0
	s.lineBuf = nil

	s.setState(Connecting, ColorInfo, fmt.Sprintf("opening %s @ %d baud", s.portPath, s.baud))

	gen := s.generation
	go func() {
		type opened struct {
			port transport.Port
			err  error
		}
		ch := make(chan opened, 1)
		go func() {
			port, err := s.opener.Open(s.portPath, s.baud)
			ch <- opened{port, err}
		}()

		var res opened
		select {
		case res = <-ch:
		case <-time.After(connectTimeout):
			res = opened{nil, ErrConnectTimeout}
			// If the straggling open eventually succeeds, release the
			// handle so it cannot leak.
			go func() {
				if late := <-ch; late.port != nil {
					late.port.Close()
				}
			}()
		}

		select {
		case s.openResults <- openResult{gen: gen, port: res.port, err: res.err}:
		case <-s.done:
			if res.port != nil {
				res.port.Close()
			}
		}
	}()
}

func (s *Session) onOpenResult(res openResult) {
	if res.gen != s.generation {
		// A shutdown, manual reconnect or policy change replaced this
		// attempt while the open was in flight.
		if res.port != nil {
			res.port.Close()
		}
		return
	}
	if res.err != nil {
		s.handleOpenFailure(res.err)
		return
	}

	s.port = res.port
	s.attempt = 0
	s.reconnectStart = time.Time{}
	s.retryDelay = 0
	s.setState(Connected, ColorSuccess, fmt.Sprintf("connected to %s @ %d baud", s.portPath, s.baud))

	go s.pump(s.generation, res.port)
}

// pump forwards one handle's events onto the loop, tagged with the handle's
// generation. It drains until the port's channel closes so the driver's
// reader can always finish.
func (s *Session) pump(gen uint64, port transport.Port) {
	for ev := range port.Events() {
		select {
		case s.portEvents <- taggedPortEvent{gen: gen, ev: ev}:
		case <-s.done:
			return
		}
	}
}

func (s *Session) onPortEvent(tev taggedPortEvent) {
	if tev.gen != s.generation {
		return // stale handle
	}
	switch tev.ev.Kind {
	case transport.EventData:
		s.ingest(tev.ev.Data)
	case transport.EventError:
		s.handleConnectionLoss(tev.ev.Err)
	case transport.EventClosed:
		s.handleConnectionLoss(nil)
	}
}

func (s *Session) handleOpenFailure(err error) {
	if IsPermanentFailure(err) {
		s.attempt = 0
		s.cfg.AutoReconnect = false
		s.setState(PermanentlyFailed, ColorError,
			fmt.Sprintf("cannot open %s: %v — giving up, auto-reconnect disabled", s.portPath, err))
		return
	}
	if s.cfg.AutoReconnect {
		s.scheduleRetry(err)
		return
	}
	s.setState(Disconnected, ColorError, fmt.Sprintf("cannot open %s: %v", s.portPath, err))
}

// handleConnectionLoss reacts to an unsolicited error or close from the
// live handle. The failure classifier is not consulted here; it judges open
// failures only.
func (s *Session) handleConnectionLoss(cause error) {
	s.flushPartialLine()
	s.teardown()
	if s.closing {
		return
	}
	if s.cfg.AutoReconnect {
		s.scheduleRetry(cause)
		return
	}
	detail := "connection closed"
	if cause != nil {
		detail = fmt.Sprintf("connection lost: %v", cause)
	}
	s.setState(Disconnected, ColorWarning, detail)
}

func (s *Session) scheduleRetry(cause error) {
	s.attempt++
	delay := s.delayFn(s.attempt)
	s.retryDelay = delay
	s.reconnectStart = time.Now()
	s.stopRetryTimerOnly()
	s.retryTimer = time.NewTimer(delay)

	detail := fmt.Sprintf("retrying in %s (attempt %d)", delay, s.attempt)
	if cause != nil {
		detail = fmt.Sprintf("%v — %s", cause, detail)
	}
	s.setState(Reconnecting, ColorWarning, detail)
}

func (s *Session) onRetryElapsed() {
	s.retryTimer = nil
	if !s.cfg.AutoReconnect || s.closing {
		return
	}
	s.beginConnect()
}

// stopRetry cancels any pending retry and clears its bookkeeping.
func (s *Session) stopRetry() {
	s.stopRetryTimerOnly()
	s.reconnectStart = time.Time{}
	s.retryDelay = 0
}

func (s *Session) stopRetryTimerOnly() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
}

// --- data path ----------------------------------------------------------

// ingest accounts for a raw chunk and feeds the two inbound views: the hex
// stream gets the chunk verbatim, the line decoder splits on \n and buffers
// the partial tail. Counters advance regardless of pause or filter state.
func (s *Session) ingest(chunk []byte) {
	s.stats.BytesReceived += uint64(len(chunk))

	if s.cfg.ShowHex && !s.cfg.Paused {
		raw := make([]byte, len(chunk))
		copy(raw, chunk)
		s.emit(Event{
			Kind:      KindHex,
			Raw:       raw,
			Color:     ColorInfo,
			Timestamp: time.Now(),
			State:     s.state,
		})
	}

	s.lineBuf = append(s.lineBuf, chunk...)
	for {
		idx := bytes.IndexByte(s.lineBuf, '\n')
		if idx < 0 {
			return
		}
		line := strings.TrimSpace(string(s.lineBuf[:idx]))
		s.lineBuf = s.lineBuf[idx+1:]
		s.deliverLine(line)
	}
}

// flushPartialLine emits whatever incomplete tail is buffered when the
// connection goes away, so trailing data without a final delimiter is not
// silently lost.
func (s *Session) flushPartialLine() {
	if len(s.lineBuf) == 0 {
		return
	}
	line := strings.TrimSpace(string(s.lineBuf))
	s.lineBuf = nil
	s.deliverLine(line)
}

func (s *Session) deliverLine(line string) {
	s.stats.MessagesReceived++
	if s.cfg.Paused {
		return
	}
	if !s.cfg.Filter.Match(line) {
		return
	}
	s.emit(Event{
		Kind:      KindMessage,
		Payload:   line,
		Color:     ColorInfo,
		Timestamp: time.Now(),
		State:     s.state,
	})
}

func (s *Session) doSend(text string, ending LineEnding) (int, error) {
	if s.port == nil || s.state != Connected {
		return 0, ErrNotConnected
	}
	data := append([]byte(text), ending.Bytes()...)
	n, err := s.port.Write(data)
	if n > 0 {
		s.stats.BytesSent += uint64(n)
	}
	if err != nil {
		// A failed write is surfaced but does not change connection
		// state; if the link is really gone the handle will tell us.
		s.emitSystem(ColorError, fmt.Sprintf("write failed: %v", err))
		return n, fmt.Errorf("write: %w", err)
	}
	if s.cfg.Echo && !s.cfg.Paused {
		s.emit(Event{
			Kind:      KindMessage,
			Payload:   text,
			Color:     ColorSuccess,
			Timestamp: time.Now(),
			Outbound:  true,
			State:     s.state,
		})
	}
	return n, nil
}

// --- emission -----------------------------------------------------------

func (s *Session) setState(state ConnectionState, color Color, detail string) {
	s.state = state
	s.emit(Event{
		Kind:      KindStateChange,
		Payload:   detail,
		Color:     color,
		Timestamp: time.Now(),
		State:     state,
	})
}

// emitSystem publishes a message-kind event that is exempt from pause
// suppression (warnings, errors, toggle confirmations).
func (s *Session) emitSystem(color Color, text string) {
	s.emit(Event{
		Kind:      KindMessage,
		Payload:   text,
		Color:     color,
		Timestamp: time.Now(),
		State:     s.state,
	})
}

func (s *Session) emitStatsTick(now time.Time) {
	snap := s.stats.Snapshot(now)
	if s.footprint != nil {
		snap.Footprint = s.footprint()
	}
	s.emit(Event{
		Kind:      KindStatsTick,
		Color:     ColorInfo,
		Timestamp: now,
		State:     s.state,
		Stats:     &snap,
	})
}

// emit hands an event to the sink without blocking the loop. Dropped events
// are counted and logged at most once per 10 seconds.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.dropped++
		now := time.Now()
		if s.lastDropLog.IsZero() || now.Sub(s.lastDropLog) >= 10*time.Second {
			log.Printf("sink events dropped: %d (channel full)", s.dropped)
			s.dropped = 0
			s.lastDropLog = now
		}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := s.stats.Snapshot(time.Now())
	if s.footprint != nil {
		snap.Footprint = s.footprint()
	}
	return Snapshot{
		PortPath:       s.portPath,
		Baud:           s.baud,
		State:          s.state,
		Config:         s.cfg,
		Stats:          snap,
		Attempt:        s.attempt,
		RetryDelay:     s.retryDelay,
		ReconnectStart: s.reconnectStart,
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
