package hyprland

import (
	"bufio"
	"context"
	"io"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/grovetools/luminashot/pkg/safego"
	"github.com/sirupsen/logrus"
)

// EventStream delivers parsed compositor events from .socket2.sock.
// The stream cannot be restarted once closed.
type EventStream struct {
	conn   net.Conn
	out    chan models.Event
	done   chan struct{}
	logger *logrus.Entry

	closeOnce sync.Once
}

// Dial connects to the event socket of the instance described by opts.
func Dial(ctx context.Context, opts Options) (*EventStream, error) {
	c, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	return c.Subscribe(ctx)
}

// Subscribe opens the event socket. The currently active workspace is read
// first so the first change can report where it came from; if that fails
// the origin of the first event is unknown.
func (c *Client) Subscribe(ctx context.Context) (*EventStream, error) {
	current, err := c.ActiveWorkspaceID(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("Could not read active workspace, origin of first event unknown")
		current = models.UnknownWorkspace
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", filepath.Join(c.socketDir, eventSocketName))
	if err != nil {
		return nil, errors.QueryFailed("events", err).WithDetail("socket", eventSocketName)
	}

	s := &EventStream{
		conn:   conn,
		out:    make(chan models.Event),
		done:   make(chan struct{}),
		logger: c.logger,
	}

	in := make(chan models.Event)
	safego.Go("hyprland-events-read", func() { s.read(in, &parser{current: current}) })
	safego.Go("hyprland-events-pump", func() { s.pump(in) })

	c.logger.WithField("workspace", current).Debug("Subscribed to compositor events")
	return s, nil
}

// Events returns the event channel. It is closed when the connection drops
// or Close is called.
func (s *EventStream) Events() <-chan models.Event {
	return s.out
}

// Close stops the stream and releases the connection.
func (s *EventStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

func (s *EventStream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// maxEventLine bounds how much of a single event line is kept. Window
// titles are controlled by clients and can be arbitrarily long.
const maxEventLine = 64 * 1024

// read parses lines from the socket and hands them to pump.
func (s *EventStream) read(in chan<- models.Event, p *parser) {
	defer close(in)

	r := bufio.NewReader(s.conn)
	var err error
	for {
		var line string
		var truncated bool
		line, truncated, err = readEventLine(r, maxEventLine)
		if err != nil {
			break
		}

		ev := models.Event{Kind: models.EventOther, Raw: line}
		if truncated {
			s.logger.WithField("bytes", len(line)).Debug("Skipping over-long compositor event")
		} else {
			ev = p.parse(line)
		}

		select {
		case in <- ev:
		case <-s.done:
			return
		}
	}

	if s.closed() {
		return
	}
	if err != io.EOF {
		s.logger.WithError(err).Warn("Compositor event stream failed")
	} else {
		s.logger.Warn("Compositor closed the event stream")
	}
}

// readEventLine reads one newline-terminated line. At most limit bytes are
// returned; the rest of a longer line is consumed and discarded. A final
// line without a newline is returned before io.EOF.
func readEventLine(r *bufio.Reader, limit int) (string, bool, error) {
	var buf []byte
	truncated := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if len(buf) > 0 || truncated {
				return string(buf), truncated, nil
			}
			return "", false, err
		}
		if room := limit - len(buf); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
				truncated = true
			}
			buf = append(buf, chunk...)
		} else if len(chunk) > 0 {
			truncated = true
		}
		if !isPrefix {
			return string(buf), truncated, nil
		}
	}
}

// pump forwards events to consumers through an unbounded queue, so read
// never waits on a slow consumer.
func (s *EventStream) pump(in <-chan models.Event) {
	defer close(s.out)

	var queue []models.Event
	for {
		if in == nil && len(queue) == 0 {
			return
		}

		var out chan<- models.Event
		var next models.Event
		if len(queue) > 0 {
			out = s.out
			next = queue[0]
		}

		select {
		case ev, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, ev)
		case out <- next:
			queue = queue[1:]
		case <-s.done:
			return
		}
	}
}

// parser turns raw lines into events while tracking the active workspace
// of the focused monitor.
type parser struct {
	current int
	focused string
}

func (p *parser) parse(line string) models.Event {
	name, data, ok := strings.Cut(line, ">>")
	if !ok {
		return models.Event{Kind: models.EventOther, Raw: line}
	}

	switch name {
	case "workspacev2":
		id, _, _ := strings.Cut(data, ",")
		if to, err := strconv.Atoi(id); err == nil {
			return p.workspaceChanged(to, line)
		}
	case "workspace":
		if to, err := strconv.Atoi(data); err == nil {
			return p.workspaceChanged(to, line)
		}
	case "focusedmonv2", "focusedmon":
		mon, ws, found := strings.Cut(data, ",")
		if !found {
			break
		}
		if to, err := strconv.Atoi(ws); err == nil {
			return p.monitorFocused(mon, to, line)
		}
	}

	return models.Event{Kind: models.EventOther, Raw: line}
}

func (p *parser) workspaceChanged(to int, raw string) models.Event {
	if to == p.current {
		return models.Event{Kind: models.EventOther, Raw: raw}
	}
	ev := models.Event{
		Kind:    models.EventWorkspaceChanged,
		From:    p.current,
		To:      to,
		Monitor: p.focused,
		Raw:     raw,
	}
	p.current = to
	return ev
}

func (p *parser) monitorFocused(monitor string, to int, raw string) models.Event {
	p.focused = monitor
	if to == p.current {
		return models.Event{Kind: models.EventOther, Raw: raw}
	}
	ev := models.Event{
		Kind:    models.EventMonitorFocusChanged,
		From:    p.current,
		To:      to,
		Monitor: monitor,
		Raw:     raw,
	}
	p.current = to
	return ev
}
