// Package notify reports outcomes (saved, copied, failed) to the user.
// Messages can go to a desktop notification daemon, to a writer such as
// stderr, or to an in-memory recorder in tests.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Level is the severity of a notification.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Symbol is the one-character marker shown before a message.
func (l Level) Symbol() string {
	switch l {
	case Success:
		return "✓"
	case Warning:
		return "!"
	case Error:
		return "✗"
	default:
		return "•"
	}
}

// Notifier delivers a message to the user.
type Notifier interface {
	Notify(level Level, message string) error
}

// Option configures New.
type Option func(*options)

type options struct {
	sound bool
	title string
}

// WithSound plays the platform alert sound for warnings and errors.
func WithSound() Option {
	return func(o *options) { o.sound = true }
}

// WithTitle sets the desktop notification title (default "nippo").
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// New builds a notifier that writes to w (when non-nil) and, when desktop is
// true and the platform supports it, also raises desktop notifications.
// With neither it returns a notifier that drops everything.
func New(desktop bool, w io.Writer, opts ...Option) Notifier {
	o := options{title: "nippo"}
	for _, opt := range opts {
		opt(&o)
	}

	var targets multi
	if w != nil {
		targets = append(targets, NewWriter(w))
	}
	if desktop {
		if d := NewDesktop(o.title, o.sound); d.IsSupported() {
			targets = append(targets, d)
		}
	}

	switch len(targets) {
	case 0:
		return noopNotifier{}
	case 1:
		return targets[0]
	}
	return targets
}

type noopNotifier struct{}

func (noopNotifier) Notify(Level, string) error { return nil }

// multi fans a notification out to several notifiers, returning the first error.
type multi []Notifier

func (m multi) Notify(level Level, message string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(level, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Writer prints one line per notification.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify writes "<symbol> <message>".
func (n *Writer) Notify(level Level, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "%s %s\n", level.Symbol(), message)
	return err
}

// Desktop sends notifications through the platform's notification service.
type Desktop struct {
	title  string
	sound  bool
	sender sender
}

// sender is implemented per platform.
type sender interface {
	send(title, message string, sound bool) error
	supported() bool
}

// NewDesktop creates a desktop notifier for the current platform.
func NewDesktop(title string, sound bool) *Desktop {
	return &Desktop{title: title, sound: sound, sender: newPlatformSender()}
}

// IsSupported reports whether the platform notification command is available.
func (d *Desktop) IsSupported() bool {
	return d.sender.supported()
}

// Notify raises a desktop notification. Sound is used for warnings and errors
// only.
func (d *Desktop) Notify(level Level, message string) error {
	title := d.title
	if level == Warning || level == Error {
		title = fmt.Sprintf("%s: %s", d.title, level)
	}
	return d.sender.send(title, message, d.sound && level >= Warning)
}

// Event is one notification captured by a Recorder.
type Event struct {
	Level   Level
	Message string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify records the event.
func (r *Recorder) Notify(level Level, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Message: message})
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last returns the most recent event.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}
