package nav

import "log/slog"

// EventKind classifies a navigation report.
type EventKind string

const (
	EventPushed           EventKind = "pushed"
	EventReplacedAll      EventKind = "replaced_all"
	EventPopped           EventKind = "popped"
	EventFinished         EventKind = "finished"
	EventCancelled        EventKind = "cancelled"
	EventRedirected       EventKind = "redirected"
	EventDuplicateTop     EventKind = "duplicate_top"
	EventNotTransportable EventKind = "not_transportable"
	EventLastEntry        EventKind = "last_entry"
	EventNoStack          EventKind = "no_stack"
	EventResultDropped    EventKind = "result_dropped"
	EventResultDelivered  EventKind = "result_delivered"
)

// Event is one report sent to the observability sink.
type Event struct {
	Kind   EventKind
	Action Action
	// Owner is the id of the addressed owner, empty when none was found.
	Owner string
	// Key is the destination concerned; for redirects it is the new target.
	Key Key
	// From is the key a redirect replaced.
	From   Key
	Reason string
	// Depth is the stack size after the operation, -1 when unknown.
	Depth int
}

// Reporter receives navigation reports. Reports are informational; the
// outcome of an operation never depends on a reporter.
type Reporter interface {
	Report(e Event)
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(e Event)

// Report implements Reporter.
func (f ReporterFunc) Report(e Event) {
	f(e)
}

// LogReporter writes reports to a slog logger. Rejections log at Warn,
// everything else at Debug.
type LogReporter struct {
	Logger *slog.Logger
}

// Report implements Reporter.
func (r LogReporter) Report(e Event) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{"action", e.Action.String()}
	if e.Owner != "" {
		attrs = append(attrs, "owner", e.Owner)
	}
	if e.Key != nil {
		attrs = append(attrs, "key", shortName(e.Key))
	}

	switch e.Kind {
	case EventCancelled:
		reason := e.Reason
		if reason == "" {
			reason = "no reason given"
		}
		logger.Info("navigation cancelled", append(attrs, "reason", reason)...)
	case EventRedirected:
		logger.Info("navigation redirected", append(attrs, "from", shortName(e.From))...)
	case EventDuplicateTop:
		logger.Warn("destination already on top, not pushed", attrs...)
	case EventNotTransportable:
		logger.Warn("destination is not transportable, not pushed", attrs...)
	case EventLastEntry:
		logger.Debug("last entry stays on the stack", attrs...)
	case EventNoStack:
		logger.Warn("no stack attached", attrs...)
	case EventResultDropped:
		logger.Warn("redirected away from a result key, callback dropped", attrs...)
	default:
		logger.Debug("navigation "+string(e.Kind), append(attrs, "depth", e.Depth)...)
	}
}

type multiReporter []Reporter

func (m multiReporter) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}
