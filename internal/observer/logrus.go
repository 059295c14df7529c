package observer

import "github.com/sirupsen/logrus"

// Logrus is an Observer backed by a *logrus.Logger: every span becomes
// one structured log line per event, tagged with the span name.
type Logrus struct {
	logger *logrus.Logger
}

// NewLogrus constructs a Logrus observer writing through logger.
func NewLogrus(logger *logrus.Logger) *Logrus {
	return &Logrus{logger: logger}
}

// StartSpan implements Observer.
func (l *Logrus) StartSpan(name string) Span {
	return &logrusSpan{
		entry: l.logger.WithField("span", name),
		name:  name,
	}
}

type logrusSpan struct {
	entry  *logrus.Entry
	name   string
	status string
}

func (s *logrusSpan) SetAttribute(key string, value any) {
	s.entry = s.entry.WithField(key, value)
}

func (s *logrusSpan) AddEvent(name string) {
	s.entry.Debug(name)
}

func (s *logrusSpan) RecordError(err error) {
	s.entry.WithError(err).Error("span error")
}

func (s *logrusSpan) SetStatus(ok bool) {
	if ok {
		s.status = "ok"
	} else {
		s.status = "error"
	}
}

func (s *logrusSpan) End() {
	s.entry.WithField("status", s.status).Trace("span end")
}
