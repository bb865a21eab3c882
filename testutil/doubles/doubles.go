// Package doubles provides test doubles for the shell collaborator
// interfaces: a fixed clock, a deterministic sequence generator, a
// notification sender spy, a logger spy, and a metrics collector spy.
package doubles

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bibkit/library-circulation-go/shell"
)

// FixedClock implements shell.Clock with a settable current time.
type FixedClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewFixedClock creates a FixedClock frozen at the given time.
func NewFixedClock(at time.Time) *FixedClock {
	return &FixedClock{current: at}
}

// Now returns the frozen time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// Advance moves the frozen time forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
}

// SetTo moves the frozen time to the given instant.
func (c *FixedClock) SetTo(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = at
}

// SequenceGeneratorStub implements shell.SequenceGenerator with an in-memory
// counter per sequence code, producing the same format as the Postgres
// implementation ("LOAN-000001", "FINE-000001", ...).
type SequenceGeneratorStub struct {
	mu       sync.Mutex
	counters map[string]int64
	failWith error
}

// NewSequenceGeneratorStub creates a SequenceGeneratorStub with all counters at zero.
func NewSequenceGeneratorStub() *SequenceGeneratorStub {
	return &SequenceGeneratorStub{counters: make(map[string]int64)}
}

// Next returns the next formatted reference code for the sequence code.
func (g *SequenceGeneratorStub) Next(_ context.Context, code string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failWith != nil {
		return "", g.failWith
	}

	g.counters[code]++

	return fmt.Sprintf("%s-%06d", strings.ToUpper(code), g.counters[code]), nil
}

// FailWith makes all subsequent Next calls return err; nil restores normal operation.
func (g *SequenceGeneratorStub) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failWith = err
}

// NotificationSenderSpy implements shell.NotificationSender and records
// every notification it was asked to send.
type NotificationSenderSpy struct {
	mu       sync.Mutex
	sent     []shell.Notification
	failWith error
}

// NewNotificationSenderSpy creates an empty NotificationSenderSpy.
func NewNotificationSenderSpy() *NotificationSenderSpy {
	return &NotificationSenderSpy{}
}

// Send records the notification, or returns the configured error without recording.
func (s *NotificationSenderSpy) Send(_ context.Context, notification shell.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}

	s.sent = append(s.sent, notification)

	return nil
}

// FailWith makes all subsequent Send calls return err; nil restores normal operation.
func (s *NotificationSenderSpy) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failWith = err
}

// Sent returns a copy of all recorded notifications in send order.
func (s *NotificationSenderSpy) Sent() []shell.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := make([]shell.Notification, len(s.sent))
	copy(sent, s.sent)

	return sent
}

// SentCount returns the number of recorded notifications.
func (s *NotificationSenderSpy) SentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sent)
}

// LoggerSpy implements shell.Logger and captures messages per level.
type LoggerSpy struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
}

// NewLoggerSpy creates an empty LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (l *LoggerSpy) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }
func (l *LoggerSpy) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *LoggerSpy) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *LoggerSpy) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

func (l *LoggerSpy) record(level string, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Args: args})
}

// HasEntry reports whether a message was logged at the given level.
func (l *LoggerSpy) HasEntry(level string, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.Level == level && entry.Message == msg {
			return true
		}
	}

	return false
}

// Entries returns a copy of all captured log entries in call order.
func (l *LoggerSpy) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]LogEntry, len(l.entries))
	copy(entries, l.entries)

	return entries
}

// MetricsCollectorSpy implements postgresengine.MetricsCollector and captures
// every metric call for inspection.
type MetricsCollectorSpy struct {
	mu              sync.Mutex
	durationRecords []DurationRecord
	counterRecords  []CounterRecord
	valueRecords    []ValueRecord
}

// DurationRecord is one captured duration metric call.
type DurationRecord struct {
	Metric   string
	Duration time.Duration
	Labels   map[string]string
}

// CounterRecord is one captured counter increment call.
type CounterRecord struct {
	Metric string
	Labels map[string]string
}

// ValueRecord is one captured value metric call.
type ValueRecord struct {
	Metric string
	Value  float64
	Labels map[string]string
}

// NewMetricsCollectorSpy creates an empty MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

// RecordDuration captures a duration metric call.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = append(s.durationRecords, DurationRecord{
		Metric:   metric,
		Duration: duration,
		Labels:   copyLabels(labels),
	})
}

// IncrementCounter captures a counter increment call.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counterRecords = append(s.counterRecords, CounterRecord{
		Metric: metric,
		Labels: copyLabels(labels),
	})
}

// RecordValue captures a value metric call.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.valueRecords = append(s.valueRecords, ValueRecord{
		Metric: metric,
		Value:  value,
		Labels: copyLabels(labels),
	})
}

// HasDurationRecord reports whether a duration was recorded for the metric
// carrying all the given labels.
func (s *MetricsCollectorSpy) HasDurationRecord(metric string, labels map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.durationRecords {
		if record.Metric == metric && labelsMatch(record.Labels, labels) {
			return true
		}
	}

	return false
}

// HasCounterRecord reports whether the counter was incremented carrying all
// the given labels.
func (s *MetricsCollectorSpy) HasCounterRecord(metric string, labels map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.counterRecords {
		if record.Metric == metric && labelsMatch(record.Labels, labels) {
			return true
		}
	}

	return false
}

func copyLabels(labels map[string]string) map[string]string {
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}

	return copied
}

func labelsMatch(recorded map[string]string, expected map[string]string) bool {
	for k, v := range expected {
		if recorded[k] != v {
			return false
		}
	}

	return true
}
