package notify

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strconv"
	"sync"
	"time"

	alertapp "gasbalance-cloud/internal/alerts/application"
	alerts "gasbalance-cloud/internal/alerts/domain"
)

// EventEscalated is emitted when a critical alert stays unresolved.
const EventEscalated = "escalated"

// AlertReader loads alert records.
type AlertReader interface {
	Get(ctx context.Context, id int64) (*alerts.Alert, error)
}

// Clock provides time for scheduling.
type Clock interface {
	Now() time.Time
}

type sendRecord struct {
	at   time.Time
	hash string
}

// Notifier renders alert events and sends them via a channel. Critical
// alerts that are not resolved within the escalation delay are sent again.
type Notifier struct {
	alerts         AlertReader
	channel        Channel
	template       *Template
	escalation     time.Duration
	clock          Clock
	mu             sync.Mutex
	timers         map[int64]*time.Timer
	sent           map[string]sendRecord
	cooldown       time.Duration
	dedupeWindow   time.Duration
	requestTimeout time.Duration
}

// Option configures the notifier.
type Option func(*Notifier)

// WithEscalation configures escalation delay.
func WithEscalation(after time.Duration) Option {
	return func(n *Notifier) {
		if after > 0 {
			n.escalation = after
		}
	}
}

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(n *Notifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithRequestTimeout overrides the default timeout for escalation checks.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(n *Notifier) {
		if timeout > 0 {
			n.requestTimeout = timeout
		}
	}
}

// WithCooldown sets a minimum interval between notifications for the same alert and event.
func WithCooldown(interval time.Duration) Option {
	return func(n *Notifier) {
		if interval > 0 {
			n.cooldown = interval
		}
	}
}

// WithDedupeWindow suppresses identical notifications within the window.
func WithDedupeWindow(window time.Duration) Option {
	return func(n *Notifier) {
		if window > 0 {
			n.dedupeWindow = window
		}
	}
}

// NewNotifier constructs an alert notifier.
func NewNotifier(reader AlertReader, channel Channel, template *Template, opts ...Option) (*Notifier, error) {
	if reader == nil {
		return nil, errors.New("alert notifier: nil alert reader")
	}
	if channel == nil {
		return nil, errors.New("alert notifier: nil channel")
	}
	if template == nil {
		defaultTemplate, err := NewTemplate("")
		if err != nil {
			return nil, err
		}
		template = defaultTemplate
	}
	n := &Notifier{
		alerts:         reader,
		channel:        channel,
		template:       template,
		clock:          systemClock{},
		timers:         make(map[int64]*time.Timer),
		sent:           make(map[string]sendRecord),
		requestTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify implements AlertNotifier.
func (n *Notifier) Notify(ctx context.Context, event alertapp.AlertEvent) {
	if n == nil || n.channel == nil {
		return
	}
	n.dispatch(ctx, event)

	if event.Alert.State == alerts.StateResolved {
		n.cancelEscalation(event.Alert.ID)
		return
	}
	n.scheduleEscalation(event.Alert)
}

// Close stops all pending escalation timers.
func (n *Notifier) Close() {
	if n == nil {
		return
	}
	n.mu.Lock()
	timers := n.timers
	n.timers = make(map[int64]*time.Timer)
	n.mu.Unlock()
	for _, timer := range timers {
		if timer != nil {
			timer.Stop()
		}
	}
}

func (n *Notifier) dispatch(ctx context.Context, event alertapp.AlertEvent) {
	content, err := n.template.Render(buildTemplateData(event))
	if err != nil {
		return
	}
	key := notificationKey(event.Alert.ID, event.Type, event.Alert.State)
	if !n.shouldSend(key, content) {
		return
	}
	if err := n.channel.Send(ctx, content); err != nil {
		return
	}
	n.markSent(key, content)
}

func (n *Notifier) scheduleEscalation(alert alerts.Alert) {
	if n.escalation <= 0 || alert.Severity != alerts.SeverityCritical {
		return
	}
	n.mu.Lock()
	if existing, ok := n.timers[alert.ID]; ok && existing != nil {
		existing.Stop()
	}
	n.timers[alert.ID] = time.AfterFunc(n.escalation, func() {
		n.runEscalation(alert.ID)
	})
	n.mu.Unlock()
}

func (n *Notifier) cancelEscalation(alertID int64) {
	n.mu.Lock()
	timer := n.timers[alertID]
	delete(n.timers, alertID)
	n.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
}

func (n *Notifier) runEscalation(alertID int64) {
	n.mu.Lock()
	delete(n.timers, alertID)
	n.mu.Unlock()

	ctx := context.Background()
	if n.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.requestTimeout)
		defer cancel()
	}

	alert, err := n.alerts.Get(ctx, alertID)
	if err != nil || alert == nil {
		return
	}
	if alert.State == alerts.StateResolved || alert.Severity != alerts.SeverityCritical {
		return
	}
	n.dispatch(ctx, alertapp.AlertEvent{
		Type:  EventEscalated,
		From:  alert.State,
		Alert: *alert,
		At:    n.clock.Now().UTC(),
	})
}

func buildTemplateData(event alertapp.AlertEvent) TemplateData {
	alert := event.Alert
	previous := event.From.Label()
	if previous == "" {
		previous = alert.State.Label()
	}
	role := ""
	if event.Role != "" {
		role = event.Role.Label()
	}
	return TemplateData{
		AlertID:       alert.ID,
		Valve:         alert.Valve,
		Location:      alert.Location,
		Type:          string(alert.Type),
		Severity:      alert.Severity.Label(),
		SeverityCode:  string(alert.Severity),
		State:         alert.State.Label(),
		StateCode:     string(alert.State),
		PreviousState: previous,
		Date:          alert.Date,
		Description:   alert.Description,
		Suggestion:    suggestionFor(alert.Severity),
		Role:          role,
		Event:         event.Type,
		EventLabel:    eventLabel(event.Type),
	}
}

func eventLabel(event string) string {
	switch event {
	case alertapp.EventTransition:
		return "Actualizada"
	case EventEscalated:
		return "Escalada"
	default:
		return event
	}
}

func suggestionFor(severity alerts.Severity) string {
	switch severity {
	case alerts.SeverityCritical, alerts.SeverityHigh:
		return "Inspeccionar la válvula de inmediato."
	case alerts.SeverityMedium:
		return "Verificar la condición y programar revisión."
	default:
		return "Monitorear la evolución del indicador."
	}
}

func (n *Notifier) shouldSend(key, content string) bool {
	if n.cooldown <= 0 && n.dedupeWindow <= 0 {
		return true
	}
	now := n.clock.Now().UTC()
	hash := hashContent(content)

	n.mu.Lock()
	record, ok := n.sent[key]
	n.mu.Unlock()
	if !ok {
		return true
	}
	if n.cooldown > 0 && now.Sub(record.at) < n.cooldown {
		return false
	}
	if n.dedupeWindow > 0 && record.hash == hash && now.Sub(record.at) < n.dedupeWindow {
		return false
	}
	return true
}

func (n *Notifier) markSent(key, content string) {
	n.mu.Lock()
	n.sent[key] = sendRecord{
		at:   n.clock.Now().UTC(),
		hash: hashContent(content),
	}
	n.mu.Unlock()
}

func notificationKey(alertID int64, eventType string, state alerts.State) string {
	return strconv.FormatInt(alertID, 10) + "|" + eventType + "|" + string(state)
}

func hashContent(content string) string {
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:8])
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
