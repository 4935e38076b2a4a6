package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

const (
	// recordBacklog bounds how many ended sessions may wait for listeners.
	recordBacklog = 16

	// listenerTimeout bounds a single listener call.
	listenerTimeout = 5 * time.Second
)

// FocusConfig holds runtime options for the focus service.
type FocusConfig struct {
	DefaultDuration time.Duration
	ShortBreak      time.Duration
	LongBreak       time.Duration
	DisplayTimeout  time.Duration
	Location        *time.Location
}

// DefaultFocusConfig returns the standard focus configuration.
func DefaultFocusConfig() FocusConfig {
	return FocusConfig{
		DefaultDuration: domain.DefaultDuration,
		ShortBreak:      domain.DefaultShortBreak,
		LongBreak:       domain.DefaultLongBreak,
		DisplayTimeout:  250 * time.Millisecond,
		Location:        time.Local,
	}
}

// durationFor returns the configured length of a session of type t.
func (c FocusConfig) durationFor(t domain.SessionType) time.Duration {
	switch t {
	case domain.TypeShortBreak:
		return c.ShortBreak
	case domain.TypeLongBreak:
		return c.LongBreak
	default:
		return c.DefaultDuration
	}
}

// FocusService owns the single focus session and serializes every command
// and tick through its processing loop.
//
// Setters must be called before Run. Commands block until Run is serving
// them, the caller's context is done, or Run has returned.
type FocusService struct {
	clock      ports.Clock
	display    ports.DisplayHost
	git        ports.GitDetector
	workingDir string
	listeners  []ports.SessionListener
	metrics    ports.Metrics
	logger     *slog.Logger
	config     FocusConfig

	commands chan command
	ticks    chan tickEvent
	records  chan domain.SessionRecord
	stopped  chan struct{}

	// Owned by the processing loop.
	session       domain.Session
	scheduler     *TickScheduler
	generation    uint64
	displayActive bool
}

type command struct {
	name string
	fn   func() bool
	done chan struct{}
}

type tickEvent struct {
	generation uint64
	remaining  time.Duration
	finished   bool
}

// NewFocusService creates a new focus service. A nil display discards
// display updates until SetDisplay is called.
func NewFocusService(clock ports.Clock, display ports.DisplayHost) *FocusService {
	if display == nil {
		display = nopDisplay{}
	}
	return &FocusService{
		clock:    clock,
		display:  display,
		metrics:  nopMetrics{},
		logger:   slog.Default(),
		config:   DefaultFocusConfig(),
		commands: make(chan command),
		ticks:    make(chan tickEvent),
		records:  make(chan domain.SessionRecord, recordBacklog),
		stopped:  make(chan struct{}),
		session:  domain.Session{State: domain.StateIdle},
	}
}

// SetConfig updates the focus configuration.
func (s *FocusService) SetConfig(config FocusConfig) {
	if config.DefaultDuration <= 0 {
		config.DefaultDuration = domain.DefaultDuration
	}
	if config.ShortBreak <= 0 {
		config.ShortBreak = domain.DefaultShortBreak
	}
	if config.LongBreak <= 0 {
		config.LongBreak = domain.DefaultLongBreak
	}
	if config.DisplayTimeout <= 0 {
		config.DisplayTimeout = DefaultFocusConfig().DisplayTimeout
	}
	s.config = config
}

// SetDisplay replaces the display host. Hosts that dispatch commands back
// into the service, like the terminal dashboard, are attached this way.
func (s *FocusService) SetDisplay(display ports.DisplayHost) {
	if display == nil {
		display = nopDisplay{}
	}
	s.display = display
}

// SetGitDetector enables capturing git context for sessions started in workingDir.
func (s *FocusService) SetGitDetector(detector ports.GitDetector, workingDir string) {
	s.git = detector
	s.workingDir = workingDir
}

// SetMetrics sets the metrics recorder.
func (s *FocusService) SetMetrics(metrics ports.Metrics) {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	s.metrics = metrics
}

// SetLogger sets the logger.
func (s *FocusService) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// AddListener registers a listener for ended sessions.
func (s *FocusService) AddListener(listener ports.SessionListener) {
	s.listeners = append(s.listeners, listener)
}

// Run processes commands and ticks until ctx is cancelled. A live session is
// stopped on the way out. Run must be called once.
func (s *FocusService) Run(ctx context.Context) error {
	defer close(s.stopped)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.deliverRecords()
		return nil
	})
	g.Go(func() error {
		defer close(s.records)
		s.loop(gctx)
		return nil
	})
	return g.Wait()
}

// Start begins a focus session of the given length, or continues a paused
// one. A non-positive duration selects the configured default.
func (s *FocusService) Start(ctx context.Context, duration time.Duration) error {
	return s.StartSession(ctx, domain.TypeFocus, duration)
}

// StartSession begins a session of type t. A paused session of any type is
// continued instead. A non-positive duration selects the configured length
// for the type.
func (s *FocusService) StartSession(ctx context.Context, t domain.SessionType, duration time.Duration) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSessionType, t)
	}
	git := s.detectGit(ctx)
	return s.do(ctx, "start", func() bool {
		return s.applyStart(t, duration, git)
	})
}

// Pause freezes a running session at its last observed remaining time.
func (s *FocusService) Pause(ctx context.Context) error {
	return s.do(ctx, "pause", s.applyPause)
}

// Resume continues a paused session. It behaves like Start without a duration.
func (s *FocusService) Resume(ctx context.Context) error {
	git := s.detectGit(ctx)
	return s.do(ctx, "resume", func() bool {
		return s.applyStart(domain.TypeFocus, 0, git)
	})
}

// Stop ends the session, if any, and removes the persistent display.
func (s *FocusService) Stop(ctx context.Context) error {
	return s.do(ctx, "stop", s.applyStop)
}

// Snapshot returns a copy of the current session.
func (s *FocusService) Snapshot(ctx context.Context) (domain.Session, error) {
	var snapshot domain.Session
	err := s.do(ctx, "", func() bool {
		snapshot = s.session
		return false
	})
	return snapshot, err
}

// Ensure FocusService implements ports.FocusCommander.
var _ ports.FocusCommander = (*FocusService)(nil)

func (s *FocusService) do(ctx context.Context, name string, fn func() bool) error {
	cmd := command{name: name, fn: fn, done: make(chan struct{})}
	select {
	case s.commands <- cmd:
	case <-s.stopped:
		return domain.ErrServiceNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	<-cmd.done
	return nil
}

func (s *FocusService) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.applyStop()
			return
		case cmd := <-s.commands:
			changed := cmd.fn()
			if cmd.name != "" {
				s.metrics.CommandApplied(ctx, cmd.name, changed)
				s.logger.Debug("command applied",
					slog.String("command", cmd.name),
					slog.Bool("changed", changed),
					slog.String("state", string(s.session.State)),
					slog.String("type", string(s.session.Type)),
					slog.Duration("remaining", s.session.Remaining))
			}
			close(cmd.done)
		case ev := <-s.ticks:
			s.handleTick(ctx, ev)
		}
	}
}

func (s *FocusService) applyStart(t domain.SessionType, duration time.Duration, git *ports.GitInfo) bool {
	if s.session.State == domain.StateRunning {
		return false
	}

	now := s.clock.Now()
	if s.session.State.AcceptsFreshStart() {
		if duration <= 0 {
			duration = s.config.durationFor(t)
		}
		s.session = domain.NewSessionOfType(t, duration, now)
		if git != nil {
			s.session.SetGitContext(git.Branch, git.Commit)
		}
	}

	s.session.Run(now)
	s.startScheduler()
	s.pushDisplay(true)
	return true
}

func (s *FocusService) applyPause() bool {
	if s.session.State != domain.StateRunning {
		return false
	}
	s.cancelScheduler()
	s.session.Pause()
	s.pushDisplay(false)
	return true
}

func (s *FocusService) applyStop() bool {
	if !s.session.State.IsLive() {
		if s.session.State != domain.StateStopped {
			s.session.Reset()
		}
		s.endDisplay()
		return false
	}
	s.endSession(domain.OutcomeStopped)
	return true
}

func (s *FocusService) handleTick(ctx context.Context, ev tickEvent) {
	if ev.generation != s.generation || s.session.State != domain.StateRunning {
		return
	}
	s.metrics.TickObserved(ctx)

	if ev.finished {
		s.session.Observe(0)
		s.pushDisplay(false)
		s.endSession(domain.OutcomeCompleted)
		return
	}

	s.session.Observe(ev.remaining)
	s.pushDisplay(false)
}

// endSession tears down a live session and hands its record to listeners.
func (s *FocusService) endSession(outcome domain.Outcome) {
	s.cancelScheduler()
	record := domain.NewSessionRecord(s.session, outcome, s.clock.Now())
	s.session.Reset()
	s.endDisplay()

	select {
	case s.records <- record:
	default:
		s.logger.Warn("dropping session record, listeners are behind",
			slog.String("session", record.ID))
	}
}

func (s *FocusService) startScheduler() {
	s.cancelScheduler()
	gen := s.generation
	s.scheduler = StartTickScheduler(s.clock, s.session.Remaining, domain.TickPeriod,
		func(ctx context.Context, remaining time.Duration) {
			s.sendTick(ctx, tickEvent{generation: gen, remaining: remaining})
		},
		func(ctx context.Context) {
			s.sendTick(ctx, tickEvent{generation: gen, finished: true})
		},
	)
}

func (s *FocusService) cancelScheduler() {
	if s.scheduler == nil {
		return
	}
	s.generation++
	s.scheduler.Cancel()
	s.scheduler = nil
}

func (s *FocusService) sendTick(ctx context.Context, ev tickEvent) {
	select {
	case s.ticks <- ev:
	case <-ctx.Done():
	}
}

// pushDisplay renders the session and sends it to the display host. A
// display that never began successfully is begun again instead of updated.
func (s *FocusService) pushDisplay(begin bool) {
	content := domain.Render(s.session, s.config.Location)
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DisplayTimeout)
	defer cancel()

	if begin || !s.displayActive {
		if err := s.display.Begin(ctx, content); err != nil {
			s.displayFailed(ctx, "begin", err)
			return
		}
		s.displayActive = true
		return
	}
	if err := s.display.Update(ctx, content); err != nil {
		s.displayFailed(ctx, "update", err)
	}
}

func (s *FocusService) endDisplay() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DisplayTimeout)
	defer cancel()

	s.displayActive = false
	if err := s.display.End(ctx); err != nil {
		s.displayFailed(ctx, "end", err)
	}
}

func (s *FocusService) displayFailed(ctx context.Context, op string, err error) {
	s.metrics.DisplayFailed(ctx, op)
	s.logger.Warn("display host call failed",
		slog.String("op", op),
		slog.String("error", err.Error()))
}

func (s *FocusService) detectGit(ctx context.Context) *ports.GitInfo {
	if s.git == nil {
		return nil
	}
	info, err := s.git.Detect(ctx, s.workingDir)
	if err != nil {
		s.logger.Debug("git context unavailable", slog.String("error", err.Error()))
		return nil
	}
	return info
}

func (s *FocusService) deliverRecords() {
	for record := range s.records {
		ctx, cancel := context.WithTimeout(context.Background(), listenerTimeout)
		s.metrics.SessionEnded(ctx, record)
		for _, listener := range s.listeners {
			if err := listener.SessionEnded(ctx, record); err != nil {
				s.logger.Warn("session listener failed",
					slog.String("session", record.ID),
					slog.String("error", err.Error()))
			}
		}
		cancel()
	}
}

type nopMetrics struct{}

func (nopMetrics) CommandApplied(context.Context, string, bool) {}
func (nopMetrics) TickObserved(context.Context) {}
func (nopMetrics) DisplayFailed(context.Context, string) {}
func (nopMetrics) SessionEnded(context.Context, domain.SessionRecord) {}
func (nopMetrics) Close(context.Context) error { return nil }

type nopDisplay struct{}

func (nopDisplay) Begin(context.Context, domain.Content) error { return nil }
func (nopDisplay) Update(context.Context, domain.Content) error { return nil }
func (nopDisplay) End(context.Context) error { return nil }
