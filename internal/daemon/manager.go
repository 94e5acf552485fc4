package daemon

import (
	"container/list"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/mainloop"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
	"github.com/jmylchreest/snackbar/internal/store"
)

// Reasons reported for snackbars that never reached the screen or were
// superseded.
const (
	ReasonReplaced = "replaced"
	ReasonDropped  = "dropped"
)

// SurfaceFactory creates the surface a request is shown on.
type SurfaceFactory func(req *dbus.ShowRequest) (snackbar.Surface, error)

// SoundPlayer plays the sound for a snackbar level. An empty override means
// the configured sound.
type SoundPlayer interface {
	PlayForLevel(level, override string) error
}

// CloseCallback is called when a snackbar leaves the screen or is removed
// from the queue.
type CloseCallback func(id uint32, reason string)

// ActionCallback is called when an action is invoked.
type ActionCallback func(id uint32, actionKey string)

// entry is one request, queued or on screen.
type entry struct {
	id       uint32
	req      *dbus.ShowRequest
	record   *model.Record
	sb       *snackbar.Snackbar
	replaced bool
}

// Manager shows one snackbar at a time. Further requests queue in arrival
// order and are shown when the current one has been dismissed.
//
// Queue state belongs to the loop: public methods post onto it and may be
// called from any goroutine.
type Manager struct {
	loop    mainloop.Loop
	factory SurfaceFactory
	logger  *slog.Logger
	config  atomic.Pointer[config.DaemonConfig]

	// Ids handed out and not yet closed. Only these may be replaced.
	idMu   sync.Mutex
	nextID uint32
	live   map[uint32]struct{}

	store     *store.Store
	sounds    SoundPlayer
	events    snackbar.EventSource
	announcer snackbar.Announcer

	// Callbacks
	onClose      CloseCallback
	onAction     ActionCallback
	onSoundError func(err error)

	// Loop state
	current    *entry
	queue      *list.List               // of *entry, oldest first
	queueIndex map[uint32]*list.Element // by id
	stopped    bool

	// Snapshot of the visible snackbar for callers off the loop
	visMu      sync.RWMutex
	visibleID  uint32
	actionKeys []string
}

// NewManager creates a manager that shows snackbars on loop using surfaces
// from factory.
func NewManager(loop mainloop.Loop, factory SurfaceFactory, cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}

	m := &Manager{
		loop:       loop,
		factory:    factory,
		logger:     logger,
		queue:      list.New(),
		queueIndex: make(map[uint32]*list.Element),
		live:       make(map[uint32]struct{}),
	}
	m.config.Store(cfg)
	return m
}

// SetStore sets the history store shown snackbars are written to.
func (m *Manager) SetStore(s *store.Store) {
	m.store = s
}

// SetSounds sets the sound player.
func (m *Manager) SetSounds(p SoundPlayer) {
	m.sounds = p
}

// SetSoundErrorCallback sets the callback for sounds that failed to play.
func (m *Manager) SetSoundErrorCallback(cb func(err error)) {
	m.onSoundError = cb
}

// SetEvents sets the keyboard event source given to every snackbar.
func (m *Manager) SetEvents(src snackbar.EventSource) {
	m.events = src
}

// SetAnnouncer sets the screen reader announcer.
func (m *Manager) SetAnnouncer(a snackbar.Announcer) {
	m.announcer = a
}

// SetCloseCallback sets the callback for snackbar close events.
func (m *Manager) SetCloseCallback(cb CloseCallback) {
	m.onClose = cb
}

// SetActionCallback sets the callback for action invocation events.
func (m *Manager) SetActionCallback(cb ActionCallback) {
	m.onAction = cb
}

// UpdateConfig applies a reloaded configuration to snackbars shown from now on.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	if cfg == nil {
		return
	}
	m.config.Store(cfg)
	m.logger.Debug("display manager config updated")
}

// Show queues req and returns its id. A request replacing the visible
// snackbar closes it and is shown next; one replacing a queued request
// takes its place. A replaces id that is not visible or queued gets a
// fresh id.
func (m *Manager) Show(req *dbus.ShowRequest) uint32 {
	id := m.allocateID(req.ReplacesID)
	m.loop.Post(func() { m.show(id, req) })
	return id
}

func (m *Manager) allocateID(replaces uint32) uint32 {
	m.idMu.Lock()
	defer m.idMu.Unlock()

	if _, ok := m.live[replaces]; ok && replaces != 0 {
		return replaces
	}
	for {
		m.nextID++
		if _, taken := m.live[m.nextID]; m.nextID != 0 && !taken {
			break
		}
	}
	m.live[m.nextID] = struct{}{}
	return m.nextID
}

// retain marks id as open. A replacement may run after the snackbar it
// replaces has already closed.
func (m *Manager) retain(id uint32) {
	m.idMu.Lock()
	m.live[id] = struct{}{}
	m.idMu.Unlock()
}

func (m *Manager) release(id uint32) {
	m.idMu.Lock()
	delete(m.live, id)
	m.idMu.Unlock()
}

// Dismiss starts the exit animation of the visible snackbar with id, or
// removes it from the queue.
func (m *Manager) Dismiss(id uint32) {
	m.loop.Post(func() {
		if m.current != nil && m.current.id == id {
			m.current.sb.Dismiss()
			return
		}
		if elem, ok := m.queueIndex[id]; ok {
			m.removeQueued(elem)
			m.logger.Debug("queued snackbar dismissed", "id", id)
			m.emitClose(id, snackbar.ReasonManual.String())
		}
	})
}

// InvokeAction presses the action with actionKey on the visible snackbar.
// It reports false when id is not on screen or has no such action.
func (m *Manager) InvokeAction(id uint32, actionKey string) bool {
	m.visMu.RLock()
	index := -1
	if m.visibleID == id && id != 0 {
		for i, key := range m.actionKeys {
			if key == actionKey {
				index = i
				break
			}
		}
	}
	m.visMu.RUnlock()
	if index < 0 {
		return false
	}

	m.loop.Post(func() {
		if m.current == nil || m.current.id != id {
			return
		}
		if index == 0 {
			m.current.sb.TriggerAction()
		} else {
			m.current.sb.TriggerSecondAction()
		}
	})
	return true
}

// Visible returns the id of the snackbar on screen.
func (m *Manager) Visible() (uint32, bool) {
	m.visMu.RLock()
	defer m.visMu.RUnlock()
	return m.visibleID, m.visibleID != 0
}

// QueueLen returns the number of waiting requests. Call it on the loop.
func (m *Manager) QueueLen() int {
	return m.queue.Len()
}

// CloseAll drops the queue and closes the visible snackbar without animation.
func (m *Manager) CloseAll() {
	m.loop.Post(m.closeAll)
}

// Stop closes everything and refuses further requests. The returned channel
// is closed once teardown has run on the loop.
func (m *Manager) Stop() <-chan struct{} {
	done := make(chan struct{})
	m.loop.Post(func() {
		m.stopped = true
		m.closeAll()
		// Close posts the teardown; signal after it
		m.loop.Post(func() { close(done) })
		m.logger.Info("display manager stopped")
	})
	return done
}

func (m *Manager) closeAll() {
	for m.queue.Len() > 0 {
		e := m.removeQueued(m.queue.Front())
		m.emitClose(e.id, snackbar.ReasonClosed.String())
	}
	if m.current != nil {
		m.current.sb.Close()
	}
}

func (m *Manager) show(id uint32, req *dbus.ShowRequest) {
	if m.stopped {
		m.logger.Debug("snackbar rejected: manager stopped", "id", id)
		m.release(id)
		return
	}
	m.retain(id)

	e := &entry{id: id, req: req}

	if m.current != nil && m.current.id == id {
		m.current.replaced = true
		m.pushFront(e)
		m.current.sb.Close()
		m.logger.Debug("replacing visible snackbar", "id", id)
		return
	}

	if elem, ok := m.queueIndex[id]; ok {
		elem.Value.(*entry).req = req
		m.logger.Debug("replaced queued snackbar", "id", id)
		return
	}

	if m.current == nil {
		m.display(e)
		return
	}

	m.queueIndex[id] = m.queue.PushBack(e)
	m.logger.Debug("snackbar queued", "id", id, "queue_length", m.queue.Len())

	if limit := m.config.Load().Behavior.QueueLength; limit > 0 && m.queue.Len() > limit {
		dropped := m.removeQueued(m.queue.Front())
		m.logger.Warn("snackbar queue full, dropping oldest", "id", dropped.id, "limit", limit)
		m.emitClose(dropped.id, ReasonDropped)
	}
}

func (m *Manager) pushFront(e *entry) {
	if elem, ok := m.queueIndex[e.id]; ok {
		m.queue.Remove(elem)
	}
	m.queueIndex[e.id] = m.queue.PushFront(e)
}

func (m *Manager) removeQueued(elem *list.Element) *entry {
	e := m.queue.Remove(elem).(*entry)
	delete(m.queueIndex, e.id)
	return e
}

// showNext displays the oldest queued request once the screen is free.
func (m *Manager) showNext() {
	for !m.stopped && m.current == nil && m.queue.Len() > 0 {
		m.display(m.removeQueued(m.queue.Front()))
	}
}

// display builds and shows the snackbar for e. Failures are reported as a
// closed snackbar so that callers waiting on the id are released.
func (m *Manager) display(e *entry) {
	cfg := m.config.Load()
	req := e.req

	surface, err := m.factory(req)
	if err != nil {
		m.logger.Error("failed to create snackbar surface", "id", e.id, "error", err)
		m.emitClose(e.id, snackbar.ReasonClosed.String())
		return
	}

	e.record = m.newRecord(e.id, req, cfg)
	e.sb = snackbar.New(req.Message, req.Duration, m.snackbarOptions(e, surface, cfg)...)
	e.sb.OnDismiss(func(reason snackbar.DismissReason) {
		m.handleDismissed(e, reason)
	})

	m.current = e
	m.setVisible(e)

	if err := e.sb.Show(); err != nil {
		m.logger.Error("failed to show snackbar", "id", e.id, "error", err)
		m.current = nil
		m.setVisible(nil)
		surface.Detach()
		m.emitClose(e.id, snackbar.ReasonClosed.String())
		return
	}

	m.persist(e)
	m.playSound(req)

	m.logger.Info("snackbar shown",
		"id", e.id,
		"level", req.Level,
		"duration", req.Duration,
		"style", e.sb.Style(),
	)
}

func (m *Manager) snackbarOptions(e *entry, surface snackbar.Surface, cfg *config.DaemonConfig) []snackbar.Option {
	req := e.req
	opts := append(cfg.SnackbarOptions(),
		snackbar.WithLoop(m.loop),
		snackbar.WithSurface(surface),
		snackbar.WithLogger(m.logger.With("id", e.id)),
	)

	if req.Icon != "" {
		opts = append(opts, snackbar.WithIcon(req.Icon))
	}
	if req.HasStyle {
		opts = append(opts, snackbar.WithStyle(req.Style))
	}
	if req.DismissOnSwipe != nil {
		opts = append(opts, snackbar.WithDismissOnSwipe(*req.DismissOnSwipe))
	}
	if req.DismissOnTap != nil {
		opts = append(opts, snackbar.WithDismissOnTap(*req.DismissOnTap))
	}
	if m.events != nil {
		opts = append(opts, snackbar.WithEvents(m.events))
	}
	if m.announcer != nil && cfg.Accessibility.Announce {
		opts = append(opts, snackbar.WithAnnouncer(m.announcer))
	}

	for i, action := range req.Actions {
		key := action.Key
		invoke := func() { m.handleAction(e, key) }
		switch i {
		case 0:
			opts = append(opts, snackbar.WithAction(action.Label, invoke))
		case 1:
			opts = append(opts, snackbar.WithSecondAction(action.Label, invoke))
		}
	}
	return opts
}

func (m *Manager) newRecord(id uint32, req *dbus.ShowRequest, cfg *config.DaemonConfig) *model.Record {
	record, err := model.NewRecord(req.Message)
	if err != nil {
		m.logger.Warn("failed to create history record", "id", id, "error", err)
		return nil
	}

	style := cfg.Style()
	if req.HasStyle {
		style = req.Style
	}

	record.DBusID = id
	record.Sender = req.Sender
	record.Icon = req.Icon
	record.Actions = append([]model.Action(nil), req.Actions...)
	record.Duration = req.Duration.String()
	record.Style = style.String()
	record.Level = model.NormalizeLevel(req.Level)
	return record
}

func (m *Manager) handleAction(e *entry, actionKey string) {
	m.logger.Debug("snackbar action invoked", "id", e.id, "action_key", actionKey)
	if e.record != nil {
		e.record.InvokedAction = actionKey
		m.persist(e)
	}
	if m.onAction != nil {
		m.onAction(e.id, actionKey)
	}
}

// handleDismissed runs on the loop when a snackbar reaches Dismissed.
func (m *Manager) handleDismissed(e *entry, reason snackbar.DismissReason) {
	if m.current == e {
		m.current = nil
		m.setVisible(nil)
	}

	reasonName := reason.String()
	if e.replaced {
		reasonName = ReasonReplaced
	}
	if e.record != nil {
		e.record.MarkDismissed(reasonName)
		m.persist(e)
	}

	m.logger.Debug("snackbar closed", "id", e.id, "reason", reasonName)

	// The replacement carries the same id, so waiting clients see only its
	// dismissal.
	if !e.replaced {
		m.emitClose(e.id, reasonName)
	}

	// The surface may be shared with the next snackbar; show it after the
	// dismissed one has detached.
	m.loop.Post(m.showNext)
}

func (m *Manager) setVisible(e *entry) {
	m.visMu.Lock()
	defer m.visMu.Unlock()

	m.visibleID = 0
	m.actionKeys = nil
	if e == nil {
		return
	}
	m.visibleID = e.id
	for _, action := range e.req.Actions {
		m.actionKeys = append(m.actionKeys, action.Key)
	}
}

func (m *Manager) persist(e *entry) {
	if m.store == nil || e.record == nil || e.req.Transient {
		return
	}
	if err := m.store.Put(*e.record); err != nil {
		m.logger.Warn("failed to persist snackbar", "id", e.id, "error", err)
	}
}

func (m *Manager) playSound(req *dbus.ShowRequest) {
	if m.sounds == nil || req.SuppressSound {
		return
	}
	if err := m.sounds.PlayForLevel(req.Level, req.SoundFile); err != nil {
		m.logger.Warn("failed to play sound", "level", req.Level, "error", err)
		if m.onSoundError != nil {
			m.onSoundError(err)
		}
	}
}

func (m *Manager) emitClose(id uint32, reason string) {
	m.release(id)
	if m.onClose != nil {
		m.onClose(id, reason)
	}
}
