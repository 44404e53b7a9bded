// Package colstate owns column visibility and width state, including the
// interactive resize arithmetic, and pushes visibility changes to an
// external preference store.
package colstate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/grid/state"
)

const (
	// MinWidthFloor is the narrowest any column may become.
	MinWidthFloor = 40
	// DefaultWidth seeds columns that declare neither width nor min width.
	DefaultWidth = 150
)

// PreferenceStore persists hidden column keys per grid id. Load returns nil
// when nothing is stored.
type PreferenceStore interface {
	LoadHiddenColumns(gridID string) ([]string, error)
	SaveHiddenColumns(gridID string, hidden []string) error
}

// Bounds are the width constraints of one column. Zero MinWidth and
// MaxWidth mean unconstrained.
type Bounds struct {
	Key       string
	Width     int
	MinWidth  int
	MaxWidth  int
	Resizable bool
}

// BoundsOf extracts the width constraints of every column in cols.
func BoundsOf[T any](cols *column.Set[T]) []Bounds {
	out := make([]Bounds, 0, cols.Len())
	for _, c := range cols.Columns() {
		out = append(out, Bounds{
			Key:       c.Key,
			Width:     c.Width,
			MinWidth:  c.MinWidth,
			MaxWidth:  c.MaxWidth,
			Resizable: c.IsResizable(),
		})
	}
	return out
}

// Clamp keeps w within [max(MinWidth, MinWidthFloor), MaxWidth].
func (b Bounds) Clamp(w int) int {
	lo := max(b.MinWidth, MinWidthFloor)
	hi := math.MaxInt
	if b.MaxWidth > 0 {
		hi = max(b.MaxWidth, lo)
	}
	return min(max(w, lo), hi)
}

func (b Bounds) initialWidth() int {
	switch {
	case b.Width > 0:
		return b.Clamp(b.Width)
	case b.MinWidth > 0:
		return b.Clamp(b.MinWidth)
	}
	return b.Clamp(DefaultWidth)
}

type drag struct {
	key   string
	start int
}

// Manager holds hidden columns and widths for one grid.
type Manager struct {
	keys   []string
	bounds map[string]Bounds

	hidden *state.Value[[]string]
	widths map[string]int
	active *drag

	gridID string
	store  PreferenceStore
	writer *writer
	logger *slog.Logger

	initialHidden []string
	onChange      func([]string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore loads hidden columns for gridID at construction and saves every
// visibility change afterwards.
func WithStore(gridID string, store PreferenceStore) Option {
	return func(m *Manager) {
		m.gridID = gridID
		m.store = store
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHidden seeds the hidden set when the store has nothing saved.
func WithHidden(keys ...string) Option {
	return func(m *Manager) {
		m.initialHidden = keys
	}
}

// WithOnVisibilityChange registers the hidden-columns change callback.
func WithOnVisibilityChange(fn func([]string)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// New builds a Manager over the given column bounds.
func New(bounds []Bounds, opts ...Option) *Manager {
	m := &Manager{
		bounds: make(map[string]Bounds, len(bounds)),
		widths: make(map[string]int, len(bounds)),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, b := range bounds {
		if _, dup := m.bounds[b.Key]; dup {
			continue
		}
		m.keys = append(m.keys, b.Key)
		m.bounds[b.Key] = b
		m.widths[b.Key] = b.initialWidth()
	}
	for _, opt := range opts {
		opt(m)
	}

	hidden := m.initialHidden
	if m.store != nil {
		stored, err := m.store.LoadHiddenColumns(m.gridID)
		if err != nil {
			m.logger.Warn("failed to load hidden columns",
				slog.String("grid_id", m.gridID), slog.Any("error", err))
		} else if stored != nil {
			hidden = stored
		}
	}
	m.hidden = state.New(m.sanitize(hidden))
	m.hidden.OnChange(m.onChange)
	if m.store != nil {
		m.writer = newWriter(m.persist)
	}
	return m
}

// State exposes the hidden-columns container for Release and for reading
// the controlled flag. Use Control to hand the value to the caller.
func (m *Manager) State() *state.Value[[]string] {
	return m.hidden
}

// Control makes the caller own the hidden set. Unknown and repeated keys are
// dropped and a set that would hide every column keeps the first one
// visible, as for stored preferences.
func (m *Manager) Control(keys []string) {
	m.hidden.Control(m.sanitize(keys))
}

// Flush waits until every save requested so far has reached the store, or
// ctx is done.
func (m *Manager) Flush(ctx context.Context) error {
	if m.writer == nil {
		return nil
	}
	return m.writer.wait(ctx)
}

// Keys returns every column key in declaration order.
func (m *Manager) Keys() []string {
	return slices.Clone(m.keys)
}

// Hidden returns the hidden keys.
func (m *Manager) Hidden() []string {
	return slices.Clone(m.hidden.Get())
}

func (m *Manager) IsHidden(key string) bool {
	return slices.Contains(m.hidden.Get(), key)
}

// Visible returns the visible keys in declaration order.
func (m *Manager) Visible() []string {
	hidden := m.hidden.Get()
	out := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		if !slices.Contains(hidden, k) {
			out = append(out, k)
		}
	}
	return out
}

// Hide hides key. Hiding the last visible column or an unknown key is a
// no-op.
func (m *Manager) Hide(key string) {
	if _, ok := m.bounds[key]; !ok || m.IsHidden(key) {
		return
	}
	if len(m.Visible()) <= 1 {
		return
	}
	m.commit(append(m.Hidden(), key))
}

// Show makes key visible again.
func (m *Manager) Show(key string) {
	if !m.IsHidden(key) {
		return
	}
	m.commit(slices.DeleteFunc(m.Hidden(), func(k string) bool { return k == key }))
}

// ToggleVisibility hides a visible key or shows a hidden one.
func (m *Manager) ToggleVisibility(key string) {
	if m.IsHidden(key) {
		m.Show(key)
		return
	}
	m.Hide(key)
}

// ShowAll clears the hidden set.
func (m *Manager) ShowAll() {
	if len(m.hidden.Get()) == 0 {
		return
	}
	m.commit([]string{})
}

// Width returns the current width of key, or 0 for unknown keys.
func (m *Manager) Width(key string) int {
	return m.widths[key]
}

// Widths returns a copy of the width map.
func (m *Manager) Widths() map[string]int {
	out := make(map[string]int, len(m.widths))
	for k, v := range m.widths {
		out[k] = v
	}
	return out
}

// SetWidth clamps and stores a proposed width and returns the stored value.
func (m *Manager) SetWidth(key string, proposed int) int {
	b, ok := m.bounds[key]
	if !ok {
		return 0
	}
	w := b.Clamp(proposed)
	m.widths[key] = w
	return w
}

// ResetWidths restores every column to its declared width.
func (m *Manager) ResetWidths() {
	m.active = nil
	for k, b := range m.bounds {
		m.widths[k] = b.initialWidth()
	}
}

// BeginResize starts a drag on key, replacing any drag in progress. It
// reports false for unknown or non-resizable columns.
func (m *Manager) BeginResize(key string) bool {
	b, ok := m.bounds[key]
	if !ok || !b.Resizable {
		return false
	}
	m.active = &drag{key: key, start: m.widths[key]}
	return true
}

// Drag applies a pointer delta measured from the drag start to the column
// being resized and returns its new width. Without an active drag it
// returns 0 and changes nothing.
func (m *Manager) Drag(delta int) int {
	if m.active == nil {
		return 0
	}
	return m.SetWidth(m.active.key, m.active.start+delta)
}

// ResizeFrom applies startWidth+delta to key. While another column is being
// dragged the call is ignored and the current width returned.
func (m *Manager) ResizeFrom(key string, startWidth, delta int) int {
	if m.active != nil && m.active.key != key {
		return m.widths[key]
	}
	return m.SetWidth(key, startWidth+delta)
}

// EndResize finishes the active drag and reports the final width.
func (m *Manager) EndResize() (key string, width int, ok bool) {
	if m.active == nil {
		return "", 0, false
	}
	key = m.active.key
	m.active = nil
	return key, m.widths[key], true
}

// Resizing returns the key being dragged.
func (m *Manager) Resizing() (string, bool) {
	if m.active == nil {
		return "", false
	}
	return m.active.key, true
}

func (m *Manager) commit(hidden []string) {
	m.hidden.Set(hidden)
	m.save(slices.Clone(hidden))
}

// save hands the hidden set to the writer without waiting.
func (m *Manager) save(hidden []string) {
	if m.writer == nil {
		return
	}
	m.writer.submit(hidden)
}

// persist runs on the writer goroutine. Failures are logged and never touch
// in-memory state.
func (m *Manager) persist(hidden []string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("hidden column store panicked",
				slog.String("grid_id", m.gridID), slog.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := m.store.SaveHiddenColumns(m.gridID, hidden); err != nil {
		m.logger.Warn("failed to save hidden columns",
			slog.String("grid_id", m.gridID), slog.Any("error", err))
	}
}

// writer saves on one goroutine at a time, in request order. A request made
// while a save is in flight replaces any request still waiting, so only the
// latest hidden set is written next.
type writer struct {
	save func([]string)

	mu      sync.Mutex
	pending []string
	queued  bool
	idle    chan struct{} // closed while no goroutine is writing
}

func newWriter(save func([]string)) *writer {
	w := &writer{save: save, idle: make(chan struct{})}
	close(w.idle)
	return w
}

func (w *writer) submit(hidden []string) {
	w.mu.Lock()
	w.pending, w.queued = hidden, true
	start := false
	select {
	case <-w.idle:
		w.idle = make(chan struct{})
		start = true
	default:
	}
	w.mu.Unlock()
	if start {
		go w.run()
	}
}

func (w *writer) run() {
	for {
		w.mu.Lock()
		if !w.queued {
			close(w.idle)
			w.mu.Unlock()
			return
		}
		hidden := w.pending
		w.pending, w.queued = nil, false
		w.mu.Unlock()
		w.save(hidden)
	}
}

func (w *writer) wait(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sanitize drops unknown and repeated keys and un-hides the first column
// when every column would be hidden.
func (m *Manager) sanitize(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := m.bounds[k]; ok && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	if len(m.keys) > 0 && len(out) >= len(m.keys) {
		first := m.keys[0]
		out = slices.DeleteFunc(out, func(k string) bool { return k == first })
	}
	return out
}
