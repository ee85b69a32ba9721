package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"nippo/internal/form"
	"nippo/internal/history"
	"nippo/internal/logging"
)

var (
	// ErrReportNotFound is returned when no saved report has the given ID.
	ErrReportNotFound = errors.New("report not found")
	// ErrNothingToSave is returned by SaveReport when the form renders to
	// an empty report.
	ErrNothingToSave = errors.New("nothing to save")
)

// ReportSeparator joins reports in a bulk export.
const ReportSeparator = "\n\n---\n\n"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// SQLiteFile is the database file name used by the sqlite backend.
const SQLiteFile = "nippo.db"

// Storage is the application context: it owns the KV and implements every
// read-modify-write operation on the stored documents.
type Storage struct {
	kv      KV
	dataDir string
	now     func() time.Time // injectable clock for deterministic tests
}

// New wraps an existing KV.
func New(kv KV) *Storage {
	return &Storage{kv: kv, now: time.Now}
}

// Open creates the KV for backend inside dataDir.
func Open(dataDir, backend string) (*Storage, error) {
	var (
		kv  KV
		err error
	)
	switch backend {
	case "", BackendFile:
		kv, err = NewFileKV(dataDir)
	case BackendSQLite:
		kv, err = NewSQLiteKV(filepath.Join(dataDir, SQLiteFile))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s or %s)", backend, BackendFile, BackendSQLite)
	}
	if err != nil {
		return nil, err
	}

	s := New(kv)
	s.dataDir = dataDir
	return s, nil
}

// Close releases the underlying KV.
func (s *Storage) Close() error {
	return s.kv.Close()
}

// DataDir returns the directory passed to Open, or "" for a bare KV.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// SetNowFunc overrides the clock used by time-dependent storage operations.
// Passing nil resets it to time.Now.
func (s *Storage) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// Now returns the current time according to the storage clock.
func (s *Storage) Now() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Storage) getJSON(key string, v any) error {
	data, err := s.kv.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

func (s *Storage) setJSON(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", key, err)
	}
	return s.kv.Set(key, data)
}

// ============================================================================
// Data
// ============================================================================

// LoadData reads history and reports. A missing document yields empty data.
// A corrupt one also yields empty data together with the error describing
// what happened, so callers can warn and carry on.
func (s *Storage) LoadData() (*Data, error) {
	d := &Data{}
	err := s.getJSON(KeyData, d)
	if err != nil {
		d = &Data{}
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
	}
	d.normalize()
	return d, err
}

// loadForUpdate is LoadData for read-modify-write callers: a corrupt
// document is logged, copied aside and replaced by empty data.
func (s *Storage) loadForUpdate() (*Data, error) {
	d, err := s.LoadData()
	if errors.Is(err, ErrCorrupt) {
		logging.Warn("storage", "%v", err)
		if err := s.keepCorrupt(KeyData); err != nil {
			return nil, err
		}
		return d, nil
	}
	return d, err
}

// CorruptKey names the copy of key kept when its value failed to parse.
func CorruptKey(key string, t time.Time) string {
	return fmt.Sprintf("%s.corrupt.%s", key, t.UTC().Format("20060102-150405"))
}

// keepCorrupt copies the raw value of key to CorruptKey before the caller
// overwrites it. FileKV has already moved the broken file aside, so a
// missing value is not an error.
func (s *Storage) keepCorrupt(key string) error {
	raw, err := s.kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return fmt.Errorf("read corrupt %s: %w", key, err)
	}
	if raw == nil {
		return nil
	}

	copyKey := CorruptKey(key, s.Now())
	if err := s.kv.Set(copyKey, raw); err != nil {
		return fmt.Errorf("keep corrupt %s: %w", key, err)
	}
	logging.Warn("storage", "unreadable %s copied to %s", key, copyKey)
	return nil
}

// SaveData writes history and reports, keeping reports sorted.
func (s *Storage) SaveData(d *Data) error {
	d.normalize()
	sortReports(d.Reports)
	return s.setJSON(KeyData, d)
}

func sortReports(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].ResultDate > reports[j].ResultDate
	})
}

// SaveReport stores the rendered form under its result date, records usage
// for every customer and task in it, then snapshots the session.
func (s *Storage) SaveReport(f *form.Form) (*Report, error) {
	markdown := f.Render()
	if strings.TrimSpace(markdown) == "" {
		return nil, ErrNothingToSave
	}

	d, err := s.loadForUpdate()
	if err != nil {
		return nil, err
	}

	now := s.Now()
	r := Report{
		ID:         f.ResultDate,
		ResultDate: f.ResultDate,
		PlanDate:   f.PlanDate,
		Results:    f.Extract(form.Results),
		Plans:      f.Extract(form.Plans),
		Markdown:   markdown,
		Created:    now,
	}

	replaced := false
	for i := range d.Reports {
		if d.Reports[i].ID == r.ID {
			d.Reports[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		d.Reports = append(d.Reports, r)
	}

	history.RecordUsage(&d.History, r.Results, now)
	history.RecordUsage(&d.History, r.Plans, now)

	if err := s.SaveData(d); err != nil {
		return nil, err
	}
	if err := s.SaveSession(f); err != nil {
		return nil, err
	}

	logging.Debug("storage", "saved report %s (%d results, %d plans)", r.ID, len(r.Results), len(r.Plans))
	return &r, nil
}

// Reports returns saved reports, newest result date first.
func (s *Storage) Reports() ([]Report, error) {
	d, err := s.LoadData()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return nil, err
	}
	return d.Reports, err
}

// GetReport returns the report saved for id.
func (s *Storage) GetReport(id string) (*Report, error) {
	d, err := s.loadForUpdate()
	if err != nil {
		return nil, err
	}
	for i := range d.Reports {
		if d.Reports[i].ID == id {
			return &d.Reports[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
}

// DeleteReport removes the report saved for id.
func (s *Storage) DeleteReport(id string) error {
	d, err := s.loadForUpdate()
	if err != nil {
		return err
	}

	kept := d.Reports[:0]
	found := false
	for _, r := range d.Reports {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	d.Reports = kept
	return s.SaveData(d)
}

// ExportReports joins the text of every saved report, newest first.
func (s *Storage) ExportReports() (string, error) {
	reports, err := s.Reports()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return "", err
	}
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		parts = append(parts, r.Markdown)
	}
	return strings.Join(parts, ReportSeparator), nil
}

// ============================================================================
// History
// ============================================================================

// History returns the suggestion lists.
func (s *Storage) History() (*history.History, error) {
	d, err := s.LoadData()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return nil, err
	}
	return &d.History, err
}

// SelectCustomer records that name was picked from the suggestion popup.
// Unknown names are ignored.
func (s *Storage) SelectCustomer(name string) error {
	return s.updateHistory(func(h *history.History, now time.Time) bool {
		return h.MarkCustomerSelected(name, now)
	})
}

// SelectTask records that text was picked from the suggestion popup.
func (s *Storage) SelectTask(text string) error {
	return s.updateHistory(func(h *history.History, now time.Time) bool {
		return h.MarkTaskSelected(text, now)
	})
}

func (s *Storage) updateHistory(fn func(h *history.History, now time.Time) bool) error {
	d, err := s.loadForUpdate()
	if err != nil {
		return err
	}
	if !fn(&d.History, s.Now()) {
		return nil
	}
	return s.SaveData(d)
}

// ExportSettings returns the history as settings JSON.
func (s *Storage) ExportSettings() ([]byte, error) {
	h, err := s.History()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return nil, err
	}
	return history.EncodeSettings(h)
}

// ImportSettings validates data and, only if it is entirely valid, replaces
// both suggestion lists. Saved reports are kept.
func (s *Storage) ImportSettings(data []byte) (*history.History, error) {
	h, err := history.DecodeSettings(data)
	if err != nil {
		return nil, err
	}

	d, err := s.loadForUpdate()
	if err != nil {
		return nil, err
	}
	d.History = *h
	if err := s.SaveData(d); err != nil {
		return nil, err
	}
	logging.Info("storage", "imported %d customers and %d tasks", len(h.Customers), len(h.Tasks))
	return h, nil
}

// ============================================================================
// Session
// ============================================================================

// SaveSession snapshots the form so it can be restored on the next start.
func (s *Storage) SaveSession(f *form.Form) error {
	return s.setJSON(KeySession, f.Session(s.Now()))
}

// LoadSession returns the last saved snapshot, or nil when there is none.
// A snapshot that cannot be read is logged and discarded.
func (s *Storage) LoadSession() *form.Session {
	var sess form.Session
	err := s.getJSON(KeySession, &sess)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		logging.Warn("storage", "discarding saved session: %v", err)
		_ = s.kv.Delete(KeySession)
		return nil
	}
	return &sess
}

// ClearSession forgets the saved snapshot.
func (s *Storage) ClearSession() error {
	return s.kv.Delete(KeySession)
}

// ============================================================================
// Theme
// ============================================================================

// Theme returns the saved theme, defaulting to light.
func (s *Storage) Theme() Theme {
	var t Theme
	if err := s.getJSON(KeyTheme, &t); err != nil || !t.Valid() {
		return ThemeLight
	}
	return t
}

// SetTheme persists the theme.
func (s *Storage) SetTheme(t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("invalid theme %q: must be %s or %s", t, ThemeLight, ThemeDark)
	}
	return s.setJSON(KeyTheme, t)
}
