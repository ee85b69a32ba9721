package main

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"nippo/internal/backup"
	"nippo/internal/config"
	"nippo/internal/form"
	"nippo/internal/importer"
	"nippo/internal/logging"
	"nippo/internal/storage"
)

var testNow = time.Date(2024, 1, 16, 18, 0, 0, 0, time.UTC)

func createTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store := storage.New(storage.NewMemoryKV())
	store.SetNowFunc(func() time.Time { return testNow })
	return store
}

// saveReport saves a one-customer report for resultDate.
func saveReport(t *testing.T, store *storage.Storage, resultDate, customer string) {
	t.Helper()
	f := form.New(testNow)
	f.ResultDate = resultDate
	f.Results = []form.ItemDraft{{Customer: customer, Tasks: []form.TaskDraft{{Main: "Design"}}}}
	if _, err := store.SaveReport(f); err != nil {
		t.Fatalf("SaveReport(%s) error = %v", resultDate, err)
	}
}

func TestSelectExport(t *testing.T) {
	store := createTestStorage(t)
	saveReport(t, store, "2024-01-12", "Globex")
	saveReport(t, store, "2024-01-15", "Acme")

	tests := []struct {
		name     string
		id       string
		all      bool
		wantName string
		contains []string
		excludes []string
	}{
		{
			name:     "latest",
			wantName: "業務報告-2024-01-15.md",
			contains: []string{"2024/01/15実績", "Acme"},
			excludes: []string{"Globex"},
		},
		{
			name:     "by id",
			id:       "2024-01-12",
			wantName: "業務報告-2024-01-12.md",
			contains: []string{"2024/01/12実績", "Globex"},
			excludes: []string{"Acme"},
		},
		{
			name:     "all",
			all:      true,
			wantName: "business-reports-2024-01-16.md",
			contains: []string{"Acme", storage.ReportSeparator, "Globex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := selectExport(store, tt.id, tt.all, testNow)
			if err != nil {
				t.Fatalf("selectExport() error = %v", err)
			}
			if sel.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", sel.Name, tt.wantName)
			}
			for _, want := range tt.contains {
				if !strings.Contains(sel.Text, want) {
					t.Errorf("Text missing %q", want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(sel.Text, unwanted) {
					t.Errorf("Text should not contain %q", unwanted)
				}
			}
		})
	}

	if sel, _ := selectExport(store, "", true, testNow); strings.Index(sel.Text, "Acme") > strings.Index(sel.Text, "Globex") {
		t.Error("--all should list the newest report first")
	}
}

func TestSelectExport_Errors(t *testing.T) {
	store := createTestStorage(t)

	if _, err := selectExport(store, "", false, testNow); !errors.Is(err, errNoReports) {
		t.Errorf("empty store error = %v, want errNoReports", err)
	}

	saveReport(t, store, "2024-01-15", "Acme")
	if _, err := selectExport(store, "2023-12-31", false, testNow); !errors.Is(err, storage.ErrReportNotFound) {
		t.Errorf("unknown id error = %v, want ErrReportNotFound", err)
	}
	if _, err := selectExport(store, "2024-01-15", true, testNow); err == nil {
		t.Error("--id with --all should be rejected")
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		output string
		save   bool
		want   string
	}{
		{"file", filepath.Join(dir, "out.md"), false, filepath.Join(dir, "out.md")},
		{"directory", dir, false, filepath.Join(dir, "report.md")},
		{"save", "", true, filepath.Join("exports", "report.md")},
		{"output wins over save", filepath.Join(dir, "x.md"), true, filepath.Join(dir, "x.md")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, "exports", "report.md", tt.save); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteOutput_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "report.md")

	if err := writeOutput(path, []byte("- 2024/01/15実績\n")); err != nil {
		t.Fatalf("writeOutput() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "- 2024/01/15実績\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestListReports(t *testing.T) {
	store := createTestStorage(t)
	saveReport(t, store, "2024-01-15", "Acme")
	reports, err := store.Reports()
	if err != nil {
		t.Fatalf("Reports() error = %v", err)
	}

	var buf bytes.Buffer
	listReports(&buf, reports, testNow.Add(3*time.Hour))

	out := buf.String()
	for _, want := range []string{"Saved reports (1)", "2024-01-15", "2024/01/15実績", "2024/01/16以降の予定", "1実績/0予定", "3 hours ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	listReports(&buf, nil, testNow)
	if !strings.Contains(buf.String(), "No saved reports") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestListBackups(t *testing.T) {
	backups := []backup.BackupInfo{
		{
			Name:      "2024-01-16_120000_000",
			CreatedAt: testNow.Add(-6 * time.Hour),
			Stats:     map[string]int{"reports": 3, "customers": 2, "tasks": 5},
			Size:      2048,
		},
	}

	var buf bytes.Buffer
	listBackups(&buf, backups, testNow)

	out := buf.String()
	for _, want := range []string{"2024-01-16_120000_000", "6 hours ago", "2.0 kB", "Reports: 3, Customers: 2, Tasks: 5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	listBackups(&buf, nil, testNow)
	if !strings.Contains(buf.String(), "nippo backup") {
		t.Errorf("empty output = %q, want a hint", buf.String())
	}
}

func TestDescribeImport(t *testing.T) {
	tests := []struct {
		kind string
		r    importer.Result
		want string
	}{
		{"settings", importer.Result{Customers: 2, Tasks: 7}, "2 customers, 7 tasks"},
		{
			"report",
			importer.Result{ResultDate: "2024-01-15", PlanDate: "2024-01-16", Results: 2, Plans: 1},
			"2024/01/15実績: 2 customers / 2024/01/16以降の予定: 1 customers",
		},
		{
			"report",
			importer.Result{PlanDate: "2024-01-16", Plans: 1},
			"(no date)実績: 0 customers / 2024/01/16以降の予定: 1 customers",
		},
	}

	for _, tt := range tests {
		if got := describeImport(tt.kind, &tt.r); got != tt.want {
			t.Errorf("describeImport(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestImportArgs(t *testing.T) {
	if got := importArgs("s.json", true); !reflect.DeepEqual(got, []string{"--yes", "s.json"}) {
		t.Errorf("importArgs(yes) = %v", got)
	}
	if got := importArgs("s.json", false); !reflect.DeepEqual(got, []string{"s.json"}) {
		t.Errorf("importArgs(no) = %v", got)
	}
}

func TestSettingsFileName(t *testing.T) {
	if got := settingsFileName(testNow); got != "business-report-settings-2024-01-16.json" {
		t.Errorf("settingsFileName() = %q", got)
	}
}

func TestStartLogging(t *testing.T) {
	out, prefix, flags := log.Writer(), log.Prefix(), log.Flags()
	debugWas := logging.DebugEnabled()
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetPrefix(prefix)
		log.SetFlags(flags)
		logging.SetDebug(debugWas)
	})

	cfg := &config.Config{DataDir: t.TempDir()}

	logging.SetDebug(false)
	f, err := startLogging(cfg, false)
	if err != nil || f != nil {
		t.Fatalf("startLogging(false) = %v, %v, want nil file", f, err)
	}

	f, err = startLogging(cfg, true)
	if err != nil {
		t.Fatalf("startLogging(true) error = %v", err)
	}
	logging.Debug("ui", "key %s", "ctrl+s")
	f.Close()

	if !logging.DebugEnabled() {
		t.Error("--debug should enable Debug output")
	}
	data, err := os.ReadFile(debugLogPath(cfg))
	if err != nil {
		t.Fatalf("debug log missing: %v", err)
	}
	if !strings.Contains(string(data), "[ui] key ctrl+s") {
		t.Errorf("debug log = %q", data)
	}
}

func TestPickBackup(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(dir, storage.BackendFile)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	store.SetNowFunc(func() time.Time { return testNow })
	saveReport(t, store, "2024-01-15", "Acme")

	manager := backup.NewManager(dir, "test")
	if _, err := pickBackup(manager, "", true); !errors.Is(err, backup.ErrNoBackups) {
		t.Errorf("latest with no backups error = %v, want ErrNoBackups", err)
	}

	manager.SetNowFunc(func() time.Time { return testNow.Add(-time.Hour) })
	older, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	manager.SetNowFunc(func() time.Time { return testNow })
	newer, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	info, err := pickBackup(manager, "", true)
	if err != nil || info.Name != newer {
		t.Errorf("pickBackup(latest) = %v, %v, want %s", info, err, newer)
	}
	info, err = pickBackup(manager, older, false)
	if err != nil || info.Name != older {
		t.Errorf("pickBackup(%s) = %v, %v", older, info, err)
	}
	if info.Stats["reports"] != 1 || !hasFile(info.Files, "data.json") {
		t.Errorf("backup info = %+v, want one report in data.json", info)
	}
	if _, err := pickBackup(manager, "../data.json", false); err == nil {
		t.Error("pickBackup() accepted a path as a name")
	}
}

func TestDescribeRestore(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		contains []string
		excludes []string
	}{
		{
			name:  "json backup without session",
			files: []string{"data.json", "theme.json"},
			contains: []string{
				"Replaces: saved reports and suggestion history, theme",
				"Keeps:    the form in progress",
			},
			excludes: []string{"sqlite"},
		},
		{
			name:     "sqlite backup",
			files:    []string{"nippo.db", "nippo.db-wal"},
			contains: []string{"Replaces: the sqlite database"},
			excludes: []string{"Keeps:"},
		},
		{
			name:     "empty backup",
			contains: []string{"Replaces: nothing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &backup.BackupInfo{
				Name:      "2024-01-16_120000_000",
				CreatedAt: testNow.Add(-6 * time.Hour),
				Stats:     map[string]int{"reports": 3, "customers": 2, "tasks": 5},
				Size:      2048,
				Files:     tt.files,
			}

			var buf bytes.Buffer
			describeRestore(&buf, info, testNow)

			out := buf.String()
			want := append([]string{"Backup 2024-01-16_120000_000", "6 hours ago", "Reports: 3, Customers: 2, Tasks: 5", "2.0 kB"}, tt.contains...)
			for _, s := range want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestBackendWarning(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		backend string
		want    bool
	}{
		{"json on file", []string{"data.json"}, storage.BackendFile, false},
		{"json on default", []string{"data.json"}, "", false},
		{"json on sqlite", []string{"data.json", "theme.json"}, storage.BackendSQLite, true},
		{"sqlite on sqlite", []string{"nippo.db"}, storage.BackendSQLite, false},
		{"sqlite on file", []string{"nippo.db", "nippo.db-wal"}, storage.BackendFile, true},
		{"both", []string{"data.json", "nippo.db"}, storage.BackendFile, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backendWarning(tt.files, tt.backend); (got != "") != tt.want {
				t.Errorf("backendWarning() = %q, want warning %v", got, tt.want)
			}
		})
	}
}
