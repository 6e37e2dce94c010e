package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/selfcheck/datacard/internal/configs"
)

// useTempDataDir points the history at a fresh directory.
func useTempDataDir(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	original := configs.UserDatacardSettings
	configs.UserDatacardSettings = &configs.UserSettings{
		UserConfigsPath: filepath.Join(tempDir, "config"),
		UserDataPath:    filepath.Join(tempDir, "data"),
		Username:        "testuser",
	}
	t.Cleanup(func() {
		configs.UserDatacardSettings = original
	})
	return filepath.Join(tempDir, "data", "history.jsonl")
}

func TestLog_CreatesFile(t *testing.T) {
	logPath := useTempDataDir(t)

	Log(Entry{UserUUID: "test-uuid", Operation: OpExport, Files: []string{".env"}})

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("history file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("history permissions = %o, want 600", perm)
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	useTempDataDir(t)

	Log(Entry{Operation: OpExport, CardID: "a"})
	Log(Entry{Operation: OpImport, CardID: "a"})
	Log(Entry{Operation: OpExport, CardID: "b"})

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	wantOps := []string{OpExport, OpImport, OpExport}
	for i, e := range entries {
		if e.Operation != wantOps[i] {
			t.Errorf("entry %d op = %q, want %q", i, e.Operation, wantOps[i])
		}
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	useTempDataDir(t)

	Log(Entry{Operation: OpExport})

	entries, err := ReadEntries()
	if err != nil || len(entries) != 1 {
		t.Fatalf("ReadEntries() = %v, %v", entries, err)
	}
	ts, err := time.Parse(TimestampLayout, entries[0].Timestamp)
	if err != nil {
		t.Fatalf("timestamp %q does not parse: %v", entries[0].Timestamp, err)
	}
	if time.Since(ts) > time.Minute {
		t.Errorf("timestamp %v is not recent", ts)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	logPath := useTempDataDir(t)

	Log(Entry{UserUUID: "u", Operation: OpImport})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &raw); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	for _, key := range []string{"card_id", "image", "files", "encrypted", "payload_bytes", "version", "dry_run"} {
		if _, ok := raw[key]; ok {
			t.Errorf("empty field %q should be omitted", key)
		}
	}
	for _, key := range []string{"ts", "uuid", "op"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("field %q missing", key)
		}
	}
}

func TestLog_NoDataPath(t *testing.T) {
	original := configs.UserDatacardSettings
	configs.UserDatacardSettings = &configs.UserSettings{}
	defer func() { configs.UserDatacardSettings = original }()

	if got := LogPath(); got != "" {
		t.Errorf("LogPath() = %q, want empty", got)
	}
	// Must not panic.
	Log(Entry{Operation: OpExport})
}

func TestReadEntries_Missing(t *testing.T) {
	useTempDataDir(t)

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"Valid", `{"ts":"2024-01-01T00:00:00.000000Z","op":"export"}` + "\n" + `{"op":"import"}` + "\n", 2},
		{"SkipsMalformedLines", `{"op":"export"}` + "\nnot json\n" + `{"op":"import"}`, 2},
		{"BlankLines", "\n\n" + `{"op":"export"}` + "\n\n", 1},
		{"Empty", "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := ParseEntries([]byte(tc.data))
			if err != nil {
				t.Fatalf("ParseEntries failed: %v", err)
			}
			if len(entries) != tc.want {
				t.Errorf("got %d entries, want %d", len(entries), tc.want)
			}
		})
	}
}

func TestLogWithUser(t *testing.T) {
	useTempSettingsWithUUID(t, "0b0e9c1c-8d1b-4c6a-9c49-7b7d3c1f2a10")

	entry := LogWithUser(OpExport)
	if entry.Operation != OpExport {
		t.Errorf("Operation = %q", entry.Operation)
	}
	if entry.UserUUID != "0b0e9c1c-8d1b-4c6a-9c49-7b7d3c1f2a10" {
		t.Errorf("UserUUID = %q", entry.UserUUID)
	}
}

func useTempSettingsWithUUID(t *testing.T, id string) {
	t.Helper()
	useTempDataDir(t)
	cfg := configs.DefaultUserConfig()
	cfg.User.UUID = id
	if err := configs.SaveUserConfig(cfg); err != nil {
		t.Fatalf("SaveUserConfig failed: %v", err)
	}
}
