package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/selfcheck/datacard/internal/configs"
)

// TimestampLayout is the format of Entry.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Operation names recorded in the history.
const (
	OpExport = "export"
	OpImport = "import"
)

// Entry represents a single history entry.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	UserUUID  string `json:"uuid"` // Installation UUID.
	Operation string `json:"op"`

	CardID       string   `json:"card_id,omitempty"`
	ImagePath    string   `json:"image,omitempty"`
	Files        []string `json:"files,omitempty"`
	Encrypted    bool     `json:"encrypted,omitempty"`
	PayloadBytes int      `json:"payload_bytes,omitempty"`
	Version      string   `json:"version,omitempty"`
	DryRun       bool     `json:"dry_run,omitempty"`
}

// Log appends an entry to the history file.
// Failures are ignored: exporting or importing a card never fails because
// the history could not be written.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampLayout)
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry with the installation UUID filled in.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op}

	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return entry
	}
	entry.UserUUID = userConfig.User.UUID

	return entry
}

// LogPath returns the path to the history file.
// Returns empty string if no data directory is known.
func LogPath() string {
	if configs.UserDatacardSettings == nil || configs.UserDatacardSettings.UserDataPath == "" {
		return ""
	}
	return filepath.Join(configs.UserDatacardSettings.UserDataPath, "history.jsonl")
}

// ReadEntries reads all entries from the history file.
// Returns an empty slice if the file doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
