package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	// GenesisHash anchors the chain before the first event.
	GenesisHash = "sha256:genesis"

	// HashPrefix is prepended to every hash value.
	HashPrefix = "sha256:"
)

// FileWriter appends hash-chained events to a JSONL file. One line per
// event, fsynced before Write returns: a remote key usage that was reported
// as logged must survive a crash.
type FileWriter struct {
	mu       sync.Mutex
	file     *os.File
	lastHash string
	path     string
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter opens (or creates) the audit log at path in append mode.
// When the file already holds events, the chain resumes from the last
// event's hash rather than restarting at genesis.
func NewFileWriter(path string) (*FileWriter, error) {
	lastHash, err := resumeHash(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resume audit chain: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &FileWriter{
		file:     file,
		lastHash: lastHash,
		path:     path,
	}, nil
}

// resumeHash returns the hash of the last event in an existing log, or
// GenesisHash when the file is missing or empty.
func resumeHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return GenesisHash, nil
	}

	var lastLine string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lastLine = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if lastLine == "" {
		return GenesisHash, nil
	}

	var tail struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal([]byte(lastLine), &tail); err != nil {
		return "", fmt.Errorf("failed to parse last event: %w", err)
	}
	if tail.Hash == "" {
		return "", fmt.Errorf("last event has no hash")
	}
	return tail.Hash, nil
}

// Write validates the event, links it to the chain and appends it. The
// event's HashPrev and Hash fields are set here, never by the caller.
func (w *FileWriter) Write(event *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	event.HashPrev = w.lastHash

	canonical, err := event.CanonicalJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	event.Hash = calculateHash(canonical, w.lastHash)

	line, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}

	w.lastHash = event.Hash
	return nil
}

// Close syncs and closes the underlying file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return err
	}
	return w.file.Close()
}

// LastHash returns the hash of the most recently written event.
func (w *FileWriter) LastHash() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastHash
}

// Path returns the audit log file path.
func (w *FileWriter) Path() string {
	return w.path
}

// calculateHash computes SHA256(canonicalJSON || prevHash). Folding the
// previous hash into the digest is what makes silent edits detectable.
func calculateHash(data []byte, prevHash string) string {
	h := sha256.New()
	_, _ = h.Write(data)
	_, _ = h.Write([]byte(prevHash))
	return HashPrefix + hex.EncodeToString(h.Sum(nil))
}

// VerifyChain walks an audit log and checks every link: each event's
// HashPrev must equal the previous event's Hash, and its Hash must match a
// recomputation from the canonical bytes. Returns the number of events
// verified before the first defect.
func VerifyChain(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read audit log: %w", err)
	}
	if len(data) == 0 {
		return 0, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	expectedPrev := GenesisHash
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return lineNum - 1, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}

		if event.HashPrev != expectedPrev {
			return lineNum - 1, fmt.Errorf("line %d: hash chain broken: expected prev=%s, got prev=%s",
				lineNum, expectedPrev, event.HashPrev)
		}

		canonical, err := event.CanonicalJSON()
		if err != nil {
			return lineNum - 1, fmt.Errorf("line %d: failed to serialize: %w", lineNum, err)
		}
		if got := calculateHash(canonical, event.HashPrev); event.Hash != got {
			return lineNum - 1, fmt.Errorf("line %d: hash mismatch: expected=%s, got=%s",
				lineNum, got, event.Hash)
		}

		expectedPrev = event.Hash
	}

	if err := scanner.Err(); err != nil {
		return lineNum, fmt.Errorf("scan error: %w", err)
	}
	return lineNum, nil
}
