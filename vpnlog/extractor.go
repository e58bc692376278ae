package vpnlog

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultWindowSize is how many trailing bytes of a log file are scanned.
	DefaultWindowSize = 8 * 1024

	maxPort = 65535
)

var portPairPattern = regexp.MustCompile(`Port pair (\d+)->(\d+)`)

// Extractor finds the newest forwarded port announcement in a log file.
type Extractor struct {
	windowSize int64
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithWindowSize sets how many trailing bytes are read. Non-positive values
// keep the default.
func WithWindowSize(size int) ExtractorOption {
	return func(e *Extractor) {
		if size > 0 {
			e.windowSize = int64(size)
		}
	}
}

// NewExtractor creates a new Extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{windowSize: DefaultWindowSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WindowSize returns the number of trailing bytes scanned per file.
func (e *Extractor) WindowSize() int {
	return int(e.windowSize)
}

// Extract returns the port of the last valid "Port pair N->N" line within the
// tail window of the file at path.
func (e *Extractor) Extract(path string) (int, error) {
	tail, err := e.readTail(path)
	if err != nil {
		return 0, err
	}

	if port, ok := lastAnnouncement(tail); ok {
		return port, nil
	}

	return 0, fmt.Errorf("%w in %s", ErrNoAnnouncement, path)
}

// readTail returns the complete lines inside the trailing window of the file.
// A line cut by the start of the window is dropped.
func (e *Extractor) readTail(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return "", fmt.Errorf("failed to seek log file: %w", err)
	}

	start := int64(0)
	if size > e.windowSize {
		// one extra byte tells whether the window begins on a line boundary
		start = size - e.windowSize - 1
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek log file: %w", err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read log file: %w", err)
	}

	// a file truncated between seek and read leaves nothing to scan
	if start == 0 || len(data) == 0 {
		return string(data), nil
	}

	if data[0] == '\n' {
		return string(data[1:]), nil
	}

	idx := strings.IndexByte(string(data), '\n')
	if idx < 0 {
		// the whole window is the tail of a single line
		return "", nil
	}

	return string(data[idx+1:]), nil
}

// lastAnnouncement scans lines newest first and returns the first valid port.
func lastAnnouncement(text string) (int, bool) {
	lines := strings.Split(text, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], "\r")
		if line == "" {
			continue
		}

		if port, ok := parseLine(line); ok {
			return port, true
		}
	}

	return 0, false
}

// parseLine returns the last valid port pair on a single line.
func parseLine(line string) (int, bool) {
	matches := portPairPattern.FindAllStringSubmatch(line, -1)

	for i := len(matches) - 1; i >= 0; i-- {
		forwarded, err := strconv.Atoi(matches[i][1])
		if err != nil {
			continue
		}

		local, err := strconv.Atoi(matches[i][2])
		if err != nil || local != forwarded {
			continue
		}

		if forwarded < 1 || forwarded > maxPort {
			continue
		}

		return forwarded, true
	}

	return 0, false
}
