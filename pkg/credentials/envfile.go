package credentials

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
)

// ParseEnv reads KEY=VALUE lines. Blank lines, lines starting with '#' and
// lines without '=' are skipped. Surrounding quotes are stripped from values.
// Lines have no length limit. A read error ends parsing and the entries
// parsed so far are returned.
func ParseEnv(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		parseEnvLine(values, raw)
		if err != nil {
			break
		}
	}
	return values, nil
}

func parseEnvLine(values map[string]string, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return
	}
	key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
	if key == "" {
		return
	}
	values[key] = unquote(strings.TrimSpace(value))
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// FileReader reads key files with bounded retries for transient errors.
type FileReader struct {
	retryConfig retry.Config
}

// NewFileReader creates a reader that tries each file up to attempts times.
func NewFileReader(attempts int) *FileReader {
	if attempts < 1 {
		attempts = 1
	}
	return &FileReader{
		retryConfig: retry.Config{
			MaxAttempts:   attempts,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Read returns the parsed file. A missing file yields an empty map and no
// error. Only opening the file is retried; parsing is deterministic.
func (r *FileReader) Read(ctx context.Context, path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	retryer := retry.New[*os.File](r.retryConfig)
	f, err := retryer.Do(ctx, func(ctx context.Context) (*os.File, error) {
		// #nosec G304 -- path comes from configuration
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open key file: %w", err)
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	if f == nil {
		return map[string]string{}, nil
	}
	defer f.Close() //nolint:errcheck // read-only
	return ParseEnv(f)
}

// SaveKey sets name=value in the key file at path, replacing an existing
// assignment and keeping every other line. The file is created with 0600.
func SaveKey(path, name, value string) error {
	if path == "" {
		return fmt.Errorf("key file path cannot be empty")
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("key value must be a single line")
	}

	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read key file: %w", err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	assignment := name + "=" + value
	replaced := false
	for i, line := range lines {
		key, _, ok := strings.Cut(strings.TrimSpace(line), "=")
		if ok && strings.TrimSpace(key) == name && !strings.HasPrefix(strings.TrimSpace(line), "#") {
			lines[i] = assignment
			replaced = true
		}
	}
	if !replaced {
		lines = append(lines, assignment)
	}

	if dir := filepath.Dir(path); dir != "." {
		// G301: Use 0700 for directories
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create key file directory: %w", err)
		}
	}
	// G306: Use 0600 for files
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}
