// Package cities holds the city directory behind the alphabetical picker.
package cities

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/m3rciful/weatherbot/core/logger"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

//go:embed cities.txt
var embeddedList []byte

// Source yields the raw city list, one name per line.
type Source interface {
	ReadLines(ctx context.Context) ([]string, error)
	Name() string
}

type fileSource struct{ path string }

// FileSource reads a newline-delimited UTF-8 file.
func FileSource(path string) Source { return fileSource{path: path} }

func (s fileSource) Name() string { return s.path }

func (s fileSource) ReadLines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read city list: %w", err)
	}
	return splitLines(data)
}

type embeddedSource struct{}

// EmbeddedSource returns the list compiled into the binary.
func EmbeddedSource() Source { return embeddedSource{} }

func (embeddedSource) Name() string { return "embedded" }

func (embeddedSource) ReadLines(context.Context) ([]string, error) {
	return splitLines(embeddedList)
}

func splitLines(data []byte) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan city list: %w", err)
	}
	return out, nil
}

// Directory is a lazily loaded, collated list of cities plus the index of
// their first letters. A failed load leaves it empty for the process lifetime.
type Directory struct {
	src Source
	log *slog.Logger

	once    sync.Once
	mu      sync.RWMutex
	loaded  bool
	all     []string
	letters []string
}

// New builds a Directory over src. A nil src falls back to EmbeddedSource.
func New(src Source) *Directory {
	if src == nil {
		src = EmbeddedSource()
	}
	return &Directory{src: src, log: logger.Component("cities")}
}

// EnsureLoaded reads and indexes the source on the first call only.
func (d *Directory) EnsureLoaded(ctx context.Context) {
	d.once.Do(func() {
		lines, err := d.src.ReadLines(ctx)
		if err != nil {
			d.log.LogAttrs(ctx, slog.LevelError, "cities load failed",
				slog.String("event", "cities.load"),
				slog.String("status", "fail"),
				slog.String("path", d.src.Name()),
				slog.String("err", logger.ErrAttr(err)),
			)
			lines = nil
		}
		all, letters := index(lines)

		d.mu.Lock()
		d.all, d.letters, d.loaded = all, letters, true
		d.mu.Unlock()

		if err == nil {
			d.log.LogAttrs(ctx, slog.LevelInfo, "cities loaded",
				slog.String("event", "cities.load"),
				slog.String("status", "ok"),
				slog.String("path", d.src.Name()),
				slog.Int("cities", len(all)),
				slog.Int("letters", len(letters)),
			)
		}
	})
}

func index(lines []string) ([]string, []string) {
	all := make([]string, 0, len(lines))
	for _, l := range lines {
		if name := strings.TrimSpace(l); name != "" {
			all = append(all, name)
		}
	}
	col := collate.New(language.Ukrainian)
	col.SortStrings(all)

	seen := make(map[string]struct{})
	letters := make([]string, 0, 32)
	for _, name := range all {
		l := firstUpper(name)
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		letters = append(letters, l)
	}
	col.SortStrings(letters)
	return all, letters
}

func firstUpper(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// Loaded reports whether EnsureLoaded has completed.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Letters returns the sorted first letters. Empty before EnsureLoaded or after a failed load.
func (d *Directory) Letters() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.letters...)
}

// All returns every city in directory order.
func (d *Directory) All() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.all...)
}

// Len returns the number of cities.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.all)
}

// StartingWith returns cities whose first rune matches letter case-insensitively, in directory order.
func (d *Directory) StartingWith(letter string) []string {
	want := firstUpper(strings.TrimSpace(letter))
	if want == "" {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	for _, name := range d.all {
		if firstUpper(name) == want {
			out = append(out, name)
		}
	}
	return out
}
