package cities

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	lines []string
	err   error
	reads atomic.Int32
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) ReadLines(context.Context) ([]string, error) {
	s.reads.Add(1)
	return s.lines, s.err
}

func TestEnsureLoadedIsIdempotent(t *testing.T) {
	src := &countingSource{lines: []string{"Черкаси", " Київ ", "", "Біла Церква", "Арциз", "Івано-Франківськ", "   "}}
	d := New(src)
	assert.False(t, d.Loaded())
	assert.Empty(t, d.Letters())

	d.EnsureLoaded(context.Background())
	first, letters := d.All(), d.Letters()
	d.EnsureLoaded(context.Background())

	assert.EqualValues(t, 1, src.reads.Load())
	assert.True(t, d.Loaded())
	assert.Equal(t, first, d.All())
	assert.Equal(t, letters, d.Letters())
	assert.Equal(t, []string{"Арциз", "Біла Церква", "Івано-Франківськ", "Київ", "Черкаси"}, first)
	assert.Equal(t, []string{"А", "Б", "І", "К", "Ч"}, letters)
	assert.Equal(t, 5, d.Len())
}

func TestEnsureLoadedConcurrent(t *testing.T) {
	src := &countingSource{lines: []string{"Київ", "Львів"}}
	d := New(src)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.EnsureLoaded(context.Background())
			_ = d.StartingWith("К")
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, src.reads.Load())
	assert.Equal(t, 2, d.Len())
}

func TestLoadFailureIsTerminal(t *testing.T) {
	src := &countingSource{err: errors.New("disk gone")}
	d := New(src)
	d.EnsureLoaded(context.Background())
	d.EnsureLoaded(context.Background())

	assert.True(t, d.Loaded())
	assert.Empty(t, d.Letters())
	assert.Empty(t, d.StartingWith("К"))
	assert.EqualValues(t, 1, src.reads.Load())
}

func TestMissingFile(t *testing.T) {
	d := New(FileSource(filepath.Join(t.TempDir(), "absent.txt")))
	d.EnsureLoaded(context.Background())
	assert.True(t, d.Loaded())
	assert.Empty(t, d.Letters())
	assert.Zero(t, d.Len())
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.txt")
	require.NoError(t, os.WriteFile(path, []byte("Одеса\n\nОбухів\r\nЛьвів\n"), 0o644))
	d := New(FileSource(path))
	d.EnsureLoaded(context.Background())
	assert.Equal(t, []string{"Львів", "Обухів", "Одеса"}, d.All())
}

func TestStartingWith(t *testing.T) {
	d := New(&countingSource{lines: []string{"київ", "Київ", "Ковель", "Луцьк", "Кагарлик"}})
	d.EnsureLoaded(context.Background())

	upper := d.StartingWith("К")
	lower := d.StartingWith("к")
	assert.Equal(t, upper, lower)
	assert.Len(t, upper, 4)
	for _, c := range upper {
		assert.Contains(t, d.All(), c)
		assert.True(t, strings.HasPrefix(strings.ToUpper(c), "К"), c)
	}
	assert.Empty(t, d.StartingWith("Я"))
	assert.Empty(t, d.StartingWith(""))
}

func TestEmbeddedList(t *testing.T) {
	d := New(nil)
	d.EnsureLoaded(context.Background())
	require.Greater(t, d.Len(), 100)

	letters := d.Letters()
	require.NotEmpty(t, letters)
	assert.Equal(t, "А", letters[0])
	assert.Equal(t, "Я", letters[len(letters)-1])
	assert.Greater(t, slices.Index(letters, "Є"), slices.Index(letters, "Д"))
	assert.Greater(t, slices.Index(letters, "І"), slices.Index(letters, "Д"))
	assert.Contains(t, d.StartingWith("К"), "Київ")
}
