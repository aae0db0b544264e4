package panels

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/screen"
	"dashctl/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logStart = time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)

func logEntry(i int, level logging.LogLevel) logging.LogEntry {
	return logging.LogEntry{
		Timestamp: logStart.Add(time.Duration(i) * time.Second),
		Level:     level,
		Subsystem: "test",
		Message:   fmt.Sprintf("message %d", i),
	}
}

func newTestLogPanel(t *testing.T, backlog int) (*LogPanel, chan logging.LogEntry, *screen.Screen) {
	t.Helper()
	entries := make(chan logging.LogEntry, 100)
	s := screen.New(80, 10)
	p := NewLogPanel(s, 50*time.Millisecond, entries, backlog)
	p.dropped = func() int64 { return 0 }
	p.SetVisible(true)
	return p, entries, s
}

func messages(entries []logging.LogEntry) []string {
	var out []string
	for _, entry := range entries {
		out = append(out, entry.Message)
	}
	return out
}

func TestLogPanel_Backlog(t *testing.T) {
	p, entries, _ := newTestLogPanel(t, 3)

	for i := 1; i <= 5; i++ {
		entries <- logEntry(i, logging.LevelInfo)
	}
	require.NoError(t, p.Update(context.Background()))

	assert.Equal(t, []string{"message 3", "message 4", "message 5"}, messages(p.Entries()))
}

func TestLogPanel_DefaultBacklog(t *testing.T) {
	p := NewLogPanel(screen.New(10, 10), time.Second, nil, 0)
	assert.Equal(t, DefaultLogBacklog, p.backlog)
}

func TestLogPanel_DrawNewestFirst(t *testing.T) {
	p, entries, s := newTestLogPanel(t, 10)
	entries <- logEntry(1, logging.LevelInfo)
	entries <- logEntry(2, logging.LevelError)
	require.NoError(t, p.Update(context.Background()))

	p.Redraw(true)
	assert.Equal(t,
		"Log (debug and above, 2 entries):\n"+
			"03:04:02 [ERROR] test: message 2\n"+
			"03:04:01 [INFO] test: message 1",
		s.Content())
}

func TestLogPanel_DrawEmpty(t *testing.T) {
	p, _, s := newTestLogPanel(t, 10)
	p.dropped = func() int64 { return 4 }

	p.Redraw(true)
	assert.Equal(t, "Log (debug and above, 0 entries, 4 dropped):\nNo log entries", s.Content())
}

func TestLogPanel_Scrolling(t *testing.T) {
	p, entries, s := newTestLogPanel(t, 100)
	for i := 1; i <= 20; i++ {
		entries <- logEntry(i, logging.LevelInfo)
	}
	require.NoError(t, p.Update(context.Background()))

	p.Redraw(true)
	lines := contentLines(s)
	assert.Contains(t, lines[1], "message 20")

	require.True(t, press(t, p, "down"))
	p.Redraw(true)
	lines = contentLines(s)
	assert.Contains(t, lines[1], "message 19")

	require.True(t, press(t, p, "end"))
	p.Redraw(true)
	lines = contentLines(s)
	// eight rows fit between the title and the bottom of the scrollbar
	assert.Contains(t, lines[8], "message 1")
	assert.Equal(t, "─┘", lines[9])
}

func TestLogPanel_ScrollingWhenEverythingFits(t *testing.T) {
	p, entries, s := newTestLogPanel(t, 100)
	// nine entries fill the rows under the title without a scrollbar
	for i := 1; i <= 9; i++ {
		entries <- logEntry(i, logging.LevelInfo)
	}
	require.NoError(t, p.Update(context.Background()))

	press(t, p, "down")
	press(t, p, "end")
	assert.Equal(t, 0, p.scroller.Location())

	p.Redraw(true)
	lines := contentLines(s)
	assert.Contains(t, lines[1], "message 9")
	assert.Contains(t, lines[9], "message 1")
}

func TestLogPanel_UpdateWithoutEntries(t *testing.T) {
	p, entries, _ := newTestLogPanel(t, 10)
	assert.ErrorIs(t, p.Update(context.Background()), panel.ErrUnchanged)

	entries <- logEntry(1, logging.LevelInfo)
	assert.NoError(t, p.Update(context.Background()))
	assert.ErrorIs(t, p.Update(context.Background()), panel.ErrUnchanged)
}

func TestLogPanel_Filter(t *testing.T) {
	p, entries, _ := newTestLogPanel(t, 10)
	entries <- logEntry(1, logging.LevelDebug)
	entries <- logEntry(2, logging.LevelInfo)
	entries <- logEntry(3, logging.LevelWarn)
	entries <- logEntry(4, logging.LevelError)
	require.NoError(t, p.Update(context.Background()))

	wants := []struct {
		current string
		entries []string
	}{
		{current: "debug", entries: []string{"message 1", "message 2", "message 3", "message 4"}},
		{current: "info", entries: []string{"message 2", "message 3", "message 4"}},
		{current: "warn", entries: []string{"message 3", "message 4"}},
		{current: "error", entries: []string{"message 4"}},
		{current: "debug", entries: []string{"message 1", "message 2", "message 3", "message 4"}},
	}

	for i, want := range wants {
		if i > 0 {
			require.True(t, press(t, p, "f"))
		}
		assert.Equal(t, want.current, handler(t, p, "f").Current)
		assert.Equal(t, want.entries, messages(p.Entries()))
	}
}

func TestLogPanel_Clear(t *testing.T) {
	p, entries, _ := newTestLogPanel(t, 10)
	entries <- logEntry(1, logging.LevelInfo)
	require.NoError(t, p.Update(context.Background()))

	require.True(t, press(t, p, "c"))
	assert.Empty(t, p.Entries())
}

func TestLogPanel_PauseFreezesDisplay(t *testing.T) {
	p, entries, s := newTestLogPanel(t, 10)
	entries <- logEntry(1, logging.LevelInfo)
	require.NoError(t, p.Update(context.Background()))

	p.SetPaused(true, logStart)
	entries <- logEntry(2, logging.LevelInfo)
	require.NoError(t, p.Update(context.Background()))

	assert.Equal(t, []string{"message 1"}, messages(p.Entries()))
	assert.Empty(t, entries, "entries are still drained while paused")

	p.Redraw(true)
	assert.Contains(t, contentLines(s)[0], "paused at 03:04:00")

	p.SetPaused(false, time.Time{})
	assert.Equal(t, []string{"message 1", "message 2"}, messages(p.Entries()))
}

func TestLogPanel_RunIgnoresPause(t *testing.T) {
	p, entries, _ := newTestLogPanel(t, 10)

	go p.Run(context.Background(), func() bool { return true })
	defer func() {
		p.Stop()
		<-p.Done()
	}()

	entries <- logEntry(1, logging.LevelInfo)
	assert.Eventually(t, func() bool {
		return len(p.Entries()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestLogPanel_ClosedChannel(t *testing.T) {
	p, entries, _ := newTestLogPanel(t, 10)
	entries <- logEntry(1, logging.LevelInfo)
	close(entries)

	require.NoError(t, p.Update(context.Background()))
	assert.ErrorIs(t, p.Update(context.Background()), panel.ErrUnchanged)
	assert.Nil(t, p.entries)
	assert.Equal(t, []string{"message 1"}, messages(p.Entries()))
}

func TestLogPanel_Copy(t *testing.T) {
	p, entries, _ := newTestLogPanel(t, 10)
	entries <- logEntry(1, logging.LevelInfo)
	entries <- logEntry(2, logging.LevelWarn)
	require.NoError(t, p.Update(context.Background()))

	var copied string
	p.copyText = func(text string) error {
		copied = text
		return nil
	}

	require.True(t, press(t, p, "y"))
	assert.Equal(t, "03:04:01 [INFO] test: message 1\n03:04:02 [WARN] test: message 2", copied)

	p.copyText = func(string) error { return errors.New("no clipboard utility") }
	assert.True(t, press(t, p, "y"))
}

func TestLevelColor(t *testing.T) {
	assert.Equal(t, screen.Cyan, levelColor(logging.LevelDebug))
	assert.Equal(t, screen.Normal, levelColor(logging.LevelInfo))
	assert.Equal(t, screen.Yellow, levelColor(logging.LevelWarn))
	assert.Equal(t, screen.Red, levelColor(logging.LevelError))
}
