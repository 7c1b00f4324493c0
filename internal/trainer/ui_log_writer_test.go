package trainer

import (
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUILogWriter_ForwardsLines(t *testing.T) {
	w := NewUILogWriter(4)
	logger := log.New(w, "", 0)

	logger.Printf("SessionDriver: %s -> %s", "auth", "exercise-start")
	require.Len(t, w.Lines(), 1)
	assert.Equal(t, "SessionDriver: auth -> exercise-start\n", <-w.Lines())
}

func TestUILogWriter_DropsWhenFull(t *testing.T) {
	w := NewUILogWriter(2)
	for i := 0; i < 5; i++ {
		n, err := w.Write([]byte("x\n"))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
	assert.Len(t, w.Lines(), 2)
	assert.Equal(t, uint64(3), w.Dropped())
}

func TestUILogWriter_Close(t *testing.T) {
	w := NewUILogWriter(0)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Lines()
	assert.False(t, ok)

	n, err := w.Write([]byte("late\n"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestUILogWriter_FeedsModel(t *testing.T) {
	w := NewUILogWriter(8)
	model := NewUIModel(discardLogger(), w.Lines())
	defer model.Shutdown()

	_, _ = w.Write([]byte("hello\n"))
	require.Eventually(t, func() bool {
		tail := model.GetLogTail(1)
		return len(tail) == 1 && tail[0] == "hello\n"
	}, eventuallyWait, eventuallyTick)
}
