package visibility

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateHidesNothing(t *testing.T) {
	st := New()
	snap := st.Current()
	require.NotNil(t, snap)
	assert.Equal(t, 0, snap.Len())
	assert.False(t, snap.Hidden("V001"))
}

func TestApplyReplacesWholeSet(t *testing.T) {
	st := New()

	st.Apply([]string{"V001", "V002"})
	assert.Equal(t, []string{"V001", "V002"}, st.Current().Codes())

	// A later Apply replaces, never merges.
	st.Apply([]string{"V003"})
	snap := st.Current()
	assert.False(t, snap.Hidden("V001"))
	assert.True(t, snap.Hidden("V003"))
	assert.Equal(t, 1, snap.Len())
}

func TestApplyEmptyShowsAll(t *testing.T) {
	st := New()
	st.Apply([]string{"V001"})
	st.Apply(nil)
	assert.Equal(t, 0, st.Current().Len())
}

func TestApplySkipsEmptyCodes(t *testing.T) {
	st := New()
	snap := st.Apply([]string{"", "V001", ""})
	assert.Equal(t, []string{"V001"}, snap.Codes())
}

func TestSnapshotsAreImmutable(t *testing.T) {
	st := New()
	before := st.Current()
	st.Apply([]string{"V001"})

	assert.False(t, before.Hidden("V001"), "earlier snapshot must not see later filters")
	assert.True(t, st.Current().Hidden("V001"))
}

func TestConcurrentAppliesLeaveConsistentState(t *testing.T) {
	st := New()
	const writers = 16

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			st.Apply([]string{fmt.Sprintf("V%03d", w), fmt.Sprintf("W%03d", w)})
		}(w)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Readers must always see a complete two-element set from one writer.
		for i := 0; i < 1000; i++ {
			snap := st.Current()
			if snap.Len() == 0 {
				continue // initial snapshot
			}
			codes := snap.Codes()
			if assert.Len(t, codes, 2) {
				assert.Equal(t, codes[0][1:], codes[1][1:])
			}
		}
	}()

	wg.Wait()
	<-done

	assert.Equal(t, 2, st.Current().Len())
}
