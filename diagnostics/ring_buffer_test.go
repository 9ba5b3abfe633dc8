package diagnostics_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/crmsuite/diagnostics"
)

func TestRingBuffer_Basic(t *testing.T) {
	rb := diagnostics.NewRingBuffer[string](3)

	assert.Equal(t, uint64(0), rb.Size())
	assert.Equal(t, uint64(3), rb.Capacity())
	assert.Empty(t, rb.All())

	rb.Add("data1")
	assert.Equal(t, []string{"data1"}, rb.Last(1))

	rb.Add("data2")
	rb.Add("data3")

	assert.Equal(t, uint64(3), rb.Size())
	assert.Equal(t, []string{"data1", "data2", "data3"}, rb.All())
	assert.Equal(t, []string{"data2", "data3"}, rb.Last(2))
	assert.Equal(t, uint64(0), rb.Dropped())
}

func TestRingBuffer_Overwrite(t *testing.T) {
	rb := diagnostics.NewRingBuffer[string](3)

	for i := 1; i <= 6; i++ {
		rb.Add(fmt.Sprintf("data%d", i))
	}

	assert.Equal(t, uint64(3), rb.Size())
	assert.Equal(t, uint64(3), rb.Dropped())
	assert.Equal(t, []string{"data4", "data5", "data6"}, rb.All())
	assert.Equal(t, []string{"data4", "data5", "data6"}, rb.Last(10))
}

func TestRingBuffer_ZeroCapacityPanics(t *testing.T) {
	assert.Panics(t, func() {
		diagnostics.NewRingBuffer[int](0)
	})
}

func TestRingBuffer_ConcurrentAdd(t *testing.T) {
	rb := diagnostics.NewRingBuffer[int](50)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rb.Add(i)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(50), rb.Size())
	assert.Equal(t, uint64(350), rb.Dropped())
	assert.Len(t, rb.All(), 50)
}
