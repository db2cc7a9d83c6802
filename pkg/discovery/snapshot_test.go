package discovery

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCurrentBeforePublish(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Current())
}

func TestStorePublish(t *testing.T) {
	s := NewStore()

	first := s.Publish([]Endpoint{{Node: "n1", Address: "10.0.0.1", Port: 9000}})
	assert.Equal(t, uint64(1), first.Seq)
	assert.WithinDuration(t, time.Now(), first.Taken, time.Second)

	second := s.Publish([]Endpoint{{Node: "n2", Address: "10.0.0.2", Port: 9000}})
	assert.Equal(t, uint64(2), second.Seq)

	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, uint64(2), cur.Seq)
	assert.Equal(t, "n2", cur.Endpoints[0].Node)

	// 被替换的快照对持有者仍然可用
	assert.Equal(t, "n1", first.Endpoints[0].Node)
}

func TestStoreConcurrentReadWrite(t *testing.T) {
	s := NewStore()
	s.Publish([]Endpoint{{Node: "seed", Address: "10.0.0.1", Port: 9000}})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Current()
				if snap == nil || len(snap.Endpoints) == 0 {
					t.Error("reader observed incomplete snapshot")
					return
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		s.Publish([]Endpoint{{Node: "n", Address: "10.0.0.2", Port: 9000 + i}})
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, uint64(101), s.Current().Seq)
}
