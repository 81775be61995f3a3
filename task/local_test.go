// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalQueue_PutFetchFIFO(t *testing.T) {
	q := NewLocalQueue()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e, err := New(Echo{Msg: string(rune('a' + i))})
		require.NoError(t, err)
		require.NoError(t, q.Put(ctx, e))
	}

	for i := 0; i < 3; i++ {
		e, err := q.Fetch(ctx)
		require.NoError(t, err)
		echo := e.Payload.(Echo)
		assert.Equal(t, string(rune('a'+i)), echo.Msg)
	}
}

func TestLocalQueue_FetchBlocksUntilPut(t *testing.T) {
	q := NewLocalQueue()
	ctx := context.Background()

	done := make(chan Envelope, 1)
	go func() {
		e, err := q.Fetch(ctx)
		if err != nil {
			t.Error(err)
			return
		}
		done <- e
	}()

	time.Sleep(20 * time.Millisecond)
	e, err := New(Echo{Msg: "late"})
	require.NoError(t, err)
	require.NoError(t, q.Put(ctx, e))

	select {
	case got := <-done:
		assert.Equal(t, "late", got.Payload.(Echo).Msg)
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not unblock after Put")
	}
}

func TestLocalQueue_FetchRespectsContextCancel(t *testing.T) {
	q := NewLocalQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Fetch(ctx)
	assert.Error(t, err, "expected error when context is cancelled with nothing queued")
}
