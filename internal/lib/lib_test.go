package lib

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet("b", "a", "b")
	assert.Equal(t, 2, s.Size())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))

	// Copies share the same elements.
	c := s
	c.Add("c")
	assert.True(t, s.Contains("c"))

	s.Remove("a")
	got := s.AsSlice()
	sort.Strings(got)
	assert.Equal(t, []string{"b", "c"}, got)
}

func TestSetConcurrentAdd(t *testing.T) {
	s := NewSet[int]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Add(i*100 + j)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 800, s.Size())
}

func TestDurationJSON(t *testing.T) {
	var d struct {
		Timeout Duration `json:"timeout"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"timeout": "1m30s"}`), &d))
	assert.Equal(t, 90*time.Second, d.Timeout.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"timeout": 5000000}`), &d))
	assert.Equal(t, 5*time.Millisecond, d.Timeout.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"timeout": "soon"}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`{"timeout": true}`), &d))

	b, err := json.Marshal(DurationFrom(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(b))
}

func TestDurationOrDefault(t *testing.T) {
	assert.Equal(t, time.Minute, Duration{}.OrDefault(time.Minute))
	assert.Equal(t, time.Second, DurationFrom(time.Second).OrDefault(time.Minute))
}

func TestLoggerFromLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LoggerFromLevel(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "n", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "source=lib_test.go:")

	_, err = LoggerFromLevel(&buf, "chatty")
	assert.Error(t, err)
}

func TestThreadSafeWebSocketWriteJSON(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		ws := NewThreadSafeWebSocket(c)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = ws.WriteJSON(map[string]int{"n": i})
			}(i)
		}
		wg.Wait()
		_, _, _ = ws.ReadMessage()
	}))
	defer srv.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/", nil)
	require.NoError(t, err)
	defer c.Close()

	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		var m map[string]int
		require.NoError(t, c.ReadJSON(&m))
		seen[m["n"]] = true
	}
	assert.Len(t, seen, 4)
}
