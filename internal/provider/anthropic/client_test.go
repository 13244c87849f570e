package anthropic //nolint:testpackage // Need access to the unexported wire request types

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Stream_EarlyCancelReleasesStream(t *testing.T) {
	// A server that streams far more deltas than the consumer will read.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 2000; i++ {
			fmt.Fprintf(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"chunk\"}}\n\n")
			flusher.Flush()
		}
		fmt.Fprint(w, "data: {\"type\":\"message_stop\"}\n\n")
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Version: "2023-06-01",
		Timeout: 10,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := client.Stream(ctx, messagesRequest{
		Model:     "claude-3-5-sonnet-20241022",
		Messages:  []wireMessage{{Role: "user", Content: "hi"}},
		MaxTokens: 16,
	})
	require.NoError(t, err)

	// Read a couple of chunks, then stop consuming.
	first := <-results
	require.NoError(t, first.Error)
	require.Equal(t, "chunk", first.Delta)
	second := <-results
	require.NoError(t, second.Error)

	cancel()

	// The producer must notice the cancellation, close the response body
	// and close the results channel instead of blocking on a send forever.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-results:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("stream goroutine still alive after consumer cancelled")
		}
	}
}

func TestClient_Stream_DeliversDeltasAndStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hello \"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"world\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"message_stop\"}\n\n")
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Version: "2023-06-01",
		Timeout: 10,
	})

	results, err := client.Stream(context.Background(), messagesRequest{
		Model:     "claude-3-5-sonnet-20241022",
		Messages:  []wireMessage{{Role: "user", Content: "hi"}},
		MaxTokens: 16,
	})
	require.NoError(t, err)

	var text string
	var done bool
	for result := range results {
		require.NoError(t, result.Error)
		if result.Done {
			done = true
			break
		}
		text += result.Delta
	}

	require.Equal(t, "Hello world", text)
	require.True(t, done)
}
