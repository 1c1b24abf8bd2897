package recognition

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pharmacy-api/pkg/logger"
)

func newPollingEngine(t *testing.T, statuses []statusResponse) *httptest.Server {
	t.Helper()
	var polls int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/recognize":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			_, _, err := r.FormFile("file")
			require.NoError(t, err)
			json.NewEncoder(w).Encode(submitResponse{
				Success: true,
				Data: struct {
					JobID string `json:"job_id"`
				}{JobID: "job-1"},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/recognize/job-1":
			n := atomic.AddInt32(&polls, 1)
			idx := int(n) - 1
			if idx >= len(statuses) {
				idx = len(statuses) - 1
			}
			json.NewEncoder(w).Encode(statuses[idx])
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
}

func processingStatus(progress int) statusResponse {
	var s statusResponse
	s.Success = true
	s.Data.Status = "processing"
	s.Data.Progress = progress
	return s
}

func doneStatus(text string) statusResponse {
	var s statusResponse
	s.Success = true
	s.Data.Status = "done"
	s.Data.Progress = 100
	s.Data.Text = text
	return s
}

func failedStatus(message string) statusResponse {
	var s statusResponse
	s.Success = true
	s.Data.Status = "failed"
	s.Data.Message = message
	return s
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:      baseURL,
		Timeout:      5 * time.Second,
		PollInterval: 5 * time.Millisecond,
	}, logger.NewLogger(nil))
}

func TestRecognizePollsUntilDone(t *testing.T) {
	srv := newPollingEngine(t, []statusResponse{
		processingStatus(30),
		processingStatus(70),
		doneStatus("Paracetamol 500mg"),
	})
	defer srv.Close()

	c := newTestClient(srv.URL)

	var progress []int
	text, err := c.Recognize(context.Background(), pngHeader, "scan.png", func(p int) {
		progress = append(progress, p)
	})

	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", text)
	require.NotEmpty(t, progress)
	assert.Equal(t, 0, progress[0])
	assert.Equal(t, 100, progress[len(progress)-1])
	assert.Contains(t, progress, 30)
	assert.Contains(t, progress, 70)
}

func TestRecognizeEngineFailure(t *testing.T) {
	srv := newPollingEngine(t, []statusResponse{
		failedStatus("image too blurry"),
	})
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.Recognize(context.Background(), pngHeader, "scan.png", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image too blurry")
}

func TestRecognizeCancelledMidScan(t *testing.T) {
	srv := newPollingEngine(t, []statusResponse{
		processingStatus(10),
	})
	defer srv.Close()

	c := newTestClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Recognize(ctx, pngHeader, "scan.png", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecognizeSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(submitResponse{Success: false, Message: "unsupported format"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.Recognize(context.Background(), pngHeader, "scan.png", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
