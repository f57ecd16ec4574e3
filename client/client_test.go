package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeComfy is a minimal in-process stand-in for a ComfyUI server covering
// the routes the client drives.
type fakeComfy struct {
	historyPolls  atomic.Int32
	pollsRequired int32 // history stays empty until this many polls happened
	withOutputs   bool  // whether the completed entry lists any images
	imageBytes    []byte
}

func (f *fakeComfy) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/upload/image", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file.Close()
		json.NewEncoder(w).Encode(map[string]string{"name": header.Filename, "subfolder": ""})
	})

	mux.HandleFunc("/prompt", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Prompt   map[string]json.RawMessage `json:"prompt"`
			ClientID string                     `json:"client_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ClientID == "" || len(payload.Prompt) == 0 {
			http.Error(w, "bad prompt payload", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"prompt_id": "prompt-123"})
	})

	mux.HandleFunc("/history/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/history/")
		if f.historyPolls.Add(1) <= f.pollsRequired {
			fmt.Fprint(w, "{}")
			return
		}
		entry := map[string]any{"outputs": map[string]any{}}
		if f.withOutputs {
			entry["outputs"] = map[string]any{
				"12": map[string]any{
					"images": []map[string]string{
						{"filename": "desk_standee_00001_.png", "subfolder": "", "type": "output"},
					},
				},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{id: entry})
	})

	mux.HandleFunc("/view", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filename") == "" {
			http.Error(w, "missing filename", http.StatusBadRequest)
			return
		}
		w.Write(f.imageBytes)
	})

	return mux
}

func writeTempImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake png bytes"), 0o644); err != nil {
		t.Fatalf("writing temp image: %v", err)
	}
	return path
}

func newTestClient(t *testing.T, fake *fakeComfy) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL)
	c.pollInterval = time.Millisecond
	return c
}

func TestGenerateFaceSwap(t *testing.T) {
	fake := &fakeComfy{pollsRequired: 2, withOutputs: true, imageBytes: []byte("generated image")}
	c := newTestClient(t, fake)

	outPath := filepath.Join(t.TempDir(), "swapped", "out.png")
	data, err := c.GenerateFaceSwap(context.Background(), SwapRequest{
		SourcePath:    writeTempImage(t, "face.png"),
		TargetPath:    writeTempImage(t, "body.png"),
		OutputPath:    outPath,
		StyleStrength: 0.85,
		Style:         "professional illustration",
	})
	if err != nil {
		t.Fatalf("GenerateFaceSwap: %v", err)
	}
	if string(data) != "generated image" {
		t.Errorf("unexpected image bytes: %q", data)
	}

	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(written) != "generated image" {
		t.Errorf("output file content mismatch: %q", written)
	}

	// polled at least until the entry appeared
	if fake.historyPolls.Load() < 3 {
		t.Errorf("expected at least 3 history polls, got %d", fake.historyPolls.Load())
	}
}

func TestGenerateFaceSwapNoOutput(t *testing.T) {
	fake := &fakeComfy{withOutputs: false}
	c := newTestClient(t, fake)

	_, err := c.GenerateFaceSwap(context.Background(), SwapRequest{
		SourcePath: writeTempImage(t, "face.png"),
		TargetPath: writeTempImage(t, "body.png"),
	})
	if !errors.Is(err, ErrNoOutput) {
		t.Fatalf("expected ErrNoOutput, got %v", err)
	}
}

func TestWaitForCompletionTimeout(t *testing.T) {
	fake := &fakeComfy{pollsRequired: 1 << 30}
	c := newTestClient(t, fake)

	_, err := c.WaitForCompletion(context.Background(), "never-done", 5*time.Millisecond)
	var terr *TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if terr.PromptID != "never-done" {
		t.Errorf("timeout error prompt id: %q", terr.PromptID)
	}
}

func TestWaitForCompletionContextCancel(t *testing.T) {
	fake := &fakeComfy{pollsRequired: 1 << 30}
	c := newTestClient(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.WaitForCompletion(ctx, "whatever", time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestUploadImageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.UploadImage(writeTempImage(t, "face.png"))
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", terr.Status)
	}
}

func TestUploadImageMissingFile(t *testing.T) {
	c := NewClient("http://127.0.0.1:0")
	_, err := c.UploadImage(filepath.Join(t.TempDir(), "does-not-exist.png"))
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestQueuePromptErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"type": "prompt_no_outputs", "message": "Prompt has no outputs", "details": "", "extra_info": {}}, "node_errors": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.QueuePrompt(FaceSwapWorkflow("a.png", "b.png", 0.8, "illustration"))
	if err == nil || !strings.Contains(err.Error(), "Prompt has no outputs") {
		t.Fatalf("expected the server's error message to surface, got %v", err)
	}
}
