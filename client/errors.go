package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoOutput is returned when the server reports a prompt as completed but
// none of its output nodes produced an image. Retrying the same workflow will
// not help, so the batch layer treats this as a final failure.
var ErrNoOutput = errors.New("no output image found in workflow results")

// TransportError wraps an HTTP or I/O failure while talking to the ComfyUI
// server. These are the errors worth retrying at the batch level.
type TransportError struct {
	Op     string // "upload", "prompt", "history", "view"
	Status int    // HTTP status code, 0 when the request never completed
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: server returned %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates a queued prompt did not show up in the server's
// completed history before the polling window elapsed.
type TimeoutError struct {
	PromptID string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("workflow %s did not complete within %s", e.PromptID, e.Timeout)
}
