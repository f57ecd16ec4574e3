package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

/*
The subset of ComfyUI routes this client drives:

@routes.post("/upload/image")
@routes.post("/prompt")
@routes.get("/history/{prompt_id}")
@routes.get("/view")
@routes.get("/system_stats")
*/

// ImageRef identifies an image stored on the ComfyUI server, as returned by
// the upload endpoint. The name may differ from the uploaded filename when
// the server deduplicates.
type ImageRef struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder"`
}

// DataOutput describes one output file produced by a workflow node.
type DataOutput struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

// HistoryEntry is the server's record of one executed prompt. Outputs are
// keyed by node ID.
type HistoryEntry struct {
	Outputs map[string]NodeOutput `json:"outputs"`
}

type NodeOutput struct {
	Images []DataOutput `json:"images"`
}

// History maps prompt IDs to their execution records. A prompt appears here
// only once the server has finished executing it.
type History map[string]HistoryEntry

// UploadImage uploads a local image file to the ComfyUI server's input folder
// and returns the server-side reference for use in a workflow.
func (c *Client) UploadImage(imagePath string) (ImageRef, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return ImageRef{}, &TransportError{Op: "upload", Err: err}
	}
	defer file.Close()

	// wrap the file in a multipart form (like FormData)
	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	formFile, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return ImageRef{}, &TransportError{Op: "upload", Err: err}
	}
	if _, err = io.Copy(formFile, file); err != nil {
		return ImageRef{}, &TransportError{Op: "upload", Err: err}
	}
	writer.Close()

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/upload/image", c.baseURL), &requestBody)
	if err != nil {
		return ImageRef{}, &TransportError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return ImageRef{}, &TransportError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ImageRef{}, &TransportError{Op: "upload", Status: resp.StatusCode}
	}

	retv := ImageRef{}
	if err := json.NewDecoder(resp.Body).Decode(&retv); err != nil {
		return ImageRef{}, &TransportError{Op: "upload", Err: err}
	}
	if retv.Name == "" {
		return ImageRef{}, &TransportError{Op: "upload", Err: fmt.Errorf("invalid response format")}
	}
	return retv, nil
}

// QueuePrompt submits a workflow for execution and returns the prompt ID the
// server assigned to it.
func (c *Client) QueuePrompt(workflow Workflow) (string, error) {
	payload := struct {
		Prompt   Workflow `json:"prompt"`
		ClientID string   `json:"client_id"`
	}{
		Prompt:   workflow,
		ClientID: c.clientid,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", &TransportError{Op: "prompt", Err: err}
	}

	resp, err := c.httpclient.Post(fmt.Sprintf("%s/prompt", c.baseURL), "application/json", bytes.NewReader(data))
	if err != nil {
		return "", &TransportError{Op: "prompt", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// the server reports workflow problems as a structured error body
		perror := &PromptErrorMessage{}
		if perr := json.Unmarshal(body, perror); perr == nil && perror.Error.Message != "" {
			return "", &TransportError{Op: "prompt", Status: resp.StatusCode, Err: fmt.Errorf("%s", perror.Error.Message)}
		}
		return "", &TransportError{Op: "prompt", Status: resp.StatusCode}
	}

	retv := struct {
		PromptID string `json:"prompt_id"`
	}{}
	if err := json.Unmarshal(body, &retv); err != nil {
		return "", &TransportError{Op: "prompt", Err: err}
	}
	return retv.PromptID, nil
}

// GetHistory retrieves the execution history for a single prompt. The result
// is empty until the server has finished executing the prompt.
func (c *Client) GetHistory(promptID string) (History, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("%s/history/%s", c.baseURL, promptID))
	if err != nil {
		return nil, &TransportError{Op: "history", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "history", Status: resp.StatusCode}
	}

	body, _ := io.ReadAll(resp.Body)
	retv := make(History)
	if err := json.Unmarshal(body, &retv); err != nil {
		return nil, &TransportError{Op: "history", Err: err}
	}
	return retv, nil
}

// GetImage downloads one generated image from the ComfyUI server.
func (c *Client) GetImage(output DataOutput) ([]byte, error) {
	params := url.Values{}
	params.Add("filename", output.Filename)
	params.Add("subfolder", output.Subfolder)
	params.Add("type", output.Type)

	resp, err := c.httpclient.Get(fmt.Sprintf("%s/view?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, &TransportError{Op: "view", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "view", Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// WaitForCompletion polls the history endpoint once per second until the
// prompt appears in the server's completed listing, the timeout elapses, or
// ctx is canceled. There is no backoff at this layer; retry policy belongs to
// the batch dispatcher.
func (c *Client) WaitForCompletion(ctx context.Context, promptID string, timeout time.Duration) (*HistoryEntry, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		history, err := c.GetHistory(promptID)
		if err != nil {
			return nil, err
		}
		if entry, ok := history[promptID]; ok {
			return &entry, nil
		}
		if time.Now().After(deadline) {
			return nil, &TimeoutError{PromptID: promptID, Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetSystemStats reports the ComfyUI server's host and GPU information.
func (c *Client) GetSystemStats() (*SystemStats, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("%s/system_stats", c.baseURL))
	if err != nil {
		return nil, &TransportError{Op: "system_stats", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "system_stats", Status: resp.StatusCode}
	}

	body, _ := io.ReadAll(resp.Body)
	retv := &SystemStats{}
	if err := json.Unmarshal(body, retv); err != nil {
		return nil, &TransportError{Op: "system_stats", Err: err}
	}
	return retv, nil
}
