package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is the top level object that allows for interaction with the ComfyUI
// backend. It is a plain HTTP client: prompts are queued with POST /prompt and
// completion is detected by polling GET /history. Live telemetry is available
// separately through QueueMonitor.
type Client struct {
	baseURL      string
	clientid     string
	httpclient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewClient creates a new instance of a ComfyUI client. serverURL is the base
// URL of the server, for example "http://127.0.0.1:8188".
func NewClient(serverURL string) *Client {
	cid := uuid.New().String()
	retv := &Client{
		baseURL:      strings.TrimRight(serverURL, "/"),
		clientid:     cid,
		httpclient:   &http.Client{},
		pollInterval: time.Second,
		pollTimeout:  DefaultPollTimeout,
	}
	return retv
}

// SetPollTimeout changes how long GenerateFaceSwap waits for a queued
// workflow before treating it as timed out.
func (c *Client) SetPollTimeout(timeout time.Duration) {
	c.pollTimeout = timeout
}

// ClientID returns the unique client ID for the connection to the ComfyUI backend
func (c *Client) ClientID() string {
	return c.clientid
}

// BaseURL returns the server base URL the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// return the underlying http client
func (c *Client) HttpClient() *http.Client {
	return c.httpclient
}

// set the underlying http client
func (c *Client) SetHttpClient(client *http.Client) {
	c.httpclient = client
}
