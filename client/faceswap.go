package client

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultPollTimeout is how long GenerateFaceSwap waits for a queued workflow
// to complete before giving up on it.
const DefaultPollTimeout = 300 * time.Second

// SwapRequest describes one face swap operation: a source face, a target
// body/style reference, and where to put the result.
type SwapRequest struct {
	SourcePath    string
	TargetPath    string
	OutputPath    string // when set, the generated bytes are also written here
	StyleStrength float64
	Style         string
}

// GenerateFaceSwap runs the complete face swap + stylization pipeline:
// upload both images, build the workflow, queue it, wait for completion and
// fetch the first output image. The generated image bytes are returned and,
// when req.OutputPath is set, persisted there as well.
func (c *Client) GenerateFaceSwap(ctx context.Context, req SwapRequest) ([]byte, error) {
	source, err := c.UploadImage(req.SourcePath)
	if err != nil {
		return nil, err
	}

	target, err := c.UploadImage(req.TargetPath)
	if err != nil {
		return nil, err
	}

	workflow := FaceSwapWorkflow(source.Name, target.Name, req.StyleStrength, req.Style)

	promptID, err := c.QueuePrompt(workflow)
	if err != nil {
		return nil, err
	}
	slog.Debug("queued face swap workflow", "prompt_id", promptID, "source", req.SourcePath)

	entry, err := c.WaitForCompletion(ctx, promptID, c.pollTimeout)
	if err != nil {
		return nil, err
	}

	// walk the output nodes in a stable order and take the first image found
	nodeIDs := make([]string, 0, len(entry.Outputs))
	for id := range entry.Outputs {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	for _, id := range nodeIDs {
		for _, img := range entry.Outputs[id].Images {
			data, err := c.GetImage(img)
			if err != nil {
				return nil, err
			}
			if req.OutputPath != "" {
				if dir := filepath.Dir(req.OutputPath); dir != "." {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return nil, err
					}
				}
				if err := os.WriteFile(req.OutputPath, data, 0o644); err != nil {
					return nil, err
				}
			}
			return data, nil
		}
	}

	return nil, ErrNoOutput
}
