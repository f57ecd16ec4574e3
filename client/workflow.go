package client

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// Workflow is the prompt-format node graph that is enqueued to an instance of
// ComfyUI: node IDs mapped to their class and inputs. Link inputs are
// [targetNodeID string, slotIndex int] pairs.
type Workflow map[string]WorkflowNode

type WorkflowNode struct {
	Inputs    map[string]interface{} `json:"inputs"`
	ClassType string                 `json:"class_type"`
	Meta      NodeMeta               `json:"_meta"`
}

type NodeMeta struct {
	Title string `json:"title"`
}

const (
	checkpointName = "realisticVisionV60B1_v51VAE.safetensors"
	controlNetName = "diffusion_pytorch_model.safetensors"
	negativePrompt = "realistic photo, photograph, low quality, blurry, distorted face, multiple faces"
	outputPrefix   = "desk_standee"
)

// randomSeed draws a 32-bit sampler seed from the system entropy source.
func randomSeed() uint32 {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		// entropy failure leaves a zero seed, which is still a valid seed
		return 0
	}
	return binary.BigEndian.Uint32(b[:])
}

// FaceSwapWorkflow builds the fixed face swap + cartoon stylization graph.
// sourceName and targetName are server-side image names returned by
// UploadImage. styleStrength in [0,1] controls how strongly the reference
// style drives the sampler; style is a free-text style descriptor folded into
// the positive prompt.
func FaceSwapWorkflow(sourceName, targetName string, styleStrength float64, style string) Workflow {
	return Workflow{
		"1": {
			Inputs: map[string]interface{}{
				"image":  sourceName,
				"upload": "image",
			},
			ClassType: "LoadImage",
			Meta:      NodeMeta{Title: "Load Source Face"},
		},
		"2": {
			Inputs: map[string]interface{}{
				"image":  targetName,
				"upload": "image",
			},
			ClassType: "LoadImage",
			Meta:      NodeMeta{Title: "Load Target Body"},
		},
		"3": {
			Inputs: map[string]interface{}{
				"provider": "CPU",
			},
			ClassType: "InstantIDModelLoader",
			Meta:      NodeMeta{Title: "Load InstantID Model"},
		},
		"4": {
			Inputs: map[string]interface{}{
				"instantid":        []interface{}{"3", 0},
				"insightface":      "CPU",
				"control_net_name": controlNetName,
			},
			ClassType: "InstantIDFaceAnalysis",
			Meta:      NodeMeta{Title: "Analyze Source Face"},
		},
		"5": {
			Inputs: map[string]interface{}{
				"face_analysis": []interface{}{"4", 0},
				"image":         []interface{}{"1", 0},
			},
			ClassType: "InstantIDFaceEmbedding",
			Meta:      NodeMeta{Title: "Extract Face Embedding"},
		},
		"6": {
			Inputs: map[string]interface{}{
				"ckpt_name": checkpointName,
			},
			ClassType: "CheckpointLoaderSimple",
			Meta:      NodeMeta{Title: "Load Base Model"},
		},
		"7": {
			Inputs: map[string]interface{}{
				"text": fmt.Sprintf("professional %s style portrait, doctor with stethoscope, white coat, clean background, high quality, detailed face", style),
				"clip": []interface{}{"6", 1},
			},
			ClassType: "CLIPTextEncode",
			Meta:      NodeMeta{Title: "Positive Prompt"},
		},
		"8": {
			Inputs: map[string]interface{}{
				"text": negativePrompt,
				"clip": []interface{}{"6", 1},
			},
			ClassType: "CLIPTextEncode",
			Meta:      NodeMeta{Title: "Negative Prompt"},
		},
		"9": {
			Inputs: map[string]interface{}{
				"seed":                randomSeed(),
				"steps":               25,
				"cfg":                 7.5,
				"sampler_name":        "euler_ancestral",
				"scheduler":           "normal",
				"denoise":             0.85,
				"model":               []interface{}{"6", 0},
				"positive":            []interface{}{"7", 0},
				"negative":            []interface{}{"8", 0},
				"latent_image":        []interface{}{"10", 0},
				"face_embedding":      []interface{}{"5", 0},
				"ip_adapter_strength": styleStrength,
			},
			ClassType: "KSamplerAdvanced",
			Meta:      NodeMeta{Title: "Generate Image"},
		},
		"10": {
			Inputs: map[string]interface{}{
				"width":      512,
				"height":     768,
				"batch_size": 1,
			},
			ClassType: "EmptyLatentImage",
			Meta:      NodeMeta{Title: "Create Latent"},
		},
		"11": {
			Inputs: map[string]interface{}{
				"samples": []interface{}{"9", 0},
				"vae":     []interface{}{"6", 2},
			},
			ClassType: "VAEDecode",
			Meta:      NodeMeta{Title: "Decode Latent"},
		},
		"12": {
			Inputs: map[string]interface{}{
				"filename_prefix": outputPrefix,
				"images":          []interface{}{"11", 0},
			},
			ClassType: "SaveImage",
			Meta:      NodeMeta{Title: "Save Output"},
		},
	}
}
