package client

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFaceSwapWorkflowStructure(t *testing.T) {
	wf := FaceSwapWorkflow("face_001.png", "body_ref.png", 0.85, "watercolor")

	if len(wf) != 12 {
		t.Fatalf("expected 12 nodes, got %d", len(wf))
	}

	if wf["1"].Inputs["image"] != "face_001.png" {
		t.Errorf("source face not wired into node 1: %v", wf["1"].Inputs["image"])
	}
	if wf["2"].Inputs["image"] != "body_ref.png" {
		t.Errorf("target body not wired into node 2: %v", wf["2"].Inputs["image"])
	}

	sampler := wf["9"]
	if sampler.ClassType != "KSamplerAdvanced" {
		t.Errorf("node 9 class: %s", sampler.ClassType)
	}
	if sampler.Inputs["ip_adapter_strength"] != 0.85 {
		t.Errorf("style strength not wired: %v", sampler.Inputs["ip_adapter_strength"])
	}
	if sampler.Inputs["steps"] != 25 {
		t.Errorf("sampler steps: %v", sampler.Inputs["steps"])
	}

	positive, ok := wf["7"].Inputs["text"].(string)
	if !ok || !strings.Contains(positive, "watercolor") {
		t.Errorf("style descriptor missing from positive prompt: %q", positive)
	}
	negative, ok := wf["8"].Inputs["text"].(string)
	if !ok || !strings.Contains(negative, "realistic photo") {
		t.Errorf("unexpected negative prompt: %q", negative)
	}

	latent := wf["10"]
	if latent.Inputs["width"] != 512 || latent.Inputs["height"] != 768 {
		t.Errorf("latent dimensions: %vx%v", latent.Inputs["width"], latent.Inputs["height"])
	}
}

func TestFaceSwapWorkflowLinks(t *testing.T) {
	wf := FaceSwapWorkflow("a.png", "b.png", 0.5, "illustration")

	// the save node must consume the VAE decode output
	save := wf["12"]
	link, ok := save.Inputs["images"].([]interface{})
	if !ok || len(link) != 2 || link[0] != "11" || link[1] != 0 {
		t.Errorf("save node link malformed: %v", save.Inputs["images"])
	}

	// face embedding feeds the sampler
	sampler := wf["9"]
	embed, ok := sampler.Inputs["face_embedding"].([]interface{})
	if !ok || embed[0] != "5" {
		t.Errorf("face embedding link malformed: %v", sampler.Inputs["face_embedding"])
	}
}

func TestFaceSwapWorkflowSerialization(t *testing.T) {
	wf := FaceSwapWorkflow("a.png", "b.png", 0.8, "illustration")

	data, err := json.Marshal(wf)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// the wire format ComfyUI expects: class_type and inputs per node
	var decoded map[string]struct {
		Inputs    map[string]interface{} `json:"inputs"`
		ClassType string                 `json:"class_type"`
		Meta      struct {
			Title string `json:"title"`
		} `json:"_meta"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["6"].ClassType != "CheckpointLoaderSimple" {
		t.Errorf("node 6 class after roundtrip: %s", decoded["6"].ClassType)
	}
	if decoded["12"].Meta.Title != "Save Output" {
		t.Errorf("node 12 title after roundtrip: %s", decoded["12"].Meta.Title)
	}
}

func TestFaceSwapWorkflowSeedVaries(t *testing.T) {
	// seeds come from the entropy source; two graphs sharing a seed should be
	// vanishingly rare
	a := FaceSwapWorkflow("a.png", "b.png", 0.8, "illustration")["9"].Inputs["seed"]
	same := true
	for i := 0; i < 8; i++ {
		b := FaceSwapWorkflow("a.png", "b.png", 0.8, "illustration")["9"].Inputs["seed"]
		if a != b {
			same = false
			break
		}
	}
	if same {
		t.Error("seed did not vary across workflow builds")
	}
}
