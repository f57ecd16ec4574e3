package client

import (
	"encoding/json"
)

// StatusMessage is one message from the server's /ws feed. Data holds a
// pointer to the type-specific payload struct, or nil for message types the
// monitor does not track.
type StatusMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"Data"`
}

func (sm *StatusMessage) UnmarshalJSON(b []byte) error {
	// Unmarshal into an anonymous equivalent type to avoid infinite recursion
	var temp struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}

	sm.Type = temp.Type

	switch sm.Type {
	case "status":
		sm.Data = &StatusData{}
	case "executing":
		sm.Data = &ExecutingData{}
	case "progress":
		sm.Data = &ProgressData{}
	case "execution_error":
		sm.Data = &ExecutionErrorData{}
	default:
		// execution_start, execution_cached and extension chatter are not
		// tracked by the polling pipeline
		sm.Data = nil
	}

	if sm.Data != nil {
		if err := json.Unmarshal(temp.Data, sm.Data); err != nil {
			return err
		}
	}

	return nil
}

/*
{"type": "status", "data": {"status": {"exec_info": {"queue_remaining": 1}}}}
*/
type StatusData struct {
	Status struct {
		ExecInfo struct {
			QueueRemaining int `json:"queue_remaining"`
		} `json:"exec_info"`
	} `json:"status"`
}

/*
{"type": "executing", "data": {"node": "9", "prompt_id": "..."}}
The node field is null when the final node of a prompt has finished.
*/
type ExecutingData struct {
	Node     *string `json:"node"`
	PromptID string  `json:"prompt_id"`
}

/*
{"type": "progress", "data": {"value": 12, "max": 25}}
*/
type ProgressData struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

type ExecutionErrorData struct {
	PromptID         string   `json:"prompt_id"`
	Node             string   `json:"node_id"`
	NodeType         string   `json:"node_type"`
	ExceptionMessage string   `json:"exception_message"`
	ExceptionType    string   `json:"exception_type"`
	Traceback        []string `json:"traceback"`
}
