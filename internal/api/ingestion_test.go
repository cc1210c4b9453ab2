package api

import (
	"encoding/json"
	"testing"
)

func TestTriggerRequestPriorityBinding(t *testing.T) {
	// Priority 0 is the most urgent legal value; it must be distinguishable
	// from the field being absent
	var req triggerRequest
	if err := json.Unmarshal([]byte(`{"priority":0}`), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if req.Priority == nil || *req.Priority != 0 {
		t.Errorf("explicit priority 0 should bind as 0, got %v", req.Priority)
	}

	req = triggerRequest{}
	if err := json.Unmarshal([]byte(`{"minUpvotes":10}`), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if req.Priority != nil {
		t.Errorf("absent priority should bind as nil, got %d", *req.Priority)
	}
}
