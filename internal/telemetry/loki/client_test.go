package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func capture(t *testing.T, status int) (*Client, *[]byte) {
	t.Helper()
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL), &body
}

func TestPushEventJSON(t *testing.T) {
	c, body := capture(t, http.StatusNoContent)

	line := `{"id":"ev-1","eventType":"auth.session_reuse_detected","accountId":"acct-1","source":"auth","createdAt":"2026-08-31T12:00:00Z"}`
	if err := c.PushEventJSON(context.Background(), []byte(line)); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}

	var req pushRequest
	if err := json.Unmarshal(*body, &req); err != nil {
		t.Fatalf("unmarshal push body: %v", err)
	}
	if len(req.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(req.Streams))
	}
	labels := req.Streams[0].Stream
	if labels["job"] != "submitiq" {
		t.Errorf("job label = %q", labels["job"])
	}
	if labels["account_id"] != "acct-1" {
		t.Errorf("account_id label = %q", labels["account_id"])
	}
	// Dots are not valid in label values and get replaced.
	if labels["event_type"] != "auth_session_reuse_detected" {
		t.Errorf("event_type label = %q", labels["event_type"])
	}

	want := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	values := req.Streams[0].Values
	if len(values) != 1 || len(values[0]) != 2 {
		t.Fatalf("values = %v", values)
	}
	if values[0][0] != strconv.FormatInt(want.UnixNano(), 10) {
		t.Errorf("timestamp = %q, want %d", values[0][0], want.UnixNano())
	}
	if values[0][1] != line {
		t.Errorf("line = %q", values[0][1])
	}
}

func TestPushEventJSON_UnparseableLineStillPushed(t *testing.T) {
	c, body := capture(t, http.StatusNoContent)

	if err := c.PushEventJSON(context.Background(), []byte("not json at all")); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	var req pushRequest
	if err := json.Unmarshal(*body, &req); err != nil {
		t.Fatalf("unmarshal push body: %v", err)
	}
	if req.Streams[0].Values[0][1] != "not json at all" {
		t.Errorf("line = %q", req.Streams[0].Values[0][1])
	}
	if len(req.Streams[0].Stream) != 1 {
		t.Errorf("labels = %v, want only job", req.Streams[0].Stream)
	}
}

func TestPush_Non2xxIsError(t *testing.T) {
	c, _ := capture(t, http.StatusInternalServerError)
	err := c.Push(context.Background(), time.Now(), "line", nil)
	if err == nil {
		t.Error("expected error on 500 response")
	}
}
