package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/iphonefly/realtime-api/internal/model"
)

func seedMessages(env *testEnv, sender string, n int) []model.Message {
	out := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		msg := &model.Message{Text: fmt.Sprintf("%s-%d", sender, i), Sender: sender}
		env.messages.Create(msg)
		out = append(out, *msg)
	}
	return out
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response from %s: %v", url, err)
		}
	}
	return resp
}

func TestListMessagesPagination(t *testing.T) {
	env := newTestEnv(t)
	seedMessages(env, "Alice", 5)

	var page messagesPage
	resp := getJSON(t, env.server.URL+"/api/messages?limit=2&page=2", &page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	if page.Total != 5 {
		t.Errorf("Expected total 5, got %d", page.Total)
	}
	if page.Page != 2 {
		t.Errorf("Expected page 2, got %d", page.Page)
	}
	if page.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", page.TotalPages)
	}
	if len(page.Messages) != 2 {
		t.Fatalf("Expected 2 messages on the page, got %d", len(page.Messages))
	}
	// Within a page, messages come back oldest first
	if page.Messages[0].Text != "Alice-1" || page.Messages[1].Text != "Alice-2" {
		t.Errorf("Expected [Alice-1 Alice-2], got [%s %s]", page.Messages[0].Text, page.Messages[1].Text)
	}
}

func TestListMessagesDefaults(t *testing.T) {
	env := newTestEnv(t)
	seedMessages(env, "Alice", 3)

	var page messagesPage
	getJSON(t, env.server.URL+"/api/messages", &page)
	if len(page.Messages) != 3 || page.Page != 1 {
		t.Errorf("Expected all 3 messages on page 1, got %d on page %d", len(page.Messages), page.Page)
	}
}

func TestMessagesBySender(t *testing.T) {
	env := newTestEnv(t)
	seedMessages(env, "Alice", 2)
	seedMessages(env, "Bob", 1)

	var msgs []model.Message
	resp := getJSON(t, env.server.URL+"/api/messages/user/Alice", &msgs)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages from Alice, got %d", len(msgs))
	}
	for _, msg := range msgs {
		if msg.Sender != "Alice" {
			t.Errorf("Expected sender Alice, got %s", msg.Sender)
		}
	}
	if msgs[0].Text != "Alice-0" {
		t.Errorf("Expected oldest-first ordering, got %s first", msgs[0].Text)
	}
}

func TestChatStats(t *testing.T) {
	env := newTestEnv(t)
	seedMessages(env, "Alice", 3)
	seedMessages(env, "Bob", 1)
	env.messages.Create(&model.Message{Text: "joined", Sender: model.SystemSender, Kind: model.MessageKindSystem})

	// Put one participant on the roster
	conn := env.dial(t)
	sendEvent(t, conn, "join-chat", map[string]string{"displayName": "Alice"})
	expectEvent(t, conn, "new-message")
	expectEvent(t, conn, "users-online")
	expectEvent(t, conn, "message-history")

	var stats chatStats
	resp := getJSON(t, env.server.URL+"/api/chat/stats", &stats)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	// 4 user messages + the seeded system notice + the join notice
	if stats.TotalMessages != 6 {
		t.Errorf("Expected 6 total messages, got %d", stats.TotalMessages)
	}
	if stats.UserMessages != 4 {
		t.Errorf("Expected 4 user messages, got %d", stats.UserMessages)
	}
	if stats.SystemMessages != 2 {
		t.Errorf("Expected 2 system messages, got %d", stats.SystemMessages)
	}
	if len(stats.ActiveUsers) != 2 || stats.ActiveUsers[0].Sender != "Alice" {
		t.Errorf("Expected Alice leading the active users, got %+v", stats.ActiveUsers)
	}
	if stats.OnlineCount != 1 || len(stats.OnlineUsers) != 1 {
		t.Errorf("Expected 1 online user, got %+v", stats)
	}
}

func TestDeleteMessageNotFound(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodDelete, env.server.URL+"/api/messages/no-such-id", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteMessageBroadcastsToConnections(t *testing.T) {
	env := newTestEnv(t)
	msg := &model.Message{Text: "hi", Sender: "Alice"}
	env.messages.Create(msg)

	conn := env.dial(t)

	req, _ := http.NewRequest(http.MethodDelete, env.server.URL+"/api/messages/"+msg.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	evt := expectEvent(t, conn, "message-deleted")
	var payload model.MessageDeleted
	decodeInto(t, evt.Data, &payload)
	if payload.ID != msg.ID {
		t.Errorf("Expected deleted id %s, got %s", msg.ID, payload.ID)
	}

	total, _, _, _ := env.messages.CountByKind()
	if total != 0 {
		t.Errorf("Message still in store after delete, count %d", total)
	}
}

func TestRootBanner(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
