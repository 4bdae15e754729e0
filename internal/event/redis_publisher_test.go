package event

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// newTestPublisher はminiredisに接続したRedisPublisherを生成する。
func newTestPublisher(t *testing.T) (*RedisPublisher, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	p, err := NewRedisPublisher("redis://"+mr.Addr(), "user-created")
	if err != nil {
		t.Fatalf("failed to create publisher: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	return p, mr
}

// Publishがストリームにエントリを追加しメッセージIDを返すことを検証
func TestRedisPublisher_Publish(t *testing.T) {
	p, mr := newTestPublisher(t)

	e := NewAccountCreated("johndoe")
	messageID, err := p.Publish(context.Background(), "johndoe", e)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if messageID == "" {
		t.Fatal("expected non-empty message ID")
	}

	entries, err := mr.Stream("user-created")
	if err != nil {
		t.Fatalf("failed to read stream: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 stream entry, got %d", len(entries))
	}

	values := map[string]string{}
	for i := 0; i+1 < len(entries[0].Values); i += 2 {
		values[entries[0].Values[i]] = entries[0].Values[i+1]
	}
	if values["username"] != "johndoe" {
		t.Errorf("expected username johndoe in entry, got %q", values["username"])
	}
	if values["key"] != "johndoe" {
		t.Errorf("expected routing key johndoe in entry, got %q", values["key"])
	}
	if values["event_id"] != e.EventID {
		t.Errorf("expected event_id %s, got %q", e.EventID, values["event_id"])
	}
}

// nilイベントと不正イベントがエラーになることを検証
func TestRedisPublisher_Publish_InvalidEvent(t *testing.T) {
	p, _ := newTestPublisher(t)

	if _, err := p.Publish(context.Background(), "key", nil); err == nil {
		t.Error("expected error for nil event")
	}

	if _, err := p.Publish(context.Background(), "key", &AccountCreated{}); err == nil {
		t.Error("expected error for event missing required fields")
	}
}

// Pingが疎通確認に成功することを検証
func TestRedisPublisher_Ping(t *testing.T) {
	p, mr := newTestPublisher(t)

	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("Ping returned error: %v", err)
	}

	mr.Close()
	if err := p.Ping(context.Background()); err == nil {
		t.Error("expected Ping to fail after broker shutdown")
	}
}

// NewAccountCreatedが必須フィールドをすべて設定することを検証
func TestNewAccountCreated(t *testing.T) {
	e := NewAccountCreated("johndoe")

	if err := e.Validate(); err != nil {
		t.Errorf("expected valid event, got: %v", err)
	}
	if e.Username != "johndoe" {
		t.Errorf("expected username johndoe, got %s", e.Username)
	}
	if e.EventID == "" {
		t.Error("expected generated event ID")
	}
}
