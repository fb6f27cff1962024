package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/loupelabs/loupe/internal/model"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestRecordTopic(t *testing.T) {
	if got := RecordTopic("r1"); got != "logs.r1.appended" {
		t.Errorf("RecordTopic = %q", got)
	}
	if RecordTopicAll != "logs.*.appended" {
		t.Errorf("RecordTopicAll = %q", RecordTopicAll)
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(RecordTopic("r1"))
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	event := RecordAppended{
		RepoID: "r1",
		Record: &model.LogRecord{ID: "l-1", ActorName: "amara"},
	}
	if err := pub.Publish(context.Background(), RecordTopic("r1"), event); err != nil {
		t.Fatalf("publishing: %v", err)
	}

	select {
	case data := <-ch:
		var got RecordAppended
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		if got.RepoID != "r1" || got.Record == nil || got.Record.ID != "l-1" {
			t.Errorf("payload = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWildcardMatchesEveryRepository(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(RecordTopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	for _, repo := range []string{"r1", "r2", "r3"} {
		if err := pub.Publish(context.Background(), RecordTopic(repo), RecordAppended{RepoID: repo}); err != nil {
			t.Fatalf("publishing for %s: %v", repo, err)
		}
	}

	for i := 0; i < 3; i++ {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestSubscribeCancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(RecordTopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	// Double cancel must not panic, and the channel must end up closed.
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = &NoopPublisher{}
	if err := p.Publish(context.Background(), TopicFilterSaved, FilterSaved{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
