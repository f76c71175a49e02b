package renderers

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubRendererPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "frames"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	r, err := newPubSubRenderer(ctx, RendererConfig{
		ID:     "pubsub",
		Type:   TypePubSub,
		PubSub: &PubSubRendererConfig{ProjectID: "test-project", Topic: "frames"},
	}, Deps{Log: nopLog})
	if err != nil {
		t.Fatalf("newPubSubRenderer: %v", err)
	}
	defer r.(*pubsubRenderer).Close()

	if err := r.Render(ctx, sampleFrame()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["session_id"] != "session-1" {
		t.Fatalf("unexpected attributes: %#v", msgs[0].Attributes)
	}
	var got Frame
	if err := json.Unmarshal(msgs[0].Data, &got); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.Sequence != 7 {
		t.Fatalf("sequence = %d", got.Sequence)
	}
}
