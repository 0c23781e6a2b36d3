package crossdomain

import (
	"context"
	"testing"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/wardentest/assert"
)

// recordingTransport collects every message handed to it.
type recordingTransport struct {
	sent    []*OutboundMessage
	cost    coin.Coin
	costErr error
	sendErr error
}

func (t *recordingTransport) Send(ctx warden.Context, msg *OutboundMessage) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *recordingTransport) EstimateCost(msg *OutboundMessage) (coin.Coin, error) {
	return t.cost, t.costErr
}

func TestExportSnapshot(t *testing.T) {
	snap := &Snapshot{
		Metadata:   &warden.Metadata{Schema: 1},
		DomainID:   "domain-a",
		Root:       []byte("trusted-root"),
		LeafCount:  7,
		ObservedAt: 1000,
	}

	tr := &recordingTransport{cost: coin.NewCoin(1, 0, "IOV")}
	cost, err := ExportSnapshot(context.Background(), tr, "domain-b", snap)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(1, 0, "IOV"), cost)

	assert.Equal(t, 1, len(tr.sent))
	msg := tr.sent[0]
	assert.Equal(t, "domain-b", msg.DestinationDomain)
	assert.Equal(t, "domain-a", msg.Payload.DomainID)
	assert.Equal(t, []byte("trusted-root"), msg.Payload.Root)
	assert.Equal(t, uint64(7), msg.Payload.LeafCount)
	assert.Equal(t, warden.UnixTime(1000), msg.Payload.ObservedAt)
}

func TestExportSnapshotNil(t *testing.T) {
	tr := &recordingTransport{}
	if _, err := ExportSnapshot(context.Background(), tr, "domain-b", nil); !errors.ErrEmpty.Is(err) {
		t.Fatalf("want empty error, got %+v", err)
	}
	assert.Equal(t, 0, len(tr.sent))
}

func TestExportSnapshotEstimateFailure(t *testing.T) {
	snap := &Snapshot{
		Metadata: &warden.Metadata{Schema: 1},
		DomainID: "domain-a",
		Root:     []byte("r"),
	}

	// An estimation failure must abort the export before any send.
	tr := &recordingTransport{costErr: errors.Wrap(errors.ErrState, "no route")}
	if _, err := ExportSnapshot(context.Background(), tr, "domain-b", snap); !errors.ErrState.Is(err) {
		t.Fatalf("want wrapped estimate error, got %+v", err)
	}
	assert.Equal(t, 0, len(tr.sent))

	tr = &recordingTransport{cost: coin.NewCoin(-1, 0, "IOV")}
	if _, err := ExportSnapshot(context.Background(), tr, "domain-b", snap); !errors.ErrAmount.Is(err) {
		t.Fatalf("want amount error, got %+v", err)
	}
	assert.Equal(t, 0, len(tr.sent))
}

func TestExportSnapshotSendFailure(t *testing.T) {
	tr := &recordingTransport{sendErr: errors.Wrap(errors.ErrState, "transport down")}
	_, err := ExportSnapshot(context.Background(), tr, "domain-b", &Snapshot{
		Metadata: &warden.Metadata{Schema: 1},
		DomainID: "domain-a",
		Root:     []byte("r"),
	})
	if !errors.ErrState.Is(err) {
		t.Fatalf("want wrapped transport error, got %+v", err)
	}
}
