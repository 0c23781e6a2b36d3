package crossdomain

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
)

// OutboundMessage is a snapshot export addressed to another domain.
type OutboundMessage struct {
	DestinationDomain string           `json:"destination_domain"`
	Payload           *SnapshotPayload `json:"payload"`
}

// Transport is the message channel collaborator. The engine never
// depends on a concrete transport, operators wire one when exporting
// verified snapshots to other domains.
type Transport interface {
	// Send hands the message to the transport for delivery.
	Send(ctx warden.Context, msg *OutboundMessage) error

	// EstimateCost returns the expected transmission cost of the
	// message.
	EstimateCost(msg *OutboundMessage) (coin.Coin, error)
}

// ExportSnapshot sends a verified snapshot to the given destination
// domain through the transport and returns what the transmission is
// expected to cost. A transport that cannot price the message aborts
// the export before anything is sent.
func ExportSnapshot(ctx warden.Context, t Transport, dest string, snap *Snapshot) (coin.Coin, error) {
	if snap == nil {
		return coin.Coin{}, errors.Wrap(errors.ErrEmpty, "snapshot is required")
	}
	msg := &OutboundMessage{
		DestinationDomain: dest,
		Payload: &SnapshotPayload{
			DomainID:   snap.DomainID,
			Root:       snap.Root,
			LeafCount:  snap.LeafCount,
			ObservedAt: snap.ObservedAt,
		},
	}
	cost, err := t.EstimateCost(msg)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "estimate cost")
	}
	if !cost.IsNonNegative() {
		return coin.Coin{}, errors.Wrapf(errors.ErrAmount, "negative cost estimate %s", cost)
	}
	if err := t.Send(ctx, msg); err != nil {
		return coin.Coin{}, errors.Wrap(err, "send")
	}
	return cost, nil
}
