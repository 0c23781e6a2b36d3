package crossdomain

import (
	"bytes"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
	"github.com/warden-one/warden/x"
	"github.com/tendermint/tendermint/libs/common"
)

const relayCost = 200

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r warden.Registry, auth x.Authenticator) {
	r = migration.SchemaMigratingRegistry("crossdomain", r)
	r.Handle(&RelayMessageMsg{}, RelayHandler{
		auth:      auth,
		messages:  NewMessageBucket(),
		snapshots: NewSnapshotBucket(),
	})
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))
}

// RegisterQuery registers the snapshot and message buckets.
func RegisterQuery(qr warden.QueryRouter) {
	NewSnapshotBucket().Register("crossdomain/snapshots", qr)
	NewMessageBucket().Register("crossdomain/messages", qr)
}

// NewConfigHandler returns the gconf based configuration update handler
// for this package.
func NewConfigHandler(auth x.Authenticator) warden.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler("crossdomain", &conf, auth, migration.CurrentAdmin)
}

// RelayHandler accepts relayer acknowledgements of cross-domain
// messages and applies the payload once the relayer quorum is reached.
type RelayHandler struct {
	auth      x.Authenticator
	messages  orm.ModelBucket
	snapshots orm.ModelBucket
}

var _ warden.Handler = RelayHandler{}

func (h RelayHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: relayCost}, nil
}

func (h RelayHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, relayer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	blockNow, err := warden.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	now := warden.AsUnixTime(blockNow)

	// A snapshot that would not replace the currently trusted one can
	// never be applied, so its confirmations are refused outright.
	var current Snapshot
	switch err := h.snapshots.One(db, []byte(msg.SourceDomain), &current); {
	case err == nil:
		if msg.Payload.ObservedAt <= current.ObservedAt {
			return nil, errors.Wrap(errors.ErrState, "trusted snapshot is not older")
		}
	case errors.ErrNotFound.Is(err):
		// First snapshot for this domain.
	default:
		return nil, errors.Wrap(err, "load trusted snapshot")
	}

	var record Message
	switch err := h.messages.One(db, msg.MessageID, &record); {
	case errors.ErrNotFound.Is(err):
		record = Message{
			Metadata:          &warden.Metadata{Schema: 1},
			MessageID:         msg.MessageID,
			SourceDomain:      msg.SourceDomain,
			DestinationDomain: warden.GetChainID(ctx),
			Payload:           msg.Payload,
			Status:            MessageConfirmed,
			Relayers:          []warden.Address{relayer},
			CreatedAt:         now,
		}
	case err != nil:
		return nil, errors.Wrap(err, "load message")
	default:
		switch record.Status {
		case MessageConfirmed:
			// Still collecting confirmations.
		case MessageFailed:
			return nil, errors.Wrap(errors.ErrState, "message failed")
		default:
			return nil, errors.Wrap(errors.ErrDuplicate, "message already processed")
		}
		if now > record.CreatedAt.Add(conf.MessageTimeout.Duration()) {
			record.Status = MessageFailed
			if _, err := h.messages.Put(db, msg.MessageID, &record); err != nil {
				return nil, errors.Wrap(err, "store message")
			}
			return &warden.DeliverResult{
				Tags: messageTags(&record),
			}, nil
		}
		if record.confirmedBy(relayer) {
			return nil, errors.Wrapf(errors.ErrDuplicate, "relayer %s already confirmed", relayer)
		}
		record.Relayers = append(record.Relayers, relayer)
	}

	if uint32(len(record.Relayers)) >= conf.RelayerQuorum {
		record.Status = MessageVerified
		if err := h.apply(db, &record, now); err != nil {
			return nil, err
		}
		record.Status = MessageExecuted
	}
	if _, err := h.messages.Put(db, msg.MessageID, &record); err != nil {
		return nil, errors.Wrap(err, "store message")
	}
	return &warden.DeliverResult{Tags: messageTags(&record)}, nil
}

// apply makes the payload's membership root the trusted snapshot of the
// source domain.
func (h RelayHandler) apply(db warden.KVStore, record *Message, now warden.UnixTime) error {
	snap := Snapshot{
		Metadata:   &warden.Metadata{Schema: 1},
		DomainID:   record.Payload.DomainID,
		Root:       record.Payload.Root,
		LeafCount:  record.Payload.LeafCount,
		ObservedAt: record.Payload.ObservedAt,
		TrustedAt:  now,
	}
	if _, err := h.snapshots.Put(db, []byte(snap.DomainID), &snap); err != nil {
		return errors.Wrap(err, "store snapshot")
	}
	return nil
}

func (h RelayHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*RelayMessageMsg, warden.Address, error) {
	var msg RelayMessageMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	wantID, err := MessageID(msg.SourceDomain, msg.Payload)
	if err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(wantID, msg.MessageID) {
		return nil, nil, errors.Wrap(errors.ErrInput, "message ID does not match the payload")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	var relayer warden.Address
	for _, r := range conf.Relayers {
		if h.auth.HasAddress(ctx, r) {
			relayer = r
			break
		}
	}
	if relayer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "relayer signature required")
	}
	return &msg, relayer, nil
}

func messageTags(m *Message) []common.KVPair {
	return []common.KVPair{
		{Key: []byte("message-id"), Value: []byte(warden.Address(m.MessageID).String())},
		{Key: []byte("message-status"), Value: []byte(m.Status.String())},
		{Key: []byte("source-domain"), Value: []byte(m.SourceDomain)},
	}
}
