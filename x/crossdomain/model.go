package crossdomain

import (
	"crypto/sha256"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
)

func init() {
	migration.MustRegister(1, &Snapshot{}, migration.NoModification)
	migration.MustRegister(1, &Message{}, migration.NoModification)
}

var _ orm.CloneableData = (*Snapshot)(nil)

func (s *Snapshot) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	if s.DomainID == "" {
		errs = errors.Append(errs,
			errors.Field("DomainID", errors.ErrEmpty, "domain is required"))
	}
	if len(s.Root) != sha256.Size {
		errs = errors.Append(errs,
			errors.Field("Root", errors.ErrInput, "32 byte root required"))
	}
	if s.LeafCount == 0 {
		errs = errors.Append(errs,
			errors.Field("LeafCount", errors.ErrEmpty, "empty membership set"))
	}
	if s.ObservedAt == 0 {
		errs = errors.Append(errs,
			errors.Field("ObservedAt", errors.ErrEmpty, "observation time is required"))
	}
	return errs
}

func (s *Snapshot) Copy() orm.CloneableData {
	cpy := *s
	cpy.Metadata = s.Metadata.Copy()
	cpy.Root = append([]byte(nil), s.Root...)
	return &cpy
}

var _ orm.CloneableData = (*Message)(nil)

func (m *Message) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.MessageID) != sha256.Size {
		errs = errors.Append(errs,
			errors.Field("MessageID", errors.ErrInput, "32 byte message ID required"))
	}
	if m.SourceDomain == "" {
		errs = errors.Append(errs,
			errors.Field("SourceDomain", errors.ErrEmpty, "domain is required"))
	}
	if m.Payload == nil {
		errs = errors.Append(errs,
			errors.Field("Payload", errors.ErrEmpty, "payload is required"))
	}
	switch m.Status {
	case MessageConfirmed, MessageVerified, MessageExecuted, MessageFailed:
	default:
		errs = errors.Append(errs,
			errors.Field("Status", errors.ErrModel, "invalid status"))
	}
	if len(m.Relayers) == 0 {
		errs = errors.Append(errs,
			errors.Field("Relayers", errors.ErrEmpty, "at least one confirmation required"))
	}
	if m.CreatedAt == 0 {
		errs = errors.Append(errs,
			errors.Field("CreatedAt", errors.ErrEmpty, "creation time is required"))
	}
	return errs
}

func (m *Message) Copy() orm.CloneableData {
	cpy := *m
	cpy.Metadata = m.Metadata.Copy()
	cpy.MessageID = append([]byte(nil), m.MessageID...)
	if m.Payload != nil {
		p := *m.Payload
		p.Root = append([]byte(nil), m.Payload.Root...)
		cpy.Payload = &p
	}
	cpy.Relayers = make([]warden.Address, len(m.Relayers))
	for i, r := range m.Relayers {
		cpy.Relayers[i] = append(warden.Address(nil), r...)
	}
	return &cpy
}

// confirmedBy returns true if the given relayer already acknowledged
// this message.
func (m *Message) confirmedBy(relayer warden.Address) bool {
	for _, r := range m.Relayers {
		if r.Equals(relayer) {
			return true
		}
	}
	return false
}

// MessageID computes the identifier of a snapshot message. Relayers
// that observe the same payload in the same source domain derive the
// same ID, so their confirmations meet on one record.
func MessageID(sourceDomain string, payload *SnapshotPayload) ([]byte, error) {
	raw, err := codec.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}
	h := sha256.New()
	h.Write([]byte(sourceDomain))
	h.Write([]byte{0})
	h.Write(raw)
	return h.Sum(nil), nil
}

// NewSnapshotBucket returns a bucket for trusted membership snapshots,
// keyed by the domain ID.
func NewSnapshotBucket() orm.ModelBucket {
	b := orm.NewModelBucket("xsnap", &Snapshot{})
	return migration.NewModelBucket("crossdomain", b)
}

// NewMessageBucket returns a bucket for cross-domain message records,
// keyed by the message ID.
func NewMessageBucket() orm.ModelBucket {
	b := orm.NewModelBucket("xmsg", &Message{})
	return migration.NewModelBucket("crossdomain", b)
}
