package vault

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/orm"
	"github.com/warden-one/warden/x/guardian"
)

// voteOps is the quorum core shared by the vote and the signature
// submission handlers.
type voteOps struct {
	votes orm.ModelBucket
	dir   guardian.Directory
}

// record stores a vote. A second vote by the same guardian on the same
// request fails with ErrDuplicate and changes nothing.
func (o voteOps) record(db warden.KVStore, v *Vote) error {
	key := voteKey(v.RequestID, v.Guardian)
	switch err := o.votes.Has(db, key); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "guardian %s already voted", v.Guardian)
	case errors.ErrNotFound.Is(err):
		// First vote of this pair.
	default:
		return errors.Wrap(err, "check vote")
	}
	if _, err := o.votes.Put(db, key, v); err != nil {
		return errors.Wrap(err, "store vote")
	}
	return nil
}

// tally walks the vote set and sums weights. Local voters count only
// while currently active in the directory: the vote set is fixed but
// activity is read live at every evaluation, so a mid-vote guardian
// change can delay but never corrupt an approval. Remote votes keep
// the weight fixed at cast time, there is no local record to re-check.
func (o voteOps) tally(db warden.ReadOnlyKVStore, requestID []byte, now warden.UnixTime) (regular, emergency uint32, err error) {
	var votes []Vote
	if _, err := o.votes.ByIndex(db, "request", requestID, &votes); err != nil {
		return 0, 0, errors.Wrap(err, "votes by request")
	}
	for i := range votes {
		v := &votes[i]
		if !v.Remote {
			active, err := o.dir.IsActive(db, v.Guardian, now)
			if err != nil {
				return 0, 0, errors.Wrap(err, "guardian activity")
			}
			if !active {
				continue
			}
		}
		if v.Role == guardian.RoleEmergency {
			emergency += v.Weight
		} else {
			regular += v.Weight
		}
	}
	return regular, emergency, nil
}

// evaluate re-tallies the request and applies the approval transition
// when a quorum is reached. It mutates the request in memory and
// returns whether approval was newly reached, the caller persists.
// A request never regresses: evaluate is only meaningful while the
// request is pending.
func (o voteOps) evaluate(db warden.KVStore, req *Request, requestID []byte, rule *Rule, now warden.UnixTime) (bool, error) {
	if req.Status != RequestPending {
		return false, nil
	}
	regular, emergency, err := o.tally(db, requestID, now)
	if err != nil {
		return false, err
	}
	switch {
	case req.Kind == KindEmergencyUnlock && emergency >= rule.OverrideQuorum:
		// The emergency fast path approves with no cooling period.
		req.Status = RequestApproved
		req.ApprovedVia = ViaOverride
	case regular >= rule.Quorum:
		req.Status = RequestApproved
		req.ApprovedVia = ViaQuorum
		if rule.CoolingPeriod > 0 {
			req.TimelockDeadline = now.Add(rule.CoolingPeriod.Duration())
		}
	default:
		return false, nil
	}
	return true, nil
}
