package vault

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/orm"
)

// PolicyBook resolves policy versions. It also answers the guardian
// extension's revocation floor question, so revoking a guardian can
// never leave a vault unable to reach its quorum.
type PolicyBook struct {
	policies orm.VersioningBucket
}

// NewPolicyBook returns a policy book over the default policy bucket.
// Policies are stored under the vault ID with a version suffix, the
// versioning bucket refuses overwrites of existing versions.
func NewPolicyBook() PolicyBook {
	b := orm.NewBucket("vltpol", orm.NewSimpleObj(nil, &Policy{})).
		WithIndex("vault", policyVaultIndexer, false)
	return PolicyBook{
		policies: orm.WithVersioning(orm.WithSeqIDGenerator(b, "id")),
	}
}

// Register registers the policy bucket and its vault index for queries.
func (pb PolicyBook) Register(name string, qr warden.QueryRouter) {
	pb.policies.Register(name, qr)
}

// Latest returns the policy version currently in effect for the vault.
func (pb PolicyBook) Latest(db warden.ReadOnlyKVStore, vaultID []byte) (*Policy, error) {
	_, obj, err := pb.policies.GetLatestVersion(db, vaultID)
	switch {
	case err == nil:
		return asPolicy(obj)
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(errors.ErrNotFound, "no policy for vault %x", vaultID)
	default:
		return nil, errors.Wrap(err, "latest policy")
	}
}

// Version returns one specific policy version of the vault.
func (pb PolicyBook) Version(db warden.ReadOnlyKVStore, vaultID []byte, version uint32) (*Policy, error) {
	obj, err := pb.policies.GetVersion(db, orm.VersionedIDRef{ID: vaultID, Version: version})
	if err != nil {
		return nil, errors.Wrapf(err, "policy %x version %d", vaultID, version)
	}
	return asPolicy(obj)
}

// Append stores the given rules as the next policy version. Prior
// versions are never touched.
func (pb PolicyBook) Append(db warden.KVStore, vaultID []byte, rules []*Rule) (*Policy, error) {
	p := Policy{
		Metadata: &warden.Metadata{Schema: 1},
		VaultID:  vaultID,
		Rules:    rules,
	}
	switch current, err := pb.Latest(db, vaultID); {
	case err == nil:
		// Update derives the next version from the current one.
		p.Version = current.Version
		if _, err := pb.policies.Update(db, vaultID, &p); err != nil {
			return nil, errors.Wrap(err, "store policy")
		}
	case errors.ErrNotFound.Is(err):
		if _, err := pb.policies.CreateWithID(db, vaultID, &p); err != nil {
			return nil, errors.Wrap(err, "store policy")
		}
	default:
		return nil, err
	}
	return &p, nil
}

// HighestQuorum returns the largest regular quorum any vault's current
// policy demands. Policy keys sort by vault and ascending version, so
// the last version seen per vault is the one in effect.
func (pb PolicyBook) HighestQuorum(db warden.ReadOnlyKVStore) (uint32, error) {
	models, err := pb.policies.Query(db, warden.PrefixQueryMod, nil)
	if err != nil {
		return 0, errors.Wrap(err, "query policies")
	}
	latest := make(map[string]*Policy)
	for _, m := range models {
		var p Policy
		if err := p.Unmarshal(m.Value); err != nil {
			return 0, errors.Wrap(err, "unmarshal policy")
		}
		latest[string(p.VaultID)] = &p
	}
	var highest uint32
	for _, p := range latest {
		for _, r := range p.Rules {
			if r != nil && r.Kind != KindEmergencyUnlock && r.Quorum > highest {
				highest = r.Quorum
			}
		}
	}
	return highest, nil
}

// Owners resolves vault ownership. It implements the lookup the
// safemode extension needs to authorize toggles.
type Owners struct {
	vaults orm.ModelBucket
}

// NewOwners returns an owner lookup over the default vault bucket.
func NewOwners() Owners {
	return Owners{vaults: NewVaultBucket()}
}

// VaultOwner returns the owner address of the given vault.
func (o Owners) VaultOwner(db warden.ReadOnlyKVStore, vaultID []byte) (warden.Address, error) {
	var v Vault
	if err := o.vaults.One(db, vaultID, &v); err != nil {
		return nil, errors.Wrapf(err, "vault %x", vaultID)
	}
	return v.Owner, nil
}
