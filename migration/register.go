package migration

import (
	"reflect"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
)

// Migratable is implemented by any entity that supports schema versioning.
// Schema migration works for both messages and models, as long as they
// maintain their version inside the metadata.
type Migratable interface {
	// GetMetadata returns the metadata of this entity. Returned metadata
	// must never be nil.
	GetMetadata() *warden.Metadata

	// Validate returns an error if the entity state is not valid.
	Validate() error
}

// Migrator is a function that migrates an entity from exactly one schema
// version below to the version it was registered with. The entity is
// modified in place.
type Migrator func(db warden.ReadOnlyKVStore, m Migratable) error

// NoModification is a migration function that migrates data that requires no
// change. It should be used to register migrations that do not require any
// modifications.
func NoModification(db warden.ReadOnlyKVStore, m Migratable) error {
	return nil
}

func newRegister() *register {
	return &register{
		migrations: make(map[payloadVersion]Migrator),
	}
}

// register maintains a migration function declaration for every supported
// entity and schema version pair.
type register struct {
	migrations map[payloadVersion]Migrator
}

// payloadVersion references a message or a model at a given schema version.
type payloadVersion struct {
	payload reflect.Type
	version uint32
}

func (r *register) MustRegister(migrateTo uint32, m Migratable, fn Migrator) {
	if err := r.Register(migrateTo, m, fn); err != nil {
		panic(err)
	}
}

func (r *register) Register(migrateTo uint32, m Migratable, fn Migrator) error {
	if migrateTo < 1 {
		return errors.Wrap(errors.ErrInput, "minimal allowed version is 1")
	}

	tp := reflect.TypeOf(m)
	for tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	if tp.Kind() != reflect.Struct {
		return errors.Wrapf(errors.ErrInput, "only struct can be migrated, got %T", m)
	}

	// Migrations must be registered sequentially, starting with one. This
	// guarantees that there are no gaps and a migration can always be run
	// from the first version to the latest one.
	if migrateTo > 1 {
		prev := payloadVersion{payload: tp, version: migrateTo - 1}
		if _, ok := r.migrations[prev]; !ok {
			return errors.Wrapf(errors.ErrInput, "missing %d version migration", migrateTo-1)
		}
	}

	pv := payloadVersion{payload: tp, version: migrateTo}
	if _, ok := r.migrations[pv]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "already registered: %s.%s:%d", tp.PkgPath(), tp.Name(), migrateTo)
	}
	r.migrations[pv] = fn
	return nil
}

// Apply updates an entity by applying all missing migrations in order. Even
// a no modification migration is updating the metadata to point to the
// latest data format version.
//
// Because changes are applied directly on the passed entity, even if this
// function fails some of the migrations might have been applied.
//
// Validation method is called only on the final version of the entity.
func (r *register) Apply(db warden.ReadOnlyKVStore, m Migratable, migrateTo uint32) error {
	if migrateTo < 1 {
		return errors.Wrap(errors.ErrInput, "minimal allowed version is 1")
	}

	meta := m.GetMetadata()
	if meta == nil {
		return errors.Wrapf(errors.ErrMetadata, "%T metadata is nil", m)
	}

	tp := reflect.TypeOf(m)
	for tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}

	for v := meta.Schema + 1; v <= migrateTo; v++ {
		migrate, ok := r.migrations[payloadVersion{payload: tp, version: v}]
		if !ok {
			return errors.Wrapf(errors.ErrSchema, "migration to version %d missing", v)
		}
		if err := migrate(db, m); err != nil {
			return errors.Wrapf(err, "migration to version %d", v)
		}
		meta.Schema = v
	}

	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "validation")
	}
	return nil
}

// reg is a globally available register instance that must be used during the
// runtime to register migration handlers.
// Register is declared as a separate type so that it can be tested without
// worrying about the global state.
var reg *register = newRegister()

// MustRegister registers a migration function for a given entity and schema
// version. Migrations must be registered sequentially, starting with version
// one. This function panics if the registration is not possible.
func MustRegister(migrateTo uint32, m Migratable, fn Migrator) {
	reg.MustRegister(migrateTo, m, fn)
}

// Apply updates an entity by applying all missing migrations, bringing it up
// to the given schema version. Even a no modification migration is updating
// the metadata to point to the latest data format version.
//
// Because changes are applied directly on the passed entity, even if this
// function fails some of the migrations might have been applied.
func Apply(db warden.ReadOnlyKVStore, m Migratable, migrateTo uint32) error {
	return reg.Apply(db, m, migrateTo)
}
