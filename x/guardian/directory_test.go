package guardian

import (
	"testing"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/store"
	"github.com/warden-one/warden/wardentest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDirectory(t *testing.T) {
	Convey("Given a directory with one guardian of each role", t, func() {
		db := store.MemStore()
		migration.MustInitPkg(db, "guardian")

		var (
			regular   = wardentest.NewCondition().Address()
			emergency = wardentest.NewCondition().Address()
			stranger  = wardentest.NewCondition().Address()
		)

		bucket := NewGuardianBucket()
		put := func(g Guardian) {
			g.Metadata = &warden.Metadata{Schema: 1}
			_, err := bucket.Put(db, g.Address, &g)
			So(err, ShouldBeNil)
		}
		put(Guardian{
			Address:      regular,
			Role:         RoleRegular,
			Status:       StatusPending,
			RegisteredAt: 100,
			ActivatedAt:  200,
			ExpiresAt:    500,
		})
		put(Guardian{
			Address:      emergency,
			Role:         RoleEmergency,
			Status:       StatusPending,
			RegisteredAt: 100,
			ActivatedAt:  100,
		})

		d := NewDirectory()

		Convey("A guardian is not active before the activation delay matures", func() {
			ok, err := d.IsActive(db, regular, 199)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			cnt, err := d.ActiveCount(db, RoleRegular, 199)
			So(err, ShouldBeNil)
			So(cnt, ShouldEqual, 0)
		})

		Convey("A matured record is observed active without any transition", func() {
			ok, err := d.IsActive(db, regular, 200)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			cnt, err := d.ActiveCount(db, RoleRegular, 200)
			So(err, ShouldBeNil)
			So(cnt, ShouldEqual, 1)
		})

		Convey("Roles are counted separately", func() {
			cnt, err := d.ActiveCount(db, RoleEmergency, 200)
			So(err, ShouldBeNil)
			So(cnt, ShouldEqual, 1)
		})

		Convey("Expiry is observed lazily", func() {
			ok, err := d.IsActive(db, regular, 500)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			ok, err = d.IsActive(db, emergency, 500)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("A revoked record is never active again", func() {
			var g Guardian
			So(bucket.One(db, regular, &g), ShouldBeNil)
			g.Status = StatusRevoked
			_, err := bucket.Put(db, regular, &g)
			So(err, ShouldBeNil)

			ok, err := d.IsActive(db, regular, 300)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("An unknown address is simply inactive", func() {
			ok, err := d.IsActive(db, stranger, 300)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}
