package gop

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFixedStorageAllocation(t *testing.T) {
	Convey("When creating a fixed-page storage pool", t, func() {
		sp, err := NewFixedStoragePool[int](512, 8, nil)
		So(err, ShouldBeNil)
		So(sp.StorageCount(), ShouldEqual, 1)
		So(sp.Size(), ShouldEqual, 512)
		So(sp.PageSize(), ShouldEqual, 512)

		Convey("then allocating appends exactly one page", func() {
			So(sp.Allocate(), ShouldBeNil)
			So(sp.StorageCount(), ShouldEqual, 2)
			So(sp.Size(), ShouldEqual, 1024)

			Convey("and indices resolve with page arithmetic", func() {
				*sp.At(0) = 42
				*sp.At(513) = 99
				So(sp.Storage(0)[0], ShouldEqual, 42)
				So(sp.Storage(1)[1], ShouldEqual, 99)
			})

			Convey("and deallocating pops pages back off", func() {
				sp.Deallocate()
				So(sp.StorageCount(), ShouldEqual, 1)
				So(sp.Size(), ShouldEqual, 512)

				sp.Deallocate()
				So(sp.StorageCount(), ShouldEqual, 0)
				So(sp.Size(), ShouldEqual, 0)

				Convey("and the pool can be refilled afterwards", func() {
					So(sp.Allocate(), ShouldBeNil)
					So(sp.Size(), ShouldEqual, 512)
				})
			})
		})
	})
}

func TestFixedStoragePageCeiling(t *testing.T) {
	Convey("When a fixed-page pool reaches its page ceiling", t, func() {
		sp, err := NewFixedStoragePool[int](8, 2, nil)
		So(err, ShouldBeNil)
		So(sp.Allocate(), ShouldBeNil)
		So(sp.StorageCount(), ShouldEqual, 2)

		Convey("then one more page is a capacity overflow", func() {
			err := sp.Allocate()
			So(errors.Is(err, ErrCapacityOverflow), ShouldBeTrue)
			So(sp.StorageCount(), ShouldEqual, 2)
			So(sp.Size(), ShouldEqual, 16)
		})
	})
}

func TestFixedStorageRejectsBadConstruction(t *testing.T) {
	Convey("When constructing with a zero page size", t, func() {
		_, err := NewFixedStoragePool[int](0, 8, nil)
		So(errors.Is(err, ErrCapacityOverflow), ShouldBeTrue)
	})

	Convey("When constructing with no page budget at all", t, func() {
		_, err := NewFixedStoragePool[int](8, 0, nil)
		So(errors.Is(err, ErrCapacityOverflow), ShouldBeTrue)
	})
}
