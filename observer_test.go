package gop

import (
	"bytes"
	"log/slog"
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"
)

// recordingObserver captures every notification for inspection.
type recordingObserver struct {
	allocs []allocEvent
	faults []string
}

type allocEvent struct {
	label string
	slots int
	bytes int
}

func (r *recordingObserver) Allocated(label string, slots, bytes int) {
	r.allocs = append(r.allocs, allocEvent{label: label, slots: slots, bytes: bytes})
}

func (r *recordingObserver) Fault(label, msg string) {
	r.faults = append(r.faults, label+": "+msg)
}

func TestAllocationAccounting(t *testing.T) {
	heroBytes := int(unsafe.Sizeof(hero{}))

	Convey("When a pool allocates, grows and shrinks", t, func() {
		rec := &recordingObserver{}
		pool, err := NewObjectPool[hero, uint32, heroShrinkPolicy](512, WithObserver(rec))
		So(err, ShouldBeNil)

		Convey("then construction reports the first chunk", func() {
			So(rec.allocs, ShouldResemble, []allocEvent{
				{label: "gop.hero", slots: 512, bytes: 512 * heroBytes},
			})
		})

		Convey("then growth and shrink report their deltas", func() {
			for i := 0; i < 513; i++ {
				_, _, err := pool.Construct(hero{name: "batman", hp: 5, mp: 5})
				So(err, ShouldBeNil)
			}
			So(len(rec.allocs), ShouldEqual, 2)
			So(rec.allocs[1], ShouldResemble, allocEvent{label: "gop.hero", slots: 512, bytes: 512 * heroBytes})

			pool.Clear()
			So(len(rec.allocs), ShouldEqual, 3)
			So(rec.allocs[2], ShouldResemble, allocEvent{label: "gop.hero", slots: -512, bytes: -512 * heroBytes})
		})
	})

	Convey("When an operation takes a fault path", t, func() {
		rec := &recordingObserver{}
		pool, err := New[int](8, WithObserver(rec), WithMaxSize(8))
		So(err, ShouldBeNil)

		So(pool.Remove(3), ShouldNotBeNil)
		So(len(rec.faults), ShouldEqual, 1)
		So(rec.faults[0], ShouldContainSubstring, "not occupied")

		for i := 0; i < 8; i++ {
			pool.Construct(i)
		}
		_, _, err = pool.Construct(8)
		So(err, ShouldNotBeNil)
		So(len(rec.faults), ShouldEqual, 2)
		So(rec.faults[1], ShouldContainSubstring, "maximum size")
	})
}

func TestTypeLabels(t *testing.T) {
	type relic struct {
		age int
	}

	Convey("When no label is registered", t, func() {
		So(typeLabel[int](), ShouldEqual, "int")
	})

	Convey("When a label is registered for a type", t, func() {
		RegisterTypeLabel[relic]("relic")
		So(typeLabel[relic](), ShouldEqual, "relic")

		Convey("then storage accounting uses it", func() {
			rec := &recordingObserver{}
			sp := NewStoragePool[relic](rec)
			So(sp.Allocate(4), ShouldBeNil)
			So(rec.allocs[0].label, ShouldEqual, "relic")
		})
	})
}

func TestSlogObserver(t *testing.T) {
	Convey("When routing notifications through slog", t, func() {
		var buf bytes.Buffer
		obs := SlogObserver(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

		obs.Allocated("int", 512, 2048)
		So(buf.String(), ShouldContainSubstring, "storage allocated")
		So(buf.String(), ShouldContainSubstring, "slots=512")

		buf.Reset()
		obs.Allocated("int", -512, -2048)
		So(buf.String(), ShouldContainSubstring, "storage released")
		So(buf.String(), ShouldContainSubstring, "bytes=2048")

		buf.Reset()
		obs.Fault("int", "boom")
		So(buf.String(), ShouldContainSubstring, "pool fault")
		So(buf.String(), ShouldContainSubstring, "boom")
	})
}
