package library

import (
	"fmt"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"reelforge/internal/model/library"
)

func makeCatalog(typeCounts map[string]int) []*library.Location {
	var catalog []*library.Location
	for typ, n := range typeCounts {
		for i := 1; i <= n; i++ {
			catalog = append(catalog, &library.Location{
				ID:   fmt.Sprintf("%s-%d", typ, i),
				Name: fmt.Sprintf("%s %d", typ, i),
				Type: typ,
			})
		}
	}
	return catalog
}

func TestLocationPicker_SelectDiverse(t *testing.T) {
	Convey("LocationPicker.SelectDiverse 轮转类型挑选地点", t, func() {
		Convey("3 种类型各 2 个地点，取 3 个应覆盖至少 2 种类型", func() {
			catalog := makeCatalog(map[string]int{"indoor": 2, "outdoor": 2, "urban": 2})

			// 多个种子下多样性约束都必须成立
			for seed := int64(0); seed < 20; seed++ {
				picker := NewLocationPicker(rand.New(rand.NewSource(seed)))
				selected := picker.SelectDiverse(catalog, 3)

				So(len(selected), ShouldEqual, 3)
				types := make(map[string]bool)
				ids := make(map[string]bool)
				for _, loc := range selected {
					types[loc.Type] = true
					ids[loc.ID] = true
				}
				So(len(types), ShouldBeGreaterThanOrEqualTo, 2)
				So(len(ids), ShouldEqual, 3) // 不重复选择
			}
		})

		Convey("固定种子下选择结果确定", func() {
			catalog := makeCatalog(map[string]int{"indoor": 3, "outdoor": 3})

			first := NewLocationPicker(rand.New(rand.NewSource(42))).SelectDiverse(catalog, 4)
			second := NewLocationPicker(rand.New(rand.NewSource(42))).SelectDiverse(catalog, 4)

			So(len(first), ShouldEqual, 4)
			for i := range first {
				So(first[i].ID, ShouldEqual, second[i].ID)
			}
		})

		Convey("需求超过目录容量时取整个目录", func() {
			catalog := makeCatalog(map[string]int{"indoor": 2})
			picker := NewLocationPicker(rand.New(rand.NewSource(1)))

			selected := picker.SelectDiverse(catalog, 10)
			So(len(selected), ShouldEqual, 2)
		})

		Convey("空目录或非正数量返回 nil", func() {
			picker := NewLocationPicker(rand.New(rand.NewSource(1)))
			So(picker.SelectDiverse(nil, 3), ShouldBeNil)
			So(picker.SelectDiverse(makeCatalog(map[string]int{"a": 1}), 0), ShouldBeNil)
		})
	})
}

func TestAssignScenes(t *testing.T) {
	Convey("AssignScenes 按连续块均分场景", t, func() {
		locA := &library.Location{ID: "a", Type: "indoor"}
		locB := &library.Location{ID: "b", Type: "outdoor"}
		locC := &library.Location{ID: "c", Type: "urban"}

		Convey("6 个场景 3 个地点，每地点连续 2 个场景", func() {
			mapping := AssignScenes(6, []*library.Location{locA, locB, locC})

			So(mapping[1].ID, ShouldEqual, "a")
			So(mapping[2].ID, ShouldEqual, "a")
			So(mapping[3].ID, ShouldEqual, "b")
			So(mapping[4].ID, ShouldEqual, "b")
			So(mapping[5].ID, ShouldEqual, "c")
			So(mapping[6].ID, ShouldEqual, "c")
		})

		Convey("5 个场景 2 个地点，ceil 取整后尾部收敛到最后一个地点", func() {
			mapping := AssignScenes(5, []*library.Location{locA, locB})

			// scenesPerLocation = ceil(5/2) = 3
			So(mapping[1].ID, ShouldEqual, "a")
			So(mapping[2].ID, ShouldEqual, "a")
			So(mapping[3].ID, ShouldEqual, "a")
			So(mapping[4].ID, ShouldEqual, "b")
			So(mapping[5].ID, ShouldEqual, "b")
		})

		Convey("地点数多于场景数时每场景一个地点", func() {
			mapping := AssignScenes(2, []*library.Location{locA, locB, locC})

			So(mapping[1].ID, ShouldEqual, "a")
			So(mapping[2].ID, ShouldEqual, "b")
		})

		Convey("空输入返回 nil", func() {
			So(AssignScenes(0, []*library.Location{locA}), ShouldBeNil)
			So(AssignScenes(3, nil), ShouldBeNil)
		})
	})
}
