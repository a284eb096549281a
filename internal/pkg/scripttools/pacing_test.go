package scripttools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewPacingEstimator(t *testing.T) {
	Convey("NewPacingEstimator 构造可用的估算器", t, func() {
		pe := NewPacingEstimator()
		So(pe, ShouldNotBeNil)

		// 无论分词器是否加载成功，估算结果都要落在合法时长区间
		got := pe.EstimateSceneDuration("清晨的城市街道上霓虹还未熄灭")
		So(got, ShouldBeGreaterThanOrEqualTo, MinSceneDuration)
		So(got, ShouldBeLessThanOrEqualTo, MaxSceneDuration)
	})
}

func TestEstimateSceneDuration(t *testing.T) {
	Convey("EstimateSceneDuration 按语速估算时长", t, func() {
		// 零值估算器走空格切分的降级路径，结果确定
		pe := &PacingEstimator{}

		Convey("空文本钳到下限", func() {
			So(pe.EstimateSceneDuration(""), ShouldEqual, MinSceneDuration)
		})

		Convey("西文按每秒 2.5 词", func() {
			// 25 词，预期 10 秒
			text := strings.TrimSpace(strings.Repeat("word ", 25))
			So(pe.EstimateSceneDuration(text), ShouldEqual, 10)
		})

		Convey("CJK 按每秒 12 字", func() {
			// 36 字，预期 3 秒
			So(pe.EstimateSceneDuration(strings.Repeat("字", 36)), ShouldEqual, 3)
		})

		Convey("超长文本钳到上限", func() {
			So(pe.EstimateSceneDuration(strings.Repeat("字", 500)), ShouldEqual, MaxSceneDuration)
		})

		Convey("停顿标记不计入时长估算", func() {
			So(pe.EstimateSceneDuration("[pause:5s]"+strings.Repeat("字", 12)), ShouldEqual, 1)
		})
	})
}
