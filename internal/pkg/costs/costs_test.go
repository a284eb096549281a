package costs

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAdd(t *testing.T) {
	Convey("Add 能正确累加成本", t, func() {
		var c Costs

		Convey("单笔成本同时累加提供方、阶段与总计", func() {
			c = Add(c, ProviderClaude, StageScript, 0.02)
			So(c.Claude, ShouldAlmostEqual, 0.02)
			So(c.Step1.Claude, ShouldAlmostEqual, 0.02)
			So(c.Step1.Total, ShouldAlmostEqual, 0.02)
			So(c.Total, ShouldAlmostEqual, 0.02)
		})

		Convey("多笔成本按维度独立累加", func() {
			c = Add(c, ProviderClaude, StageScript, 0.02)
			c = Add(c, ProviderElevenLabs, StageVoiceover, 0.05)

			So(c.Total, ShouldAlmostEqual, 0.07)
			So(c.Step1.Total, ShouldAlmostEqual, 0.02)
			So(c.Step2.Total, ShouldAlmostEqual, 0.05)
			So(c.Claude, ShouldAlmostEqual, 0.02)
			So(c.ElevenLabs, ShouldAlmostEqual, 0.05)
		})

		Convey("累加顺序不影响结果", func() {
			var a, b Costs
			a = Add(a, ProviderClaude, StageScript, 0.02)
			a = Add(a, ProviderElevenLabs, StageVoiceover, 0.05)
			b = Add(b, ProviderElevenLabs, StageVoiceover, 0.05)
			b = Add(b, ProviderClaude, StageScript, 0.02)

			So(a.Total, ShouldAlmostEqual, b.Total)
			So(a.Step1.Total, ShouldAlmostEqual, b.Step1.Total)
			So(a.Step2.Total, ShouldAlmostEqual, b.Step2.Total)
		})

		Convey("零或负的 delta 不改变账本", func() {
			before := Add(Costs{}, ProviderShotstack, StageAssembly, 0.3)
			after := Add(before, ProviderShotstack, StageAssembly, 0)
			So(after, ShouldResemble, before)

			after = Add(before, ProviderShotstack, StageAssembly, -1)
			So(after, ShouldResemble, before)
		})

		Convey("其余阶段字段保持不变", func() {
			c = Add(Costs{}, ProviderFalImages, StageImages, 0.12)
			So(c.Step1.Total, ShouldEqual, 0)
			So(c.Step4.Total, ShouldEqual, 0)
			So(c.Step5.Total, ShouldEqual, 0)
			So(c.FalVideos, ShouldEqual, 0)
		})
	})
}

func TestIncPaths(t *testing.T) {
	Convey("IncPaths 展开的增量路径与 Add 规则一致", t, func() {
		Convey("单笔成本展开为四条路径", func() {
			paths := IncPaths(ProviderFalImages, StageImages, 0.12)
			So(paths, ShouldResemble, map[string]float64{
				"total":            0.12,
				"fal_images":       0.12,
				"step3.total":      0.12,
				"step3.fal_images": 0.12,
			})
		})

		Convey("逐路径累加后与 Add 的账本相同", func() {
			expected := Add(Costs{}, ProviderShotstack, StageAssembly, 0.3)
			paths := IncPaths(ProviderShotstack, StageAssembly, 0.3)
			So(paths["total"], ShouldAlmostEqual, expected.Total)
			So(paths["shotstack"], ShouldAlmostEqual, expected.Shotstack)
			So(paths["step5.total"], ShouldAlmostEqual, expected.Step5.Total)
			So(paths["step5.shotstack"], ShouldAlmostEqual, expected.Step5.Shotstack)
			So(len(paths), ShouldEqual, 4)
		})

		Convey("零或负的 delta 返回空", func() {
			So(IncPaths(ProviderClaude, StageScript, 0), ShouldBeNil)
			So(IncPaths(ProviderClaude, StageScript, -1), ShouldBeNil)
		})
	})
}

func TestRates(t *testing.T) {
	Convey("计费换算正确", t, func() {
		Convey("按 token 计费", func() {
			So(TokenCost(1_000_000, 3.0), ShouldAlmostEqual, 3.0)
			So(TokenCost(500, 3.0), ShouldAlmostEqual, 0.0015)
			So(TokenCost(0, 3.0), ShouldEqual, 0)
		})

		Convey("按字符计费", func() {
			// 月度 22 美元包含 10 万字符
			So(CharacterCost(100_000, 22, 100_000), ShouldAlmostEqual, 22)
			So(CharacterCost(1000, 22, 100_000), ShouldAlmostEqual, 0.22)
			So(CharacterCost(0, 22, 100_000), ShouldEqual, 0)
			So(CharacterCost(1000, 22, 0), ShouldEqual, 0)
		})

		Convey("按渲染分钟计费", func() {
			So(RenderMinuteCost(60, 0.4), ShouldAlmostEqual, 0.4)
			So(RenderMinuteCost(30, 0.4), ShouldAlmostEqual, 0.2)
			So(RenderMinuteCost(0, 0.4), ShouldEqual, 0)
		})
	})
}
