package scripttools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"reelforge/internal/pkg/apperr"
)

func TestScriptBounds(t *testing.T) {
	Convey("ScriptBounds 按场景数计算字符上下限", t, func() {
		minChars, maxChars := ScriptBounds(4)
		So(maxChars, ShouldEqual, 384) // floor(4*8*12)
		So(minChars, ShouldEqual, 326) // floor(384*0.85)

		minChars, maxChars = ScriptBounds(2)
		So(maxChars, ShouldEqual, 192)
		So(minChars, ShouldEqual, 163)
	})
}

func TestCheckScriptLength(t *testing.T) {
	Convey("CheckScriptLength 执行长度闸门", t, func() {
		Convey("低于下限的脚本被拒绝", func() {
			err := CheckScriptLength(strings.Repeat("a", 300), 4)
			So(err, ShouldNotBeNil)
			So(apperr.IsPrecondition(err), ShouldBeTrue)
		})

		Convey("区间内的脚本通过", func() {
			So(CheckScriptLength(strings.Repeat("a", 350), 4), ShouldBeNil)
		})

		Convey("超过软上限的脚本通过（仅告警）", func() {
			So(CheckScriptLength(strings.Repeat("a", 500), 4), ShouldBeNil)
		})

		Convey("停顿标记不计入字符数", func() {
			script := strings.Repeat("a", 320) + " [pause:2s] " + "x"
			// 去掉标记后 323 个有效字符，仍低于下限 326
			err := CheckScriptLength(script, 4)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestClampSceneDuration(t *testing.T) {
	Convey("ClampSceneDuration 把时长钳制到 [1,15]", t, func() {
		So(ClampSceneDuration(0), ShouldEqual, 1)
		So(ClampSceneDuration(-3), ShouldEqual, 1)
		So(ClampSceneDuration(8), ShouldEqual, 8)
		So(ClampSceneDuration(15), ShouldEqual, 15)
		So(ClampSceneDuration(999), ShouldEqual, 15)
	})
}
