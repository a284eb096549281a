package scripttools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTranslatePauses(t *testing.T) {
	Convey("TranslatePauses 能正确翻译停顿标记", t, func() {
		Convey("[pause:2s] 翻译为 2 秒 break 且只出现一次", func() {
			out := TranslatePauses("Hello [pause:2s] world")
			So(out, ShouldEqual, `Hello <break time="2s" /> world`)
			So(strings.Count(out, "<break"), ShouldEqual, 1)
		})

		Convey("[pause] 默认 1 秒", func() {
			out := TranslatePauses("[pause]")
			So(out, ShouldEqual, `<break time="1s" />`)
		})

		Convey("[pause:500ms] 翻译为 0.5 秒", func() {
			out := TranslatePauses("a [pause:500ms] b")
			So(out, ShouldEqual, `a <break time="0.5s" /> b`)
		})

		Convey("毫秒精度不被截断", func() {
			So(TranslatePauses("[pause:250ms]"), ShouldEqual, `<break time="0.25s" />`)
			So(TranslatePauses("[pause:50ms]"), ShouldEqual, `<break time="0.05s" />`)
			So(TranslatePauses("[pause:1.5s]"), ShouldEqual, `<break time="1.5s" />`)
		})

		Convey("多个标记各自独立翻译", func() {
			out := TranslatePauses("a [pause] b [pause:3s] c")
			So(strings.Count(out, "<break"), ShouldEqual, 2)
			So(out, ShouldContainSubstring, `time="1s"`)
			So(out, ShouldContainSubstring, `time="3s"`)
		})

		Convey("没有标记的文本原样返回", func() {
			So(TranslatePauses("plain text"), ShouldEqual, "plain text")
		})

		Convey("不完整的标记不翻译", func() {
			So(TranslatePauses("[pause:abc]"), ShouldEqual, "[pause:abc]")
		})
	})
}

func TestStripPauses(t *testing.T) {
	Convey("StripPauses 移除所有停顿标记", t, func() {
		So(StripPauses("a [pause] b [pause:2s] c"), ShouldEqual, "a  b  c")
		So(StripPauses("no pauses"), ShouldEqual, "no pauses")
	})
}
