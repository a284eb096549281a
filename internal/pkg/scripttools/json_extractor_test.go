package scripttools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJSONExtractor_Extract(t *testing.T) {
	Convey("JSONExtractor 能从自由文本中提取 JSON", t, func() {
		je := NewJSONExtractor()

		Convey("裸 JSON 对象", func() {
			out, err := je.Extract(`{"a": 1}`)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `{"a": 1}`)
		})

		Convey("markdown 围栏内的 JSON", func() {
			text := "Here is the script:\n```json\n[{\"voiceover\": \"hi\"}]\n```\nHope it helps!"
			out, err := je.Extract(text)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `[{"voiceover": "hi"}]`)
		})

		Convey("前后有说明文字的内嵌 JSON", func() {
			text := `Sure! The result is [{"id": 1}, {"id": 2}] as requested.`
			out, err := je.Extract(text)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `[{"id": 1}, {"id": 2}]`)
		})

		Convey("字符串里的括号不影响配平", func() {
			text := `{"text": "a } tricky { value"}`
			out, err := je.Extract(text)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, text)
		})

		Convey("没有 JSON 时显式报错", func() {
			_, err := je.Extract("no structured data here")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestJSONExtractor_ExtractInto(t *testing.T) {
	Convey("ExtractInto 能反序列化到结构体", t, func() {
		je := NewJSONExtractor()

		var scenes []struct {
			Voiceover string `json:"voiceover"`
		}
		text := "```json\n[{\"voiceover\": \"scene one\"}, {\"voiceover\": \"scene two\"}]\n```"
		err := je.ExtractInto(text, &scenes)
		So(err, ShouldBeNil)
		So(len(scenes), ShouldEqual, 2)
		So(scenes[0].Voiceover, ShouldEqual, "scene one")
	})
}
