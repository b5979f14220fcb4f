package render_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/hackwreck/internal/domain/render"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMarkdownTrendAdvice(t *testing.T) {
	Convey("Given a trend analysis response", t, func() {
		doc := render.Markdown("## Advice\n- Use maps")

		Convey("Then it renders a heading followed by one bullet", func() {
			want := []render.Block{
				{Kind: render.KindHeading, Level: 2, Text: "Advice"},
				{Kind: render.KindList, Items: []string{"Use maps"}},
			}
			So(cmp.Diff(want, doc.Blocks), ShouldBeEmpty)
		})

		Convey("Then the rendered text carries no markdown markers", func() {
			text := doc.Text()
			So(text, ShouldContainSubstring, "Advice")
			So(text, ShouldContainSubstring, "Use maps")
			So(text, ShouldNotContainSubstring, "##")
			So(text, ShouldNotContainSubstring, "- ")
		})
	})
}

func TestMarkdownBlocks(t *testing.T) {
	Convey("Given a narrative with every supported block", t, func() {
		src := strings.Join([]string{
			"# Verdict",
			"",
			"**Score: 7/10** with a [guide](https://go.dev/doc) and https://example.com",
			"",
			"1. First",
			"2. Second",
			"   - nested",
			"",
			"> Pitch it loud",
			"",
			"```go",
			"fmt.Println(1)",
			"```",
			"",
			"| Pattern | Example |",
			"|---|---|",
			"| Maps | Nav |",
			"",
			"---",
			"",
			"<script>alert(1)</script>",
		}, "\n")
		doc := render.Markdown(src)

		Convey("Then each block kind is recognised", func() {
			var kinds []render.Kind
			for _, b := range doc.Blocks {
				kinds = append(kinds, b.Kind)
			}
			want := []render.Kind{
				render.KindHeading, render.KindParagraph, render.KindList,
				render.KindQuote, render.KindCode, render.KindTable, render.KindRule,
			}
			So(cmp.Diff(want, kinds), ShouldBeEmpty)
		})

		Convey("Then emphasis markers are stripped and links recorded", func() {
			So(doc.Blocks[1].Text, ShouldStartWith, "Score: 7/10 with a guide")
			So(len(doc.Links), ShouldEqual, 2)
			So(doc.Links[0], ShouldResemble, render.Link{Text: "guide", URL: "https://go.dev/doc"})
		})

		Convey("Then ordered lists keep nesting", func() {
			list := doc.Blocks[2]
			So(list.Ordered, ShouldBeTrue)
			So(list.Items, ShouldResemble, []string{"First", "Second", "  nested"})
		})

		Convey("Then code and tables keep their content", func() {
			So(doc.Blocks[4].Lang, ShouldEqual, "go")
			So(doc.Blocks[4].Text, ShouldEqual, "fmt.Println(1)")
			So(doc.Blocks[5].Rows, ShouldResemble, [][]string{{"Pattern", "Example"}, {"Maps", "Nav"}})
		})

		Convey("Then raw HTML never reaches the text", func() {
			So(doc.Text(), ShouldNotContainSubstring, "script")
			So(doc.Headings(), ShouldResemble, []string{"Verdict"})
		})
	})
}

func TestHTML(t *testing.T) {
	Convey("Given markdown with links and raw HTML", t, func() {
		out, err := render.HTML("## Advice\n\nSee [docs](https://go.dev) now.\n\n<script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>")

		Convey("Then links open in a new context and scripts are removed", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "<h2")
			So(out, ShouldContainSubstring, `target="_blank"`)
			So(out, ShouldNotContainSubstring, "<script")
			So(out, ShouldNotContainSubstring, "javascript:")
		})
	})
}

func TestMarkdownEscapes(t *testing.T) {
	Convey("Given text with backslash escapes and character references", t, func() {
		Convey("Then escapes and entities are decoded and code spans kept verbatim", func() {
			doc := render.Markdown("Use \\*stars\\* & `a &amp; \\*b` &amp; AT&T")
			So(doc.Text(), ShouldEqual, "Use *stars* & a &amp; \\*b & AT&T")
		})

		Convey("Then named and numeric references resolve", func() {
			So(render.Markdown("Tom &lt;3 maps &#35;1").Text(), ShouldEqual, "Tom <3 maps #1")
		})
	})
}

func TestHTMLLinks(t *testing.T) {
	Convey("Given relative, absolute and auto links", t, func() {
		out, err := render.HTML("[rel](/local) [abs](https://x.io) <https://auto.dev>")

		Convey("Then every link opens in a new context without nofollow", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, `href="/local"`)
			So(strings.Count(out, `target="_blank"`), ShouldEqual, 3)
			So(strings.Count(out, `rel="noopener noreferrer"`), ShouldEqual, 3)
			So(out, ShouldNotContainSubstring, "nofollow")
		})
	})
}

func TestTerminal(t *testing.T) {
	Convey("Given narrative markdown for a terminal", t, func() {
		out, err := render.Terminal("## Advice\n- Use maps", render.WithStyle("notty"), render.WithWidth(60))

		Convey("Then the text survives rendering", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Advice")
			So(out, ShouldContainSubstring, "Use maps")
		})
	})
}
