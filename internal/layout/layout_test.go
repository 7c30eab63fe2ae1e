package layout

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"unicode/utf8"
)

// boxFont measures every non-empty string as 10px per rune, rising ascent
// pixels above the baseline and descent pixels below it.
type boxFont struct {
	ascent, descent int
}

func (f boxFont) Bounds(s string) image.Rectangle {
	if s == "" {
		return image.Rectangle{}
	}
	return image.Rect(0, -f.ascent, 10*utf8.RuneCountInString(s), f.descent)
}

func testInput(rows ...string) Input {
	return Input{
		CoverSize:  image.Pt(640, 360),
		IconSize:   image.Pt(60, 20),
		Rows:       rows,
		Title:      "Test Song",
		Artist:     "Test Artist",
		LyricFont:  boxFont{30, 10},
		TitleFont:  boxFont{30, 10},
		ArtistFont: boxFont{20, 5},
		Style:      DefaultStyle(),
	}
}

func mustCompute(t *testing.T, in Input) *Plan {
	t.Helper()
	p, err := Compute(in)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return p
}

func one(t *testing.T, p *Plan, k Kind) Element {
	t.Helper()
	els := p.Find(k)
	if len(els) != 1 {
		t.Fatalf("found %d %s elements, want 1", len(els), k)
	}
	return els[0]
}

func TestComputeGeometry(t *testing.T) {
	p := mustCompute(t, testInput("line one", "line two"))

	// 360 cover + 50 + 2*(40+30) lyrics + 60 + 20 + 50 + 150.
	if p.Width() != 640 || p.Height() != 830 {
		t.Fatalf("canvas = %dx%d, want 640x830", p.Width(), p.Height())
	}

	tests := []struct {
		kind Kind
		want image.Rectangle
	}{
		{KindCover, image.Rect(0, 0, 640, 360)},
		{KindArtist, image.Rect(50, 705, 160, 730)},
		{KindTitle, image.Rect(50, 655, 140, 695)},
		{KindIcon, image.Rect(50, 758, 110, 778)},
		{KindCode, image.Rect(470, 660, 590, 780)},
	}
	for _, tt := range tests {
		if got := one(t, p, tt.kind).Rect; got != tt.want {
			t.Errorf("%s rect = %v, want %v", tt.kind, got, tt.want)
		}
	}

	rows := p.Find(KindLyric)
	if len(rows) != 2 {
		t.Fatalf("got %d lyric rows, want 2", len(rows))
	}
	if rows[0].Rect != image.Rect(50, 410, 130, 450) || rows[1].Rect != image.Rect(50, 480, 130, 520) {
		t.Errorf("lyric rects = %v, %v", rows[0].Rect, rows[1].Rect)
	}
	if rows[0].Origin != image.Pt(50, 440) {
		t.Errorf("baseline origin = %v, want (50,440)", rows[0].Origin)
	}
}

func TestComputeDrawingOrder(t *testing.T) {
	p := mustCompute(t, testInput("a", "b"))
	want := []Kind{KindCover, KindLyric, KindLyric, KindArtist, KindTitle, KindIcon, KindCode}
	els := p.Elements()
	if len(els) != len(want) {
		t.Fatalf("got %d elements, want %d", len(els), len(want))
	}
	for i, e := range els {
		if e.Kind != want[i] {
			t.Errorf("element %d = %s, want %s", i, e.Kind, want[i])
		}
	}
}

func TestComputeStanzaSpacing(t *testing.T) {
	p := mustCompute(t, testInput("a", "", "b", "c"))
	rows := p.Find(KindLyric)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if !rows[1].Rect.Empty() || rows[1].Text != "" {
		t.Errorf("stanza break should be an empty row, got %+v", rows[1])
	}
	// a: 410..450, break at 480, b at 510..550, then 30 line spacing plus
	// 20 stanza spacing before c.
	tops := []int{410, 480, 510, 600}
	for i, want := range tops {
		if got := rows[i].Rect.Min.Y; got != want {
			t.Errorf("row %d top = %d, want %d", i, got, want)
		}
	}
	if p.Height() != 360+50+260+60+20+50+150 {
		t.Errorf("height = %d, stanza spacing not counted", p.Height())
	}
}

func TestComputeStanzaSpacingAtEnd(t *testing.T) {
	// A stanza of one row still adds its spacing to the height.
	p := mustCompute(t, testInput("a", "", "b"))
	if p.Height() != 360+50+190+60+20+50+150 {
		t.Errorf("height = %d, want stanza spacing after the last row", p.Height())
	}
	if got := p.Find(KindLyric)[2].Rect.Min.Y; got != 510 {
		t.Errorf("second stanza top = %d, want 510", got)
	}
}

func TestComputeEmptyLyrics(t *testing.T) {
	p := mustCompute(t, testInput())
	if n := len(p.Find(KindLyric)); n != 0 {
		t.Errorf("got %d lyric rows, want 0", n)
	}
	if p.Height() != 360+50+60+20+50+150 {
		t.Errorf("height = %d", p.Height())
	}
}

func TestComputeMonotonic(t *testing.T) {
	prev := 0
	rows := []string{}
	for i := range 8 {
		rows = append(rows, fmt.Sprintf("row %d", i))
		if i%3 == 2 {
			rows = append(rows, "")
		}
		h := mustCompute(t, testInput(rows...)).Height()
		if h <= prev {
			t.Fatalf("height %d after %d rows did not grow past %d", h, len(rows), prev)
		}
		prev = h
	}
}

func TestComputeNoOverlap(t *testing.T) {
	p := mustCompute(t, testInput("first line", "second line", "", "third line"))
	var boxes []Element
	for _, e := range p.Elements() {
		if !e.Rect.Empty() {
			boxes = append(boxes, e)
		}
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Rect.Overlaps(boxes[j].Rect) {
				t.Errorf("%s %v overlaps %s %v", boxes[i].Kind, boxes[i].Rect, boxes[j].Kind, boxes[j].Rect)
			}
		}
		if !boxes[i].Rect.In(image.Rect(0, 0, p.Width(), p.Height())) {
			t.Errorf("%s %v outside canvas", boxes[i].Kind, boxes[i].Rect)
		}
	}
}

func TestComputeElementsAreCopies(t *testing.T) {
	p := mustCompute(t, testInput("a"))
	els := p.Elements()
	els[0].Rect = image.Rect(1, 1, 2, 2)
	if p.Elements()[0].Rect == els[0].Rect {
		t.Error("mutating Elements() result changed the plan")
	}
}

func TestComputeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero cover width", func(in *Input) { in.CoverSize = image.Pt(0, 100) }},
		{"negative cover height", func(in *Input) { in.CoverSize = image.Pt(100, -1) }},
		{"cover scales to nothing", func(in *Input) { in.CoverSize = image.Pt(1000, 1) }},
		{"zero canvas width", func(in *Input) { in.Style.Width = 0 }},
		{"padding eats width", func(in *Input) { in.Style.Padding = 320 }},
		{"negative spacing", func(in *Input) { in.Style.LineSpacing = -1 }},
		{"title overlaps lyrics", func(in *Input) { in.TitleFont = boxFont{300, 0} }},
		{"icon taller than canvas bottom", func(in *Input) { in.IconSize = image.Pt(20, 200) }},
		{"missing measurer", func(in *Input) { in.ArtistFont = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput("a", "b")
			tt.mutate(&in)
			_, err := Compute(in)
			var le *LayoutError
			if !errors.As(err, &le) {
				t.Fatalf("expected LayoutError, got %v", err)
			}
		})
	}
}
