package conceptmap

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"github.com/amishk599/studypack/internal/studypack"
)

type box struct {
	x, y, w, h float64
	lines      []string
}

func (b box) centerY() float64 { return b.y + b.h/2 }
func (b box) right() float64   { return b.x + b.w }

type layout struct {
	width, height int
	lineHeight    float64
	root          box
	concepts      []box
	notes         map[int]box
}

// Draw renders the map and returns the path of the written PNG.
func (r *Renderer) Draw(doc studypack.Concepts, links []studypack.Relationship) (string, error) {
	l := r.layout(doc, len(links) > 0)

	dc := gg.NewContext(l.width, l.height)
	if r.face != nil {
		dc.SetFontFace(r.face)
	}
	dc.SetHexColor(background)
	dc.Clear()

	dc.SetLineWidth(1.5)
	dc.SetHexColor(edgeColor)
	for _, c := range l.concepts {
		dc.DrawLine(l.root.right(), l.root.centerY(), c.x, c.centerY())
		dc.Stroke()
	}

	dc.SetDash(6, 4)
	for i, n := range l.notes {
		c := l.concepts[i]
		dc.DrawLine(c.right(), c.centerY(), n.x, n.centerY())
		dc.Stroke()
	}
	dc.SetDash()

	r.drawLinks(dc, l, doc, links)

	dc.SetHexColor(rootFill)
	dc.DrawEllipse(l.root.x+l.root.w/2, l.root.centerY(), l.root.w/2, l.root.h/2)
	dc.Fill()
	dc.SetHexColor(rootText)
	drawLines(dc, l.root, l.lineHeight)

	for _, c := range l.concepts {
		drawBox(dc, c, nodeFill, nodeBorder, l.lineHeight)
	}
	for _, n := range l.notes {
		drawBox(dc, n, noteFill, noteBorder, l.lineHeight)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.dir, FileName(doc.Topic()))
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("save png: %w", err)
	}
	return path, nil
}

// layout measures every label and places the root, concept and note columns.
func (r *Renderer) layout(doc studypack.Concepts, withLinks bool) layout {
	mc := gg.NewContext(1, 1)
	if r.face != nil {
		mc.SetFontFace(r.face)
	}
	lineHeight := mc.FontHeight() * lineFactor

	measure := func(text string) box {
		lines := strings.Split(text, "\n")
		var w float64
		for _, line := range lines {
			lw, _ := mc.MeasureString(line)
			w = math.Max(w, lw)
		}
		return box{w: w + 2*padding, h: float64(len(lines))*lineHeight + 2*padding, lines: lines}
	}

	l := layout{lineHeight: lineHeight, notes: make(map[int]box)}

	l.root = measure(doc.Topic())
	l.root.w += 2 * padding
	l.root.h += padding

	conceptX := margin + l.root.w + columnGap
	var conceptWidth float64
	for i, c := range doc.Items {
		b := measure(Label(c, i))
		b.x = conceptX
		conceptWidth = math.Max(conceptWidth, b.w)
		l.concepts = append(l.concepts, b)
	}

	noteX := conceptX + conceptWidth + columnGap
	if withLinks {
		noteX += arcReach
	}

	y := margin
	right := conceptX + conceptWidth
	for i, c := range doc.Items {
		rowHeight := l.concepts[i].h
		if f, ok := c.FormulaText(); ok {
			n := measure("Formula:\n" + f)
			n.x = noteX
			n.y = y
			rowHeight = math.Max(rowHeight, n.h)
			l.notes[i] = n
			right = math.Max(right, n.right())
		}
		l.concepts[i].y = y + (rowHeight-l.concepts[i].h)/2
		if n, ok := l.notes[i]; ok {
			n.y = y + (rowHeight-n.h)/2
			l.notes[i] = n
		}
		y += rowHeight + rowGap
	}
	if withLinks {
		right = math.Max(right, conceptX+conceptWidth+arcReach)
	}

	height := math.Max(y-rowGap+margin, l.root.h+2*margin)
	l.root.x = margin
	l.root.y = height/2 - l.root.h/2
	right = math.Max(right, l.root.x+l.root.w)

	l.width = int(math.Ceil(right + margin))
	l.height = int(math.Ceil(height))
	return l
}

// drawLinks draws relationship edges as arcs bulging to the right of the
// concept column. Links naming unknown concepts are skipped.
func (r *Renderer) drawLinks(dc *gg.Context, l layout, doc studypack.Concepts, links []studypack.Relationship) {
	index := make(map[string]int, len(doc.Items))
	for i, c := range doc.Items {
		index[strings.ToLower(strings.TrimSpace(c.Name))] = i
	}

	var columnRight float64
	for _, c := range l.concepts {
		columnRight = math.Max(columnRight, c.right())
	}

	dc.SetHexColor(linkColor)
	for _, link := range links {
		from, okFrom := index[strings.ToLower(strings.TrimSpace(link.From))]
		to, okTo := index[strings.ToLower(strings.TrimSpace(link.To))]
		if !okFrom || !okTo || from == to {
			r.logger.Debug("skipping concept link", "from", link.From, "to", link.To)
			continue
		}
		a, b := l.concepts[from], l.concepts[to]
		cx := columnRight + arcReach
		cy := (a.centerY() + b.centerY()) / 2
		dc.MoveTo(a.right(), a.centerY())
		dc.QuadraticTo(cx, cy, b.right(), b.centerY())
		dc.Stroke()
		if link.Label != "" {
			dc.DrawStringAnchored(link.Label, columnRight+arcReach/2, cy, 0.5, 0.5)
		}
	}
}

func drawBox(dc *gg.Context, b box, fill, border string, lineHeight float64) {
	dc.DrawRoundedRectangle(b.x, b.y, b.w, b.h, 6)
	dc.SetHexColor(fill)
	dc.FillPreserve()
	dc.SetHexColor(border)
	dc.Stroke()
	dc.SetHexColor(textColor)
	drawLines(dc, b, lineHeight)
}

func drawLines(dc *gg.Context, b box, lineHeight float64) {
	top := b.y + (b.h-float64(len(b.lines))*lineHeight)/2
	for i, line := range b.lines {
		dc.DrawStringAnchored(line, b.x+b.w/2, top+lineHeight*(float64(i)+0.5), 0.5, 0.5)
	}
}
