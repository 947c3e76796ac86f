package pcb

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePanel/pkg/kicad/sexp/kicadsexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseItem(t *testing.T, src string) *Item {
	t.Helper()
	nodes, err := kicadsexp.ParseString(src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	node, ok := nodes[0].(*kicadsexp.List)
	require.True(t, ok)
	return NewItem(node)
}

func TestMovePrimitives(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"segment",
			`(segment (start 105 105) (end 120 105) (width 0.25) (layer "F.Cu") (net 1))`,
			`(segment (start 155 135) (end 170 135) (width 0.25) (layer "F.Cu") (net 1))`,
		},
		{
			"arc track",
			`(arc (start 1 1) (mid 2 2) (end 3 1) (width 0.2) (layer "F.Cu") (net 1))`,
			`(arc (start 51 31) (mid 52 32) (end 53 31) (width 0.2) (layer "F.Cu") (net 1))`,
		},
		{
			"via keeps size",
			`(via (at 120 105) (size 0.8) (drill 0.4) (layers "F.Cu" "B.Cu") (net 1))`,
			`(via (at 170 135) (size 0.8) (drill 0.4) (layers "F.Cu" "B.Cu") (net 1))`,
		},
		{
			"circle",
			`(gr_circle (center 10 10) (end 12 10) (layer "F.SilkS"))`,
			`(gr_circle (center 60 40) (end 62 40) (layer "F.SilkS"))`,
		},
		{
			"text keeps angle",
			`(gr_text "REV A" (at 125 120 90) (layer "F.SilkS"))`,
			`(gr_text "REV A" (at 175 150 90) (layer "F.SilkS"))`,
		},
		{
			"polygon",
			`(gr_poly (pts (xy 0 0) (xy 1 0) (arc (start 1 0) (mid 1.5 0.5) (end 1 1))) (layer "F.Cu"))`,
			`(gr_poly (pts (xy 50 30) (xy 51 30) (arc (start 51 30) (mid 51.5 30.5) (end 51 31))) (layer "F.Cu"))`,
		},
		{
			"dimension with its text",
			`(dimension (type aligned) (layer "Dwgs.User") (pts (xy 0 0) (xy 10 0)) (height 2) (gr_text "10 mm" (at 5 -2) (layer "Dwgs.User")))`,
			`(dimension (type aligned) (layer "Dwgs.User") (pts (xy 50 30) (xy 60 30)) (height 2) (gr_text "10 mm" (at 55 28) (layer "Dwgs.User")))`,
		},
		{
			"text render cache",
			`(gr_text "A" (at 1 1) (layer "F.SilkS") (render_cache "A" 0 (polygon (pts (xy 0.5 0.5) (xy 1.5 0.5) (xy 1 1.5)))))`,
			`(gr_text "A" (at 51 31) (layer "F.SilkS") (render_cache "A" 0 (polygon (pts (xy 50.5 30.5) (xy 51.5 30.5) (xy 51 31.5)))))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := parseItem(t, tt.src)
			require.NoError(t, item.Move(Pt(mm(50), mm(30))))
			assert.Equal(t, tt.want, item.Node().String())
		})
	}
}

const rfModule = `(footprint "RF_Module:ESP32" (layer "F.Cu") (at 110 115)
  (pad "1" smd rect (at -1 0) (size 1 1) (layers "F.Cu"))
  (fp_text value "ESP32" (at 0 2) (layer "F.Fab")
    (render_cache "ESP32" 0 (polygon (pts (xy 109 117) (xy 111 117) (xy 111 118)))))
  (zone (net 0) (net_name "") (layers "F.Cu" "B.Cu") (hatch edge 0.5)
    (keepout (tracks not_allowed) (vias not_allowed) (copperpour not_allowed))
    (polygon (pts (xy 108 113) (xy 112 113) (xy 112 117) (xy 108 117)))))`

// keepoutCorner returns the first outline point of the footprint's zone
func keepoutCorner(t *testing.T, fp *Item) Point {
	t.Helper()
	zone, ok := sexp.FindNode(fp.Node(), "zone")
	require.True(t, ok)
	polygon, ok := sexp.FindNode(zone, "polygon")
	require.True(t, ok)
	pts, ok := sexp.FindNode(polygon, "pts")
	require.True(t, ok)
	xy, ok := sexp.FindNode(pts, "xy")
	require.True(t, ok)
	p, err := sexp.GetPoint(xy)
	require.NoError(t, err)
	return p
}

func TestMoveFootprintMovesAnchorAndZones(t *testing.T) {
	board := loadSimple(t)
	fp := board.Footprints()[0]

	require.NoError(t, fp.Move(Pt(mm(10), 0)))

	at, _ := sexp.FindNode(fp.Node(), "at")
	assert.Equal(t, "(at 120 115 90)", at.String())

	pad, _ := sexp.FindNode(fp.Node(), "pad")
	padAt, _ := sexp.FindNode(pad, "at")
	assert.Equal(t, "(at -0.8 0 90)", padAt.String(), "pads stay relative to the anchor")

	module := parseItem(t, rfModule)
	require.NoError(t, module.Move(Pt(mm(10), mm(-5))))
	assert.Equal(t, Pt(mm(118), mm(108)), keepoutCorner(t, module))
	assert.NotContains(t, module.Node().String(), "render_cache")
}

func TestMoveZoneTranslatesEveryPolygon(t *testing.T) {
	zone := parseItem(t, `(zone (net 1) (net_name "GND") (layer "B.Cu")
  (polygon (pts (xy 0 0) (xy 10 0) (xy 10 10)))
  (filled_polygon (layer "B.Cu") (pts (xy 1 1) (xy 9 1) (xy 9 9))))`)

	require.NoError(t, zone.Move(Pt(mm(100), mm(200))))

	out := zone.Node().String()
	assert.Contains(t, out, "(polygon (pts (xy 100 200) (xy 110 200) (xy 110 210)))")
	assert.Contains(t, out, `(filled_polygon (layer "B.Cu") (pts (xy 101 201) (xy 109 201) (xy 109 209)))`)
}

func TestMoveUnsupported(t *testing.T) {
	group := parseItem(t, `(group "" (id abc) (members a b))`)
	assert.ErrorIs(t, group.Move(Pt(mm(1), 0)), ErrUnsupported)

	_, err := group.Duplicate("1,0")
	assert.ErrorIs(t, err, ErrUnsupported)

	empty := parseItem(t, `(gr_line (layer "F.Cu"))`)
	assert.ErrorIs(t, empty.Move(Pt(mm(1), 0)), ErrUnsupported)
}

func TestMoveIsExact(t *testing.T) {
	seg := parseItem(t, `(segment (start 0.1 0.2) (end 0.3 0.7) (width 0.1))`)
	for i := 0; i < 1000; i++ {
		require.NoError(t, seg.Move(Pt(mm(0.1), mm(0.1))))
	}
	assert.True(t, strings.HasPrefix(seg.Node().String(), "(segment (start 100.1 100.2) (end 100.3 100.7)"))
}

func TestDuplicateRegeneratesIDs(t *testing.T) {
	board := loadSimple(t)
	fp := board.Footprints()[0]
	before := fp.Node().String()

	dup, err := fp.Duplicate("1,0")
	require.NoError(t, err)

	assert.Equal(t, before, fp.Node().String(), "source must be untouched")
	assert.Equal(t, KindFootprint, dup.Kind())
	assert.NotEqual(t, fp.ID(), dup.ID())
	assert.Equal(t, DeriveID(fp.ID(), "1,0"), dup.ID())

	// nested pad and text ids are replaced too
	for _, old := range []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
		"33333333-3333-4333-8333-333333333333",
	} {
		assert.NotContains(t, dup.Node().String(), old)
	}

	again, err := fp.Duplicate("1,0")
	require.NoError(t, err)
	assert.Equal(t, dup.Node().String(), again.Node().String(), "same salt gives the same copy")

	other, err := fp.Duplicate("0,1")
	require.NoError(t, err)
	assert.NotEqual(t, dup.ID(), other.ID())
}

func TestDuplicateKeepsQuoting(t *testing.T) {
	text := parseItem(t, `(gr_text "X" (at 0 0) (layer "F.SilkS") (uuid "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"))`)

	dup, err := text.Duplicate("2,3")
	require.NoError(t, err)

	id, _ := sexp.FindNode(dup.Node(), "uuid")
	_, quoted := id.Get(1).(kicadsexp.Quoted)
	assert.True(t, quoted)
}

func TestSetPosition(t *testing.T) {
	board := loadSimple(t)
	fp := board.Footprints()[0]

	require.NoError(t, fp.SetPosition(Pt(mm(160), mm(145))))
	pos, err := fp.Position()
	require.NoError(t, err)
	assert.Equal(t, Pt(mm(160), mm(145)), pos)
	assert.Equal(t, 90.0, fp.Rotation())

	assert.ErrorIs(t, board.Tracks()[0].SetPosition(Pt(0, 0)), ErrUnsupported)
}

func TestSetPositionMovesFootprintZones(t *testing.T) {
	module := parseItem(t, rfModule)

	require.NoError(t, module.SetPosition(Pt(mm(160), mm(165))))

	pos, err := module.Position()
	require.NoError(t, err)
	assert.Equal(t, Pt(mm(160), mm(165)), pos)
	assert.Equal(t, Pt(mm(158), mm(163)), keepoutCorner(t, module))

	pad, _ := sexp.FindNode(module.Node(), "pad")
	padAt, _ := sexp.FindNode(pad, "at")
	assert.Equal(t, "(at -1 0)", padAt.String())
}
