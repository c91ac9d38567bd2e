package blocking

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/flavioheleno/microbit"
	"github.com/flavioheleno/microbit/control"
	"github.com/flavioheleno/microbit/image5x5"
	"github.com/flavioheleno/microbit/matrix"
)

var heart = image5x5.BitsFromRows([5]uint8{
	0b01010,
	0b10101,
	0b10001,
	0b01010,
	0b00100,
})

// scan is what a single delay call saw: the high row pin and its lit columns.
type scan struct {
	row  int
	cols uint32
	d    time.Duration
}

type rig struct {
	dev   *Display
	regs  []*control.Register
	board microbit.Board
	seen  []scan
	// onDelay, if set, runs after each delay is recorded.
	onDelay func()
}

func newRig(t *testing.T, b microbit.Board) *rig {
	t.Helper()
	r := &rig{board: b}
	r.regs = make([]*control.Register, b.Pinout.Ports())
	ports := make([]control.Port, len(r.regs))
	for i := range r.regs {
		r.regs[i] = &control.Register{}
		ports[i] = r.regs[i]
	}
	dev, err := New(ports, &Opts{Board: &b, Delay: r.delay})
	require.NoError(t, err)
	r.dev = dev
	return r
}

func (r *rig) highRows() []int {
	var rows []int
	for i, p := range r.board.Pinout.Rows {
		if r.regs[p.Port].Out()&(1<<p.Num) != 0 {
			rows = append(rows, i)
		}
	}
	return rows
}

func (r *rig) lit() []uint32 {
	return control.Lit(r.board.Pinout, control.Levels(r.regs...))
}

func (r *rig) delay(d time.Duration) {
	s := scan{row: -1, d: d}
	if rows := r.highRows(); len(rows) == 1 {
		s.row = rows[0]
		s.cols = r.lit()[s.row]
	}
	r.seen = append(r.seen, s)
	if r.onDelay != nil {
		r.onDelay()
	}
}

func (r *rig) assertDark(t *testing.T) {
	t.Helper()
	assert.Equal(t, make([]uint32, len(r.board.Pinout.Rows)), r.lit())
	assert.Empty(t, r.highRows())
}

func TestShowScansRowsInOrder(t *testing.T) {
	for _, b := range []microbit.Board{microbit.V1, microbit.V2} {
		t.Run(b.Name, func(t *testing.T) {
			r := newRig(t, b)
			rows := b.Layout.Rows()
			want := matrix.NewFrame(b.Layout)
			require.NoError(t, want.Set(heart))

			require.NoError(t, r.dev.Show(context.Background(), heart, 100*time.Millisecond))

			scans := int(100 * time.Millisecond / (DefaultRowDelay * time.Duration(rows)))
			require.Len(t, r.seen, scans*rows)
			var total time.Duration
			for i, s := range r.seen {
				row := i % rows
				assert.Equal(t, row, s.row, "delay %d", i)
				assert.Equal(t, want.Row(row).Base(), s.cols, "delay %d", i)
				total += s.d
			}
			assert.Equal(t, time.Duration(scans)*r.dev.RefreshPeriod(), total)
			assert.LessOrEqual(t, total, 100*time.Millisecond)
			r.assertDark(t)
		})
	}
}

func TestShowLightsAnyNonzeroLevel(t *testing.T) {
	r := newRig(t, microbit.V2)
	img := image5x5.NewGreyscale([5][5]uint8{{1, 0, 9, 0, 4}})
	require.NoError(t, r.dev.Show(context.Background(), img, r.dev.RefreshPeriod()))

	require.Len(t, r.seen, 5)
	assert.Equal(t, uint32(0b10101), r.seen[0].cols)
	for _, s := range r.seen[1:] {
		assert.Zero(t, s.cols)
	}
}

func TestShowShorterThanOneScan(t *testing.T) {
	r := newRig(t, microbit.V2)
	require.NoError(t, r.dev.Show(context.Background(), heart, r.dev.RefreshPeriod()-time.Nanosecond))
	assert.Empty(t, r.seen)
	r.assertDark(t)
}

func TestShowCancelled(t *testing.T) {
	r := newRig(t, microbit.V1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.onDelay = func() {
		if len(r.seen) == microbit.V1.Layout.Rows() {
			cancel()
		}
	}

	err := r.dev.Show(ctx, heart, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, r.seen, microbit.V1.Layout.Rows(), "stops after the scan in progress")
	r.assertDark(t)
}

func TestClear(t *testing.T) {
	r := newRig(t, microbit.V2)
	r.onDelay = func() {
		if len(r.seen) == 2 {
			r.dev.Clear()
			r.assertDark(t)
		}
	}
	require.NoError(t, r.dev.Show(context.Background(), heart, r.dev.RefreshPeriod()))
	r.dev.Clear()
	r.assertDark(t)
}

func TestRowDelay(t *testing.T) {
	r := newRig(t, microbit.V2)
	assert.Equal(t, DefaultRowDelay, r.dev.RowDelay())
	assert.Equal(t, 10*time.Millisecond, r.dev.RefreshPeriod())

	require.NoError(t, r.dev.SetRefreshRate(50*physic.Hertz))
	assert.Equal(t, 4*time.Millisecond, r.dev.RowDelay())

	require.NoError(t, r.dev.SetRowDelay(3*time.Millisecond))
	require.NoError(t, r.dev.Show(context.Background(), heart, 30*time.Millisecond))
	assert.Len(t, r.seen, 10)
	for _, s := range r.seen {
		assert.Equal(t, 3*time.Millisecond, s.d)
	}

	assert.Error(t, r.dev.SetRowDelay(0))
	assert.Error(t, r.dev.SetRefreshRate(0))
	assert.Equal(t, 3*time.Millisecond, r.dev.RowDelay(), "unchanged by errors")

	v1 := newRig(t, microbit.V1)
	require.NoError(t, v1.dev.SetRefreshRate(100*physic.Hertz))
	assert.Equal(t, 10*time.Millisecond/3, v1.dev.RowDelay())
}

func TestNew(t *testing.T) {
	dev, err := New([]control.Port{&control.Register{}, &control.Register{}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", dev.Board().Name)
	assert.Equal(t, "blocking.Display{v2 2ms}", dev.String())

	_, err = New([]control.Port{&control.Register{}}, nil)
	assert.Error(t, err, "v2 needs two ports")

	_, err = New([]control.Port{&control.Register{}}, &Opts{Board: &microbit.V1, RowDelay: -time.Millisecond})
	assert.Error(t, err)

	bad := microbit.V1
	bad.Layout = nil
	_, err = New([]control.Port{&control.Register{}}, &Opts{Board: &bad})
	assert.Error(t, err)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	_, err := New([]control.Port{&control.Register{}}, &Opts{Board: &microbit.V1, RowDelay: 5 * time.Millisecond, Logger: &log})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"board":"v1"`)
	assert.Contains(t, buf.String(), "blocking display ready")
}
