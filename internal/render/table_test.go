package render

import (
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockflow/internal/compiler"
)

const funnelModel = `[candidates] > screens @ 10
screens > offers @ Leak(0.5)
offers > hires @ Leak(0.5)
`

func TestTable_FunnelGolden(t *testing.T) {
	m, err := compiler.Compile(funnelModel)
	require.NoError(t, err)
	snapshots, err := m.Run(3)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "funnel", []byte(Table(m, snapshots)))
}

func TestTable_HeaderAndRoundColumn(t *testing.T) {
	m, err := compiler.Compile("a(10) > b @ 5")
	require.NoError(t, err)
	snapshots, err := m.Run(2)
	require.NoError(t, err)

	assert.Equal(t, "round\ta\tb\n0\t10\t0\n1\t5\t5\n2\t0\t10\n", Table(m, snapshots))
}

func TestColumns_ExcludesInfiniteStocks(t *testing.T) {
	m, err := compiler.Compile(funnelModel)
	require.NoError(t, err)

	assert.Equal(t, []string{"screens", "offers", "hires"}, Columns(m))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "10", FormatValue(10))
	assert.Equal(t, "2.5", FormatValue(2.5))
	assert.Equal(t, "0", FormatValue(0))
	assert.Equal(t, "-3", FormatValue(-3))
	assert.Equal(t, "inf", FormatValue(math.Inf(1)))
	assert.Equal(t, "-inf", FormatValue(math.Inf(-1)))
	assert.Equal(t, "nan", FormatValue(math.NaN()))
}
