package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTradeOrgBuy(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(sampleTrades()[0])

	assert.Contains(t, result, "** BUY 005930 x10 (00000001)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01HS0000000000000000000001")
	assert.Contains(t, result, ":NAME: Samsung Electronics")
	assert.Contains(t, result, ":PRICE: 71000.00")
	assert.Contains(t, result, ":AMOUNT: 710000.00")
	assert.Contains(t, result, ":TIME: 2024-03-15T01:30:00Z")
	assert.Contains(t, result, ":EMOTION: #greed")
	assert.Contains(t, result, ":CONFIDENCE: 7")
	assert.Contains(t, result, ":END:")
	assert.NotContains(t, result, ":REALIZED_PL:")

	assert.Contains(t, result, "*** Thesis\n- breakout, chasing\n")
	assert.Contains(t, result, "*** Execution")
	assert.Contains(t, result, "*** Review\n- \n")
}

func TestFormatTradeOrgLosingSell(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(sampleTrades()[2])

	assert.Contains(t, result, "** SELL 005930 x4")
	assert.Contains(t, result, ":COST_BASIS: 71000.00")
	assert.Contains(t, result, ":REALIZED_PL: -9998.00")
	assert.Contains(t, result, "- Loss of 9998.00 (-3.52%) against average cost 71000.00")
	assert.NotContains(t, result, ":CONFIDENCE:")
}

func TestFormatTradeOrgShortID(t *testing.T) {
	t.Parallel()

	tr := sampleTrades()[1]
	tr.ID = "short"
	assert.Contains(t, FormatTradeOrg(tr), "** BUY 035720 x5 (short)")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatTradesOrg(nil))

	result := FormatTradesOrg(sampleTrades())
	assert.Equal(t, 3, strings.Count(result, ":PROPERTIES:"))
	assert.Equal(t, 2, strings.Count(result, "\n\n\n** "))
}
