package strategy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawdownSentinel/internal/model"
)

func TestClassify_AllBoundaries(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		drawdown float64
		status   model.Status
	}{
		{0.20, model.StatusBuy},
		{0.045, model.StatusBuy},
		{0.0449999, model.StatusGood},
		{0.035, model.StatusGood},
		{0.0349999, model.StatusPrep},
		{0.030, model.StatusPrep},
		{0.0299999, model.StatusWait},
		{0.020, model.StatusWait},
		{0.0199999, model.StatusWatch},
		{0, model.StatusWatch},
	}
	for _, tt := range tests {
		got, _ := Classify(tt.drawdown, th)
		assert.Equal(t, tt.status, got, "drawdown %v", tt.drawdown)
	}
}

func TestClassify_Labels(t *testing.T) {
	th := DefaultThresholds()
	_, label := Classify(0.05, th)
	assert.Equal(t, "触发买入区间（≥4.5%）", label)
	_, label = Classify(0.01, th)
	assert.Equal(t, "观望（<2.0%）", label)
}

func TestClassify_CustomThresholds(t *testing.T) {
	th := Thresholds{Buy: 0.20, Good: 0.10, Prep: 0.05, Wait: 0.01}
	got, _ := Classify(0.06, th)
	assert.Equal(t, model.StatusPrep, got)
	got, _ = Classify(0.045, th)
	assert.Equal(t, model.StatusWait, got)
}

func TestDrawdown_NeverNegative(t *testing.T) {
	d, err := Drawdown(110, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	d, err = Drawdown(100, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	_, err = Drawdown(100, 0)
	assert.Error(t, err)
}

func TestEvaluate_PriceAboveHigh(t *testing.T) {
	res := Evaluate(model.Float(105), model.Float(100), DefaultThresholds())
	require.NotNil(t, res.Drawdown)
	assert.Equal(t, 0.0, *res.Drawdown)
	assert.Equal(t, model.StatusWatch, res.Status)
	assert.False(t, res.Insufficient)
}

func TestEvaluate_MissingInputs(t *testing.T) {
	th := DefaultThresholds()
	for _, in := range []struct{ price, high *float64 }{
		{nil, model.Float(100)},
		{model.Float(90), nil},
		{nil, nil},
		{model.Float(90), model.Float(0)},
	} {
		res := Evaluate(in.price, in.high, th)
		assert.Nil(t, res.Drawdown)
		assert.Equal(t, model.StatusWatch, res.Status)
		assert.True(t, res.Insufficient)
		assert.Equal(t, InsufficientLabel, res.Label)
	}
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	bad := []Thresholds{
		{Buy: 0.03, Good: 0.035, Prep: 0.02, Wait: 0.01},
		{Buy: 0.045, Good: 0.035, Prep: 0.035, Wait: 0.02},
		{Buy: 0.045, Good: 0.035, Prep: 0.03, Wait: 0},
		{Buy: 1.5, Good: 0.035, Prep: 0.03, Wait: 0.02},
	}
	for _, th := range bad {
		assert.Error(t, th.Validate(), "%+v", th)
	}
}

func TestScenarios(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name     string
		snap     model.Snapshot
		price    *float64
		source   model.PriceSource
		drawdown string
		status   model.Status
		missing  []model.Diagnostic
	}{
		{
			name:     "A at the high",
			snap:     model.Snapshot{RealtimePrice: model.Float(100), PreviousClose: model.Float(99), ReferenceHigh: model.Float(100)},
			price:    model.Float(100),
			source:   model.SourceRealtime,
			drawdown: "0.00%",
			status:   model.StatusWatch,
		},
		{
			name:     "B exactly at buy",
			snap:     model.Snapshot{RealtimePrice: model.Float(95.5), PreviousClose: model.Float(96), ReferenceHigh: model.Float(100)},
			price:    model.Float(95.5),
			source:   model.SourceRealtime,
			drawdown: "4.50%",
			status:   model.StatusBuy,
		},
		{
			name:     "C exactly at good",
			snap:     model.Snapshot{RealtimePrice: model.Float(96.5), PreviousClose: model.Float(97), ReferenceHigh: model.Float(100)},
			price:    model.Float(96.5),
			source:   model.SourceRealtime,
			drawdown: "3.50%",
			status:   model.StatusGood,
		},
		{
			name:     "D intraday fallback",
			snap:     model.Snapshot{IntradayLast: model.Float(50), PreviousClose: model.Float(48), ReferenceHigh: model.Float(60)},
			price:    model.Float(50),
			source:   model.SourceIntradayBar,
			drawdown: "16.67%",
			status:   model.StatusBuy,
		},
		{
			name:    "E no price at all",
			snap:    model.Snapshot{ReferenceHigh: model.Float(60)},
			source:  model.SourceNone,
			status:  model.StatusWatch,
			missing: []model.Diagnostic{model.PreviousCloseMissing, model.PriceMissing},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := Assemble(&tt.snap, th)
			assert.Equal(t, tt.source, sheet.PriceSource)
			assert.Equal(t, tt.status, sheet.Status)
			if tt.price == nil {
				assert.Nil(t, sheet.Price)
			} else {
				require.NotNil(t, sheet.Price)
				assert.Equal(t, *tt.price, *sheet.Price)
			}
			if tt.drawdown == "" {
				assert.Nil(t, sheet.Drawdown)
				assert.True(t, sheet.Insufficient)
			} else {
				require.NotNil(t, sheet.Drawdown)
				assert.Equal(t, tt.drawdown, fmt.Sprintf("%.2f%%", *sheet.Drawdown*100))
			}
			if tt.missing == nil {
				assert.Empty(t, sheet.Missing)
			} else {
				assert.ElementsMatch(t, tt.missing, sheet.Missing)
			}
		})
	}
}
