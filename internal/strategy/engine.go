package strategy

import (
	"errors"
	"fmt"

	"DrawdownSentinel/internal/model"
)

// Thresholds are the "at least" drawdown cutoffs for each status tier.
type Thresholds struct {
	Buy  float64 `yaml:"buy" json:"buy"`
	Good float64 `yaml:"good" json:"good"`
	Prep float64 `yaml:"prep" json:"prep"`
	Wait float64 `yaml:"wait" json:"wait"`
}

// DefaultThresholds returns the stock 4.5% / 3.5% / 3.0% / 2.0% ladder.
func DefaultThresholds() Thresholds {
	return Thresholds{Buy: 0.045, Good: 0.035, Prep: 0.030, Wait: 0.020}
}

// Validate checks the ladder is strictly descending from buy to wait and
// every cutoff lies in (0, 1).
func (t Thresholds) Validate() error {
	ladder := []struct {
		name string
		v    float64
	}{{"buy", t.Buy}, {"good", t.Good}, {"prep", t.Prep}, {"wait", t.Wait}}
	for i, l := range ladder {
		if l.v <= 0 || l.v >= 1 {
			return fmt.Errorf("threshold %s=%v must be within (0, 1)", l.name, l.v)
		}
		if i > 0 && l.v >= ladder[i-1].v {
			return fmt.Errorf("threshold %s=%v must be below %s=%v", l.name, l.v, ladder[i-1].name, ladder[i-1].v)
		}
	}
	return nil
}

// Tier maps a minimum drawdown to a status.
type Tier struct {
	MinDrawdown float64
	Status      model.Status
	Label       string
}

// Tiers returns the tier table ordered highest cutoff first.
func (t Thresholds) Tiers() []Tier {
	return []Tier{
		{t.Buy, model.StatusBuy, fmt.Sprintf("触发买入区间（≥%s）", pct(t.Buy))},
		{t.Good, model.StatusGood, fmt.Sprintf("适合进场（≥%s）", pct(t.Good))},
		{t.Prep, model.StatusPrep, fmt.Sprintf("准备进场（≥%s）", pct(t.Prep))},
		{t.Wait, model.StatusWait, fmt.Sprintf("等待（≥%s）", pct(t.Wait))},
	}
}

// InsufficientLabel is shown when price or reference high is missing.
const InsufficientLabel = "观望（数据不足）"

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func (t Thresholds) watchLabel() string {
	return fmt.Sprintf("观望（<%s）", pct(t.Wait))
}

// Classify maps a drawdown to its status and label. Cutoffs are inclusive
// and checked top-down.
func Classify(drawdown float64, t Thresholds) (model.Status, string) {
	for _, tier := range t.Tiers() {
		if drawdown >= tier.MinDrawdown {
			return tier.Status, tier.Label
		}
	}
	return model.StatusWatch, t.watchLabel()
}

// Result is the classifier output.
type Result struct {
	Drawdown     *float64
	Status       model.Status
	Label        string
	Insufficient bool
}

var errNoHigh = errors.New("reference high must be positive")

// Drawdown returns max(0, (high-price)/high).
func Drawdown(price, high float64) (float64, error) {
	if high <= 0 {
		return 0, errNoHigh
	}
	d := (high - price) / high
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Evaluate is total over optional inputs: a missing price or reference high
// yields no drawdown and an insufficient-data watch.
func Evaluate(price, high *float64, t Thresholds) Result {
	insufficient := Result{Status: model.StatusWatch, Label: InsufficientLabel, Insufficient: true}
	if price == nil || high == nil {
		return insufficient
	}
	d, err := Drawdown(*price, *high)
	if err != nil {
		return insufficient
	}
	status, label := Classify(d, t)
	return Result{Drawdown: &d, Status: status, Label: label}
}
