package board

import (
	"time"

	"DrawdownSentinel/internal/model"
)

var (
	losAngeles = mustLoadLocation("America/Los_Angeles", -8)
	shanghai   = mustLoadLocation("Asia/Shanghai", 8)
)

func mustLoadLocation(name string, offsetHours int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// tzdata missing in minimal containers
		return time.FixedZone(name, offsetHours*60*60)
	}
	return loc
}

// Session maps a wall-clock time to the coarse US session using fixed
// Los Angeles windows: 06:30-13:00 open, 13:00-17:00 after hours.
func Session(t time.Time) model.MarketSession {
	la := t.In(losAngeles)
	hour, min, _ := la.Clock()
	minuteOfDay := hour*60 + min
	switch {
	case minuteOfDay >= 6*60+30 && minuteOfDay < 13*60:
		return model.SessionOpen
	case minuteOfDay >= 13*60 && minuteOfDay < 17*60:
		return model.SessionAfterHours
	default:
		return model.SessionClosed
	}
}

const clockLayout = "2006-01-02 15:04:05"

func beijingClock(t time.Time) string {
	return t.In(shanghai).Format(clockLayout)
}

func losAngelesClock(t time.Time) string {
	return t.In(losAngeles).Format(clockLayout)
}
