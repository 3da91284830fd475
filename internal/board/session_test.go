package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"DrawdownSentinel/internal/model"
)

func TestSession_Windows(t *testing.T) {
	tests := []struct {
		hour, min int
		want      model.MarketSession
	}{
		{6, 29, model.SessionClosed},
		{6, 30, model.SessionOpen},
		{12, 59, model.SessionOpen},
		{13, 0, model.SessionAfterHours},
		{16, 59, model.SessionAfterHours},
		{17, 0, model.SessionClosed},
		{23, 0, model.SessionClosed},
	}
	for _, tt := range tests {
		at := time.Date(2026, 3, 4, tt.hour, tt.min, 0, 0, losAngeles)
		assert.Equal(t, tt.want, Session(at), "%02d:%02d", tt.hour, tt.min)
	}
}

func TestSession_ConvertsTimezone(t *testing.T) {
	// 15:00 UTC on a March weekday is 07:00 PST
	at := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, model.SessionOpen, Session(at))
}

func TestClocks(t *testing.T) {
	at := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-04 23:00:00", beijingClock(at))
	assert.Equal(t, "2026-03-04 07:00:00", losAngelesClock(at))
}
