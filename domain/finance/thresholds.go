package finance

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ALERT_WARNING_THRESHOLD=80 ALERT_CRITICAL_THRESHOLD=95
type AlertThresholds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

var DefaultThresholds = AlertThresholds{Warning: 80, Critical: 95}

var (
	LoadThresholdsFunc = loadThresholdsFromEnv

	activeThresholds *AlertThresholds
)

func loadThresholdsFromEnv() AlertThresholds {
	t := DefaultThresholds
	if raw := os.Getenv("ALERT_WARNING_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			t.Warning = v
		} else {
			logrus.Warnf("invalid ALERT_WARNING_THRESHOLD %q: %v", raw, err)
		}
	}
	if raw := os.Getenv("ALERT_CRITICAL_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			t.Critical = v
		} else {
			logrus.Warnf("invalid ALERT_CRITICAL_THRESHOLD %q: %v", raw, err)
		}
	}
	return t
}

func ActiveThresholds() AlertThresholds {
	if activeThresholds == nil {
		t := LoadThresholdsFunc()
		activeThresholds = &t
	}
	return *activeThresholds
}

func ThresholdsReset() {
	activeThresholds = nil
}

func (t AlertThresholds) StatusOf(progressRatio float64) AlertStatus {
	if progressRatio >= t.Critical {
		return AlertCritical
	}
	if progressRatio >= t.Warning {
		return AlertWarning
	}
	return AlertNormal
}
