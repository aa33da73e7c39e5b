package authority

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
)

// approval ceilings are deployment configuration, keyed by permission id.
// APPROVAL_CEILINGS={"catalog:approver-l1": 100000, "catalog:approver-l2": 1000000}
var defaultCeilings = map[string]float64{
	"catalog:approver-l1": 100000,
	"catalog:approver-l2": 1000000,
	"system:admin":        0, // 0 means unlimited
}

var (
	LoadCeilingsFunc = loadCeilingsFromEnv

	activeCeilings map[string]float64
)

func loadCeilingsFromEnv() map[string]float64 {
	raw := os.Getenv("APPROVAL_CEILINGS")
	if raw == "" {
		return defaultCeilings
	}
	ceilings := map[string]float64{}
	if err := json.Unmarshal([]byte(raw), &ceilings); err != nil {
		logrus.Warnf("invalid APPROVAL_CEILINGS, fallback to defaults: %v", err)
		return defaultCeilings
	}
	return ceilings
}

func ceilings() map[string]float64 {
	if activeCeilings == nil {
		activeCeilings = LoadCeilingsFunc()
	}
	return activeCeilings
}

func CeilingsReset() {
	activeCeilings = nil
}

// CeilingOf returns the highest approval ceiling among the held permissions,
// with found=false when none of them carries a ceiling at all.
// A configured ceiling of 0 means unlimited.
func CeilingOf(perms Permissions) (ceiling float64, unlimited bool, found bool) {
	for _, perm := range perms {
		c, ok := ceilings()[perm]
		if !ok {
			continue
		}
		found = true
		if c == 0 {
			unlimited = true
		}
		if c > ceiling {
			ceiling = c
		}
	}
	return ceiling, unlimited, found
}
