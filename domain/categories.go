package domain

import (
	"os"
	"strings"
)

// valid categories and departments are deployment configuration
// CATALOG_CATEGORIES=INV,PRC,SRV,MNT,CON,SUP,CSL
// CATALOG_DEPARTMENTS=IT,FIN,OPS,HR
var defaultCategories = []string{"INV", "PRC", "SRV", "MNT", "CON", "SUP", "CSL"}

var (
	LoadCategoriesFunc  = func() []string { return loadListFromEnv("CATALOG_CATEGORIES", defaultCategories) }
	LoadDepartmentsFunc = func() []string { return loadListFromEnv("CATALOG_DEPARTMENTS", nil) }

	activeCategories  []string
	activeDepartments []string
	registryLoaded    bool
)

func loadListFromEnv(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

func categoryRegistry() ([]string, []string) {
	if !registryLoaded {
		activeCategories = LoadCategoriesFunc()
		activeDepartments = LoadDepartmentsFunc()
		registryLoaded = true
	}
	return activeCategories, activeDepartments
}

func CategoryRegistryReset() {
	registryLoaded = false
}

func IsValidCategory(category string) bool {
	categories, _ := categoryRegistry()
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// IsValidDepartment accepts every department when none is configured.
func IsValidDepartment(department string) bool {
	_, departments := categoryRegistry()
	if len(departments) == 0 {
		return department != ""
	}
	for _, d := range departments {
		if d == department {
			return true
		}
	}
	return false
}
