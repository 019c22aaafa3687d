// Package domain holds the scanning bounded context's core types: per-order
// process definitions, scan records, bundles and stage decisions.
package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ScanType routes a scan to the logic that handles it. It is derived from the
// process name and progress stage; it never defines execution order.
type ScanType string

const (
	ScanTypeProcurement ScanType = "procurement"
	ScanTypeCutting     ScanType = "cutting"
	ScanTypeProduction  ScanType = "production"
	ScanTypeQuality     ScanType = "quality"
	ScanTypeWarehouse   ScanType = "warehouse"
)

// IsCountable reports whether a process of this type participates in the
// bundle's sequential progress.
func (t ScanType) IsCountable() bool {
	switch t {
	case ScanTypeProcurement, ScanTypeCutting, ScanTypeWarehouse:
		return false
	default:
		return true
	}
}

// ProcessConfigEntry is one row of an order's process template as stored.
type ProcessConfigEntry struct {
	ProcessName   string          `json:"processName"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	SortOrder     int             `json:"sortOrder"`
	ProgressStage string          `json:"progressStage"`
}

// ProcessDefinition is a classified template entry.
type ProcessDefinition struct {
	ProcessName   string
	UnitPrice     decimal.Decimal
	SortOrder     int
	ProgressStage string
	ScanType      ScanType
}

// BuildProcessDefinitions classifies entries and orders them by SortOrder.
// Blank names are dropped; for duplicate names the first by SortOrder wins.
func BuildProcessDefinitions(entries []ProcessConfigEntry) []ProcessDefinition {
	sorted := make([]ProcessConfigEntry, 0, len(entries))
	for _, entry := range entries {
		entry.ProcessName = strings.TrimSpace(entry.ProcessName)
		entry.ProgressStage = strings.TrimSpace(entry.ProgressStage)
		if entry.ProcessName == "" {
			continue
		}
		sorted = append(sorted, entry)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})

	seen := make(map[string]struct{}, len(sorted))
	defs := make([]ProcessDefinition, 0, len(sorted))
	for _, entry := range sorted {
		if _, dup := seen[entry.ProcessName]; dup {
			continue
		}
		seen[entry.ProcessName] = struct{}{}
		defs = append(defs, ProcessDefinition{
			ProcessName:   entry.ProcessName,
			UnitPrice:     entry.UnitPrice,
			SortOrder:     entry.SortOrder,
			ProgressStage: entry.ProgressStage,
			ScanType:      ClassifyScanType(entry.ProcessName, entry.ProgressStage),
		})
	}
	return defs
}

// FindProcess returns the definition with the given name.
func FindProcess(defs []ProcessDefinition, processName string) (ProcessDefinition, bool) {
	name := strings.TrimSpace(processName)
	for _, def := range defs {
		if def.ProcessName == name {
			return def, true
		}
	}
	return ProcessDefinition{}, false
}

// PartitionProcesses splits definitions into the countable sequence and the
// first warehouse process, if any. Procurement and cutting are dropped.
func PartitionProcesses(defs []ProcessDefinition) (countable []ProcessDefinition, warehouse *ProcessDefinition) {
	countable = make([]ProcessDefinition, 0, len(defs))
	for i := range defs {
		def := defs[i]
		if def.ScanType == ScanTypeWarehouse {
			if warehouse == nil {
				warehouse = &def
			}
			continue
		}
		if def.ScanType.IsCountable() {
			countable = append(countable, def)
		}
	}
	return countable, warehouse
}

// ProcessNames returns the names of defs in order.
func ProcessNames(defs []ProcessDefinition) []string {
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.ProcessName
	}
	return names
}
