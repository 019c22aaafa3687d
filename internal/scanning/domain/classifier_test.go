package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyScanType(t *testing.T) {
	tests := []struct {
		processName   string
		progressStage string
		want          ScanType
	}{
		{"Cutting", "", ScanTypeCutting},
		{"裁剪", "", ScanTypeCutting},
		{"Fabric purchase", "", ScanTypeProcurement},
		{"采购", "", ScanTypeProcurement},
		{"Quality", "", ScanTypeQuality},
		{"QC-check", "", ScanTypeQuality},
		{"质检", "", ScanTypeQuality},
		{"Warehouse", "", ScanTypeWarehouse},
		{"成品入库", "", ScanTypeWarehouse},
		{"Sewing", "", ScanTypeProduction},
		// Name wins over stage.
		{"Cutting", "Quality", ScanTypeCutting},
		// Stage is used when the name is not in the table.
		{"Final check", "质检", ScanTypeQuality},
		{"Pack", "warehousing", ScanTypeWarehouse},
		// Whole-token matching for ASCII keywords.
		{"Execute", "", ScanTypeProduction},
		{"", "", ScanTypeProduction},
	}

	for _, tc := range tests {
		got := ClassifyScanType(tc.processName, tc.progressStage)
		assert.Equal(t, tc.want, got, "ClassifyScanType(%q, %q)", tc.processName, tc.progressStage)
	}
}

func TestBuildProcessDefinitionsOrdersBySortOrder(t *testing.T) {
	defs := BuildProcessDefinitions([]ProcessConfigEntry{
		{ProcessName: "Warehouse", SortOrder: 4},
		{ProcessName: " Sewing ", SortOrder: 2, UnitPrice: decimal.RequireFromString("2.5")},
		{ProcessName: "Cutting", SortOrder: 1},
		{ProcessName: "Quality", SortOrder: 3},
		{ProcessName: "", SortOrder: 0},
		{ProcessName: "Sewing", SortOrder: 9},
	})

	require.Len(t, defs, 4)
	assert.Equal(t, []string{"Cutting", "Sewing", "Quality", "Warehouse"}, ProcessNames(defs))
	assert.True(t, defs[1].UnitPrice.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, ScanTypeQuality, defs[2].ScanType)
}

func TestPartitionProcesses(t *testing.T) {
	defs := BuildProcessDefinitions([]ProcessConfigEntry{
		{ProcessName: "采购", SortOrder: 0},
		{ProcessName: "Cutting", SortOrder: 1},
		{ProcessName: "Sewing", SortOrder: 2},
		{ProcessName: "Quality", SortOrder: 3},
		{ProcessName: "Warehouse", SortOrder: 4},
		{ProcessName: "入库复核", SortOrder: 5},
	})

	countable, warehouse := PartitionProcesses(defs)

	assert.Equal(t, []string{"Sewing", "Quality"}, ProcessNames(countable))
	require.NotNil(t, warehouse)
	assert.Equal(t, "Warehouse", warehouse.ProcessName)
}

func TestIsSystemGenerated(t *testing.T) {
	assert.True(t, IsSystemGenerated("ORDER_CREATED_123"))
	assert.True(t, IsSystemGenerated("order-created-9"))
	assert.True(t, IsSystemGenerated("bundling_77"))
	assert.True(t, IsSystemGenerated("PROCUREMENT-1"))
	assert.True(t, IsSystemGenerated("warehousing_5"))
	assert.True(t, IsSystemGenerated("SYSTEM_repair"))
	assert.False(t, IsSystemGenerated(""))
	assert.False(t, IsSystemGenerated("3f1c2a9e-6c1b-4c77-9f0e-123456789abc"))
	assert.False(t, IsSystemGenerated("scan-20240301-0001"))
}

func TestQualitySubStep(t *testing.T) {
	assert.Equal(t, QualityStageReceive, QualitySubStep(""))
	assert.Equal(t, QualityStageReceive, QualitySubStep("QUALITY_RECEIVE"))
	assert.Equal(t, QualityStageConfirm, QualitySubStep("quality_confirm"))
	assert.Equal(t, QualityStage(""), QualitySubStep(ProcessCodeQualityInspect))
}

func TestOrderSummaryIsCompleted(t *testing.T) {
	assert.True(t, OrderSummary{Status: "Completed"}.IsCompleted())
	assert.True(t, OrderSummary{Status: "已完成"}.IsCompleted())
	assert.True(t, OrderSummary{Status: "in_production", ProgressPercent: 100}.IsCompleted())
	assert.False(t, OrderSummary{Status: "in_production", ProgressPercent: 99.5}.IsCompleted())
}
