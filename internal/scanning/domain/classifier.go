package domain

import (
	"strings"
	"unicode"
)

type scanTypeRule struct {
	scanType ScanType
	keywords []string
}

// scanTypeRules is consulted in order; the first matching keyword wins.
// This table only routes scans to the right handling. Production order always
// comes from the per-order template.
var scanTypeRules = []scanTypeRule{
	{ScanTypeProcurement, []string{"采购", "物料", "procurement", "purchase", "purchasing", "sourcing"}},
	{ScanTypeCutting, []string{"裁剪", "裁床", "裁片", "cutting", "cut"}},
	{ScanTypeQuality, []string{"质检", "品检", "检验", "质量", "quality", "qc", "qa", "inspection"}},
	{ScanTypeWarehouse, []string{"入库", "仓库", "仓储", "warehouse", "warehousing"}},
}

// ClassifyScanType matches processName against the keyword table, then
// progressStage, and falls back to production.
func ClassifyScanType(processName, progressStage string) ScanType {
	if t, ok := matchScanType(processName); ok {
		return t
	}
	if t, ok := matchScanType(progressStage); ok {
		return t
	}
	return ScanTypeProduction
}

func matchScanType(value string) (ScanType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", false
	}
	tokens := asciiTokens(normalized)
	for _, rule := range scanTypeRules {
		for _, keyword := range rule.keywords {
			if isASCII(keyword) {
				if _, ok := tokens[keyword]; ok {
					return rule.scanType, true
				}
				continue
			}
			if strings.Contains(normalized, keyword) {
				return rule.scanType, true
			}
		}
	}
	return "", false
}

// asciiTokens splits on anything that is not an ASCII letter or digit, so
// "QC-check" yields {"qc", "check"} while "execute" never matches "cut".
func asciiTokens(value string) map[string]struct{} {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tokens[field] = struct{}{}
	}
	return tokens
}

func isASCII(value string) bool {
	for _, r := range value {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
