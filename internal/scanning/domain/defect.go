package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefectInfo is the structured defect data carried in a quality remark.
type DefectInfo struct {
	Unqualified bool
	Quantity    int
	Remark      string
}

// HasReentryQuantity reports whether the defect data supports a defective
// re-entry into warehousing.
func (d DefectInfo) HasReentryQuantity() bool {
	return d.Unqualified && d.Quantity > 0
}

var (
	resultKeys   = []string{"qualityresult", "quality_result", "result", "status", "质检结果", "结果"}
	quantityKeys = []string{"defectquantity", "defect_quantity", "defectqty", "defect_qty", "unqualifiedquantity", "unqualified_quantity", "不合格数量", "次品数量"}
	remarkKeys   = []string{"defectremark", "defect_remark", "defectcategory", "defect_category", "reason", "remark", "备注", "原因"}
)

var unqualifiedValues = map[string]struct{}{
	"unqualified": {},
	"不合格":         {},
	"ng":          {},
	"defective":   {},
	"rejected":    {},
	"fail":        {},
}

// ParseDefectRemark extracts defect data from a quality remark. JSON objects
// and key=value lists separated by ';', ',' or '|' are understood; a bare
// "unqualified" marker yields Unqualified without a quantity.
func ParseDefectRemark(remark string) DefectInfo {
	text := strings.TrimSpace(remark)
	if text == "" {
		return DefectInfo{}
	}

	fields, ok := parseJSONFields(text)
	if !ok {
		fields = parseKeyValueFields(text)
	}
	if len(fields) == 0 {
		return DefectInfo{Unqualified: isUnqualified(text)}
	}

	info := DefectInfo{}
	if value, ok := lookup(fields, resultKeys); ok {
		info.Unqualified = isUnqualified(value)
	}
	if value, ok := lookup(fields, quantityKeys); ok {
		if qty, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && qty > 0 {
			info.Quantity = qty
		} else if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && f > 0 {
			info.Quantity = int(f)
		}
	}
	if value, ok := lookup(fields, remarkKeys); ok {
		info.Remark = strings.TrimSpace(value)
	}
	return info
}

func parseJSONFields(text string) (map[string]string, bool) {
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, false
	}
	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		normalizedKey := strings.ToLower(strings.TrimSpace(key))
		switch v := value.(type) {
		case string:
			fields[normalizedKey] = v
		case float64:
			fields[normalizedKey] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[normalizedKey] = strconv.FormatBool(v)
		}
	}
	return fields, true
}

func parseKeyValueFields(text string) map[string]string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ';', ',', '|', '；', '，', '\n':
			return true
		}
		return false
	})
	fields := make(map[string]string, len(parts))
	for _, part := range parts {
		key, value, ok := cutAny(part, "=", ":", "：")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" {
			fields[key] = strings.TrimSpace(value)
		}
	}
	return fields
}

func cutAny(s string, seps ...string) (string, string, bool) {
	best := -1
	bestSep := ""
	for _, sep := range seps {
		if idx := strings.Index(s, sep); idx >= 0 && (best < 0 || idx < best) {
			best, bestSep = idx, sep
		}
	}
	if best < 0 {
		return "", "", false
	}
	return s[:best], s[best+len(bestSep):], true
}

func lookup(fields map[string]string, keys []string) (string, bool) {
	for _, key := range keys {
		if value, ok := fields[key]; ok {
			return value, true
		}
	}
	return "", false
}

func isUnqualified(value string) bool {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if _, ok := unqualifiedValues[normalized]; ok {
		return true
	}
	return strings.Contains(normalized, "unqualified") || strings.Contains(normalized, "不合格")
}
