package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefectRemark(t *testing.T) {
	tests := []struct {
		name   string
		remark string
		want   DefectInfo
	}{
		{
			name:   "json",
			remark: `{"qualityResult":"unqualified","defectQuantity":5,"defectRemark":"open seam"}`,
			want:   DefectInfo{Unqualified: true, Quantity: 5, Remark: "open seam"},
		},
		{
			name:   "json qualified",
			remark: `{"qualityResult":"qualified","defectQuantity":0}`,
			want:   DefectInfo{},
		},
		{
			name:   "key value",
			remark: "result=unqualified;defectQty=3;reason=stain",
			want:   DefectInfo{Unqualified: true, Quantity: 3, Remark: "stain"},
		},
		{
			name:   "chinese labels",
			remark: "质检结果：不合格|不合格数量：2|原因：跳针",
			want:   DefectInfo{Unqualified: true, Quantity: 2, Remark: "跳针"},
		},
		{
			name:   "bare marker",
			remark: "unqualified",
			want:   DefectInfo{Unqualified: true},
		},
		{
			name:   "free text",
			remark: "looks fine",
			want:   DefectInfo{},
		},
		{
			name:   "negative quantity ignored",
			remark: "result=unqualified;defectQty=-4",
			want:   DefectInfo{Unqualified: true},
		},
		{
			name:   "empty",
			remark: "  ",
			want:   DefectInfo{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseDefectRemark(tc.remark))
		})
	}
}

func TestDefectInfoHasReentryQuantity(t *testing.T) {
	assert.True(t, DefectInfo{Unqualified: true, Quantity: 1}.HasReentryQuantity())
	assert.False(t, DefectInfo{Unqualified: true}.HasReentryQuantity())
	assert.False(t, DefectInfo{Quantity: 4}.HasReentryQuantity())
}
