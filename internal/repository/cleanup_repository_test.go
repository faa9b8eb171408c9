package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkuPatternToLike(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		want     string
		wantGlob bool
	}{
		{
			name:     "no wildcard means exact match",
			pattern:  "WIDGET-001",
			want:     "WIDGET-001",
			wantGlob: false,
		},
		{
			name:     "trailing star",
			pattern:  "WIDGET-*",
			want:     "WIDGET-%",
			wantGlob: true,
		},
		{
			name:     "leading and trailing stars",
			pattern:  "*TEMP*",
			want:     "%TEMP%",
			wantGlob: true,
		},
		{
			name:     "star in the middle",
			pattern:  "SKU-*-OLD",
			want:     "SKU-%-OLD",
			wantGlob: true,
		},
		{
			name:     "percent matches itself",
			pattern:  "50%*",
			want:     `50\%%`,
			wantGlob: true,
		},
		{
			name:     "underscore matches itself",
			pattern:  "A_B*",
			want:     `A\_B%`,
			wantGlob: true,
		},
		{
			name:     "backslash is escaped",
			pattern:  `A\B*`,
			want:     `A\\B%`,
			wantGlob: true,
		},
		{
			name:     "only a star",
			pattern:  "*",
			want:     "%",
			wantGlob: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, isGlob := skuPatternToLike(tt.pattern)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantGlob, isGlob)
		})
	}
}
