// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamingFileNames(t *testing.T) {
	n := Naming{Tag: "86_540", Batch: "B7"}

	assert.Equal(t, "86_540_coded_targets_T_B7", n.ShapefileBase("T"))
	assert.Equal(t, "86_540_coded_targets_B7.csv", n.CSVName())
	assert.Equal(t, "86_540_coded_targets_B7.shp.zip", n.ArchiveName())
}

func TestNamingEmptyTokens(t *testing.T) {
	n := Naming{Tag: "97_541"}
	assert.Equal(t, "97_541_coded_targets__", n.ShapefileBase(""))
	assert.NoError(t, n.Validate(""))
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		token   string
		wantErr bool
	}{
		{"T", false},
		{"batch 12", false},
		{"çay-01", false},
		{"", false},
		{"1.5", false},
		{"..", true},
		{".", true},
		{"a/b", true},
		{`a\b`, true},
		{"a\x00b", true},
		{"..x", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			err := ValidateToken(tt.token)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrUnsafeName)
		})
	}
}

func TestNamingValidateNamesField(t *testing.T) {
	n := Naming{Tag: "86_540", Batch: "../etc"}
	err := n.Validate("T")
	require.ErrorIs(t, err, ErrUnsafeName)
	assert.EqualError(t, err, `batch "../etc": unsafe file name token`)
}

func TestConversionConfigTags(t *testing.T) {
	cfg := ConversionConfig{NamingTags: DefaultNamingTags}
	assert.Equal(t, "86_540", cfg.DefaultTag())
	assert.True(t, cfg.HasTag("97_541"))
	assert.False(t, cfg.HasTag("00_000"))
	assert.Empty(t, ConversionConfig{}.DefaultTag())
}
