package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnownSectionType(t *testing.T) {
	for _, sectionType := range []string{"text", "image", "hero", "gallery", "cta"} {
		require.True(t, KnownSectionType(sectionType), sectionType)
	}
	require.False(t, KnownSectionType("video"))
	require.False(t, KnownSectionType(""))
}

func TestValidateSectionContent(t *testing.T) {
	cases := []struct {
		name        string
		sectionType string
		content     string
		wantErr     bool
	}{
		{"text accepts string", "text", `"hello"`, false},
		{"hero accepts string", "hero", `"welcome"`, false},
		{"cta accepts string", "cta", `"buy now"`, false},
		{"text rejects object", "text", `{"a":1}`, true},
		{"image accepts descriptor", "image", `{"url":"/img/a.png","alt":"a"}`, false},
		{"image requires url", "image", `{"alt":"a"}`, true},
		{"image rejects string", "image", `"not an image"`, true},
		{"gallery accepts list", "gallery", `[{"url":"/1.png"},{"url":"/2.png"}]`, false},
		{"gallery rejects entry without url", "gallery", `[{"url":"/1.png"},{"alt":"x"}]`, true},
		{"gallery rejects object", "gallery", `{"url":"/1.png"}`, true},
		{"unknown type", "video", `"x"`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSectionContent(tc.sectionType, json.RawMessage(tc.content))
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateSectionContentRequiresPayload(t *testing.T) {
	require.Error(t, ValidateSectionContent("text", nil))
}
