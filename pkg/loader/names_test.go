package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplifyName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"doe^jane", "doe_jane"},
		{"doe jane", "doe_jane"},
		{" doe  jane ", "doe_jane"},
		{"doe^^jane", "doe_jane"},
		{"o'doe^jane", "odoe_jane"},
		{"doe/jane", "doe_jane"},
		{"doe-jane", "doe-jane"},
		{"unknown", "unknown"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SimplifyName(tc.in), tc.in)
	}
}

func TestSimplifyDescription(t *testing.T) {
	cases := []struct{ in, want string }{
		{"t1 mprage sag", "t1_mprage_sag"},
		{"T2* GRE", "T2_GRE"},
		{"head/neck", "head_neck"},
		{"localizer", "localizer"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SimplifyDescription(tc.in), tc.in)
	}
}
