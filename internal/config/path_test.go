package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("GREENINVOICE_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty", path: "", want: ""},
		{name: "absolute untouched", path: "/tmp/payments.xlsx", want: "/tmp/payments.xlsx"},
		{name: "relative untouched", path: "payments.xlsx", want: "payments.xlsx"},
		{name: "bare tilde", path: "~", want: home},
		{name: "tilde prefix", path: "~/sheets/payments.xlsx", want: filepath.Join(home, "sheets", "payments.xlsx")},
		{name: "env var", path: "$GREENINVOICE_TEST_DIR/payments.xlsx", want: "/var/data/payments.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}
