package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveStreamMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		defaultStream bool
		flagSet       bool
		noStream      bool
		want          bool
	}{
		{"默认跟随设置开启", true, false, false, true},
		{"默认跟随设置关闭", false, false, false, false},
		{"命令行关闭覆盖设置", true, true, true, false},
		{"命令行开启覆盖设置", false, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, resolveStreamMode(tt.defaultStream, tt.flagSet, tt.noStream))
		})
	}
}
