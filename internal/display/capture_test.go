package display

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCapturer(tool string, output []byte, lookupErr, runErr error) *Capturer {
	c := NewCapturer(tool)
	c.lookup = func(name string) (string, error) {
		if lookupErr != nil {
			return "", lookupErr
		}
		return "/usr/local/bin/" + name, nil
	}
	c.run = func(ctx context.Context, path string) ([]byte, error) {
		return output, runErr
	}
	return c
}

func TestNewCapturer_DefaultTool(t *testing.T) {
	assert.Equal(t, DefaultTool, NewCapturer("").Tool())
	assert.Equal(t, "xrandr", NewCapturer("xrandr").Tool())
}

func TestResolutions_ToolMissing(t *testing.T) {
	c := fakeCapturer("screenresolution", nil, errors.New("not found"), nil)

	_, err := c.Resolutions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required tool "screenresolution" not found on PATH`)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestResolutions_ExtractsTokens(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name:   "single display",
			output: "Display 0: 2560x1440x32@60Hz\n",
			want:   []string{"2560x1440"},
		},
		{
			name:   "multiple displays in order",
			output: "Display 0: 2560x1440\nDisplay 1: 1920x1080\n",
			want:   []string{"2560x1440", "1920x1080"},
		},
		{
			name:   "no resolutions",
			output: "no displays detected\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeCapturer("screenresolution", []byte(tt.output), nil, nil)

			got, err := c.Resolutions(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolutions_RunFailure(t *testing.T) {
	c := fakeCapturer("screenresolution", nil, nil, errors.New("exit status 2"))

	_, err := c.Resolutions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running screenresolution")
}

func TestCaptureToFile_WritesOnePerLine(t *testing.T) {
	c := fakeCapturer("screenresolution", []byte("Display 0: 2560x1440\nDisplay 1: 1920x1080\n"), nil, nil)

	outputFile := filepath.Join(t.TempDir(), "out.txt")
	got, err := c.CaptureToFile(context.Background(), outputFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"2560x1440", "1920x1080"}, got)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, "2560x1440\n1920x1080\n", string(data))
}

func TestCaptureToFile_ToolMissingWritesNothing(t *testing.T) {
	c := fakeCapturer("screenresolution", nil, errors.New("not found"), nil)

	outputFile := filepath.Join(t.TempDir(), "out.txt")
	_, err := c.CaptureToFile(context.Background(), outputFile)
	require.Error(t, err)

	_, statErr := os.Stat(outputFile)
	assert.True(t, os.IsNotExist(statErr))
}
