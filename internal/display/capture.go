// Package display captures the current screen resolution by shelling out to
// a display query tool and extracting WIDTHxHEIGHT tokens from its output.
package display

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/cloo-solutions/fingertips/internal/domain"
)

// DefaultTool is the display query binary expected on PATH.
const DefaultTool = "screenresolution"

// DefaultOutputFile receives the captured resolutions, one per line.
const DefaultOutputFile = "resolution.txt"

var resolutionPattern = regexp.MustCompile(`\b\d+x\d+\b`)

// ErrToolNotFound indicates the display query tool is not installed.
var ErrToolNotFound = domain.NewDomainError(domain.ErrCodeNotFound, "display query tool not found")

// Capturer runs the display query tool and records its resolutions.
type Capturer struct {
	tool   string
	lookup func(string) (string, error)
	run    func(ctx context.Context, path string) ([]byte, error)
}

// NewCapturer returns a Capturer for the given tool name. An empty name
// falls back to DefaultTool.
func NewCapturer(tool string) *Capturer {
	if tool == "" {
		tool = DefaultTool
	}
	return &Capturer{
		tool:   tool,
		lookup: exec.LookPath,
		run: func(ctx context.Context, path string) ([]byte, error) {
			return exec.CommandContext(ctx, path, "get").CombinedOutput()
		},
	}
}

// Tool returns the configured tool name.
func (c *Capturer) Tool() string {
	return c.tool
}

// Resolutions runs the tool and returns every WIDTHxHEIGHT token found in
// its output, in order of appearance.
func (c *Capturer) Resolutions(ctx context.Context) ([]string, error) {
	path, err := c.lookup(c.tool)
	if err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeNotFound,
			Message: fmt.Sprintf("required tool %q not found on PATH", c.tool),
			Err:     ErrToolNotFound,
		}
	}

	out, err := c.run(ctx, path)
	if err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeInternalError,
			Message: fmt.Sprintf("running %s: %v", c.tool, err),
			Err:     err,
		}
	}

	return resolutionPattern.FindAllString(string(out), -1), nil
}

// CaptureToFile runs the tool and writes the resolutions one per line to
// the named file. An empty name falls back to DefaultOutputFile.
func (c *Capturer) CaptureToFile(ctx context.Context, outputFile string) ([]string, error) {
	if outputFile == "" {
		outputFile = DefaultOutputFile
	}

	resolutions, err := c.Resolutions(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, res := range resolutions {
		b.WriteString(res)
		b.WriteString("\n")
	}
	if err := os.WriteFile(outputFile, []byte(b.String()), 0o644); err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeInternalError,
			Message: fmt.Sprintf("writing %s: %v", outputFile, err),
			Err:     err,
		}
	}
	return resolutions, nil
}
