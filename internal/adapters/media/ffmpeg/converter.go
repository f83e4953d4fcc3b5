// Package ffmpeg converts voice recordings with the ffmpeg executable.
package ffmpeg

import (
	"context"
	"fmt"

	"github.com/bnema/voxlate/internal/adapters/process"
	"github.com/bnema/voxlate/internal/ports"
)

const DefaultBinary = "ffmpeg"

type Converter struct {
	run process.RunFunc
}

var _ ports.AudioConverter = (*Converter)(nil)

// NewConverter resolves binary up front so a missing ffmpeg fails startup
// instead of the first voice message.
func NewConverter(binary string) (*Converter, error) {
	if binary == "" {
		binary = DefaultBinary
	}

	runner, err := process.Resolve(binary)
	if err != nil {
		return nil, fmt.Errorf("resolve ffmpeg: %w", err)
	}

	return &Converter{run: runner.Run}, nil
}

// Convert transcodes srcPath into dstPath; the output codec follows the
// destination extension.
func (c *Converter) Convert(ctx context.Context, srcPath, dstPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := c.run(ctx, "", "-hide_banner", "-loglevel", "error", "-y", "-i", srcPath, "-vn", dstPath)
	if err != nil {
		return process.FormatError("ffmpeg convert", err, stderr)
	}

	return nil
}
