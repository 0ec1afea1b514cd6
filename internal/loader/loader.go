// Package loader turns raw image bytes into decoded frames.
// It dispatches over an ordered chain of format decoders and knows how to
// acquire bytes from a file path, standard input, or a shell command.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Status classifies the outcome of a decode attempt.
type Status int

const (
	// Success means a decoder produced a usable payload.
	Success Status = iota
	// Unsupported means no decoder recognized the byte signature.
	Unsupported
	// FormatError means a decoder recognized the signature but the payload
	// was invalid. It outranks Unsupported in the aggregate result.
	FormatError
	// IoError means the bytes could not be obtained at all.
	IoError
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Unsupported:
		return "unsupported"
	case FormatError:
		return "format error"
	case IoError:
		return "i/o error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrNoMemory is returned by decoders that bound their own allocations and
// hit that bound. Structural operations elsewhere never report it; Go gives
// us no recoverable view of heap exhaustion.
var ErrNoMemory = errors.New("out of memory")

// Source markers understood by FromSource.
const (
	// StdinSource requests a full read of standard input.
	StdinSource = "-"
	// ExecPrefix marks a source whose image bytes are the captured stdout
	// of the shell command following the prefix.
	ExecPrefix = "exec:"
)

// MetaLine is one key/value line of image metadata.
type MetaLine struct {
	Key   string
	Value string
}

// Frame is a single decoded frame. Still images have exactly one.
type Frame struct {
	Pixels image.Image
	Delay  time.Duration // display duration; zero for still images
	Alpha  bool          // frame carries (or may carry) transparency
}

// Image is a decoded payload: one or more frames plus metadata lines.
type Image struct {
	Frames []Frame
	Width  int
	Height int
	Meta   []MetaLine
}

// DecodeFunc is the uniform per-decoder contract. Unsupported means the byte
// signature did not match; FormatError means it matched but the payload is
// invalid. The *Image is non-nil only on Success.
type DecodeFunc func(data []byte) (*Image, Status, error)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

type decoder struct {
	name string
	fn   DecodeFunc
}

// Registry is an ordered chain of format decoders. Registration order is
// priority order.
type Registry struct {
	decoders []decoder
	logger   LoggerFunc

	// Stdin is the reader drained for the StdinSource marker. It exists so
	// tests can substitute a buffer; it defaults to os.Stdin.
	Stdin io.Reader
}

// NewRegistry creates an empty registry. Callers register their own chain.
func NewRegistry(logger LoggerFunc) *Registry {
	if logger == nil {
		logger = func(string) {}
	}
	return &Registry{logger: logger, Stdin: os.Stdin}
}

// DefaultRegistry creates a registry with the built-in chain:
// PNG, JPEG, GIF, BMP, TIFF, WebP, tried in that order.
func DefaultRegistry(logger LoggerFunc) *Registry {
	r := NewRegistry(logger)
	r.Register("png", decodePNG)
	r.Register("jpeg", decodeJPEG)
	r.Register("gif", decodeGIF)
	r.Register("bmp", decodeBMP)
	r.Register("tiff", decodeTIFF)
	r.Register("webp", decodeWebP)
	return r
}

// Register appends a decoder to the end of the chain.
func (r *Registry) Register(name string, fn DecodeFunc) {
	r.decoders = append(r.decoders, decoder{name: name, fn: fn})
}

// Decoders returns the names of the registered chain in priority order.
func (r *Registry) Decoders() []string {
	names := make([]string, len(r.decoders))
	for i, d := range r.decoders {
		names[i] = d.name
	}
	return names
}

// FromBytes tries each registered decoder in order. The first Success wins.
// Otherwise a FormatError from any decoder beats Unsupported in the final
// result, because a signature match outranks no match even when a later
// decoder was tried afterwards.
func (r *Registry) FromBytes(data []byte) (*Image, Status, error) {
	agg := Unsupported
	var aggErr error
	for _, d := range r.decoders {
		img, status, err := d.fn(data)
		switch status {
		case Success:
			return img, Success, nil
		case FormatError:
			if agg != FormatError {
				agg = FormatError
				aggErr = fmt.Errorf("%s: %w", d.name, err)
			}
		case Unsupported:
			// try the next decoder
		}
	}
	if agg == Unsupported && aggErr == nil {
		aggErr = errors.New("no decoder matched")
	}
	return nil, agg, aggErr
}

// FromSource acquires bytes for the given source and decodes them.
// Acquisition failure short-circuits as IoError before any decoder runs.
// Three source kinds are understood: a plain file path, the "-" stdin
// marker, and "exec:<command>" which captures the command's stdout.
func (r *Registry) FromSource(ctx context.Context, source string) (*Image, Status, error) {
	data, err := r.acquire(ctx, source)
	if err != nil {
		return nil, IoError, err
	}
	return r.FromBytes(data)
}

// FromFile reads and decodes a file path directly, bypassing the source
// grammar. Useful when the caller already knows the source is a file.
func (r *Registry) FromFile(path string) (*Image, Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, IoError, fmt.Errorf("read %s: %w", path, err)
	}
	return r.FromBytes(data)
}

func (r *Registry) acquire(ctx context.Context, source string) ([]byte, error) {
	switch {
	case source == StdinSource:
		return readAll(r.Stdin)
	case strings.HasPrefix(source, ExecPrefix):
		command := strings.TrimPrefix(source, ExecPrefix)
		return r.captureCommand(ctx, command)
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return data, nil
	}
}

// captureCommand runs a shell command and captures its full stdout as the
// image bytes. The command's stderr is discarded.
func (r *Registry) captureCommand(ctx context.Context, command string) ([]byte, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("empty exec command")
	}
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("exec %q: %w", command, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("exec %q: %w", command, err)
	}
	data, readErr := readAll(stdout)
	waitErr := cmd.Wait()
	if readErr != nil {
		return nil, fmt.Errorf("exec %q: %w", command, readErr)
	}
	if waitErr != nil {
		return nil, fmt.Errorf("exec %q: %w", command, waitErr)
	}
	r.logger(fmt.Sprintf("captured %d bytes from command %q", len(data), command))
	return data, nil
}

// readAll drains a reader into a growable buffer, tolerating partial reads.
// An empty stream is an error: zero bytes can never decode.
func readAll(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("empty input stream")
	}
	return buf.Bytes(), nil
}
