// Package texture resolves and converts the textures referenced by
// materials.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"github.com/Faultbox/objconv/internal/logger"
	"github.com/Faultbox/objconv/internal/staging"
	"github.com/Faultbox/objconv/pkg/encoding"
)

// ErrUnsupportedFormat is returned for image extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// decoders maps lowercase file extensions to image decoders.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

// Result is a resolved texture.
type Result struct {
	// Path is the texture path to store in the scene, relative to the
	// output file. Empty when the texture could not be resolved.
	Path string
	// HasAlpha reports whether any pixel is not fully opaque.
	HasAlpha bool
}

// Converter resolves texture paths relative to a source directory and
// optionally re-encodes them as PNG into an output directory. Results are
// cached per source path for the lifetime of the converter. Converted
// images are held until Flush stages them.
type Converter struct {
	srcDir   string
	outDir   string // absolute location of converted textures
	relDir   string // outDir as referenced from the scene
	generate bool
	cache    *Cache
	names    map[string]string // output name -> source path
	pending  []pending
}

type pending struct {
	name string
	img  image.Image
}

// NewConverter creates a converter. Converted textures are written to
// filepath.Join(outputRoot, relDir) and referenced as relDir/<name>.png.
func NewConverter(srcDir, outputRoot, relDir string, generate bool) *Converter {
	return &Converter{
		srcDir:   srcDir,
		outDir:   filepath.Join(outputRoot, relDir),
		relDir:   filepath.ToSlash(relDir),
		generate: generate,
		cache:    NewCache(),
		names:    make(map[string]string),
	}
}

// Cache returns the converter's result cache.
func (c *Converter) Cache() *Cache { return c.cache }

// Resolve returns the result for the texture at src, a path relative to
// the source directory. Unreadable textures are logged and yield an empty
// Result.
func (c *Converter) Resolve(src string) Result {
	src = encoding.NormalizePath(src)
	if src == "" {
		return Result{}
	}
	return c.cache.Lookup(src, c.resolve)
}

func (c *Converter) resolve(src string) Result {
	img, err := c.decode(src)
	if err != nil {
		logger.Warn("texture skipped", zap.String("path", src), zap.Error(err))
		return Result{}
	}

	r := Result{Path: src, HasAlpha: HasAlpha(img)}
	if !c.generate {
		return r
	}

	name := c.outputName(src)
	c.pending = append(c.pending, pending{name: name, img: img})
	r.Path = path.Join(c.relDir, name)
	return r
}

// Pending returns the number of converted textures not yet staged.
func (c *Converter) Pending() int { return len(c.pending) }

// Flush encodes the converted textures as PNG and stages them in files.
func (c *Converter) Flush(files *staging.Files) error {
	for len(c.pending) > 0 {
		p := c.pending[0]
		var buf bytes.Buffer
		if err := png.Encode(&buf, p.img); err != nil {
			return fmt.Errorf("encoding %s: %w", p.name, err)
		}
		if err := files.WriteFile(filepath.Join(c.outDir, p.name), buf.Bytes()); err != nil {
			return fmt.Errorf("writing texture: %w", err)
		}
		logger.Debug("texture staged", zap.String("path", path.Join(c.relDir, p.name)))
		c.pending = c.pending[1:]
	}
	return nil
}

func (c *Converter) decode(src string) (image.Image, error) {
	ext := strings.ToLower(path.Ext(src))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	f, err := os.Open(filepath.Join(c.srcDir, filepath.FromSlash(src)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}
	return img, nil
}

// outputName picks a unique PNG file name for src.
func (c *Converter) outputName(src string) string {
	base := strings.TrimSuffix(path.Base(src), path.Ext(src))
	name := base + ".png"
	for i := 1; ; i++ {
		owner, taken := c.names[name]
		if !taken || owner == src {
			break
		}
		name = fmt.Sprintf("%s_%d.png", base, i)
	}
	c.names[name] = src
	return name
}

// HasAlpha reports whether img has a pixel with alpha below full opacity.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
