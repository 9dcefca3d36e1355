package media

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"fortio.org/safecast"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Image formats, named after their file extensions.
const (
	PNG  = "png"
	JPEG = "jpg"
	GIF  = "gif"
	BMP  = "bmp"
	SVG  = "svg"
)

// NormalizeFormat lowercases a format tag or extension and maps aliases such
// as "jpeg" and ".PNG" to the constants above.
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "jpeg" {
		return JPEG
	}
	return format
}

// Image is an immutable picture. Bytes, pixels and dimensions are each
// materialized at most once, on first use.
type Image struct {
	declared string
	path     string
	source   image.Image

	dataOnce sync.Once
	data     []byte
	format   string
	dataErr  error

	rasterOnce sync.Once
	raster     image.Image
	rasterErr  error

	sizeOnce sync.Once
	width    int
	height   int
	sizeErr  error
}

// NewImage wraps encoded image bytes. An empty format is sniffed from the
// contents.
func NewImage(data []byte, format string) *Image {
	return &Image{data: data, declared: NormalizeFormat(format)}
}

// LoadImage refers to an image file. The file is read on first access, and
// its format is taken from the extension.
func LoadImage(path string) *Image {
	return &Image{path: path, declared: NormalizeFormat(filepath.Ext(path))}
}

// FromRaster wraps decoded pixels. The PNG encoding is produced on demand.
func FromRaster(img image.Image) *Image {
	return fromRaster(img, PNG)
}

func fromRaster(img image.Image, format string) *Image {
	return &Image{declared: format, source: img}
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) *Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return FromRaster(img)
}

// load materializes the encoded bytes and settles the format.
func (i *Image) load() error {
	i.dataOnce.Do(func() {
		switch {
		case i.data != nil:
		case i.path != "":
			i.data, i.dataErr = os.ReadFile(i.path)
		case i.source != nil:
			var buf bytes.Buffer
			i.dataErr = encode(&buf, i.source, i.declared)
			i.data = buf.Bytes()
		default:
			i.dataErr = fmt.Errorf("empty image: %w", ErrUnknownFormat)
		}
		i.format = i.declared
		if i.dataErr == nil && i.format == "" {
			i.format, i.dataErr = Sniff(i.data)
		}
	})
	return i.dataErr
}

// Bytes returns the encoded image. The slice must not be modified.
func (i *Image) Bytes() ([]byte, error) {
	if err := i.load(); err != nil {
		return nil, err
	}
	return i.data, nil
}

// Format returns the format tag, sniffing the bytes if none was declared.
// It is empty when the bytes cannot be read.
func (i *Image) Format() string {
	if i.declared != "" {
		return i.declared
	}
	if err := i.load(); err != nil {
		return ""
	}
	return i.format
}

// Extension is the file extension including the dot, e.g. ".png".
func (i *Image) Extension() string { return "." + i.Format() }

// IsVector reports whether the image is SVG.
func (i *Image) IsVector() bool { return i.Format() == SVG }

// Digest is the hex MD5 of the encoded bytes, the asset key used by archive
// formats.
func (i *Image) Digest() (string, error) {
	data, err := i.Bytes()
	if err != nil {
		return "", err
	}
	return digest(data), nil
}

// Size returns the natural dimensions without decoding the pixels: raster
// headers are read with DecodeConfig and SVG sizes come from the view box.
func (i *Image) Size() (int, int, error) {
	i.sizeOnce.Do(func() {
		if i.source != nil {
			b := i.source.Bounds()
			i.width, i.height = b.Dx(), b.Dy()
			return
		}
		data, err := i.Bytes()
		if err != nil {
			i.sizeErr = err
			return
		}
		if i.IsVector() {
			i.width, i.height, i.sizeErr = svgSize(data)
			return
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			i.sizeErr = fmt.Errorf("read %s header: %w", i.Format(), err)
			return
		}
		i.width, i.height = cfg.Width, cfg.Height
	})
	return i.width, i.height, i.sizeErr
}

// Raster returns the decoded pixels. Vector images fail with
// *VectorRasterizationError.
func (i *Image) Raster() (image.Image, error) {
	if i.IsVector() {
		return nil, &VectorRasterizationError{Format: SVG}
	}
	i.rasterOnce.Do(func() {
		if i.source != nil {
			i.raster = i.source
			return
		}
		data, err := i.Bytes()
		if err != nil {
			i.rasterErr = err
			return
		}
		i.raster, _, i.rasterErr = image.Decode(bytes.NewReader(data))
		if i.rasterErr != nil {
			i.rasterErr = fmt.Errorf("decode %s image: %w", i.Format(), i.rasterErr)
		}
	})
	return i.raster, i.rasterErr
}

// Convert returns the image in one of the accepted formats. It returns the
// receiver when its format is already accepted, otherwise re-encodes it in
// the first one. Vector images are rasterized at their natural size.
func (i *Image) Convert(formats ...string) (*Image, error) {
	if len(formats) == 0 {
		return i, nil
	}
	accepted := make([]string, len(formats))
	for n, f := range formats {
		accepted[n] = NormalizeFormat(f)
	}
	if slices.Contains(accepted, i.Format()) {
		return i, nil
	}
	target := accepted[0]
	if target == SVG {
		return nil, fmt.Errorf("cannot convert %s image to %s", i.Format(), SVG)
	}
	src := i
	if i.IsVector() {
		w, h, err := i.Size()
		if err != nil {
			return nil, err
		}
		if src, err = i.Rasterize(w, h); err != nil {
			return nil, err
		}
	}
	img, err := src.Raster()
	if err != nil {
		return nil, err
	}
	out := fromRaster(img, target)
	if err := out.load(); err != nil {
		return nil, err
	}
	return out, nil
}

// Resize scales the image to w×h with Catmull-Rom resampling. Vector images
// are rasterized at the new size instead.
func (i *Image) Resize(w, h int) (*Image, error) {
	if i.IsVector() {
		return i.Rasterize(w, h)
	}
	src, err := i.Raster()
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return fromRaster(dst, i.Format()), nil
}

// Rasterize renders a vector image to a w×h PNG. Raster images are resized.
func (i *Image) Rasterize(w, h int) (*Image, error) {
	if !i.IsVector() {
		return i.Resize(w, h)
	}
	data, err := i.Bytes()
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return FromRaster(dst), nil
}

func (i *Image) String() string {
	if i.path != "" {
		return fmt.Sprintf("Image(%s)", i.path)
	}
	return fmt.Sprintf("Image(%s)", i.declared)
}

func svgSize(data []byte) (int, int, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("parse svg: %w", err)
	}
	w, err := safecast.Convert[int](math.Ceil(icon.ViewBox.W))
	if err != nil {
		return 0, 0, fmt.Errorf("svg width %g: %w", icon.ViewBox.W, err)
	}
	h, err := safecast.Convert[int](math.Ceil(icon.ViewBox.H))
	if err != nil {
		return 0, 0, fmt.Errorf("svg height %g: %w", icon.ViewBox.H, err)
	}
	return w, h, nil
}

// Sniff identifies the format of encoded image bytes.
func Sniff(data []byte) (string, error) {
	head := data[:min(len(data), 1024)]
	if bytes.Contains(head, []byte("<svg")) {
		return SVG, nil
	}
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrUnknownFormat
	}
	return NormalizeFormat(name), nil
}

func encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case GIF:
		return gif.Encode(w, img, nil)
	case BMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("cannot encode %q images: %w", format, ErrUnknownFormat)
}

func digest(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
