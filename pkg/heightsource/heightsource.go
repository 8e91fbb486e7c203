// Package heightsource loads external 8-bit grayscale heightmaps into
// height fields. Each byte b becomes the sample b/255.
//
// Supported inputs are PNG, JPEG and GIF (standard library), BMP and TIFF
// (golang.org/x/image), TGA and headerless raw square byte files.
package heightsource

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	// Register image decoders for Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/Faultbox/terranarrative/pkg/heightfield"
)

// ErrSourceLoad wraps every failure to read or decode a heightmap. The
// underlying decoder error stays reachable through errors.Is.
var ErrSourceLoad = errors.New("heightsource: load failed")

// Source formats understood by Load.
const (
	FormatAuto = ""    // sniffed by the registered image decoders
	FormatRaw  = "raw" // headerless square byte grid
	FormatTGA  = "tga"
)

func loadError(err error) error {
	return fmt.Errorf("%w: %w", ErrSourceLoad, err)
}

// LoadFile reads a heightmap from disk. The format is taken from the file
// extension: .raw and .r8 are raw grids, .tga is TGA, anything else goes
// through the registered image decoders.
func LoadFile(path string) (*heightfield.HeightField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadError(err)
	}
	defer f.Close()

	hf, err := Load(f, formatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return hf, nil
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".raw", ".r8":
		return FormatRaw
	case ".tga":
		return FormatTGA
	default:
		return FormatAuto
	}
}

// Load decodes a heightmap of the given format from r.
func Load(r io.Reader, format string) (*heightfield.HeightField, error) {
	switch strings.ToLower(format) {
	case FormatRaw:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, loadError(err)
		}
		return DecodeRaw(data)
	case FormatTGA:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, loadError(err)
		}
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, loadError(err)
		}
		return FromImage(img)
	case FormatAuto:
		return Decode(r)
	default:
		return nil, loadError(fmt.Errorf("unknown heightmap format %q", format))
	}
}

// Decode sniffs and decodes any registered image format.
func Decode(r io.Reader) (*heightfield.HeightField, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, loadError(err)
	}
	return FromImage(img)
}

// DecodeRaw interprets data as a square grid of 8-bit samples, row-major.
// The length must be a perfect square.
func DecodeRaw(data []byte) (*heightfield.HeightField, error) {
	side := int(math.Sqrt(float64(len(data))))
	for side*side > len(data) {
		side--
	}
	for (side+1)*(side+1) <= len(data) {
		side++
	}
	if side*side != len(data) {
		return nil, loadError(fmt.Errorf("raw heightmap of %d bytes is not square", len(data)))
	}

	hf, err := heightfield.FromGray(side, side, data)
	if err != nil {
		return nil, loadError(err)
	}
	return hf, nil
}

// FromImage converts an image to a height field using its luminance.
// Image row y becomes field row z.
func FromImage(img image.Image) (*heightfield.HeightField, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	pix := make([]byte, 0, max(width, 0)*max(height, 0))
	if gray, ok := img.(*image.Gray); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := gray.PixOffset(b.Min.X, y)
			pix = append(pix, gray.Pix[off:off+width]...)
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pix = append(pix, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
			}
		}
	}

	hf, err := heightfield.FromGray(width, height, pix)
	if err != nil {
		return nil, loadError(err)
	}
	return hf, nil
}

// ToGray renders a height field as an 8-bit grayscale image, mapping the
// field's min to 0 and its max to 255. A flat field renders black.
func ToGray(hf *heightfield.HeightField) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, hf.Width(), hf.Height()))
	lo, hi := hf.MinMax()
	span := hi - lo
	if span < heightfield.Epsilon {
		return img
	}
	for i, v := range hf.Data() {
		img.Pix[i] = uint8(math.Round(float64((v - lo) / span * 255)))
	}
	return img
}
