package heightsource

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeTrueColor    = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeTrueColorRLE = 10 // RLE compressed true-color
	TGATypeGrayRLE      = 11 // RLE compressed grayscale
)

var errTGATruncated = errors.New("TGA pixel data truncated")

// DecodeTGA decodes a TGA file into an 8-bit grayscale image. Supports
// uncompressed and RLE true-color (24/32 bpp, reduced to luminance) and
// grayscale (8 bpp) images.
func DecodeTGA(data []byte) (*image.Gray, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	// TGA header
	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	// colorMapSpec: bytes 3-7 (unused without a color map)
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}

	var toGray func(p []byte) uint8
	switch imageType {
	case TGATypeTrueColor, TGATypeTrueColorRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("unsupported true-color TGA bit depth %d (only 24/32 supported)", bpp)
		}
		toGray = bgrLuminance
	case TGATypeGray, TGATypeGrayRLE:
		if bpp != 8 {
			return nil, fmt.Errorf("unsupported grayscale TGA bit depth %d (only 8 supported)", bpp)
		}
		toGray = func(p []byte) uint8 { return p[0] }
	default:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("TGA has empty dimensions %dx%d", width, height)
	}

	// Skip ID field
	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}
	pixelData := data[offset:]

	img := image.NewGray(image.Rect(0, 0, width, height))
	bytesPerPixel := bpp / 8

	// Bit 5 of the descriptor marks top-to-bottom row order
	topToBottom := descriptor&0x20 != 0
	put := func(pixelIdx int, v uint8) {
		x := pixelIdx % width
		y := pixelIdx / width
		if !topToBottom {
			y = height - 1 - y
		}
		img.Pix[y*img.Stride+x] = v
	}

	if imageType == TGATypeTrueColor || imageType == TGATypeGray {
		expectedSize := width * height * bytesPerPixel
		if len(pixelData) < expectedSize {
			return nil, errTGATruncated
		}
		for i := range width * height {
			put(i, toGray(pixelData[i*bytesPerPixel:]))
		}
		return img, nil
	}

	if err := decodeTGARLE(pixelData, width*height, bytesPerPixel, toGray, put); err != nil {
		return nil, err
	}
	return img, nil
}

// decodeTGARLE expands RLE packets, handing each decoded pixel to put.
func decodeTGARLE(pixelData []byte, pixelCount, bytesPerPixel int, toGray func([]byte) uint8, put func(int, uint8)) error {
	pixelIdx := 0
	dataIdx := 0

	for pixelIdx < pixelCount {
		if dataIdx >= len(pixelData) {
			return errTGATruncated
		}
		packet := pixelData[dataIdx]
		dataIdx++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel repeated count times
			if dataIdx+bytesPerPixel > len(pixelData) {
				return errTGATruncated
			}
			v := toGray(pixelData[dataIdx:])
			dataIdx += bytesPerPixel
			for i := 0; i < count && pixelIdx < pixelCount; i++ {
				put(pixelIdx, v)
				pixelIdx++
			}
			continue
		}

		// Raw packet: count literal pixels
		for i := 0; i < count && pixelIdx < pixelCount; i++ {
			if dataIdx+bytesPerPixel > len(pixelData) {
				return errTGATruncated
			}
			put(pixelIdx, toGray(pixelData[dataIdx:]))
			dataIdx += bytesPerPixel
			pixelIdx++
		}
	}

	return nil
}

// bgrLuminance converts a BGR(A) pixel to gray with the same weights as
// color.GrayModel. Alpha is ignored.
func bgrLuminance(p []byte) uint8 {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	return color.GrayModel.Convert(c).(color.Gray).Y
}
