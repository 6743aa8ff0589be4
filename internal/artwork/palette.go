package artwork

import (
	"fmt"
	"image"
	"sort"
)

// DefaultPaletteColors is the palette size used when callers pass n <= 0.
const DefaultPaletteColors = 2

// maxSamples bounds how many pixels feed the quantizer.
const maxSamples = 40000

type rgb [3]uint8

type box struct {
	pixels []rgb
}

// Palette returns the n dominant colours of img as "#rrggbb", most populous
// first, using median-cut quantization. Transparent pixels are ignored.
func Palette(img image.Image, n int) []string {
	if n <= 0 {
		n = DefaultPaletteColors
	}
	pixels := samplePixels(img)
	if len(pixels) == 0 {
		return []string{}
	}

	boxes := []box{{pixels: pixels}}
	for len(boxes) < n {
		idx, channel := widestBox(boxes)
		if idx < 0 {
			break
		}
		target := boxes[idx].pixels
		sort.SliceStable(target, func(i, j int) bool { return target[i][channel] < target[j][channel] })
		mid := len(target) / 2
		boxes[idx] = box{pixels: target[:mid]}
		boxes = append(boxes, box{pixels: target[mid:]})
	}

	sort.SliceStable(boxes, func(i, j int) bool { return len(boxes[i].pixels) > len(boxes[j].pixels) })
	colors := make([]string, 0, len(boxes))
	for _, b := range boxes {
		avg := b.average()
		colors = append(colors, fmt.Sprintf("#%02x%02x%02x", avg[0], avg[1], avg[2]))
	}
	return colors
}

func samplePixels(img image.Image) []rgb {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total <= 0 {
		return nil
	}
	step := 1
	for total/(step*step) > maxSamples {
		step++
	}
	pixels := make([]rgb, 0, min(total, maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			// Undo alpha premultiplication before truncating to 8 bits.
			r, g, b = r*0xffff/a, g*0xffff/a, b*0xffff/a
			pixels = append(pixels, rgb{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
		}
	}
	return pixels
}

// widestBox returns the splittable box with the largest channel range and
// that channel, or -1 when no box can be split.
func widestBox(boxes []box) (int, int) {
	bestIdx, bestChannel, bestRange := -1, 0, 0
	for i, b := range boxes {
		if len(b.pixels) < 2 {
			continue
		}
		for c := 0; c < 3; c++ {
			lo, hi := uint8(255), uint8(0)
			for _, p := range b.pixels {
				lo = min(lo, p[c])
				hi = max(hi, p[c])
			}
			if r := int(hi) - int(lo); r > bestRange {
				bestIdx, bestChannel, bestRange = i, c, r
			}
		}
	}
	return bestIdx, bestChannel
}

func (b box) average() rgb {
	var sum [3]int
	for _, p := range b.pixels {
		for c := 0; c < 3; c++ {
			sum[c] += int(p[c])
		}
	}
	n := len(b.pixels)
	return rgb{uint8((sum[0] + n/2) / n), uint8((sum[1] + n/2) / n), uint8((sum[2] + n/2) / n)}
}
