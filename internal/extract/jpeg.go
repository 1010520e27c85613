package extract

import "bytes"

var (
	jpegStart = []byte{0xFF, 0xD8, 0xFF}
	jpegEnd   = []byte{0xFF, 0xD9}
)

// minJPEGSize filters out thumbnails and marker false positives; embedded
// equipment photos are comfortably above 1 KiB.
const minJPEGSize = 1024

// ScanJPEG extracts embedded JPEG images from a raw byte stream (typically a
// PDF) by scanning for start-of-image and end-of-image markers. Segments
// smaller than minJPEGSize are dropped.
func ScanJPEG(data []byte) [][]byte {
	var images [][]byte
	for off := 0; off < len(data); {
		start := bytes.Index(data[off:], jpegStart)
		if start < 0 {
			break
		}
		start += off

		end := bytes.Index(data[start:], jpegEnd)
		if end < 0 {
			break
		}
		end += start + len(jpegEnd)

		if end-start >= minJPEGSize {
			images = append(images, data[start:end])
		}
		off = end
	}
	return images
}
