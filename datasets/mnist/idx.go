package mnist

import "bytes"
import "compress/gzip"
import "encoding/binary"
import "io"

import "github.com/pkg/errors"

const imageMagic = 0x00000803
const labelMagic = 0x00000801

type labelHeader struct{ Magic, Num uint32 }

type imageHeader struct{ Magic, Num, Height, Width uint32 }

func gunzip(data []byte) (io.Reader, error) {
	gzipReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	var uncompressedBuffer bytes.Buffer
	_, err = uncompressedBuffer.ReadFrom(gzipReader)
	gzipReader.Close()
	if err != nil {
		return nil, errors.Wrap(err, "gunzip")
	}
	return &uncompressedBuffer, nil
}

// parseImages decodes a gzipped IDX3 file into row-major pixels
func parseImages(data []byte) (pix []byte, height, width int, err error) {
	r, err := gunzip(data)
	if err != nil {
		return nil, 0, 0, err
	}
	var head imageHeader
	if err = binary.Read(r, binary.BigEndian, &head); err != nil {
		return nil, 0, 0, errors.Wrap(err, "image header")
	}
	if head.Magic != imageMagic {
		return nil, 0, 0, errors.Errorf("bad image magic %#x", head.Magic)
	}
	height, width = int(head.Height), int(head.Width)
	pix = make([]byte, int(head.Num)*height*width)
	if _, err = io.ReadFull(r, pix); err != nil {
		return nil, 0, 0, errors.Wrapf(err, "reading %d %dx%d images", head.Num, height, width)
	}
	return pix, height, width, nil
}

// parseLabels decodes a gzipped IDX1 file
func parseLabels(data []byte) ([]byte, error) {
	r, err := gunzip(data)
	if err != nil {
		return nil, err
	}
	var head labelHeader
	if err = binary.Read(r, binary.BigEndian, &head); err != nil {
		return nil, errors.Wrap(err, "label header")
	}
	if head.Magic != labelMagic {
		return nil, errors.Errorf("bad label magic %#x", head.Magic)
	}
	var labels = make([]byte, head.Num)
	if _, err = io.ReadFull(r, labels); err != nil {
		return nil, errors.Wrapf(err, "reading %d labels", head.Num)
	}
	return labels, nil
}
