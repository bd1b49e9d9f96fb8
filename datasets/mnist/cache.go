package mnist

import "encoding/gob"
import "os"
import "path/filepath"

import "github.com/pkg/errors"
import "github.com/ulikunitz/xz"

import "github.com/neurlang/savanna/datasets"

// cached holds the decoded IDX payloads, pixels stay bytes to keep the cache small
type cached struct {
	Height, Width      int
	TrainPix, InferPix []byte
	TrainLbl, InferLbl []byte
}

func toRaw(pix, lbl []byte, height, width int) (datasets.Raw, error) {
	var size = height * width
	if size == 0 || len(pix) != len(lbl)*size {
		return datasets.Raw{}, errors.Errorf("%d pixels do not hold %d %dx%d images", len(pix), len(lbl), height, width)
	}
	var r = datasets.Raw{
		Images: make([][]float64, len(lbl)),
		Labels: make([]int, len(lbl)),
		Height: height,
		Width:  width,
	}
	for i := range r.Images {
		img := make([]float64, size)
		for j, v := range pix[i*size : (i+1)*size] {
			img[j] = float64(v)
		}
		r.Images[i] = img
		r.Labels[i] = int(lbl[i])
	}
	return r, nil
}

func (c *cached) raw() (train, infer datasets.Raw, err error) {
	if train, err = toRaw(c.TrainPix, c.TrainLbl, c.Height, c.Width); err != nil {
		return
	}
	infer, err = toRaw(c.InferPix, c.InferLbl, c.Height, c.Width)
	return
}

func readCache(path string) (*cached, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := xz.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "xz cache")
	}
	var c cached
	if err = gob.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "decode cache")
	}
	return &c, nil
}

func writeCache(path string, c *cached) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path + ".tmp")
	if err != nil {
		return err
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return errors.Wrap(err, "xz cache")
	}
	if err = gob.NewEncoder(w).Encode(c); err != nil {
		w.Close()
		f.Close()
		return errors.Wrap(err, "encode cache")
	}
	if err = w.Close(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(path+".tmp", path)
}
