// Package mnist loads the MNIST and Fashion-MNIST image datasets
package mnist

import "context"
import "net/http"
import "os"
import "path/filepath"

import "github.com/pkg/errors"

import "github.com/neurlang/savanna/datasets"

// Kind names one of the supported datasets
type Kind string

const (
	MNIST        Kind = "mnist"
	FashionMNIST Kind = "fashion"
)

// ImgSize is the height and width of all images
const ImgSize = 28

// Kinds lists the datasets in benchmark order
var Kinds = []Kind{MNIST, FashionMNIST}

// ParseKind accepts the dataset names used on the command line and by openml.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "mnist", "MNIST", "mnist_784":
		return MNIST, nil
	case "fashion", "fashion_mnist", "Fashion-MNIST", "FashionMNIST":
		return FashionMNIST, nil
	}
	return "", errors.Errorf("unknown dataset %q", s)
}

// String returns the display name
func (k Kind) String() string {
	switch k {
	case MNIST:
		return "MNIST"
	case FashionMNIST:
		return "FashionMNIST"
	}
	return string(k)
}

type file struct {
	name   string
	digest string // hex sha256 or md5
}

type source struct {
	url                                  string
	trainImg, trainLbl, inferImg, inferLbl file
}

var sources = map[Kind]source{
	MNIST: {
		url:      "https://storage.googleapis.com/cvdf-datasets/mnist/",
		trainImg: file{"train-images-idx3-ubyte.gz", "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609"},
		trainLbl: file{"train-labels-idx1-ubyte.gz", "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c"},
		inferImg: file{"t10k-images-idx3-ubyte.gz", "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6"},
		inferLbl: file{"t10k-labels-idx1-ubyte.gz", "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6"},
	},
	FashionMNIST: {
		url:      "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/",
		trainImg: file{"train-images-idx3-ubyte.gz", "8d4fb7e6c68d591d4c3dfef9ec88bf0d"},
		trainLbl: file{"train-labels-idx1-ubyte.gz", "25c81989df183df01b3e8a0aad5dffbe"},
		inferImg: file{"t10k-images-idx3-ubyte.gz", "bef4ecab320f06d8554ea6380940ec79"},
		inferLbl: file{"t10k-labels-idx1-ubyte.gz", "bb300cfdad3c16e7a12a480ee83cd310"},
	},
}

func userCacheDir() string {
	dirname, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(dirname, "savanna")
}

const tmpDirectory = `/tmp/mnist/`

// Options controls where datasets are searched, downloaded and cached
type Options struct {
	Dirs     []string     // directories searched for the gzipped IDX files, before downloading
	CacheDir string       // download and decoded cache directory, user cache dir when empty
	Mirror   string       // base url overriding the default mirror
	Client   *http.Client // http client, http.DefaultClient when nil
	NoCache  bool         // neither read nor write the decoded xz cache
}

func (o Options) cacheDir(kind Kind) string {
	if o.CacheDir != "" {
		return filepath.Join(o.CacheDir, string(kind))
	}
	return filepath.Join(userCacheDir(), string(kind))
}

func (o Options) searchDirs(kind Kind) []string {
	var dirs = append([]string{}, o.Dirs...)
	dirs = append(dirs, filepath.Join(tmpDirectory, string(kind)), o.cacheDir(kind))
	return dirs
}

// Load returns the official train (60000) and infer (10000) partitions.
func Load(ctx context.Context, kind Kind, opts Options) (train, infer datasets.Raw, err error) {
	src, ok := sources[kind]
	if !ok {
		return train, infer, errors.Errorf("unknown dataset %q", string(kind))
	}
	if opts.Mirror != "" {
		src.url = opts.Mirror
	}
	return load(ctx, kind, src, opts)
}

// Fetch returns train and infer partitions concatenated into one dataset,
// the way openml serves mnist_784 and Fashion-MNIST.
func Fetch(ctx context.Context, kind Kind, opts Options) (datasets.Raw, error) {
	train, infer, err := Load(ctx, kind, opts)
	if err != nil {
		return datasets.Raw{}, err
	}
	return train.Concat(infer)
}

func load(ctx context.Context, kind Kind, src source, opts Options) (train, infer datasets.Raw, err error) {
	var cachePath = filepath.Join(opts.cacheDir(kind), "decoded.gob.xz")
	if !opts.NoCache {
		// a stale cache is rebuilt from the IDX files
		if c, err := readCache(cachePath); err == nil {
			if train, infer, err := c.raw(); err == nil {
				return train, infer, nil
			}
		}
	}

	var d = downloader{client: opts.Client, url: src.url, dir: opts.cacheDir(kind), search: opts.searchDirs(kind)}
	var c cached
	for _, part := range []struct {
		f      file
		labels bool
		dst    *[]byte
	}{
		{src.trainImg, false, &c.TrainPix},
		{src.trainLbl, true, &c.TrainLbl},
		{src.inferImg, false, &c.InferPix},
		{src.inferLbl, true, &c.InferLbl},
	} {
		data, err := d.get(ctx, part.f)
		if err != nil {
			return train, infer, errors.Wrapf(err, "load %s", kind)
		}
		if part.labels {
			*part.dst, err = parseLabels(data)
		} else {
			var h, w int
			*part.dst, h, w, err = parseImages(data)
			if err == nil && (c.Height != 0 && (c.Height != h || c.Width != w)) {
				err = errors.Errorf("image geometry %dx%d differs from %dx%d", h, w, c.Height, c.Width)
			}
			c.Height, c.Width = h, w
		}
		if err != nil {
			return train, infer, errors.Wrapf(err, "load %s %s", kind, part.f.name)
		}
	}

	if !opts.NoCache {
		if err := writeCache(cachePath, &c); err != nil {
			println("cannot write dataset cache:", err.Error())
		}
	}
	return c.raw()
}
