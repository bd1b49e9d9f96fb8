package mnist

import "bytes"
import "compress/gzip"
import "context"
import "crypto/sha256"
import "encoding/binary"
import "fmt"
import "net/http"
import "net/http/httptest"
import "path/filepath"
import "sync/atomic"
import "testing"

import "github.com/pkg/errors"
import "gotest.tools/assert"

func gz(t *testing.T, header []uint32, payload []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	assert.NilError(t, binary.Write(w, binary.BigEndian, header))
	_, err := w.Write(payload)
	assert.NilError(t, err)
	assert.NilError(t, w.Close())
	return buf.Bytes()
}

func sha(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// fixture returns 2x3 images whose pixels equal their index and labels i%10
func fixture(t *testing.T, n int) (images, labels []byte) {
	var pix = make([]byte, n*6)
	var lbl = make([]byte, n)
	for i := 0; i < n; i++ {
		for j := 0; j < 6; j++ {
			pix[i*6+j] = byte(i)
		}
		lbl[i] = byte(i % 10)
	}
	images = gz(t, []uint32{imageMagic, uint32(n), 2, 3}, pix)
	labels = gz(t, []uint32{labelMagic, uint32(n)}, lbl)
	return
}

func TestLoadDownloadsVerifiesAndCaches(t *testing.T) {
	trainImg, trainLbl := fixture(t, 5)
	inferImg, inferLbl := fixture(t, 3)
	var files = map[string][]byte{
		"/a-img.gz": trainImg, "/a-lbl.gz": trainLbl,
		"/b-img.gz": inferImg, "/b-lbl.gz": inferLbl,
	}
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	var src = source{
		url:      srv.URL + "/",
		trainImg: file{"a-img.gz", sha(trainImg)},
		trainLbl: file{"a-lbl.gz", sha(trainLbl)},
		inferImg: file{"b-img.gz", sha(inferImg)},
		inferLbl: file{"b-lbl.gz", sha(inferLbl)},
	}
	var opts = Options{CacheDir: t.TempDir()}

	train, infer, err := load(context.Background(), MNIST, src, opts)
	assert.NilError(t, err)
	assert.Equal(t, train.Len(), 5)
	assert.Equal(t, infer.Len(), 3)
	assert.Equal(t, train.Height, 2)
	assert.Equal(t, train.Width, 3)
	assert.DeepEqual(t, train.Images[4], []float64{4, 4, 4, 4, 4, 4})
	assert.DeepEqual(t, infer.Labels, []int{0, 1, 2})
	assert.Equal(t, atomic.LoadInt32(&hits), int32(4))

	// second load comes from the xz cache
	train2, _, err := load(context.Background(), MNIST, src, opts)
	assert.NilError(t, err)
	assert.DeepEqual(t, train2, train)
	assert.Equal(t, atomic.LoadInt32(&hits), int32(4))

	// without the cache the downloaded files are found on disk
	opts.NoCache = true
	_, _, err = load(context.Background(), MNIST, src, opts)
	assert.NilError(t, err)
	assert.Equal(t, atomic.LoadInt32(&hits), int32(4))
}

func TestLoadDigestMismatch(t *testing.T) {
	img, _ := fixture(t, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(img)
	}))
	defer srv.Close()
	var src = source{url: srv.URL + "/", trainImg: file{"x.gz", sha([]byte("something else"))}}
	_, _, err := load(context.Background(), MNIST, src, Options{CacheDir: t.TempDir(), NoCache: true})
	assert.Assert(t, errors.Cause(err) == ErrDigest, "got %v", err)
}

func TestLoadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	var src = source{url: srv.URL + "/", trainImg: file{"x.gz", ""}}
	_, _, err := load(context.Background(), MNIST, src, Options{CacheDir: t.TempDir(), NoCache: true})
	assert.ErrorContains(t, err, "404")
}

func TestParseBadMagic(t *testing.T) {
	_, _, _, err := parseImages(gz(t, []uint32{labelMagic, 0, 0, 0}, nil))
	assert.ErrorContains(t, err, "bad image magic")
	_, err = parseLabels(gz(t, []uint32{imageMagic, 0}, nil))
	assert.ErrorContains(t, err, "bad label magic")
	_, _, _, err = parseImages(gz(t, []uint32{imageMagic, 2, 2, 2}, []byte{1, 2, 3}))
	assert.ErrorContains(t, err, "reading 2 2x2 images")
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{"mnist_784": MNIST, "Fashion-MNIST": FashionMNIST, "fashion": FashionMNIST} {
		k, err := ParseKind(name)
		assert.NilError(t, err)
		assert.Equal(t, k, want)
	}
	_, err := ParseKind("cifar10")
	assert.ErrorContains(t, err, "unknown dataset")
}

func TestLoadRebuildsStaleCache(t *testing.T) {
	trainImg, trainLbl := fixture(t, 4)
	inferImg, inferLbl := fixture(t, 2)
	var files = map[string][]byte{
		"/a-img.gz": trainImg, "/a-lbl.gz": trainLbl,
		"/b-img.gz": inferImg, "/b-lbl.gz": inferLbl,
	}
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write(files[r.URL.Path])
	}))
	defer srv.Close()
	var src = source{
		url:      srv.URL + "/",
		trainImg: file{"a-img.gz", sha(trainImg)},
		trainLbl: file{"a-lbl.gz", sha(trainLbl)},
		inferImg: file{"b-img.gz", sha(inferImg)},
		inferLbl: file{"b-lbl.gz", sha(inferLbl)},
	}
	var opts = Options{CacheDir: t.TempDir()}
	var cachePath = filepath.Join(opts.cacheDir(MNIST), "decoded.gob.xz")

	// decodes fine, but 1 pixel cannot hold 2 images of 2x3
	assert.NilError(t, writeCache(cachePath, &cached{Height: 2, Width: 3, TrainPix: []byte{1}, TrainLbl: []byte{1, 2}}))

	train, infer, err := load(context.Background(), MNIST, src, opts)
	assert.NilError(t, err)
	assert.Equal(t, train.Len(), 4)
	assert.Equal(t, infer.Len(), 2)
	assert.Equal(t, atomic.LoadInt32(&hits), int32(4))

	c, err := readCache(cachePath)
	assert.NilError(t, err)
	assert.Equal(t, len(c.TrainLbl), 4)
}
