package mnist

import "context"
import "crypto/md5"
import "crypto/sha256"
import "fmt"
import "hash"
import "io"
import "net/http"
import "os"
import "path/filepath"

import "github.com/pkg/errors"

// ErrDigest is returned when a dataset file does not match its checksum
var ErrDigest = errors.New("file digest mismatch")

type downloader struct {
	client *http.Client
	url    string
	dir    string   // where downloads are stored
	search []string // where existing files are looked up
}

func newHash(digest string) hash.Hash {
	if len(digest) == 2*md5.Size {
		return md5.New()
	}
	return sha256.New()
}

func verify(data []byte, f file) error {
	if f.digest == "" {
		return nil
	}
	h := newHash(f.digest)
	h.Write(data)
	if sum := fmt.Sprintf("%x", h.Sum(nil)); sum != f.digest {
		return errors.Wrapf(ErrDigest, "%s: got %s, want %s", f.name, sum, f.digest)
	}
	return nil
}

// get returns the verified contents of f, downloading it when no search
// directory holds a valid copy.
func (d downloader) get(ctx context.Context, f file) ([]byte, error) {
	for _, dir := range d.search {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			continue
		}
		if err = verify(data, f); err != nil {
			println("ignoring", filepath.Join(dir, f.name)+":", err.Error())
			continue
		}
		return data, nil
	}
	data, err := d.download(ctx, f)
	if err != nil {
		return nil, err
	}
	if err = verify(data, f); err != nil {
		return nil, err
	}
	if err = os.MkdirAll(d.dir, 0755); err == nil {
		err = os.WriteFile(filepath.Join(d.dir, f.name), data, 0644)
	}
	if err != nil {
		println("cannot store", f.name+":", err.Error())
	}
	return data, nil
}

func (d downloader) download(ctx context.Context, f file) ([]byte, error) {
	client := d.client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url+f.name, nil)
	if err != nil {
		return nil, errors.Wrap(err, "download")
	}
	fmt.Println("downloading", d.url+f.name)
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", f.name)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download %s: %s", f.name, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", f.name)
	}
	return data, nil
}
