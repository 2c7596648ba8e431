package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// Disk stores images as files in Dir. Dir is created on the first Save.
type Disk struct {
	Dir string
}

func NewDisk(dir string) *Disk { return &Disk{Dir: dir} }

func (d *Disk) Save(_ context.Context, name, _ string, r io.Reader, _ int64) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(d.Dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrExists
		}
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (d *Disk) Open(_ context.Context, name string) (io.ReadCloser, Info, error) {
	f, err := os.Open(filepath.Join(d.Dir, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Info{}, ErrNotFound
		}
		return nil, Info{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Info{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, Info{}, ErrNotFound
	}
	return f, Info{
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Size:        st.Size(),
		ModTime:     st.ModTime(),
	}, nil
}
