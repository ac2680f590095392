/*
Copyright AppsCode Inc. and Contributors

Licensed under the AppsCode Free Trial License 1.0.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://github.com/appscode/licenses/raw/1.0.0/AppsCode-Free-Trial-1.0.0.md

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// Mode selects what is left behind after a snapshot directory is complete.
type Mode string

const (
	// ModeCompressed keeps only the archive.
	ModeCompressed Mode = "compressed"
	// ModeUncompressed keeps only the directory.
	ModeUncompressed Mode = "uncompressed"
	// ModeBoth keeps the directory and the archive.
	ModeBoth Mode = "both"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCompressed, ModeUncompressed, ModeBoth:
		return m, nil
	default:
		return "", errors.Errorf("invalid compression %q, use compressed, uncompressed or both", s)
	}
}

// Archive packs dir into <dir>.tar.gz according to mode and returns the
// archive path, or "" when no archive was requested.
func Archive(dir string, mode Mode) (string, error) {
	switch mode {
	case ModeUncompressed:
		klog.V(3).Infof("Skipping compression as requested")
		return "", nil
	case ModeCompressed, ModeBoth:
	default:
		return "", errors.Errorf("invalid compression %q", mode)
	}

	archivePath := filepath.Clean(dir) + ".tar.gz"
	klog.Infof("Creating compressed archive: %s", archivePath)
	if err := TarGz(dir, archivePath); err != nil {
		_ = os.Remove(archivePath)
		return "", err
	}
	if mode == ModeCompressed {
		if err := os.RemoveAll(dir); err != nil {
			return archivePath, errors.Wrapf(err, "failed to remove %s after archiving", dir)
		}
	}
	return archivePath, nil
}

// TarGz writes a gzip compressed tarball of dir to archivePath. Entry names
// are relative to dir.
func TarGz(dir, archivePath string) (err error) {
	f, err := os.Create(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to create archive file")
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		return addEntry(tw, path, filepath.ToSlash(rel), info)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to add %s to archive", dir)
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize archive")
	}
	return errors.Wrap(gz.Close(), "failed to finalize archive")
}

func addEntry(tw *tar.Writer, path, name string, info os.FileInfo) error {
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(tw, src)
	return err
}
