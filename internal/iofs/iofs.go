// Package iofs contains file system helpers of gncontent: application
// directories, the configuration file, directory checks and file copies.
package iofs

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/gncontent/pkg/config"
)

//go:embed config.ini
var ConfigINI string

func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.WriteFile(configPath, []byte(ConfigINI), 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}

// CheckDir makes sure that dir exists, is a directory and is writable.
// A missing directory is created.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf(
				"directory does not exist and could not be created: %w", err,
			)
		}
		return nil
	case err != nil:
		return err
	case !info.IsDir():
		return errors.New("path exists but is not a directory")
	}

	f, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return errors.New("directory is not writable")
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return nil
}

// CopyFile copies src to dst and returns the number of copied bytes.
// The data goes to a temporary file next to dst first, which is then
// renamed, so dst is either the old or the new file. With showProgress
// a progress bar is printed to STDERR.
func CopyFile(dst, src string, showProgress bool) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, ReadFileError(src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, ReadFileError(src, err)
	}

	if err = touchDir(filepath.Dir(dst)); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return 0, CopyFileError(dst, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	var r io.Reader = in
	if showProgress {
		bar := pb.Full.Start64(info.Size())
		bar.Set("prefix", "Copying "+filepath.Base(src)+": ")
		bar.Set(pb.Bytes, true)
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
		r = bar.NewProxyReader(in)
	}

	n, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, CopyFileError(dst, err)
	}

	if err = os.Rename(tmpName, dst); err != nil {
		return 0, CopyFileError(dst, err)
	}
	return n, nil
}

// RemoveFiles deletes files, skipping the ones that do not exist.
func RemoveFiles(paths ...string) error {
	for _, v := range paths {
		err := os.Remove(v)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return RemoveFileError(v, err)
		}
	}
	return nil
}

// Exists checks if a file or directory exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
