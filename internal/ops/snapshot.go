// Package ops archives and restores the task engine's data directory. A
// snapshot is a tar.gz of the directory plus a manifest describing when it
// was taken and what it contains, so a restore can be sanity-checked before
// the data is trusted.
package ops

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// manifestName is the archive entry holding snapshot metadata. It lives
// inside the archive but is never written back into the restored tree.
const manifestName = ".tms-snapshot.json"

var ErrNoManifest = errors.New("archive carries no snapshot manifest")

type Manifest struct {
	Service   string    `json:"service"`
	TakenAt   time.Time `json:"takenAt"`
	FileCount int       `json:"fileCount"`
}

// Snapshot archives dataDir into a gzipped tarball at archivePath,
// prepending a manifest entry. Symlinks are skipped so a restore is always
// self-contained.
func Snapshot(dataDir, archivePath string) error {
	dataDir = filepath.Clean(strings.TrimSpace(dataDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if dataDir == "" || archivePath == "" {
		return fmt.Errorf("data dir and archive path are required")
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dataDir)
	}

	files, err := collectFiles(dataDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	manifest, err := json.MarshalIndent(Manifest{
		Service:   "tms-core",
		TakenAt:   time.Now().UTC(),
		FileCount: len(files),
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    manifestName,
		Mode:    0o644,
		Size:    int64(len(manifest)),
		ModTime: time.Now(),
	}); err != nil {
		return err
	}
	if _, err := tw.Write(manifest); err != nil {
		return err
	}

	for _, rel := range files {
		if err := addFile(tw, dataDir, rel); err != nil {
			return fmt.Errorf("archive %s: %w", rel, err)
		}
	}
	return nil
}

func collectFiles(dataDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == dataDir || d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

func addFile(tw *tar.Writer, dataDir, rel string) error {
	path := filepath.Join(dataDir, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = rel
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(tw, src)
	return err
}

// Restore unpacks a snapshot into targetDir and returns its manifest.
// Archive entries that would escape targetDir are rejected outright.
func Restore(archivePath, targetDir string) (Manifest, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return Manifest{}, fmt.Errorf("archive path and target dir are required")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Manifest{}, err
	}

	in, err := os.Open(archivePath)
	if err != nil {
		return Manifest{}, err
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return Manifest{}, err
	}
	defer gz.Close()

	var manifest Manifest
	sawManifest := false

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Manifest{}, err
		}

		if hdr.Name == manifestName {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, tr); err != nil {
				return Manifest{}, err
			}
			if err := json.Unmarshal(buf.Bytes(), &manifest); err != nil {
				return Manifest{}, fmt.Errorf("decode manifest: %w", err)
			}
			sawManifest = true
			continue
		}

		rel, err := safeRelPath(hdr.Name)
		if err != nil {
			return Manifest{}, err
		}
		outPath := filepath.Join(targetDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(outPath, fs.FileMode(hdr.Mode)); err != nil {
				return Manifest{}, err
			}
		case tar.TypeReg:
			if err := writeFile(outPath, fs.FileMode(hdr.Mode), tr); err != nil {
				return Manifest{}, err
			}
		default:
			// Other entry types never appear in our own snapshots.
		}
	}

	if !sawManifest {
		return Manifest{}, ErrNoManifest
	}
	return manifest, nil
}

func writeFile(path string, mode fs.FileMode, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func safeRelPath(name string) (string, error) {
	name = filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	if name == "" || name == "." || filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid archive entry: %q", name)
	}
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes target dir: %q", name)
	}
	return name, nil
}
