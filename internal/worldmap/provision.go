package worldmap

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultLandURL is Natural Earth's 1:110m land polygons (public domain)
	DefaultLandURL = "https://naciscdn.org/naturalearth/110m/physical/ne_110m_land.zip"
	landBase       = "ne_110m_land"
)

// downloadTimeout bounds the first-run download of the land shapefile
var downloadTimeout = 2 * time.Minute

// ProvisionLand returns the path of the land shapefile in dataDir, downloading
// and extracting the archive at sourceURL when it is not there yet.
func ProvisionLand(ctx context.Context, dataDir, sourceURL string) (string, error) {
	shpPath := filepath.Join(dataDir, landBase+".shp")
	if _, err := os.Stat(shpPath); err == nil {
		return shpPath, nil
	}

	log.Printf("worldmap: land shapefile not found in %s, provisioning...", dataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	zipPath := filepath.Join(dataDir, landBase+".zip")
	log.Printf("worldmap: downloading land outlines from %s", sourceURL)
	if err := downloadFile(ctx, zipPath, sourceURL); err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("downloading shapefile: %w", err)
	}
	defer os.Remove(zipPath)

	if err := unzipFile(zipPath, dataDir); err != nil {
		return "", fmt.Errorf("extracting shapefile: %w", err)
	}

	if _, err := os.Stat(shpPath); err != nil {
		return "", fmt.Errorf("archive from %s has no %s.shp", sourceURL, landBase)
	}

	log.Printf("worldmap: provisioned land shapefile at %s", shpPath)
	return shpPath, nil
}

// downloadFile downloads a file from a URL to a local path
func downloadFile(ctx context.Context, path, url string) error {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// unzipFile extracts a zip file to a destination directory
func unzipFile(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)

		// ZipSlip
		if !strings.HasPrefix(fpath, root) {
			return fmt.Errorf("illegal file path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}
		if err := extractFile(f, fpath); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, path string) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(out, rc)
	return err
}
