package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo is a candidate input file
type FileInfo struct {
	FullPath string
	Name     string
	ModTime  time.Time
	Size     int64
}

// DefaultAudioExtensions are the containers picked up when scanning a directory
var DefaultAudioExtensions = []string{".wav", ".mp3", ".flac", ".ogg", ".m4a", ".webm"}

// GetAllFiles lists regular files in inputDir (not recursive) whose extension
// matches one of extensions, compared case-insensitively, oldest first.
func GetAllFiles(inputDir string, extensions ...string) ([]FileInfo, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if len(extensions) == 0 {
		extensions = DefaultAudioExtensions
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[ext] = true
	}

	var fileInfos []FileInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		fileInfos = append(fileInfos, FileInfo{
			FullPath: filepath.Join(inputDir, entry.Name()),
			Name:     entry.Name(),
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
	}

	sort.SliceStable(fileInfos, func(i, j int) bool {
		return fileInfos[i].ModTime.Before(fileInfos[j].ModTime)
	})
	return fileInfos, nil
}

// CheckAndCreateDirectory creates dir and its parents when missing
func CheckAndCreateDirectory(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputPath places inputPath's base name, with ext instead of its own
// extension, inside outputDir.
func OutputPath(outputDir, inputPath, ext string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+ext)
}

// OutputPathWithSourceExt keeps inputPath's extension in the output name, so
// talk.wav becomes talk.wav.txt. It separates inputs that share a stem.
func OutputPathWithSourceExt(outputDir, inputPath, ext string) string {
	return filepath.Join(outputDir, filepath.Base(inputPath)+ext)
}

// Exists reports whether path names an existing file or directory
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
