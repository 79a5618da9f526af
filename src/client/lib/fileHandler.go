package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileHandler struct {
	folderPath string
}

func NewFileHandler(folderPath string) *FileHandler {
	return &FileHandler{
		folderPath: folderPath,
	}
}

func (fh *FileHandler) Path(fileName string) string {
	return filepath.Join(fh.folderPath, fileName)
}

func (fh *FileHandler) Exists(fileName string) (bool, error) {
	info, err := os.Stat(fh.Path(fileName))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking file %s: %w", fileName, err)
	}
	return !info.IsDir(), nil
}

func (fh *FileHandler) Open(fileName string) (*os.File, error) {
	return os.Open(fh.Path(fileName))
}

func (fh *FileHandler) GetFilesWithPattern(pattern string) ([]string, error) {
	entries, err := os.ReadDir(fh.folderPath)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}

	fileNames := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.Contains(entry.Name(), pattern) {
			fileNames = append(fileNames, entry.Name())
		}
	}

	if len(fileNames) == 0 {
		return nil, fmt.Errorf("no files matched the pattern %q", pattern)
	}

	sort.Strings(fileNames)
	return fileNames, nil
}
