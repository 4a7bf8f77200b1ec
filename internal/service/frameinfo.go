package service

import (
	"fmt"
	"path/filepath"
	"time"
)

// FrameInfo holds listing metadata about one timestep of a stored sequence.
type FrameInfo struct {
	Index   int       `json:"index" yaml:"index"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modtime" yaml:"modtime"`
	Present bool      `json:"present" yaml:"present"`
	Current bool      `json:"current" yaml:"current"`
}

// FrameInfo returns size and modification time for every timestep of the
// record stored under key. Frames missing from the directory are reported
// with Present false.
func (s *Service) FrameInfo(key string) ([]FrameInfo, error) {
	rec, err := s.Show(key)
	if err != nil {
		return nil, err
	}

	files := rec.Files
	if len(files) == 0 {
		files = []string{rec.Value}
	}

	byDir := make(map[string]map[string]FrameInfo)
	infos := make([]FrameInfo, len(files))
	for i, path := range files {
		dir := filepath.Dir(path)
		known, ok := byDir[dir]
		if !ok {
			known = make(map[string]FrameInfo)
			for _, item := range s.list(dir) {
				known[item.Name] = FrameInfo{Size: item.Size, ModTime: item.ModTime, Present: true}
			}
			byDir[dir] = known
		}
		info := known[filepath.Base(path)]
		info.Index = i
		info.Path = path
		info.Current = i == rec.TimeStep
		infos[i] = info
	}
	return infos, nil
}

// FormatSize renders a byte count for the info panel.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
