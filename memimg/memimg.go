package memimg

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
)

// 封面图片候选文件名，按顺序查找
var coverNames = []string{"cover.jpg", "cover.jpeg", "cover.png"}

var (
	cover      image.Image
	coverMutex sync.RWMutex
)

// LoadCover 从 directory 载入封面并缩放裁剪到 width x height。
// 找不到封面时返回 nil，渲染会退回纯色背景。
func LoadCover(directory string, width, height int) error {
	for _, name := range coverNames {
		path := filepath.Join(directory, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return loadCoverFile(path, width, height)
	}
	return nil
}

func loadCoverFile(path string, width, height int) error {
	img, err := LoadImage(path)
	if err != nil {
		return fmt.Errorf("load cover %s: %w", path, err)
	}
	scaled := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	coverMutex.Lock()
	cover = scaled
	coverMutex.Unlock()
	return nil
}

// LoadImage decodes a jpeg or png file.
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func isCoverFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, name := range coverNames {
		if base == name {
			return true
		}
	}
	return false
}

// WatchCover 监听目录变化，封面被写入或新建时热更新到内存。
// 阻塞直到 done 关闭。
func WatchCover(directory string, width, height int, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(directory); err != nil {
		return err
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isCoverFile(event.Name) {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if err := loadCoverFile(event.Name, width, height); err != nil {
					log.Printf("cover reload: %v", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Println("watch error:", err)
		}
	}
}

// GetCover returns the in-memory cover image, if any.
func GetCover() (image.Image, bool) {
	coverMutex.RLock()
	img := cover
	coverMutex.RUnlock()
	return img, img != nil
}

// resetCover is used by tests.
func resetCover() {
	coverMutex.Lock()
	cover = nil
	coverMutex.Unlock()
}
