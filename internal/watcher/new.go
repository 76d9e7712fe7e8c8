package watcher

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

const (
	defaultMaxConcurrent = 2
	// Uploads and copies emit CREATE before the file is fully written.
	defaultSettleDelay = 500 * time.Millisecond
)

// New watches inboxDir and runs handler for each recording, at most
// maxConcurrent at a time.
func New(inboxDir string, handler Handler, log logger.Logger, maxConcurrent int) (Watcher, error) {
	info, err := os.Stat(inboxDir)
	if err != nil {
		return nil, fmt.Errorf("inbox dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox dir %s is not a directory", inboxDir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(inboxDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", inboxDir, err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &implWatcher{
		inputDir:      inboxDir,
		handler:       handler,
		logger:        log,
		watcher:       fsw,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		settleDelay:   defaultSettleDelay,
	}, nil
}
