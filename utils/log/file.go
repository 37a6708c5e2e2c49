/*
 *  Copyright (c) Huawei Technologies Co., Ltd. 2020-2023. All rights reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logFilePermission = 0640
	logDirPermission  = 0750

	defaultLogFileSize = 1024 * 1024 * 20

	// backup names sort lexically in rotation order
	backupTimeFormat = "20060102-150405.000000000"
)

// FileHook sends log entries to a size-rotated log file.
type FileHook struct {
	logFilePath string
	maxFileSize int64
	formatter   logrus.Formatter

	mutex sync.Mutex
	file  *os.File
}

func newFileHook(logFilePath, maxFileSize string, formatter logrus.Formatter) (*FileHook, error) {
	size, err := parseFileSize(maxFileSize)
	if err != nil {
		// logger is not ready yet at this point, fall back silently
		size = defaultLogFileSize
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), logDirPermission); err != nil {
		return nil, fmt.Errorf("create log directory of %s error: %v", logFilePath, err)
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("open log file %s error: %v", logFilePath, err)
	}

	return &FileHook{
		logFilePath: logFilePath,
		maxFileSize: size,
		formatter:   formatter,
		file:        file,
	}, nil
}

// parseFileSize converts a size string like 20M, 1024K or 4096 to bytes.
func parseFileSize(size string) (int64, error) {
	size = strings.ToUpper(strings.TrimSpace(size))
	if size == "" {
		return 0, fmt.Errorf("empty size")
	}

	multiplier := int64(1)
	switch size[len(size)-1:] {
	case "M":
		multiplier = 1024 * 1024
		size = size[:len(size)-1]
	case "K":
		multiplier = 1024
		size = size[:len(size)-1]
	case "B":
		size = size[:len(size)-1]
	}

	num, err := strconv.ParseInt(size, 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}

// Levels returns all supported levels
func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire ensure logging of respective log entries
func (hook *FileHook) Fire(entry *logrus.Entry) error {
	lineBytes, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	hook.mutex.Lock()
	defer hook.mutex.Unlock()

	if err := hook.rotateIfNeeded(int64(len(lineBytes))); err != nil {
		return err
	}

	_, err = hook.file.Write(lineBytes)
	return err
}

// rotateIfNeeded renames the current log file to a backup and opens a fresh
// one when the next write would exceed the size limit.
func (hook *FileHook) rotateIfNeeded(pending int64) error {
	info, err := hook.file.Stat()
	if err != nil {
		return err
	}

	if info.Size()+pending <= hook.maxFileSize {
		return nil
	}

	if err := hook.file.Close(); err != nil {
		return err
	}

	hook.removeStaleBackups()

	backup := fmt.Sprintf("%s.%s", hook.logFilePath, time.Now().Format(backupTimeFormat))
	if err := os.Rename(hook.logFilePath, backup); err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(hook.logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFilePermission)
	if err != nil {
		return err
	}

	hook.file = file
	return nil
}

func (hook *FileHook) removeStaleBackups() {
	if maxBackups == 0 {
		return
	}

	backups, err := filepath.Glob(hook.logFilePath + ".*")
	if err != nil || uint(len(backups)) < maxBackups {
		return
	}

	for _, backup := range backups[:uint(len(backups))-maxBackups+1] {
		if err := os.Remove(backup); err != nil {
			// Fire holds hook.mutex here, logging this through the hook
			// would re-enter Fire and block on the mutex
			_, _ = fmt.Fprintf(os.Stderr, "Remove stale log backup %s error: %v\n", backup, err)
		}
	}
}

func (hook *FileHook) flush() {
	hook.mutex.Lock()
	defer hook.mutex.Unlock()

	if hook.file != nil {
		_ = hook.file.Sync()
	}
}

func (hook *FileHook) close() {
	hook.mutex.Lock()
	defer hook.mutex.Unlock()

	if hook.file != nil {
		_ = hook.file.Close()
		hook.file = nil
	}
}
