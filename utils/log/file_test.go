/*
 *  Copyright (c) Huawei Technologies Co., Ltd. 2020-2024. All rights reserved.
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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initFileLogging(t *testing.T, dir string, backups uint) {
	err := InitLogging(&LoggingRequest{
		LogName:       "rotateTest.log",
		LogFileSize:   "1B",
		LoggingModule: "file",
		LogLevel:      "info",
		LogFileDir:    dir,
		MaxBackups:    backups,
	})
	require.NoError(t, err)
}

func TestFileRotationKeepsDistinctBackups(t *testing.T) {
	// arrange
	dir := t.TempDir()
	initFileLogging(t, dir, 2)
	defer Close()

	// act, the 1B size limit forces a rotation on every write
	Infof("first entry")
	Infof("second entry")
	Infof("third entry")

	// assert
	backups, err := filepath.Glob(filepath.Join(dir, "rotateTest.log") + ".*")
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestFileRotationSurvivesUnremovableBackup(t *testing.T) {
	// arrange
	dir := t.TempDir()
	// a backup that os.Remove cannot delete, a non-empty directory
	staleBackup := filepath.Join(dir, "rotateTest.log.19700101-000000.000000000")
	require.NoError(t, os.MkdirAll(staleBackup, 0750))
	require.NoError(t, ioutil.WriteFile(filepath.Join(staleBackup, "keep"), []byte("x"), 0640))
	initFileLogging(t, dir, 1)
	defer Close()

	// act
	done := make(chan struct{})
	go func() {
		defer close(done)
		Infof("first entry")
		Infof("second entry")
	}()

	// assert
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("log write hung while a stale backup could not be removed")
	}
}
