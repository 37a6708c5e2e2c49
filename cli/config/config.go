/*
 *  Copyright (c) Huawei Technologies Co., Ltd. 2023-2024. All rights reserved.
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

// Package config defines the global configurations for replicationctl
package config

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/ghodss/yaml"

	"huawei-replication-driver/storage/oceanstor/replication"
)

const (
	// DefaultLogName default log file name
	DefaultLogName = "replicationctl-log"

	// DefaultLogSize default log file size
	DefaultLogSize = "20M"

	// DefaultLogModule default log module
	DefaultLogModule = "file"

	// DefaultLogLevel default log level
	DefaultLogLevel = "info"

	// DefaultLogMaxBackups default log file max backups
	DefaultLogMaxBackups = 9

	// DefaultLogDir default log dir
	DefaultLogDir = "/var/log/huawei-replication"

	replicationModelSync  = "sync"
	replicationModelAsync = "async"
)

var (
	// DefaultConfigFile is used when the config flag is not given
	DefaultConfigFile = "/etc/huawei/replication.yaml"

	// ConfigFile the value of config flag, set on the root command
	ConfigFile string

	// LogDir the value of log-dir flag, set on the root command
	LogDir string
)

// ArrayConfig is the connection configuration of one storage array
type ArrayConfig struct {
	Urls        []string `json:"urls"`
	User        string   `json:"user"`
	Password    string   `json:"password"`
	VstoreName  string   `json:"vstoreName,omitempty"`
	ParallelNum int      `json:"parallelNum,omitempty"`
}

// ReplicationConfig is the configuration of a replicated array pair
type ReplicationConfig struct {
	LocalArray  ArrayConfig `json:"localArray"`
	RemoteArray ArrayConfig `json:"remoteArray"`

	RemotePool string `json:"remotePool"`

	// ReplicationModel is sync or async, async when omitted
	ReplicationModel string `json:"replicationModel,omitempty"`

	WaitIntervalSeconds int `json:"waitIntervalSeconds,omitempty"`
	WaitTimeoutSeconds  int `json:"waitTimeoutSeconds,omitempty"`
}

// LoadConfig reads and validates the replication configuration file. An empty
// file name falls back to DefaultConfigFile.
func LoadConfig(file string) (*ReplicationConfig, error) {
	if file == "" {
		file = DefaultConfigFile
	}

	data, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config file %s error: %w", file, err)
	}

	var conf ReplicationConfig
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file %s error: %w", file, err)
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("config file %s is invalid: %w", file, err)
	}

	return &conf, nil
}

func (c *ReplicationConfig) validate() error {
	if err := c.LocalArray.validate("localArray"); err != nil {
		return err
	}
	if err := c.RemoteArray.validate("remoteArray"); err != nil {
		return err
	}

	if c.RemotePool == "" {
		return fmt.Errorf("remotePool must be configured")
	}

	switch c.ReplicationModel {
	case "", replicationModelSync, replicationModelAsync:
	default:
		return fmt.Errorf("replicationModel must be %s or %s, got %s",
			replicationModelSync, replicationModelAsync, c.ReplicationModel)
	}

	return nil
}

func (c *ArrayConfig) validate(name string) error {
	if len(c.Urls) == 0 {
		return fmt.Errorf("%s.urls must be configured", name)
	}
	if c.User == "" || c.Password == "" {
		return fmt.Errorf("%s.user and %s.password must be configured", name, name)
	}
	return nil
}

// Model returns the typed replication model of the configuration
func (c *ReplicationConfig) Model() replication.ReplicationModel {
	if c.ReplicationModel == replicationModelSync {
		return replication.ModelSync
	}
	return replication.ModelAsync
}

// WaitInterval returns the configured poll interval, zero when unset so the
// driver defaults apply
func (c *ReplicationConfig) WaitInterval() time.Duration {
	return time.Duration(c.WaitIntervalSeconds) * time.Second
}

// WaitTimeout returns the configured wait bound, zero when unset so the
// driver defaults apply
func (c *ReplicationConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}
