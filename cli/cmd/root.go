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

// Package cmd defines commands of replicationctl.
package cmd

import (
	"github.com/spf13/cobra"

	"huawei-replication-driver/cli/config"
	"huawei-replication-driver/utils/log"
)

// RootCmd is a root command of replicationctl.
var RootCmd = &cobra.Command{
	SilenceUsage:      true,
	Use:               "replicationctl",
	Short:             "A CLI tool for remote replication pairs on Ocean Storage",
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startLogging()
	},
}

// Execute runs the root command
func Execute() error {
	registerRootCmd()
	registerGetCmd()
	registerGetPairCmd()
	registerCreateCmd()
	registerCreateReplicaCmd()
	registerDeleteCmd()
	registerDeletePairCmd()
	registerEnablePairCmd()
	registerFailoverPairCmd()
	registerFailbackPairCmd()
	registerSyncPairCmd()
	registerSplitPairCmd()

	return RootCmd.Execute()
}

func registerRootCmd() {
	RootCmd.PersistentFlags().StringVarP(&config.ConfigFile, "config", "c", "",
		"Path of the replication config file")
	RootCmd.PersistentFlags().StringVar(&config.LogDir, "log-dir", config.DefaultLogDir,
		"Path of the log file directory")
}

// startLogging used to start logging.
// Since the cli tool does not need to specify a log configuration, the default values are used here.
func startLogging() error {
	if config.LogDir == "" {
		config.LogDir = config.DefaultLogDir
	}
	return log.InitLogging(&log.LoggingRequest{
		LogName:       config.DefaultLogName,
		LogFileSize:   config.DefaultLogSize,
		LoggingModule: config.DefaultLogModule,
		LogLevel:      config.DefaultLogLevel,
		LogFileDir:    config.LogDir,
		MaxBackups:    config.DefaultLogMaxBackups,
	})
}
