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

// Package main is the entry point of replicationctl
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"huawei-replication-driver/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logrus.Errorf("Execute replicationctl command failed. error: %v", err)
		os.Exit(1)
	}
}
