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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"huawei-replication-driver/cli/helper"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a resource on the replicated arrays",
}

var createReplicaExample = helper.Examples(`
	# Mirror a local lun to the remote array and pair them
	replicationctl create replica <localLunID>`)

var createReplicaCmd = &cobra.Command{
	Use:     "replica <localLunID>",
	Short:   "Create a remote replica and a replication pair for a local lun",
	Example: createReplicaExample,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateReplica(args[0])
	},
}

func registerCreateCmd() {
	RootCmd.AddCommand(createCmd)
}

func registerCreateReplicaCmd() {
	createCmd.AddCommand(createReplicaCmd)
}

func runCreateReplica(localLunID string) error {
	ctx := newContext()

	runtime, err := newBackendRuntime(ctx)
	if err != nil {
		return helper.PrintlnError(err)
	}
	defer runtime.close(ctx)

	data, err := runtime.manager.CreateReplica(ctx, localLunID)
	if err != nil {
		return helper.PrintlnError(err)
	}

	encoded, err := data.Encode()
	if err != nil {
		return helper.PrintlnError(err)
	}

	helper.PrintOperateResult("replicationpair", "created", data.PairID)
	fmt.Println(encoded)
	return nil
}
