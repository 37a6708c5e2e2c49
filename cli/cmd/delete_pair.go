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
	"github.com/spf13/cobra"

	"huawei-replication-driver/cli/helper"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a resource on the replicated arrays",
}

var deletePairExample = helper.Examples(`
	# Delete a replication pair, splitting it first when synchronizing
	replicationctl delete pair <pairID>`)

var deletePairCmd = &cobra.Command{
	Use:     "pair <pairID>...",
	Short:   "Delete one or more replication pairs",
	Example: deletePairExample,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeletePair(args)
	},
}

func registerDeleteCmd() {
	RootCmd.AddCommand(deleteCmd)
}

func registerDeletePairCmd() {
	deleteCmd.AddCommand(deletePairCmd)
}

func runDeletePair(pairIDs []string) error {
	ctx := newContext()

	runtime, err := newBackendRuntime(ctx)
	if err != nil {
		return helper.PrintlnError(err)
	}
	defer runtime.close(ctx)

	for _, pairID := range pairIDs {
		if err := runtime.manager.DeleteReplica(ctx, pairID); err != nil {
			return helper.PrintlnError(err)
		}
		helper.PrintOperateResult("replicationpair", "deleted", pairID)
	}

	return nil
}
