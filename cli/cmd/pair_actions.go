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
	"context"

	"github.com/spf13/cobra"

	"huawei-replication-driver/cli/helper"
	"huawei-replication-driver/storage/oceanstor/replication"
)

var syncWait bool

var enablePairCmd = &cobra.Command{
	Use:   "enable <pairID>",
	Short: "Enable replication on a pair, leaving its secondary side writable",
	Example: helper.Examples(`
		# Enable replication on a pair
		replicationctl enable <pairID>`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairAction(args[0], "enabled",
			func(ctx context.Context, driver *replication.Driver, pairID string) error {
				return driver.Enable(ctx, pairID)
			})
	},
}

var failoverPairCmd = &cobra.Command{
	Use:   "failover <pairID>",
	Short: "Promote the secondary side of a pair to primary",
	Example: helper.Examples(`
		# Fail over to the secondary side of a pair
		replicationctl failover <pairID>`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairAction(args[0], "failed over",
			func(ctx context.Context, driver *replication.Driver, pairID string) error {
				return driver.Failover(ctx, pairID)
			})
	},
}

var failbackPairCmd = &cobra.Command{
	Use:   "failback <pairID>",
	Short: "Resynchronize a pair and switch the roles back",
	Example: helper.Examples(`
		# Fail back after the original primary array recovered
		replicationctl failback <pairID>`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairAction(args[0], "failed back",
			func(ctx context.Context, driver *replication.Driver, pairID string) error {
				return driver.Failback(ctx, pairID)
			})
	},
}

var syncPairCmd = &cobra.Command{
	Use:   "sync <pairID>",
	Short: "Start synchronizing a pair",
	Example: helper.Examples(`
		# Start synchronizing a pair
		replicationctl sync <pairID>

		# Start synchronizing a pair and wait for it to complete
		replicationctl sync <pairID> --wait`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairAction(args[0], "synchronized",
			func(ctx context.Context, driver *replication.Driver, pairID string) error {
				return driver.Sync(ctx, pairID, syncWait)
			})
	},
}

var splitPairCmd = &cobra.Command{
	Use:   "split <pairID>",
	Short: "Stop synchronizing a pair",
	Example: helper.Examples(`
		# Split a pair
		replicationctl split <pairID>`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairAction(args[0], "split",
			func(ctx context.Context, driver *replication.Driver, pairID string) error {
				return driver.Split(ctx, pairID)
			})
	},
}

func registerEnablePairCmd() {
	RootCmd.AddCommand(enablePairCmd)
}

func registerFailoverPairCmd() {
	RootCmd.AddCommand(failoverPairCmd)
}

func registerFailbackPairCmd() {
	RootCmd.AddCommand(failbackPairCmd)
}

func registerSyncPairCmd() {
	syncPairCmd.Flags().BoolVarP(&syncWait, "wait", "w", false,
		"Wait until the synchronization completes")
	RootCmd.AddCommand(syncPairCmd)
}

func registerSplitPairCmd() {
	RootCmd.AddCommand(splitPairCmd)
}

func runPairAction(pairID, operate string,
	action func(ctx context.Context, driver *replication.Driver, pairID string) error) error {
	ctx := newContext()

	runtime, err := newBackendRuntime(ctx)
	if err != nil {
		return helper.PrintlnError(err)
	}
	defer runtime.close(ctx)

	if err := action(ctx, runtime.manager.Driver(), pairID); err != nil {
		return helper.PrintlnError(err)
	}

	helper.PrintOperateResult("replicationpair", operate, pairID)
	return nil
}
