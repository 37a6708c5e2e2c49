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
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"huawei-replication-driver/cli/helper"
	"huawei-replication-driver/storage/oceanstor/replication"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Get one or more resources of the replicated arrays",
}

var getPairExample = helper.Examples(`
	# Get the state of a single replication pair
	replicationctl get pair <pairID>

	# Get the state of several replication pairs
	replicationctl get pair <pairID> <pairID>`)

var getPairCmd = &cobra.Command{
	Use:     "pair <pairID>...",
	Short:   "Get the state of one or more replication pairs",
	Example: getPairExample,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGetPair(args)
	},
}

func registerGetCmd() {
	RootCmd.AddCommand(getCmd)
}

func registerGetPairCmd() {
	getCmd.AddCommand(getPairCmd)
}

func runGetPair(pairIDs []string) error {
	ctx := newContext()

	runtime, err := newBackendRuntime(ctx)
	if err != nil {
		return helper.PrintlnError(err)
	}
	defer runtime.close(ctx)

	var infos []*replication.PairInfo
	for _, pairID := range pairIDs {
		info, err := runtime.manager.Driver().GetReplicaInfo(ctx, pairID)
		if err != nil {
			return helper.PrintlnError(err)
		}
		infos = append(infos, info)
	}

	writePairTable(infos)
	return nil
}

func writePairTable(infos []*replication.PairInfo) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Running Status", "Health Status", "Second Access", "Primary", "Model"})

	for _, info := range infos {
		table.Append([]string{
			info.ID,
			info.RunningStatus.String(),
			info.HealthStatus.String(),
			info.SecondAccess.String(),
			strconv.FormatBool(info.IsPrimary),
			info.Model.String(),
		})
	}

	table.Render()
}
