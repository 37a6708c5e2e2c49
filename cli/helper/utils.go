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

package helper

import (
	"fmt"
)

// PrintlnError used to print error to terminal
func PrintlnError(err error) error {
	fmt.Printf("%v\n", err)
	return nil
}

// PrintOperateResult used to print operate result to terminal
// e.g. replicationpair/pair-id enabled
func PrintOperateResult(resourceType, operate string, resourceNames ...string) {
	for _, name := range resourceNames {
		fmt.Printf("%s/%s %s\n", resourceType, name, operate)
	}
}
