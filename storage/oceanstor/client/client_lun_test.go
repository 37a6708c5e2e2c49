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

package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLunByName(t *testing.T) {
	// arrange
	cli := &RestClient{}
	var calls []calledRequest
	patches := patchCall(cli, Response{
		Error: map[string]interface{}{"code": float64(0)},
		Data: []interface{}{
			map[string]interface{}{"ID": "11", "NAME": "pvc-volume-0001"},
		},
	}, &calls)
	defer patches.Reset()

	// act
	lun, err := cli.GetLunByName(context.Background(), "pvc-volume-0001")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "11", lun["ID"])
	assert.Equal(t, "GET", calls[0].method)
	assert.Equal(t, "/lun?filter=NAME::pvc-volume-0001&range=[0-100]", calls[0].url)
}

func TestGetLunByName_AbsentLunIsNil(t *testing.T) {
	// arrange
	cli := &RestClient{}
	var calls []calledRequest
	patches := patchCall(cli, Response{Error: map[string]interface{}{"code": float64(0)}}, &calls)
	defer patches.Reset()

	// act
	lun, err := cli.GetLunByName(context.Background(), "pvc-volume-0001")

	// assert
	assert.NoError(t, err)
	assert.Nil(t, lun)
}
