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
	"reflect"
	"testing"

	"github.com/agiledragon/gomonkey/v2"
	"github.com/stretchr/testify/assert"
)

const testPairID = "pair-0001"

// patchCall replaces RestClient.Call with a canned response and records the
// method, url and body of every request.
type calledRequest struct {
	method string
	url    string
	data   map[string]interface{}
}

func patchCall(cli *RestClient, resp Response, calls *[]calledRequest) *gomonkey.Patches {
	return gomonkey.ApplyMethod(reflect.TypeOf(cli), "Call",
		func(_ *RestClient, _ context.Context, method string, url string,
			data map[string]interface{}) (Response, error) {
			*calls = append(*calls, calledRequest{method: method, url: url, data: data})
			return resp, nil
		})
}

func TestCreateReplicationPair(t *testing.T) {
	// arrange
	cli := &RestClient{}
	var calls []calledRequest
	patches := patchCall(cli, Response{
		Error: map[string]interface{}{"code": float64(0)},
		Data:  map[string]interface{}{"ID": testPairID},
	}, &calls)
	defer patches.Reset()

	// act
	pair, err := cli.CreateReplicationPair(context.Background(), map[string]interface{}{
		"LOCALRESID": "11",
	})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, testPairID, pair["ID"])
	assert.Equal(t, "POST", calls[0].method)
	assert.Equal(t, "/REPLICATIONPAIR", calls[0].url)
}

func TestPairStateVerbs(t *testing.T) {
	var cases = []struct {
		name string
		act  func(cli *RestClient) error
		url  string
	}{
		{
			name: "split",
			act: func(cli *RestClient) error {
				return cli.SplitReplicationPair(context.Background(), testPairID)
			},
			url: "/REPLICATIONPAIR/split",
		},
		{
			name: "sync",
			act: func(cli *RestClient) error {
				return cli.SyncReplicationPair(context.Background(), testPairID)
			},
			url: "/REPLICATIONPAIR/sync",
		},
		{
			name: "switch",
			act: func(cli *RestClient) error {
				return cli.SwitchReplicationPair(context.Background(), testPairID)
			},
			url: "/REPLICATIONPAIR/switch",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// arrange
			cli := &RestClient{}
			var calls []calledRequest
			patches := patchCall(cli, Response{Error: map[string]interface{}{"code": float64(0)}}, &calls)
			defer patches.Reset()

			// act
			err := c.act(cli)

			// assert
			assert.NoError(t, err)
			assert.Equal(t, "PUT", calls[0].method)
			assert.Equal(t, c.url, calls[0].url)
			assert.Equal(t, testPairID, calls[0].data["ID"])
		})
	}
}

func TestSetPairSecondAccess(t *testing.T) {
	// arrange
	cli := &RestClient{}
	var calls []calledRequest
	patches := patchCall(cli, Response{Error: map[string]interface{}{"code": float64(0)}}, &calls)
	defer patches.Reset()

	// act
	err := cli.SetPairSecondAccess(context.Background(), testPairID, "2")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "PUT", calls[0].method)
	assert.Equal(t, "/REPLICATIONPAIR/"+testPairID, calls[0].url)
	assert.Equal(t, "2", calls[0].data["SECRESACCESS"])
}

func TestDeleteReplicationPair_AbsentPairIsNotAnError(t *testing.T) {
	// arrange
	cli := &RestClient{}
	var calls []calledRequest
	patches := patchCall(cli, Response{
		Error: map[string]interface{}{"code": float64(ReplicationNotExist)},
	}, &calls)
	defer patches.Reset()

	// act
	err := cli.DeleteReplicationPair(context.Background(), testPairID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "DELETE", calls[0].method)
}

func TestDeleteReplicationPair_BackendError(t *testing.T) {
	// arrange
	cli := &RestClient{}
	var calls []calledRequest
	patches := patchCall(cli, Response{
		Error: map[string]interface{}{
			"code":        float64(1077937924),
			"description": "pair is busy",
		},
	}, &calls)
	defer patches.Reset()

	// act
	err := cli.DeleteReplicationPair(context.Background(), testPairID)

	// assert
	backendErr, ok := IsBackendError(err)
	assert.True(t, ok)
	assert.Equal(t, int64(1077937924), backendErr.Code)
}

func TestGetReplicationPairByID(t *testing.T) {
	// arrange
	cli := &RestClient{}
	var calls []calledRequest
	patches := patchCall(cli, Response{
		Error: map[string]interface{}{"code": float64(0)},
		Data: map[string]interface{}{
			"ID":            testPairID,
			"RUNNINGSTATUS": "23",
		},
	}, &calls)
	defer patches.Reset()

	// act
	pair, err := cli.GetReplicationPairByID(context.Background(), testPairID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "23", pair["RUNNINGSTATUS"])
	assert.Equal(t, "GET", calls[0].method)
	assert.Equal(t, "/REPLICATIONPAIR/"+testPairID, calls[0].url)
}
