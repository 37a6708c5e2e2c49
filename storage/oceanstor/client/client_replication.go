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
	"fmt"

	"huawei-replication-driver/utils/log"
)

// Replication defines interfaces for replication operations
type Replication interface {
	// GetReplicationPairByID used for get replication pair by pair id
	GetReplicationPairByID(ctx context.Context, pairID string) (map[string]interface{}, error)
	// DeleteReplicationPair used for delete replication pair by pair id
	DeleteReplicationPair(ctx context.Context, pairID string) error
	// CreateReplicationPair used for create replication pair
	CreateReplicationPair(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error)
	// SyncReplicationPair used for synchronize replication pair
	SyncReplicationPair(ctx context.Context, pairID string) error
	// SplitReplicationPair used for split replication pair by pair id
	SplitReplicationPair(ctx context.Context, pairID string) error
	// SwitchReplicationPair used for switch replication pair roles by pair id
	SwitchReplicationPair(ctx context.Context, pairID string) error
	// SetPairSecondAccess used for set the secondary resource access of a pair
	SetPairSecondAccess(ctx context.Context, pairID string, access string) error
}

// CreateReplicationPair used for create replication pair
func (cli *RestClient) CreateReplicationPair(ctx context.Context, data map[string]interface{}) (
	map[string]interface{}, error) {

	resp, err := cli.Post(ctx, "/REPLICATIONPAIR", data)
	if err != nil {
		return nil, err
	}

	if err := resp.AssertErrorCode(); err != nil {
		return nil, err
	}

	respData, ok := resp.Data.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("convert respData to map failed, data: %v", resp.Data)
	}
	return respData, nil
}

// SplitReplicationPair used for split replication pair by pair id
func (cli *RestClient) SplitReplicationPair(ctx context.Context, pairID string) error {
	data := map[string]interface{}{
		"ID": pairID,
	}

	resp, err := cli.Put(ctx, "/REPLICATIONPAIR/split", data)
	if err != nil {
		return err
	}

	return resp.AssertErrorCode()
}

// SyncReplicationPair used for synchronize replication pair
func (cli *RestClient) SyncReplicationPair(ctx context.Context, pairID string) error {
	data := map[string]interface{}{
		"ID": pairID,
	}

	resp, err := cli.Put(ctx, "/REPLICATIONPAIR/sync", data)
	if err != nil {
		return err
	}

	return resp.AssertErrorCode()
}

// SwitchReplicationPair used for switch replication pair roles by pair id
func (cli *RestClient) SwitchReplicationPair(ctx context.Context, pairID string) error {
	data := map[string]interface{}{
		"ID": pairID,
	}

	resp, err := cli.Put(ctx, "/REPLICATIONPAIR/switch", data)
	if err != nil {
		return err
	}

	return resp.AssertErrorCode()
}

// SetPairSecondAccess used for set the secondary resource access of a pair
func (cli *RestClient) SetPairSecondAccess(ctx context.Context, pairID string, access string) error {
	data := map[string]interface{}{
		"SECRESACCESS": access,
	}

	url := fmt.Sprintf("/REPLICATIONPAIR/%s", pairID)
	resp, err := cli.Put(ctx, url, data)
	if err != nil {
		return err
	}

	return resp.AssertErrorCode()
}

// DeleteReplicationPair used for delete replication pair by pair id
func (cli *RestClient) DeleteReplicationPair(ctx context.Context, pairID string) error {
	url := fmt.Sprintf("/REPLICATIONPAIR/%s", pairID)
	resp, err := cli.Delete(ctx, url, nil)
	if err != nil {
		return err
	}

	code, err := resp.errorCode()
	if err != nil {
		return err
	}

	if code == ReplicationNotExist {
		log.AddContext(ctx).Infof("Replication pair %s does not exist while deleting", pairID)
		return nil
	}
	if code != SuccessCode {
		return &BackendError{Code: code, Description: resp.description()}
	}

	return nil
}

// GetReplicationPairByID used for get replication pair by pair id
func (cli *RestClient) GetReplicationPairByID(ctx context.Context, pairID string) (map[string]interface{}, error) {
	url := fmt.Sprintf("/REPLICATIONPAIR/%s", pairID)
	resp, err := cli.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	if err := resp.AssertErrorCode(); err != nil {
		return nil, err
	}

	respData, ok := resp.Data.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("convert respData to map failed, data: %v", resp.Data)
	}
	return respData, nil
}
