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

// Lun defines interfaces for lun operations
type Lun interface {
	// GetLunByID used for get lun by lun id
	GetLunByID(ctx context.Context, id string) (map[string]interface{}, error)
	// GetLunByName used for get lun by lun name
	GetLunByName(ctx context.Context, name string) (map[string]interface{}, error)
	// CreateLun used for create lun
	CreateLun(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error)
	// DeleteLun used for delete lun by lun id
	DeleteLun(ctx context.Context, id string) error
	// GetPoolByName used for get pool by pool name
	GetPoolByName(ctx context.Context, name string) (map[string]interface{}, error)
}

// GetLunByID used for get lun by lun id
func (cli *RestClient) GetLunByID(ctx context.Context, id string) (map[string]interface{}, error) {
	url := fmt.Sprintf("/lun/%s", id)
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

// GetLunByName used for get lun by lun name
func (cli *RestClient) GetLunByName(ctx context.Context, name string) (map[string]interface{}, error) {
	url := fmt.Sprintf("/lun?filter=NAME::%s&range=[0-100]", name)
	resp, err := cli.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	if err := resp.AssertErrorCode(); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		log.AddContext(ctx).Infof("Lun %s does not exist", name)
		return nil, nil
	}

	respData, ok := resp.Data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("convert respData to arr failed, data: %v", resp.Data)
	}
	if len(respData) == 0 {
		log.AddContext(ctx).Infof("Lun %s does not exist", name)
		return nil, nil
	}

	lun, ok := respData[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("convert lun to map failed, data: %v", respData[0])
	}
	return lun, nil
}

// CreateLun used for create lun
func (cli *RestClient) CreateLun(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	resp, err := cli.Post(ctx, "/lun", params)
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

// DeleteLun used for delete lun by lun id
func (cli *RestClient) DeleteLun(ctx context.Context, id string) error {
	url := fmt.Sprintf("/lun/%s", id)
	resp, err := cli.Delete(ctx, url, nil)
	if err != nil {
		return err
	}

	code, err := resp.errorCode()
	if err != nil {
		return err
	}

	if code == LunNotExist {
		log.AddContext(ctx).Infof("Lun %s does not exist while deleting", id)
		return nil
	}
	if code != SuccessCode {
		return &BackendError{Code: code, Description: resp.description()}
	}

	return nil
}

// GetPoolByName used for get pool by pool name
func (cli *RestClient) GetPoolByName(ctx context.Context, name string) (map[string]interface{}, error) {
	url := fmt.Sprintf("/storagepool?filter=NAME::%s&range=[0-100]", name)
	resp, err := cli.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	if err := resp.AssertErrorCode(); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		log.AddContext(ctx).Infof("Pool %s does not exist", name)
		return nil, nil
	}

	respData, ok := resp.Data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("convert respData to arr failed, data: %v", resp.Data)
	}
	if len(respData) == 0 {
		log.AddContext(ctx).Infof("Pool %s does not exist", name)
		return nil, nil
	}

	pool, ok := respData[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("convert pool to map failed, data: %v", respData[0])
	}
	return pool, nil
}
