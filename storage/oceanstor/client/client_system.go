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

// System defines interfaces for system operations
type System interface {
	// GetSystem used for get system info
	GetSystem(ctx context.Context) (map[string]interface{}, error)
	// GetRemoteDevices used for get all remote devices
	GetRemoteDevices(ctx context.Context) ([]map[string]interface{}, error)
	// GetRemoteDeviceBySN used for get remote device by sn
	GetRemoteDeviceBySN(ctx context.Context, sn string) (map[string]interface{}, error)
}

// GetSystem used for get system info
func (cli *RestClient) GetSystem(ctx context.Context) (map[string]interface{}, error) {
	resp, err := cli.Get(ctx, "/system/", nil)
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

// GetRemoteDevices used for get all remote devices
func (cli *RestClient) GetRemoteDevices(ctx context.Context) ([]map[string]interface{}, error) {
	resp, err := cli.Get(ctx, "/remote_device", nil)
	if err != nil {
		return nil, err
	}

	if err := resp.AssertErrorCode(); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		log.AddContext(ctx).Infof("No remote device exists")
		return nil, nil
	}

	var devices []map[string]interface{}

	respData, ok := resp.Data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("convert respData to arr failed, data: %v", resp.Data)
	}
	for _, i := range respData {
		device, ok := i.(map[string]interface{})
		if !ok {
			log.AddContext(ctx).Warningf("convert device to map failed, data: %v", i)
			continue
		}
		devices = append(devices, device)
	}

	return devices, nil
}

// GetRemoteDeviceBySN used for get remote device by sn
func (cli *RestClient) GetRemoteDeviceBySN(ctx context.Context, sn string) (map[string]interface{}, error) {
	devices, err := cli.GetRemoteDevices(ctx)
	if err != nil {
		return nil, err
	}

	for _, device := range devices {
		if device["SN"] == sn {
			return device, nil
		}
	}

	log.AddContext(ctx).Infof("Remote device of SN %s does not exist", sn)
	return nil, nil
}
