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

package replication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"huawei-replication-driver/storage/oceanstor/client"
)

const (
	testLocalLunID  = "11"
	testRemoteLunID = "21"
	testRemoteWWN   = "2102351NPT10J3000001"
)

// fakeArrayClient is a scriptable in-memory stand-in for one array
type fakeArrayClient struct {
	system    map[string]interface{}
	systemErr error

	remoteDevices    []map[string]interface{}
	remoteDevicesErr error

	pools map[string]map[string]interface{}
	luns  map[string]map[string]interface{}

	createLunResult map[string]interface{}
	createLunErr    error
	createLunCalls  int

	deleteLunErr   error
	deletedLuns    []string

	pairs map[string]map[string]interface{}

	createPairResult map[string]interface{}
	createPairErr    error

	deletedPairs []string
	splitPairs   []string
}

func (c *fakeArrayClient) GetLunByID(_ context.Context, id string) (map[string]interface{}, error) {
	lun, exists := c.luns[id]
	if !exists {
		return nil, &client.BackendError{Code: client.LunNotExist, Description: "lun does not exist"}
	}
	return lun, nil
}

func (c *fakeArrayClient) GetLunByName(_ context.Context, name string) (map[string]interface{}, error) {
	for _, lun := range c.luns {
		if lun["NAME"] == name {
			return lun, nil
		}
	}
	return nil, nil
}

func (c *fakeArrayClient) CreateLun(_ context.Context,
	params map[string]interface{}) (map[string]interface{}, error) {
	c.createLunCalls++
	if c.createLunErr != nil {
		return nil, c.createLunErr
	}
	return c.createLunResult, nil
}

func (c *fakeArrayClient) DeleteLun(_ context.Context, id string) error {
	c.deletedLuns = append(c.deletedLuns, id)
	return c.deleteLunErr
}

func (c *fakeArrayClient) GetPoolByName(_ context.Context, name string) (map[string]interface{}, error) {
	return c.pools[name], nil
}

func (c *fakeArrayClient) GetSystem(_ context.Context) (map[string]interface{}, error) {
	return c.system, c.systemErr
}

func (c *fakeArrayClient) GetRemoteDevices(_ context.Context) ([]map[string]interface{}, error) {
	return c.remoteDevices, c.remoteDevicesErr
}

func (c *fakeArrayClient) GetRemoteDeviceBySN(_ context.Context, sn string) (map[string]interface{}, error) {
	for _, device := range c.remoteDevices {
		if device["SN"] == sn {
			return device, nil
		}
	}
	return nil, nil
}

func (c *fakeArrayClient) GetReplicationPairByID(_ context.Context,
	pairID string) (map[string]interface{}, error) {
	pair, exists := c.pairs[pairID]
	if !exists {
		return nil, &client.BackendError{Code: client.ReplicationNotExist, Description: "pair does not exist"}
	}
	return pair, nil
}

func (c *fakeArrayClient) DeleteReplicationPair(_ context.Context, pairID string) error {
	c.deletedPairs = append(c.deletedPairs, pairID)
	delete(c.pairs, pairID)
	return nil
}

func (c *fakeArrayClient) CreateReplicationPair(_ context.Context,
	data map[string]interface{}) (map[string]interface{}, error) {
	if c.createPairErr != nil {
		return nil, c.createPairErr
	}
	return c.createPairResult, nil
}

func (c *fakeArrayClient) SyncReplicationPair(_ context.Context, pairID string) error {
	return nil
}

func (c *fakeArrayClient) SplitReplicationPair(_ context.Context, pairID string) error {
	c.splitPairs = append(c.splitPairs, pairID)
	if pair, exists := c.pairs[pairID]; exists {
		pair["RUNNINGSTATUS"] = pairRunningStatusSplit
	}
	return nil
}

func (c *fakeArrayClient) SwitchReplicationPair(_ context.Context, pairID string) error {
	return nil
}

func (c *fakeArrayClient) SetPairSecondAccess(_ context.Context, pairID string, access string) error {
	if pair, exists := c.pairs[pairID]; exists {
		pair["SECRESACCESS"] = access
	}
	return nil
}

func newTestManager(localCli, remoteCli ArrayClient) *PairManager {
	m := NewPairManager(localCli, remoteCli, ManagerConfig{
		RemotePool:   "StoragePool001",
		Model:        ModelAsync,
		WaitInterval: time.Second,
		WaitTimeout:  3 * time.Second,
	})
	m.sleep = func(time.Duration) {}
	m.driver.sleep = func(time.Duration) {}
	return m
}

func newHealthyFakes() (*fakeArrayClient, *fakeArrayClient) {
	localCli := &fakeArrayClient{
		luns: map[string]map[string]interface{}{
			testLocalLunID: {
				"ID":        testLocalLunID,
				"NAME":      "pvc-volume-0001",
				"CAPACITY":  "2097152",
				"ALLOCTYPE": "1",
			},
		},
		remoteDevices: []map[string]interface{}{
			{
				"ID":            "0",
				"WWN":           testRemoteWWN,
				"HEALTHSTATUS":  remoteDeviceHealthStatusNormal,
				"RUNNINGSTATUS": remoteDeviceRunningStatusLinkUp,
			},
		},
		createPairResult: map[string]interface{}{"ID": testPairID},
		pairs:            map[string]map[string]interface{}{},
	}

	remoteCli := &fakeArrayClient{
		system: map[string]interface{}{"wwn": testRemoteWWN},
		pools: map[string]map[string]interface{}{
			"StoragePool001": {"ID": "5", "NAME": "StoragePool001"},
		},
		createLunResult: map[string]interface{}{
			"ID":  testRemoteLunID,
			"WWN": "lun-wwn-0021",
		},
		luns: map[string]map[string]interface{}{
			testRemoteLunID: {
				"ID":            testRemoteLunID,
				"RUNNINGSTATUS": lunRunningStatusOnline,
			},
		},
	}

	return localCli, remoteCli
}

func TestCreateReplica_Success(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	m := newTestManager(localCli, remoteCli)

	// act
	data, err := m.CreateReplica(context.Background(), testLocalLunID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, &ReplicaData{
		PairID:    testPairID,
		RmtLunID:  testRemoteLunID,
		RmtLunWWN: "lun-wwn-0021",
	}, data)
	assert.Equal(t, 1, remoteCli.createLunCalls)
	assert.Empty(t, remoteCli.deletedLuns)
}

func TestCreateReplica_NoRemoteDeviceMatches(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	localCli.remoteDevices = nil
	m := newTestManager(localCli, remoteCli)

	// act
	_, err := m.CreateReplica(context.Background(), testLocalLunID)

	// assert
	assert.Error(t, err)
	assert.Equal(t, 0, remoteCli.createLunCalls)
}

func TestCreateReplica_MatchesRemoteDeviceBySerialNumber(t *testing.T) {
	// arrange, an array reporting no wwn is matched on its serial number
	localCli, remoteCli := newHealthyFakes()
	remoteCli.system = map[string]interface{}{"ID": "2102351NPT10J3000001SN"}
	localCli.remoteDevices[0]["SN"] = "2102351NPT10J3000001SN"
	m := newTestManager(localCli, remoteCli)

	// act
	data, err := m.CreateReplica(context.Background(), testLocalLunID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, testPairID, data.PairID)
}

func TestCreateReplica_ReusesExistingRemoteLun(t *testing.T) {
	// arrange, a remote lun of the same name survives from an earlier attempt
	localCli, remoteCli := newHealthyFakes()
	remoteCli.luns["31"] = map[string]interface{}{
		"ID":            "31",
		"NAME":          "pvc-volume-0001",
		"WWN":           "lun-wwn-0031",
		"RUNNINGSTATUS": lunRunningStatusOnline,
	}
	m := newTestManager(localCli, remoteCli)

	// act
	data, err := m.CreateReplica(context.Background(), testLocalLunID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 0, remoteCli.createLunCalls)
	assert.Equal(t, "31", data.RmtLunID)
	assert.Equal(t, "lun-wwn-0031", data.RmtLunWWN)
}

func TestCreateReplica_ReusedRemoteLunSurvivesRollback(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	remoteCli.luns["31"] = map[string]interface{}{
		"ID":            "31",
		"NAME":          "pvc-volume-0001",
		"WWN":           "lun-wwn-0031",
		"RUNNINGSTATUS": lunRunningStatusOnline,
	}
	localCli.createPairErr = &client.BackendError{Code: 1077937924, Description: "license is not valid"}
	m := newTestManager(localCli, remoteCli)

	// act
	_, err := m.CreateReplica(context.Background(), testLocalLunID)

	// assert, the rollback must not delete a lun this create did not make
	assert.Error(t, err)
	assert.Empty(t, remoteCli.deletedLuns)
}

func TestCreateReplica_AbnormalRemoteDeviceIsRejected(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	localCli.remoteDevices[0]["HEALTHSTATUS"] = "2"
	m := newTestManager(localCli, remoteCli)

	// act
	_, err := m.CreateReplica(context.Background(), testLocalLunID)

	// assert
	assert.Error(t, err)
	assert.Equal(t, 0, remoteCli.createLunCalls)
}

func TestCreateReplica_CleanupOnPairCreateFailure(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	pairErr := &client.BackendError{Code: 1077937924, Description: "license is not valid"}
	localCli.createPairErr = pairErr
	// the cleanup failure must not mask the pair creation error
	remoteCli.deleteLunErr = errors.New("delete remote lun failed")
	m := newTestManager(localCli, remoteCli)

	// act
	_, err := m.CreateReplica(context.Background(), testLocalLunID)

	// assert
	assert.ErrorIs(t, err, pairErr)
	assert.Equal(t, []string{testRemoteLunID}, remoteCli.deletedLuns)
}

func TestDeleteReplica_IdempotentOnAbsentPair(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	m := newTestManager(localCli, remoteCli)

	// act
	firstErr := m.DeleteReplica(context.Background(), testPairID)
	secondErr := m.DeleteReplica(context.Background(), testPairID)

	// assert
	assert.NoError(t, firstErr)
	assert.NoError(t, secondErr)
}

func TestDeleteReplica_SplitsSynchronizingPairFirst(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	localCli.pairs[testPairID] = map[string]interface{}{
		"ID":            testPairID,
		"RUNNINGSTATUS": pairRunningStatusSync,
		"HEALTHSTATUS":  pairHealthStatusNormal,
	}
	m := newTestManager(localCli, remoteCli)

	// act
	err := m.DeleteReplica(context.Background(), testPairID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{testPairID}, localCli.splitPairs)
	assert.Equal(t, []string{testPairID}, localCli.deletedPairs)
}

func TestWaitVolumeOnline_Timeout(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	remoteCli.luns[testRemoteLunID]["RUNNINGSTATUS"] = "53"
	m := newTestManager(localCli, remoteCli)

	// act
	err := m.WaitVolumeOnline(context.Background(), remoteCli, testRemoteLunID)

	// assert
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestTryGetRemoteWWN_NonFatalOnFailure(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	remoteCli.systemErr = errors.New(client.Unconnected)
	m := newTestManager(localCli, remoteCli)

	// act
	wwn := m.TryGetRemoteWWN(context.Background())

	// assert
	assert.Equal(t, "", wwn)
}

func TestGetRemoteDeviceByWWN(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	m := newTestManager(localCli, remoteCli)

	// act
	device := m.GetRemoteDeviceByWWN(context.Background(), testRemoteWWN)
	missing := m.GetRemoteDeviceByWWN(context.Background(), "not-a-wwn")

	// assert
	assert.NotNil(t, device)
	assert.Equal(t, "0", device["ID"])
	assert.Nil(t, missing)
}

func TestGetRemoteDeviceByWWN_NonFatalOnFailure(t *testing.T) {
	// arrange
	localCli, remoteCli := newHealthyFakes()
	localCli.remoteDevicesErr = errors.New(client.Unconnected)
	m := newTestManager(localCli, remoteCli)

	// act
	device := m.GetRemoteDeviceByWWN(context.Background(), testRemoteWWN)

	// assert
	assert.Nil(t, device)
}
