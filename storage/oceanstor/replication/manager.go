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
	"fmt"
	"time"

	"huawei-replication-driver/storage/oceanstor/client"
	"huawei-replication-driver/utils"
	"huawei-replication-driver/utils/flow"
	"huawei-replication-driver/utils/log"
)

const (
	lunRunningStatusOnline = "27"

	remoteDeviceHealthStatusNormal  = "1"
	remoteDeviceRunningStatusLinkUp = "10"

	// LOCALRESTYPE of a lun resource in pair create requests
	lunResType = "11"

	// Medium copy speed and timed synchronization, period for async pairs
	pairSyncSpeedMedium = "2"
	pairSyncTypeTimed   = "2"
	pairAsyncPeriod     = "3600"
)

// ArrayClient aggregates the client capabilities the pair manager needs from
// one array
type ArrayClient interface {
	client.Lun
	client.System
	client.Replication
}

// ManagerConfig configures a PairManager
type ManagerConfig struct {
	// RemotePool is the storage pool on the remote array holding replica luns
	RemotePool string
	// Model is the synchronization model of created pairs
	Model ReplicationModel

	WaitInterval time.Duration
	WaitTimeout  time.Duration
}

// PairManager binds the replication driver to the pair lifecycle of one
// volume, spanning the local and the remote array
type PairManager struct {
	localCli  ArrayClient
	remoteCli ArrayClient
	op        PairOperations
	driver    *Driver
	conf      ManagerConfig

	sleep func(time.Duration)
}

// NewPairManager creates a pair manager over a local and a remote array client
func NewPairManager(localCli, remoteCli ArrayClient, conf ManagerConfig) *PairManager {
	if conf.WaitInterval <= 0 {
		conf.WaitInterval = DefaultWaitInterval
	}
	if conf.WaitTimeout <= 0 {
		conf.WaitTimeout = DefaultWaitTimeout
	}

	op := NewPairOp(localCli)
	return &PairManager{
		localCli:  localCli,
		remoteCli: remoteCli,
		op:        op,
		driver:    NewDriver(op, Config{WaitInterval: conf.WaitInterval, WaitTimeout: conf.WaitTimeout}),
		conf:      conf,
		sleep:     time.Sleep,
	}
}

// Driver returns the replication driver bound to the local array
func (m *PairManager) Driver() *Driver {
	return m.driver
}

// CreateReplica mirrors the given local lun to the remote array and creates a
// replication pair for it. The remote lun is deleted again if any later step
// fails, no orphaned remote resources are left behind.
func (m *PairManager) CreateReplica(ctx context.Context, localLunID string) (*ReplicaData, error) {
	localLun, err := m.localCli.GetLunByID(ctx, localLunID)
	if err != nil {
		return nil, err
	}

	remoteDevice, err := m.getLinkedRemoteDevice(ctx)
	if err != nil {
		return nil, err
	}

	remotePool, err := m.remoteCli.GetPoolByName(ctx, m.conf.RemotePool)
	if err != nil {
		return nil, err
	}
	if remotePool == nil {
		return nil, fmt.Errorf("remote pool %s does not exist", m.conf.RemotePool)
	}

	var remoteLun map[string]interface{}
	var remoteLunCreated bool
	var pairID string

	txn := flow.NewTransaction().Then(
		func() error {
			remoteLun, remoteLunCreated, err = m.ensureRemoteLun(ctx, localLun, remotePool)
			return err
		},
		func() {
			// a reused lun existed before this create, leave it alone
			if !remoteLunCreated {
				return
			}

			remoteLunID, _ := remoteLun["ID"].(string)
			if err := m.remoteCli.DeleteLun(ctx, remoteLunID); err != nil {
				log.AddContext(ctx).Warningf("Delete remote lun %s while rolling back error: %v",
					remoteLunID, err)
			}
		},
	).Then(
		func() error {
			pairID, err = m.createPair(ctx, localLunID, remoteLun, remoteDevice)
			return err
		},
		nil,
	)

	if err := txn.Commit(); err != nil {
		txn.Rollback()
		return nil, err
	}

	remoteLunID, _ := remoteLun["ID"].(string)
	remoteLunWWN, _ := remoteLun["WWN"].(string)

	return &ReplicaData{
		PairID:    pairID,
		RmtLunID:  remoteLunID,
		RmtLunWWN: remoteLunWWN,
	}, nil
}

// DeleteReplica splits a pair when still synchronizing, then deletes it.
// Deleting an absent pair is not an error.
func (m *PairManager) DeleteReplica(ctx context.Context, pairID string) error {
	if err := m.driver.Split(ctx, pairID); err != nil {
		if backendErr, ok := client.IsBackendError(err); ok && backendErr.Code == client.ReplicationNotExist {
			log.AddContext(ctx).Infof("Replication pair %s does not exist while deleting", pairID)
			return nil
		}

		log.AddContext(ctx).Warningf("Split replication pair %s before deleting error: %v", pairID, err)
	}

	return m.op.Delete(ctx, pairID)
}

// WaitVolumeOnline polls a lun until its running status reports online. A
// freshly created lun is not immediately usable for pairing.
func (m *PairManager) WaitVolumeOnline(ctx context.Context, cli ArrayClient, lunID string) error {
	err := waitUntil(func() (bool, error) {
		lun, err := cli.GetLunByID(ctx, lunID)
		if err != nil {
			return false, err
		}

		status, _ := lun["RUNNINGSTATUS"].(string)
		return status == lunRunningStatusOnline, nil
	}, m.conf.WaitTimeout, m.conf.WaitInterval, m.sleep)

	if errors.Is(err, ErrWaitTimeout) {
		return fmt.Errorf("wait lun %s online: %w", lunID, err)
	}
	return err
}

// TryGetRemoteWWN fetches the wwn of the remote array. This is a discovery
// path used for capability reporting, failures report absence, not error.
func (m *PairManager) TryGetRemoteWWN(ctx context.Context) string {
	system, err := m.remoteCli.GetSystem(ctx)
	if err != nil {
		log.AddContext(ctx).Warningf("Get remote array system info error: %v", err)
		return ""
	}

	wwn, _ := system["wwn"].(string)
	return wwn
}

// GetRemoteDeviceByWWN looks up the remote device record of the given wwn on
// the local array. This is a discovery path used for capability reporting,
// failures report absence, not error.
func (m *PairManager) GetRemoteDeviceByWWN(ctx context.Context, wwn string) map[string]interface{} {
	devices, err := m.localCli.GetRemoteDevices(ctx)
	if err != nil {
		log.AddContext(ctx).Warningf("Get remote devices error: %v", err)
		return nil
	}

	for _, device := range devices {
		if device["WWN"] == wwn {
			return device
		}
	}

	return nil
}

// getLinkedRemoteDevice resolves the remote device record matching the remote
// array, and requires it to be healthy and linked up.
func (m *PairManager) getLinkedRemoteDevice(ctx context.Context) (map[string]interface{}, error) {
	remoteSystem, err := m.remoteCli.GetSystem(ctx)
	if err != nil {
		return nil, err
	}

	device, err := m.matchRemoteDevice(ctx, remoteSystem)
	if err != nil {
		return nil, err
	}

	if device["HEALTHSTATUS"] != remoteDeviceHealthStatusNormal ||
		device["RUNNINGSTATUS"] != remoteDeviceRunningStatusLinkUp {
		return nil, fmt.Errorf("remote device is abnormal or not linked up, data: %v", device)
	}

	return device, nil
}

// matchRemoteDevice finds the remote device record of the remote array on the
// local array, by wwn when the remote array reports one, by serial number
// otherwise.
func (m *PairManager) matchRemoteDevice(ctx context.Context,
	remoteSystem map[string]interface{}) (map[string]interface{}, error) {
	if wwn, _ := remoteSystem["wwn"].(string); wwn != "" {
		devices, err := m.localCli.GetRemoteDevices(ctx)
		if err != nil {
			return nil, err
		}

		for _, device := range devices {
			if device["WWN"] == wwn {
				return device, nil
			}
		}

		return nil, fmt.Errorf("no remote device matches the remote array wwn %s", wwn)
	}

	sn, _ := remoteSystem["ID"].(string)
	if sn == "" {
		return nil, fmt.Errorf("remote array system info has neither wwn nor sn, data: %v", remoteSystem)
	}

	device, err := m.localCli.GetRemoteDeviceBySN(ctx, sn)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, fmt.Errorf("no remote device matches the remote array sn %s", sn)
	}

	return device, nil
}

// ensureRemoteLun mirrors name, capacity and allocation type of the local lun
// onto the remote pool, and waits for the lun to come online. A remote lun of
// the same name left behind by an earlier attempt is reused instead of
// recreated; the returned flag reports whether this call created the lun.
func (m *PairManager) ensureRemoteLun(ctx context.Context,
	localLun, remotePool map[string]interface{}) (map[string]interface{}, bool, error) {
	name, _ := localLun["NAME"].(string)
	remoteLun, err := m.remoteCli.GetLunByName(ctx, name)
	if err != nil {
		return nil, false, err
	}

	created := false
	if remoteLun == nil {
		params := utils.MergeMap(map[string]interface{}{
			"NAME":        localLun["NAME"],
			"PARENTID":    remotePool["ID"],
			"CAPACITY":    localLun["CAPACITY"],
			"DESCRIPTION": "Created by replication",
		}, remoteLunInheritedParams(localLun))

		remoteLun, err = m.remoteCli.CreateLun(ctx, params)
		if err != nil {
			return nil, false, err
		}
		created = true
	} else {
		log.AddContext(ctx).Infof("Remote lun %s already exists, reuse it", name)
	}

	remoteLunID, ok := remoteLun["ID"].(string)
	if !ok {
		return nil, created, fmt.Errorf("remote lun has no ID, data: %v", remoteLun)
	}

	if err := m.WaitVolumeOnline(ctx, m.remoteCli, remoteLunID); err != nil {
		if created {
			if deleteErr := m.remoteCli.DeleteLun(ctx, remoteLunID); deleteErr != nil {
				log.AddContext(ctx).Warningf("Delete remote lun %s after online wait failure error: %v",
					remoteLunID, deleteErr)
			}
		}
		return nil, created, err
	}

	return remoteLun, created, nil
}

func remoteLunInheritedParams(localLun map[string]interface{}) map[string]interface{} {
	params := make(map[string]interface{})
	for _, key := range []string{"ALLOCTYPE", "SECTORSIZE"} {
		if value, exists := localLun[key]; exists {
			params[key] = value
		}
	}
	return params
}

// createPair creates the replication pair on the local array with the remote
// lun as target.
func (m *PairManager) createPair(ctx context.Context,
	localLunID string, remoteLun, remoteDevice map[string]interface{}) (string, error) {
	params := map[string]interface{}{
		"LOCALRESID":       localLunID,
		"LOCALRESTYPE":     lunResType,
		"REMOTEDEVICEID":   remoteDevice["ID"],
		"REMOTERESID":      remoteLun["ID"],
		"REPLICATIONMODEL": m.conf.Model.arrayCode(),
		"SPEED":            pairSyncSpeedMedium,
		"SYNCHRONIZETYPE":  pairSyncTypeTimed,
	}

	if m.conf.Model == ModelAsync {
		params["TIMINGVAL"] = pairAsyncPeriod
	}

	return m.op.Create(ctx, params)
}
