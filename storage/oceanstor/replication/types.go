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

// Package replication orchestrates remote replication pairs between two
// oceanstor arrays
package replication

import (
	"encoding/json"
	"fmt"
)

// Raw status codes of the REPLICATIONPAIR resource. They are translated to
// typed values in ParsePairInfo and must not leak past this file.
const (
	pairRunningStatusNormal      = "1"
	pairRunningStatusSync        = "23"
	pairRunningStatusSplit       = "26"
	pairRunningStatusInterrupted = "34"
	pairRunningStatusInvalid     = "35"

	pairHealthStatusNormal = "1"

	secondAccessDenied    = "1"
	secondAccessReadOnly  = "2"
	secondAccessReadWrite = "3"

	replicationModelSync  = "1"
	replicationModelAsync = "2"
)

// RunningStatus is the running state of a replication pair
type RunningStatus int

// Running states of a replication pair
const (
	RunningStatusUnknown RunningStatus = iota
	RunningStatusNormal
	RunningStatusSynchronizing
	RunningStatusSplit
	RunningStatusInterrupted
	RunningStatusInvalid
)

// String implements the fmt.Stringer interface
func (s RunningStatus) String() string {
	switch s {
	case RunningStatusNormal:
		return "Normal"
	case RunningStatusSynchronizing:
		return "Synchronizing"
	case RunningStatusSplit:
		return "Split"
	case RunningStatusInterrupted:
		return "Interrupted"
	case RunningStatusInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

func parseRunningStatus(code string) RunningStatus {
	switch code {
	case pairRunningStatusNormal:
		return RunningStatusNormal
	case pairRunningStatusSync:
		return RunningStatusSynchronizing
	case pairRunningStatusSplit:
		return RunningStatusSplit
	case pairRunningStatusInterrupted:
		return RunningStatusInterrupted
	case pairRunningStatusInvalid:
		return RunningStatusInvalid
	default:
		return RunningStatusUnknown
	}
}

// HealthStatus is the health state of a replication pair
type HealthStatus int

// Health states of a replication pair
const (
	HealthStatusAbnormal HealthStatus = iota
	HealthStatusNormal
)

// String implements the fmt.Stringer interface
func (s HealthStatus) String() string {
	if s == HealthStatusNormal {
		return "Normal"
	}
	return "Abnormal"
}

func parseHealthStatus(code string) HealthStatus {
	if code == pairHealthStatusNormal {
		return HealthStatusNormal
	}
	return HealthStatusAbnormal
}

// SecondAccess is the access mode granted to the secondary side of a pair
type SecondAccess int

// Access modes of the secondary side
const (
	SecondAccessDenied SecondAccess = iota
	SecondAccessReadOnly
	SecondAccessReadWrite
)

// String implements the fmt.Stringer interface
func (a SecondAccess) String() string {
	switch a {
	case SecondAccessReadOnly:
		return "ReadOnly"
	case SecondAccessReadWrite:
		return "ReadWrite"
	default:
		return "Denied"
	}
}

func (a SecondAccess) arrayCode() string {
	switch a {
	case SecondAccessReadOnly:
		return secondAccessReadOnly
	case SecondAccessReadWrite:
		return secondAccessReadWrite
	default:
		return secondAccessDenied
	}
}

func parseSecondAccess(code string) SecondAccess {
	switch code {
	case secondAccessReadOnly:
		return SecondAccessReadOnly
	case secondAccessReadWrite:
		return SecondAccessReadWrite
	default:
		return SecondAccessDenied
	}
}

// ReplicationModel is the synchronization model of a pair
type ReplicationModel int

// Synchronization models of a pair
const (
	ModelAsync ReplicationModel = iota
	ModelSync
)

// String implements the fmt.Stringer interface
func (m ReplicationModel) String() string {
	if m == ModelSync {
		return "Sync"
	}
	return "Async"
}

func (m ReplicationModel) arrayCode() string {
	if m == ModelSync {
		return replicationModelSync
	}
	return replicationModelAsync
}

func parseReplicationModel(code string) ReplicationModel {
	if code == replicationModelSync {
		return ModelSync
	}
	return ModelAsync
}

// PairInfo is the typed state of one replication pair
type PairInfo struct {
	ID            string
	RunningStatus RunningStatus
	HealthStatus  HealthStatus
	SecondAccess  SecondAccess
	IsPrimary     bool
	Model         ReplicationModel
}

// ParsePairInfo translates a raw REPLICATIONPAIR response to a PairInfo.
// This is the only place raw pair status codes are interpreted.
func ParsePairInfo(data map[string]interface{}) (*PairInfo, error) {
	id, ok := data["ID"].(string)
	if !ok {
		return nil, fmt.Errorf("replication pair info has no ID, data: %v", data)
	}

	runningStatus, _ := data["RUNNINGSTATUS"].(string)
	healthStatus, _ := data["HEALTHSTATUS"].(string)
	secondAccess, _ := data["SECRESACCESS"].(string)
	model, _ := data["REPLICATIONMODEL"].(string)
	isPrimary, _ := data["ISPRIMARY"].(string)

	return &PairInfo{
		ID:            id,
		RunningStatus: parseRunningStatus(runningStatus),
		HealthStatus:  parseHealthStatus(healthStatus),
		SecondAccess:  parseSecondAccess(secondAccess),
		IsPrimary:     isPrimary == "true",
		Model:         parseReplicationModel(model),
	}, nil
}

// ReplicaData is the replica metadata persisted on the volume by the caller
type ReplicaData struct {
	PairID    string `json:"pair_id"`
	RmtLunID  string `json:"rmt_lun_id"`
	RmtLunWWN string `json:"rmt_lun_wwn"`
}

// Encode serializes the replica metadata to its persisted string form
func (d *ReplicaData) Encode() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal replica data %+v error: %w", d, err)
	}
	return string(data), nil
}

// DecodeReplicaData parses the persisted string form of replica metadata
func DecodeReplicaData(raw string) (*ReplicaData, error) {
	var data ReplicaData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("unmarshal replica data %s error: %w", raw, err)
	}
	return &data, nil
}
