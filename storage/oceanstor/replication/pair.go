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
	"fmt"

	"huawei-replication-driver/storage/oceanstor/client"
)

// PairOperations is the primitive operation set of one replication pair
// resource on an array
type PairOperations interface {
	// Create creates a pair with the given raw parameters and returns its id
	Create(ctx context.Context, params map[string]interface{}) (string, error)
	// Delete deletes a pair, deleting an absent pair is not an error
	Delete(ctx context.Context, pairID string) error
	// ProtectSecond sets the secondary side of a pair to read-only
	ProtectSecond(ctx context.Context, pairID string) error
	// UnprotectSecond sets the secondary side of a pair to read-write
	UnprotectSecond(ctx context.Context, pairID string) error
	// Sync requests the array to start synchronizing a pair
	Sync(ctx context.Context, pairID string) error
	// Split requests the array to stop synchronizing a pair
	Split(ctx context.Context, pairID string) error
	// Switch promotes the secondary side of a pair to primary
	Switch(ctx context.Context, pairID string) error
	// IsPrimary reports whether the local side of the fetched pair is primary
	IsPrimary(info *PairInfo) bool
	// GetReplicaInfo fetches the current state of a pair
	GetReplicaInfo(ctx context.Context, pairID string) (*PairInfo, error)
}

// PairOp implements PairOperations against one array replication client
type PairOp struct {
	cli client.Replication
}

var _ PairOperations = &PairOp{}

// NewPairOp creates a PairOp bound to the given replication client
func NewPairOp(cli client.Replication) *PairOp {
	return &PairOp{
		cli: cli,
	}
}

// Create creates a pair with the given raw parameters and returns its id
func (op *PairOp) Create(ctx context.Context, params map[string]interface{}) (string, error) {
	pair, err := op.cli.CreateReplicationPair(ctx, params)
	if err != nil {
		return "", err
	}

	pairID, ok := pair["ID"].(string)
	if !ok {
		return "", fmt.Errorf("created replication pair has no ID, data: %v", pair)
	}

	return pairID, nil
}

// Delete deletes a pair, deleting an absent pair is not an error
func (op *PairOp) Delete(ctx context.Context, pairID string) error {
	return op.cli.DeleteReplicationPair(ctx, pairID)
}

// ProtectSecond sets the secondary side of a pair to read-only
func (op *PairOp) ProtectSecond(ctx context.Context, pairID string) error {
	return op.cli.SetPairSecondAccess(ctx, pairID, SecondAccessReadOnly.arrayCode())
}

// UnprotectSecond sets the secondary side of a pair to read-write
func (op *PairOp) UnprotectSecond(ctx context.Context, pairID string) error {
	return op.cli.SetPairSecondAccess(ctx, pairID, SecondAccessReadWrite.arrayCode())
}

// Sync requests the array to start synchronizing a pair
func (op *PairOp) Sync(ctx context.Context, pairID string) error {
	return op.cli.SyncReplicationPair(ctx, pairID)
}

// Split requests the array to stop synchronizing a pair
func (op *PairOp) Split(ctx context.Context, pairID string) error {
	return op.cli.SplitReplicationPair(ctx, pairID)
}

// Switch promotes the secondary side of a pair to primary
func (op *PairOp) Switch(ctx context.Context, pairID string) error {
	return op.cli.SwitchReplicationPair(ctx, pairID)
}

// IsPrimary reports whether the local side of the fetched pair is primary
func (op *PairOp) IsPrimary(info *PairInfo) bool {
	return info.IsPrimary
}

// GetReplicaInfo fetches the current state of a pair
func (op *PairOp) GetReplicaInfo(ctx context.Context, pairID string) (*PairInfo, error) {
	pair, err := op.cli.GetReplicationPairByID(ctx, pairID)
	if err != nil {
		return nil, err
	}

	return ParsePairInfo(pair)
}

// NullOp is a no-op PairOperations implementation
type NullOp struct{}

var _ PairOperations = &NullOp{}

// Create does nothing
func (op *NullOp) Create(ctx context.Context, params map[string]interface{}) (string, error) {
	return "", nil
}

// Delete does nothing
func (op *NullOp) Delete(ctx context.Context, pairID string) error {
	return nil
}

// ProtectSecond does nothing
func (op *NullOp) ProtectSecond(ctx context.Context, pairID string) error {
	return nil
}

// UnprotectSecond does nothing
func (op *NullOp) UnprotectSecond(ctx context.Context, pairID string) error {
	return nil
}

// Sync does nothing
func (op *NullOp) Sync(ctx context.Context, pairID string) error {
	return nil
}

// Split does nothing
func (op *NullOp) Split(ctx context.Context, pairID string) error {
	return nil
}

// Switch does nothing
func (op *NullOp) Switch(ctx context.Context, pairID string) error {
	return nil
}

// IsPrimary reports whether the local side of the fetched pair is primary
func (op *NullOp) IsPrimary(info *PairInfo) bool {
	return info.IsPrimary
}

// GetReplicaInfo returns an empty pair state
func (op *NullOp) GetReplicaInfo(ctx context.Context, pairID string) (*PairInfo, error) {
	return &PairInfo{ID: pairID}, nil
}
