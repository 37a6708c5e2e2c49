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

	"huawei-replication-driver/utils/log"
)

const logName = "replicationTest.log"

const testPairID = "pair-0001"

// fakePairOp replays a scripted sequence of pair states and records every
// primitive call.
type fakePairOp struct {
	infos  []*PairInfo
	infoAt int

	infoErr      error
	protectErr   error
	unprotectErr error
	syncErr      error
	splitErr     error
	switchErr    error
	deleteErr    error
	createErr    error

	createID string
	calls    []string
}

func (op *fakePairOp) Create(_ context.Context, _ map[string]interface{}) (string, error) {
	op.calls = append(op.calls, "create")
	return op.createID, op.createErr
}

func (op *fakePairOp) Delete(_ context.Context, _ string) error {
	op.calls = append(op.calls, "delete")
	return op.deleteErr
}

func (op *fakePairOp) ProtectSecond(_ context.Context, _ string) error {
	op.calls = append(op.calls, "protect")
	return op.protectErr
}

func (op *fakePairOp) UnprotectSecond(_ context.Context, _ string) error {
	op.calls = append(op.calls, "unprotect")
	return op.unprotectErr
}

func (op *fakePairOp) Sync(_ context.Context, _ string) error {
	op.calls = append(op.calls, "sync")
	return op.syncErr
}

func (op *fakePairOp) Split(_ context.Context, _ string) error {
	op.calls = append(op.calls, "split")
	return op.splitErr
}

func (op *fakePairOp) Switch(_ context.Context, _ string) error {
	op.calls = append(op.calls, "switch")
	return op.switchErr
}

func (op *fakePairOp) IsPrimary(info *PairInfo) bool {
	return info.IsPrimary
}

func (op *fakePairOp) GetReplicaInfo(_ context.Context, pairID string) (*PairInfo, error) {
	op.calls = append(op.calls, "get")
	if op.infoErr != nil {
		return nil, op.infoErr
	}
	if len(op.infos) == 0 {
		return &PairInfo{ID: pairID}, nil
	}

	info := op.infos[op.infoAt]
	if op.infoAt < len(op.infos)-1 {
		op.infoAt++
	}
	return info, nil
}

func (op *fakePairOp) primitiveCalls() []string {
	var primitives []string
	for _, call := range op.calls {
		if call != "get" {
			primitives = append(primitives, call)
		}
	}
	return primitives
}

func newTestDriver(op PairOperations, sleeps *int) *Driver {
	d := NewDriver(op, Config{WaitInterval: time.Second, WaitTimeout: 3 * time.Second})
	d.sleep = func(time.Duration) {
		if sleeps != nil {
			*sleeps++
		}
	}
	return d
}

func TestSplit_ShortCircuitsOnTerminalStates(t *testing.T) {
	var cases = []struct {
		name   string
		status RunningStatus
	}{
		{"Split", RunningStatusSplit},
		{"Invalid", RunningStatusInvalid},
		{"Interrupted", RunningStatusInterrupted},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// arrange
			op := &fakePairOp{infos: []*PairInfo{{ID: testPairID, RunningStatus: c.status}}}
			d := newTestDriver(op, nil)

			// act
			err := d.Split(context.Background(), testPairID)

			// assert
			assert.NoError(t, err)
			assert.NotContains(t, op.calls, "split")
		})
	}
}

func TestSplit_WaitsForSplitState(t *testing.T) {
	// arrange
	op := &fakePairOp{infos: []*PairInfo{
		{ID: testPairID, RunningStatus: RunningStatusSynchronizing},
		{ID: testPairID, RunningStatus: RunningStatusSplit},
	}}
	d := newTestDriver(op, nil)

	// act
	err := d.Split(context.Background(), testPairID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"split"}, op.primitiveCalls())
}

func TestFailover_RejectsSelfPromotion(t *testing.T) {
	// arrange
	op := &fakePairOp{infos: []*PairInfo{{ID: testPairID, IsPrimary: true}}}
	d := newTestDriver(op, nil)

	// act
	err := d.Failover(context.Background(), testPairID)

	// assert
	assert.Error(t, err)
	assert.NotContains(t, op.calls, "split")
	assert.NotContains(t, op.calls, "switch")
}

func TestFailover_SplitsThenSwitches(t *testing.T) {
	// arrange
	op := &fakePairOp{infos: []*PairInfo{
		{ID: testPairID, RunningStatus: RunningStatusNormal},
		{ID: testPairID, RunningStatus: RunningStatusNormal},
		{ID: testPairID, RunningStatus: RunningStatusSplit},
	}}
	d := newTestDriver(op, nil)

	// act
	err := d.Failover(context.Background(), testPairID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"split", "switch"}, op.primitiveCalls())
}

func TestSync_ProtectsSecondBeforeSync(t *testing.T) {
	// arrange
	op := &fakePairOp{infos: []*PairInfo{
		{ID: testPairID, SecondAccess: SecondAccessReadWrite},
		{ID: testPairID, SecondAccess: SecondAccessReadOnly},
	}}
	d := newTestDriver(op, nil)

	// act
	err := d.Sync(context.Background(), testPairID, false)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"protect", "sync"}, op.primitiveCalls())
}

func TestSync_FailsWhenSplitDuringWait(t *testing.T) {
	// arrange
	op := &fakePairOp{infos: []*PairInfo{
		{ID: testPairID, SecondAccess: SecondAccessReadOnly},
		{ID: testPairID, RunningStatus: RunningStatusSynchronizing, HealthStatus: HealthStatusNormal},
		{ID: testPairID, RunningStatus: RunningStatusSplit, HealthStatus: HealthStatusNormal},
	}}
	d := newTestDriver(op, nil)

	// act
	err := d.Sync(context.Background(), testPairID, true)

	// assert
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrWaitTimeout))
}

func TestWaitSecondAccess_TimeoutIsBoundedAndFatal(t *testing.T) {
	// arrange
	var sleeps int
	op := &fakePairOp{infos: []*PairInfo{{ID: testPairID, SecondAccess: SecondAccessDenied}}}
	d := newTestDriver(op, &sleeps)

	// act
	err := d.ProtectSecond(context.Background(), testPairID)

	// assert
	assert.ErrorIs(t, err, ErrWaitTimeout)
	// 3s timeout at 1s interval: initial poll plus one per interval
	assert.Equal(t, 3, sleeps)
}

func TestEnable_OnNonPrimarySynchronizingPair(t *testing.T) {
	// arrange
	op := &fakePairOp{infos: []*PairInfo{
		{ID: testPairID, IsPrimary: false, RunningStatus: RunningStatusSynchronizing,
			SecondAccess: SecondAccessReadOnly},
		{ID: testPairID, RunningStatus: RunningStatusSynchronizing, SecondAccess: SecondAccessReadOnly},
		{ID: testPairID, RunningStatus: RunningStatusSynchronizing, SecondAccess: SecondAccessReadWrite},
		{ID: testPairID, RunningStatus: RunningStatusSynchronizing, SecondAccess: SecondAccessReadWrite},
		{ID: testPairID, RunningStatus: RunningStatusSplit, SecondAccess: SecondAccessReadWrite},
	}}
	d := newTestDriver(op, nil)

	// act
	err := d.Enable(context.Background(), testPairID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"unprotect", "split"}, op.primitiveCalls())
}

func TestEnable_PrimaryPairIsLeftAsIs(t *testing.T) {
	// arrange
	op := &fakePairOp{infos: []*PairInfo{{ID: testPairID, IsPrimary: true}}}
	d := newTestDriver(op, nil)

	// act
	err := d.Enable(context.Background(), testPairID)

	// assert
	assert.NoError(t, err)
	assert.Empty(t, op.primitiveCalls())
}

func TestProtectSecond_AlreadyReadOnly(t *testing.T) {
	// arrange
	op := &fakePairOp{infos: []*PairInfo{{ID: testPairID, SecondAccess: SecondAccessReadOnly}}}
	d := newTestDriver(op, nil)

	// act
	err := d.ProtectSecond(context.Background(), testPairID)

	// assert
	assert.NoError(t, err)
	assert.Empty(t, op.primitiveCalls())
}

func TestSync_BackendErrorIsNotRetried(t *testing.T) {
	// arrange
	syncErr := errors.New("pair is not in a syncable state")
	op := &fakePairOp{
		infos:   []*PairInfo{{ID: testPairID, SecondAccess: SecondAccessReadOnly}},
		syncErr: syncErr,
	}
	d := newTestDriver(op, nil)

	// act
	err := d.Sync(context.Background(), testPairID, true)

	// assert
	assert.ErrorIs(t, err, syncErr)
	assert.Equal(t, []string{"sync"}, op.primitiveCalls())
}

func TestMain(m *testing.M) {
	log.MockInitLogging(logName)
	defer log.MockStopLogging(logName)

	m.Run()
}
