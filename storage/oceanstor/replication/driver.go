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

	"huawei-replication-driver/utils/log"
)

const (
	// DefaultWaitInterval is the default poll interval of state convergence waits
	DefaultWaitInterval = time.Second

	// DefaultWaitTimeout is the default bound of state convergence waits
	DefaultWaitTimeout = 20 * time.Second
)

// ErrWaitTimeout is returned when a state convergence wait exceeds its bound
var ErrWaitTimeout = errors.New("wait replication state convergence timeout")

// Config bounds the state convergence waits of a Driver
type Config struct {
	WaitInterval time.Duration
	WaitTimeout  time.Duration
}

func (c *Config) fillDefaults() {
	if c.WaitInterval <= 0 {
		c.WaitInterval = DefaultWaitInterval
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
}

// waitUntil polls f at the given interval until it reports done, returns an
// error, or the accumulated wait exceeds the timeout. Backend errors from f
// are never retried, only pending state convergence is.
func waitUntil(f func() (bool, error), timeout, interval time.Duration, sleep func(time.Duration)) error {
	var waited time.Duration
	for {
		done, err := f()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if waited >= timeout {
			return ErrWaitTimeout
		}
		sleep(interval)
		waited += interval
	}
}

// Driver composes pair primitives into replication lifecycle transitions
type Driver struct {
	op   PairOperations
	conf Config

	// sleep is replaceable so tests can run the polling loops without delay
	sleep func(time.Duration)
}

// NewDriver creates a replication driver over the given pair operations
func NewDriver(op PairOperations, conf Config) *Driver {
	conf.fillDefaults()
	return &Driver{
		op:    op,
		conf:  conf,
		sleep: time.Sleep,
	}
}

func (d *Driver) waitUntil(f func() (bool, error)) error {
	return waitUntil(f, d.conf.WaitTimeout, d.conf.WaitInterval, d.sleep)
}

// GetReplicaInfo fetches the current typed state of a pair
func (d *Driver) GetReplicaInfo(ctx context.Context, pairID string) (*PairInfo, error) {
	return d.op.GetReplicaInfo(ctx, pairID)
}

// Enable moves a non-primary pair to an enabled, split state with the
// secondary side writable. A pair already primary on this array is left as is.
func (d *Driver) Enable(ctx context.Context, pairID string) error {
	info, err := d.op.GetReplicaInfo(ctx, pairID)
	if err != nil {
		return err
	}

	if d.op.IsPrimary(info) {
		log.AddContext(ctx).Infof("Replication pair %s is already primary on this array", pairID)
		return nil
	}

	if err := d.UnprotectSecond(ctx, pairID); err != nil {
		return err
	}

	return d.Split(ctx, pairID)
}

// Failover promotes the secondary side of a pair to primary. The pair must
// not be primary on this array, switching over to itself is invalid.
func (d *Driver) Failover(ctx context.Context, pairID string) error {
	info, err := d.op.GetReplicaInfo(ctx, pairID)
	if err != nil {
		return err
	}

	if d.op.IsPrimary(info) {
		return fmt.Errorf("replication pair %s is already primary on this array, refuse to switch over to itself",
			pairID)
	}

	// The array rejects a switch on a synchronizing pair, so split first.
	if err := d.Split(ctx, pairID); err != nil {
		return err
	}

	return d.op.Switch(ctx, pairID)
}

// Failback drives the pair back after the original primary recovers: a full
// resynchronization toward the current primary, then a role switch back.
func (d *Driver) Failback(ctx context.Context, pairID string) error {
	if err := d.Sync(ctx, pairID, true); err != nil {
		return err
	}

	return d.Failover(ctx, pairID)
}

// ProtectSecond blocks writes on the secondary side of a pair and waits for
// the access change to take effect.
func (d *Driver) ProtectSecond(ctx context.Context, pairID string) error {
	info, err := d.op.GetReplicaInfo(ctx, pairID)
	if err != nil {
		return err
	}

	if info.SecondAccess == SecondAccessReadOnly {
		return nil
	}

	if err := d.op.ProtectSecond(ctx, pairID); err != nil {
		return err
	}

	return d.waitSecondAccess(ctx, pairID, SecondAccessReadOnly)
}

// UnprotectSecond allows writes on the secondary side of a pair and waits for
// the access change to take effect.
func (d *Driver) UnprotectSecond(ctx context.Context, pairID string) error {
	info, err := d.op.GetReplicaInfo(ctx, pairID)
	if err != nil {
		return err
	}

	if info.SecondAccess == SecondAccessReadWrite {
		return nil
	}

	if err := d.op.UnprotectSecond(ctx, pairID); err != nil {
		return err
	}

	return d.waitSecondAccess(ctx, pairID, SecondAccessReadWrite)
}

// Sync starts synchronizing a pair. The secondary side is write-protected
// first so no torn reads are possible while data is in flight. With
// waitComplete set, Sync blocks until the pair is back to Normal and healthy.
func (d *Driver) Sync(ctx context.Context, pairID string, waitComplete bool) error {
	if err := d.ProtectSecond(ctx, pairID); err != nil {
		return err
	}

	if err := d.op.Sync(ctx, pairID); err != nil {
		return err
	}

	if waitComplete {
		return d.waitReplicaReady(ctx, pairID)
	}

	return nil
}

// terminalRunningStatus are states a split request makes no sense for
var terminalRunningStatus = []RunningStatus{
	RunningStatusSplit,
	RunningStatusInvalid,
	RunningStatusInterrupted,
}

func isTerminalRunningStatus(status RunningStatus) bool {
	for _, s := range terminalRunningStatus {
		if s == status {
			return true
		}
	}
	return false
}

// Split stops synchronizing a pair. A pair already split, invalid or
// interrupted is left untouched, the backend only accepts a split for
// synchronizing pairs.
func (d *Driver) Split(ctx context.Context, pairID string) error {
	info, err := d.op.GetReplicaInfo(ctx, pairID)
	if err != nil {
		return err
	}

	if isTerminalRunningStatus(info.RunningStatus) {
		log.AddContext(ctx).Infof("Replication pair %s is in status %s, no need to split",
			pairID, info.RunningStatus)
		return nil
	}

	if err := d.op.Split(ctx, pairID); err != nil {
		return err
	}

	return d.waitExpectState(ctx, pairID, terminalRunningStatus)
}

// waitSecondAccess polls a pair until its secondary side reports the expected
// access mode.
func (d *Driver) waitSecondAccess(ctx context.Context, pairID string, expect SecondAccess) error {
	err := d.waitUntil(func() (bool, error) {
		info, err := d.op.GetReplicaInfo(ctx, pairID)
		if err != nil {
			return false, err
		}
		return info.SecondAccess == expect, nil
	})

	if errors.Is(err, ErrWaitTimeout) {
		return fmt.Errorf("wait second access of pair %s to %s: %w", pairID, expect, err)
	}
	return err
}

// waitReplicaReady polls a pair until it is synchronized and healthy. A pair
// observed split during the wait was split externally, a sync can not recover
// from that, so it is a terminal failure.
func (d *Driver) waitReplicaReady(ctx context.Context, pairID string) error {
	err := d.waitUntil(func() (bool, error) {
		info, err := d.op.GetReplicaInfo(ctx, pairID)
		if err != nil {
			return false, err
		}

		if info.RunningStatus == RunningStatusNormal && info.HealthStatus == HealthStatusNormal {
			return true, nil
		}

		if info.RunningStatus == RunningStatusSplit {
			return false, fmt.Errorf("replication pair %s was split while waiting for sync to complete", pairID)
		}

		return false, nil
	})

	if errors.Is(err, ErrWaitTimeout) {
		return fmt.Errorf("wait replication pair %s ready: %w", pairID, err)
	}
	return err
}

// waitExpectState polls a pair until its running status is one of the
// expected states.
func (d *Driver) waitExpectState(ctx context.Context, pairID string, expectStatus []RunningStatus) error {
	err := d.waitUntil(func() (bool, error) {
		info, err := d.op.GetReplicaInfo(ctx, pairID)
		if err != nil {
			return false, err
		}

		for _, status := range expectStatus {
			if info.RunningStatus == status {
				return true, nil
			}
		}
		return false, nil
	})

	if errors.Is(err, ErrWaitTimeout) {
		return fmt.Errorf("wait replication pair %s to status %v: %w", pairID, expectStatus, err)
	}
	return err
}
