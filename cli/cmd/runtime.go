/*
 *  Copyright (c) Huawei Technologies Co., Ltd. 2023-2024. All rights reserved.
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

package cmd

import (
	"context"
	"time"

	"huawei-replication-driver/cli/config"
	"huawei-replication-driver/storage/oceanstor/client"
	"huawei-replication-driver/storage/oceanstor/replication"
	"huawei-replication-driver/utils/log"
	"huawei-replication-driver/utils/retry"
)

const (
	loginAttempts    = 3
	loginRetryPeriod = 2 * time.Second
)

// backendRuntime holds the logged-in array clients and the pair manager of
// one command invocation
type backendRuntime struct {
	localCli  *client.RestClient
	remoteCli *client.RestClient
	manager   *replication.PairManager
}

func newContext() context.Context {
	return log.EnsureRequestID(context.Background())
}

// newBackendRuntime loads the configuration, logs in to both arrays and
// builds the pair manager over them.
func newBackendRuntime(ctx context.Context) (*backendRuntime, error) {
	conf, err := config.LoadConfig(config.ConfigFile)
	if err != nil {
		return nil, err
	}

	localCli, err := loginArray(ctx, &conf.LocalArray)
	if err != nil {
		return nil, err
	}

	remoteCli, err := loginArray(ctx, &conf.RemoteArray)
	if err != nil {
		localCli.Logout(ctx)
		return nil, err
	}

	manager := replication.NewPairManager(localCli, remoteCli, replication.ManagerConfig{
		RemotePool:   conf.RemotePool,
		Model:        conf.Model(),
		WaitInterval: conf.WaitInterval(),
		WaitTimeout:  conf.WaitTimeout(),
	})

	return &backendRuntime{
		localCli:  localCli,
		remoteCli: remoteCli,
		manager:   manager,
	}, nil
}

func loginArray(ctx context.Context, conf *config.ArrayConfig) (*client.RestClient, error) {
	cli, err := client.NewRestClient(ctx, &client.NewClientConfig{
		Urls:        conf.Urls,
		User:        conf.User,
		Password:    conf.Password,
		VstoreName:  conf.VstoreName,
		ParallelNum: conf.ParallelNum,
	})
	if err != nil {
		return nil, err
	}

	// retry transient connection failures, a wrong password fails immediately
	var lastErr error
	err = retry.Attempts(loginAttempts).Period(loginRetryPeriod).Do(func() error {
		lastErr = cli.Login(ctx)
		if lastErr != nil && lastErr.Error() == client.Unconnected {
			return lastErr
		}
		return nil
	})
	if err == nil {
		err = lastErr
	}
	if err != nil {
		return nil, err
	}

	return cli, nil
}

// close logs out of both arrays
func (r *backendRuntime) close(ctx context.Context) {
	r.localCli.Logout(ctx)
	r.remoteCli.Logout(ctx)
}
