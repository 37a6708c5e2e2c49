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

// Package client provides the oceanstor storage restful client
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"huawei-replication-driver/utils"
	"huawei-replication-driver/utils/log"
)

const (
	// SuccessCode defines error code of success
	SuccessCode int64 = 0

	// ObjectNotExist defines error code of object not exist
	ObjectNotExist int64 = 1077948996

	// LunNotExist defines error code of lun not exist
	LunNotExist int64 = 1077936859

	// ReplicationNotExist defines error code of replication pair not exist
	ReplicationNotExist int64 = 1077937923

	// UserOffline defines error code of user offline
	UserOffline int64 = 1077949069

	// UserUnauthorized defines error code of user unauthorized
	UserUnauthorized int64 = -401

	// Unconnected defines the error msg of unconnected
	Unconnected = "unconnected"

	// DefaultParallelCount defines the default parallel count of client requests
	DefaultParallelCount int = 50

	// MaxParallelCount defines the max parallel count of client requests
	MaxParallelCount int = 1000

	// MinParallelCount defines the min parallel count of client requests
	MinParallelCount int = 20

	defaultHTTPTimeout = 60 * time.Second
)

var (
	// WrongPasswordErrorCodes user or password is incorrect
	WrongPasswordErrorCodes = []int64{1077987870, 1077949081, 1077949061}

	// AccountBeenLocked account been locked
	AccountBeenLocked = []int64{1077949070, 1077987871}

	logFilter = map[string]map[string]bool{
		"POST": {
			"/xx/sessions": true,
		},
		"GET": {
			"/storagepool": true,
			"/system/":     true,
		},
	}
)

// BackendError is returned when the storage array rejects a request with a
// non-zero error code.
type BackendError struct {
	Code        int64
	Description string
}

// Error implements the error interface
func (e *BackendError) Error() string {
	return fmt.Sprintf("storage backend error code: %d, description: %s", e.Code, e.Description)
}

// IsBackendError reports whether err carries an array error code, and returns it
func IsBackendError(err error) (*BackendError, bool) {
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr, true
	}
	return nil, false
}

// Response defines response of request
type Response struct {
	Error map[string]interface{} `json:"error"`
	Data  interface{}            `json:"data,omitempty"`
}

// errorCode extracts the array error code of the response
func (resp *Response) errorCode() (int64, error) {
	val, exists := resp.Error["code"]
	if !exists {
		return 0, fmt.Errorf("error code not exists, data: %+v", *resp)
	}

	code, ok := val.(float64)
	if !ok {
		return 0, fmt.Errorf("code is not float64, data: %+v", *resp)
	}

	return int64(code), nil
}

// description extracts the array error description of the response
func (resp *Response) description() string {
	description, _ := resp.Error["description"].(string)
	return description
}

// AssertErrorCode asserts if error code represents success
func (resp *Response) AssertErrorCode() error {
	code, err := resp.errorCode()
	if err != nil {
		return err
	}

	if code != SuccessCode {
		return &BackendError{Code: code, Description: resp.description()}
	}

	return nil
}

// GetData converts interface{} type data to specific type
func (resp *Response) GetData(val any) error {
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal data, error %w", err)
	}

	err = json.Unmarshal(data, &val)
	if err != nil {
		return fmt.Errorf("failed to unmarshal data as %T, error: %w", val, err)
	}

	return nil
}

// HTTP defines for http request process
type HTTP interface {
	Do(req *http.Request) (*http.Response, error)
}

// RestClientInterface defines interfaces for base restful call
type RestClientInterface interface {
	Call(ctx context.Context, method string, url string, data map[string]interface{}) (Response, error)
	BaseCall(ctx context.Context, method string, url string, data map[string]interface{}) (Response, error)
	Get(ctx context.Context, url string, data map[string]interface{}) (Response, error)
	Post(ctx context.Context, url string, data map[string]interface{}) (Response, error)
	Put(ctx context.Context, url string, data map[string]interface{}) (Response, error)
	Delete(ctx context.Context, url string, data map[string]interface{}) (Response, error)
	Login(ctx context.Context) error
	Logout(ctx context.Context)
	ReLogin(ctx context.Context) error
}

// NewClientConfig defines the configurations of a new rest client
type NewClientConfig struct {
	Urls        []string
	User        string
	Password    string
	VstoreName  string
	ParallelNum int
}

// RestClient defines client implements the rest interface
type RestClient struct {
	Client HTTP
	Url    string
	Urls   []string

	User       string
	VStoreName string
	DeviceId   string
	Token      string

	password         string
	reLoginMutex     sync.Mutex
	requestSemaphore *utils.Semaphore
}

// NewRestClient inits a new rest client
func NewRestClient(ctx context.Context, param *NewClientConfig) (*RestClient, error) {
	parallelCount := param.ParallelNum
	if parallelCount > MaxParallelCount || parallelCount < MinParallelCount {
		log.AddContext(ctx).Infof("the config parallelNum %d is invalid, set it to the default value %d",
			parallelCount, DefaultParallelCount)
		parallelCount = DefaultParallelCount
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar error: %v", err)
	}

	httpClient := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
		Jar:       jar,
		Timeout:   defaultHTTPTimeout,
	}

	return &RestClient{
		Urls:             param.Urls,
		User:             param.User,
		VStoreName:       param.VstoreName,
		Client:           httpClient,
		password:         param.Password,
		requestSemaphore: utils.NewSemaphore(parallelCount),
	}, nil
}

// NeedReLogin determine if it is necessary to log in to the storage again
func NeedReLogin(r Response, err error) bool {
	var unconnected, unauthorized, offline bool
	if err != nil && err.Error() == Unconnected {
		unconnected = true
	}

	if r.Error != nil {
		if code, ok := r.Error["code"].(float64); ok {
			unauthorized = int64(code) == UserUnauthorized
			offline = int64(code) == UserOffline
		}
	}
	return unconnected || unauthorized || offline
}

// MaskRequestData masks the sensitive data
func MaskRequestData(data map[string]interface{}) map[string]interface{} {
	sensitiveKey := []string{"user", "username", "password"}

	maskedData := make(map[string]interface{})
	for k, v := range data {
		if utils.Contains(sensitiveKey, k) {
			maskedData[k] = "***"
		} else {
			maskedData[k] = v
		}
	}

	return maskedData
}

func isFilterLog(method, url string) bool {
	filter, exist := logFilter[method]
	return exist && filter[url]
}

// Call provides call for restful request
func (cli *RestClient) Call(ctx context.Context,
	method string, url string,
	data map[string]interface{}) (Response, error) {
	r, err := cli.BaseCall(ctx, method, url, data)
	if !NeedReLogin(r, err) {
		return r, err
	}

	// Current connection fails, try to relogin to other Urls if exist,
	// if relogin success, resend the request again.
	log.AddContext(ctx).Infof("Try to relogin and resend request method: %s, Url: %s", method, url)
	err = cli.ReLogin(ctx)
	if err != nil {
		return r, err
	}

	return cli.BaseCall(ctx, method, url, data)
}

// BaseCall provides base call for request
func (cli *RestClient) BaseCall(ctx context.Context, method string, url string,
	data map[string]interface{}) (Response, error) {
	var r Response
	var req *http.Request
	var err error

	if cli.Client == nil {
		errMsg := "http client is nil"
		log.AddContext(ctx).Errorf("Failed to send request method: %s, url: %s, error: %s", method, url, errMsg)
		return Response{}, errors.New(errMsg)
	}

	if url != "/xx/sessions" && url != "/sessions" {
		cli.reLoginMutex.Lock()
		req, err = cli.getRequest(ctx, method, url, data)
		cli.reLoginMutex.Unlock()
	} else {
		req, err = cli.getRequest(ctx, method, url, data)
	}

	if err != nil {
		return Response{}, err
	}

	log.FilteredLog(ctx, isFilterLog(method, url), false,
		fmt.Sprintf("Request method: %s, Url: %s, body: %v", method, req.URL, MaskRequestData(data)))

	cli.requestSemaphore.Acquire()
	defer cli.requestSemaphore.Release()

	resp, err := cli.Client.Do(req)
	if err != nil {
		log.AddContext(ctx).Errorf("Send request method: %s, Url: %s, error: %v", method, req.URL, err)
		return Response{}, errors.New(Unconnected)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		log.AddContext(ctx).Errorf("Read response data error: %v", err)
		return Response{}, err
	}

	log.FilteredLog(ctx, isFilterLog(method, url), false,
		fmt.Sprintf("Response method: %s, Url: %s, body: %s", method, req.URL, body))

	err = json.Unmarshal(body, &r)
	if err != nil {
		log.AddContext(ctx).Errorf("json.Unmarshal data %s error: %v", body, err)
		return Response{}, err
	}

	return r, nil
}

// Get provides http request of GET method
func (cli *RestClient) Get(ctx context.Context, url string, data map[string]interface{}) (Response, error) {
	return cli.Call(ctx, "GET", url, data)
}

// Post provides http request of POST method
func (cli *RestClient) Post(ctx context.Context, url string, data map[string]interface{}) (Response, error) {
	return cli.Call(ctx, "POST", url, data)
}

// Put provides http request of PUT method
func (cli *RestClient) Put(ctx context.Context, url string, data map[string]interface{}) (Response, error) {
	return cli.Call(ctx, "PUT", url, data)
}

// Delete provides http request of DELETE method
func (cli *RestClient) Delete(ctx context.Context, url string, data map[string]interface{}) (Response, error) {
	return cli.Call(ctx, "DELETE", url, data)
}

func (cli *RestClient) getRequest(ctx context.Context,
	method string, url string,
	data map[string]interface{}) (*http.Request, error) {
	var req *http.Request
	var err error

	reqUrl := cli.Url
	if cli.DeviceId != "" {
		reqUrl += "/" + cli.DeviceId
	}
	reqUrl += url

	var reqBody io.Reader

	if data != nil {
		reqBytes, err := json.Marshal(data)
		if err != nil {
			log.AddContext(ctx).Errorf("json.Marshal data %v error: %v", MaskRequestData(data), err)
			return req, err
		}
		reqBody = bytes.NewReader(reqBytes)
	}

	req, err = http.NewRequest(method, reqUrl, reqBody)
	if err != nil {
		log.AddContext(ctx).Errorf("Construct http request error: %s", err.Error())
		return req, err
	}

	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Content-Type", "application/json")

	if cli.Token != "" {
		req.Header.Set("iBaseToken", cli.Token)
	}

	return req, nil
}

// Login login and set data from response
func (cli *RestClient) Login(ctx context.Context) error {
	var resp Response
	var err error

	data := map[string]interface{}{
		"username": cli.User,
		"password": cli.password,
		"scope":    "0",
	}

	if len(cli.VStoreName) > 0 {
		data["vstorename"] = cli.VStoreName
	}

	cli.DeviceId = ""
	cli.Token = ""
	for i, url := range cli.Urls {
		cli.Url = url + "/deviceManager/rest"

		log.AddContext(ctx).Infof("Try to login %s", cli.Url)
		resp, err = cli.BaseCall(ctx, "POST", "/xx/sessions", data)
		if err == nil {
			/* Sort the login Url to the last slot of san addresses, so that
			   if this connection error, next time will try other Url first. */
			cli.Urls[i], cli.Urls[len(cli.Urls)-1] = cli.Urls[len(cli.Urls)-1], cli.Urls[i]
			break
		} else if err.Error() != Unconnected {
			log.AddContext(ctx).Errorf("Login %s error", cli.Url)
			break
		}

		log.AddContext(ctx).Warningf("Login %s error due to connection failure, gonna try another Url", cli.Url)
	}

	if err != nil {
		return err
	}

	code, err := resp.errorCode()
	if err != nil {
		return err
	}

	if code != SuccessCode {
		if utils.Contains(WrongPasswordErrorCodes, code) || utils.Contains(AccountBeenLocked, code) {
			log.AddContext(ctx).Errorf("The login account or password of %s is invalid or locked", cli.Url)
		}
		return &BackendError{Code: code, Description: resp.description()}
	}

	return cli.setDataFromRespData(ctx, resp)
}

func (cli *RestClient) setDataFromRespData(ctx context.Context, resp Response) error {
	respData, ok := resp.Data.(map[string]interface{})
	if !ok {
		return fmt.Errorf("convert login resp.Data to map[string]interface{} failed, data type: [%T]", resp.Data)
	}

	cli.DeviceId, ok = respData["deviceid"].(string)
	if !ok {
		return fmt.Errorf("convert respData[\"deviceid\"]: [%v] to string failed", respData["deviceid"])
	}

	cli.Token, ok = respData["iBaseToken"].(string)
	if !ok {
		return fmt.Errorf("convert respData[\"iBaseToken\"]: [%T] to string failed", respData["iBaseToken"])
	}

	log.AddContext(ctx).Infof("Login %s success", cli.Url)
	return nil
}

// Logout logout
func (cli *RestClient) Logout(ctx context.Context) {
	resp, err := cli.BaseCall(ctx, "DELETE", "/sessions", nil)
	if err != nil {
		log.AddContext(ctx).Warningf("Logout %s error: %v", cli.Url, err)
		return
	}

	code, err := resp.errorCode()
	if err != nil {
		log.AddContext(ctx).Warningf("Logout %s error: %v", cli.Url, err)
		return
	}

	if code != SuccessCode {
		log.AddContext(ctx).Warningf("Logout %s error: %d", cli.Url, code)
		return
	}

	log.AddContext(ctx).Infof("Logout %s success", cli.Url)
}

// ReLogin logout and login again
func (cli *RestClient) ReLogin(ctx context.Context) error {
	oldToken := cli.Token

	cli.reLoginMutex.Lock()
	defer cli.reLoginMutex.Unlock()

	if cli.Token != "" && oldToken != cli.Token {
		// Coming here indicates other thread had already done relogin, so no need to relogin again
		return nil
	} else if cli.Token != "" {
		cli.Logout(ctx)
	}

	err := cli.Login(ctx)
	if err != nil {
		log.AddContext(ctx).Errorf("Try to relogin error: %v", err)
		return err
	}

	return nil
}
