// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	InvalidMemberId               = failed(5002, "Invalid member ID")

	// Unauthorized 401
	TokenBeEmpty   = failed(4406, "Access token required")
	InvalidToken   = failed(4405, "Invalid token")
	TokenExpired   = failed(4407, "Token is expired")
	InvalidUser    = failed(4401, "Invalid Username")
	InvalidPasswd  = failed(4402, "Invalid Password")
	NotFound       = failed(4004, "Not found")
	FetchUsersFail = failed(5003, "Error fetching users")

	UsernameArePasswordIsRequired = failed(4045, "Username and password are required")

	UpstreamUnavailable = failed(5020, "Upstream service unavailable")
	InternalError       = failed(5000, "Internal error, please contact the administrator")
)

// failed 构造函数
func failed(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
