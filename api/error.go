/**
 * Copyright (c) 2023 wetrycode
 *
 * This software is released under the MIT License.
 * https://opensource.org/licenses/MIT
 */

package api

const (
	SUCCESS        = 200
	ERROR          = 500
	INVALID_PARAMS = 400
	NOT_FOUND      = 404

	BACKEND_UNREACHABLE = 1001
	NO_REDIRECT_TARGET  = 1002
	SESSION_EXPIRED     = 1003
)

var MsgFlags = map[int]string{
	SUCCESS:             "ok",
	ERROR:               "fail",
	INVALID_PARAMS:      "bad request",
	NOT_FOUND:           "resource not found",
	BACKEND_UNREACHABLE: "backend unreachable",
	NO_REDIRECT_TARGET:  "unauthorized without redirect target",
	SESSION_EXPIRED:     "session expired",
}

func GetMsg(code int) string {
	msg, ok := MsgFlags[code]
	if ok {
		return msg
	}

	return MsgFlags[ERROR]
}
