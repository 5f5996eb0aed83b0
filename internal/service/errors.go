package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrStoryNotFound    = errors.New("故事不存在")
	ErrWindowInvalid    = errors.New("时间窗口无效")
	ErrRecomputeRunning = errors.New("统计重算任务正在执行")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:     BadRequest,
	ErrStoryNotFound:    NotFound,
	ErrWindowInvalid:    BadRequest,
	ErrRecomputeRunning: Conflict,
	UnExpectedError:     InternalServerError,
}
