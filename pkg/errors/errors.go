package errors

import "errors"

var (
	// ErrLockNotAcquired 分布式锁已被其他实例持有
	ErrLockNotAcquired = errors.New("资源正被其他任务占用，请稍后重试")
)
