package options

import (
	"neoport/internal/core/model"
)

// TaskOption CLI flag 和 HTTP 请求体共用的参数接口
type TaskOption interface {
	Validate() error
	ToTask() *model.Task
}

var _ TaskOption = (*PortScanOptions)(nil)

// BuildTask 校验参数并转换为任务，校验失败时不生成任务
func BuildTask(opt TaskOption) (*model.Task, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return opt.ToTask(), nil
}
