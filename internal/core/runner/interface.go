package runner

import (
	"context"

	"neoport/internal/core/model"
)

// Runner 定义了扫描执行器的通用接口
type Runner interface {
	// Name 返回 Runner 的名称 (对应 TaskType)
	Name() model.TaskType

	// Run 执行具体的扫描任务
	// 参数错误 (端口、目标、代理) 在扫描开始前以 error 返回；
	// 扫描一旦开始，失败或取消都体现在 TaskResult.Status 中
	Run(ctx context.Context, task *model.Task) (*model.TaskResult, error)
}
