/**
 * 任务模型定义 (Core Domain)
 * @date: 2026.01.21
 * @description: 核心任务模型，解耦了 HTTP 依赖。CLI 与 Server 模式共用的扫描请求描述。
 */

package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskType 定义任务类型
type TaskType string

const (
	TaskTypePortScan TaskType = "port_scan" // TCP Connect 端口扫描
)

// TaskStatus 定义任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task 核心任务结构体
// 无论任务来自 CLI 还是 HTTP API，最终都必须转换为此结构体
type Task struct {
	ID            string        `json:"id" yaml:"id"`
	Type          TaskType      `json:"type" yaml:"type"`
	Target        string        `json:"target" yaml:"target"`                   // 扫描目标 (IP/Domain/CIDR/Range/List/File)
	PortRange     string        `json:"port_range" yaml:"port_range"`           // 端口范围 (e.g. "80,443,1000-2000")
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`                 // 单个连接超时
	BannerTimeout time.Duration `json:"banner_timeout" yaml:"banner_timeout"`   // Banner 读取宽限期
	Concurrency   int           `json:"concurrency" yaml:"concurrency"`         // 最大并发探测数
	Banner        bool          `json:"banner" yaml:"banner"`                   // 是否抓取 Banner
	Adaptive      bool          `json:"adaptive" yaml:"adaptive"`               // 是否启用 AIMD 自适应并发
	Proxy         string        `json:"proxy,omitempty" yaml:"proxy,omitempty"` // SOCKS5 代理
	CreatedAt     time.Time     `json:"created_at" yaml:"created_at"`
}

// ScanStats 一次扫描的分类统计
type ScanStats struct {
	Total    int           `json:"total" yaml:"total"`
	Open     int           `json:"open" yaml:"open"`
	Closed   int           `json:"closed" yaml:"closed"`
	Filtered int           `json:"filtered" yaml:"filtered"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// TaskResult 任务执行结果
type TaskResult struct {
	TaskID    string       `json:"task_id" yaml:"task_id"`
	Status    TaskStatus   `json:"status" yaml:"status"`
	Results   []ScanResult `json:"results" yaml:"results"`
	Stats     ScanStats    `json:"stats" yaml:"stats"`
	Error     string       `json:"error,omitempty" yaml:"error,omitempty"`
	StartTime time.Time    `json:"start_time" yaml:"start_time"`
	EndTime   time.Time    `json:"end_time" yaml:"end_time"`
}

// NewTask 创建一个新任务
func NewTask(taskType TaskType, target string) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Target:    target,
		CreatedAt: time.Now(),
	}
}
