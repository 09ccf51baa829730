package monitor

import (
	"context"
	"errors"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
)

// ErrLimitUnavailable 当前平台无法获取文件描述符限制
var ErrLimitUnavailable = errors.New("file descriptor limit unavailable on this platform")

// HostInfo 主机静态信息
type HostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Arch            string `json:"arch"`
	CPUCores        int    `json:"cpu_cores"`
}

// GetHostInfo 获取主机信息
func GetHostInfo(ctx context.Context) (*HostInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}

	return &HostInfo{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Arch:            info.KernelArch,
		CPUCores:        runtime.NumCPU(),
	}, nil
}

// FileDescriptorLimit 返回当前进程 RLIMIT_NOFILE 的软限制
// 每个在途探测占用一个 socket，并发上限超过该值会导致 "too many open files"
func FileDescriptorLimit(ctx context.Context) (uint64, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	limits, err := p.RlimitWithContext(ctx)
	if err != nil {
		return 0, ErrLimitUnavailable
	}

	for _, l := range limits {
		if l.Resource == process.RLIMIT_NOFILE {
			return l.Soft, nil
		}
	}
	return 0, ErrLimitUnavailable
}

// CheckConcurrency 检查并发上限是否超出文件描述符限制
// 返回 (是否安全, 软限制)。无法获取限制时视为安全。
func CheckConcurrency(ctx context.Context, concurrency int) (bool, uint64) {
	limit, err := FileDescriptorLimit(ctx)
	if err != nil || limit == 0 {
		return true, 0
	}
	// 预留一部分给标准输入输出、日志文件等
	const reserved = 32
	if limit <= reserved {
		return concurrency <= 1, limit
	}
	return uint64(concurrency) <= limit-reserved, limit
}
