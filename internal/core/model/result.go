package model

import (
	"net"
	"sort"
	"strconv"
)

// PortState 端口状态
type PortState string

const (
	PortStateOpen     PortState = "open"     // 连接建立成功
	PortStateClosed   PortState = "closed"   // 连接被主动拒绝 (RST)
	PortStateFiltered PortState = "filtered" // 超时、不可达或其他传输层错误
)

// ScanTarget 扫描单元 (host, port)，生成后不再修改
type ScanTarget struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// Address 返回可直接拨号的 host:port (兼容 IPv6)
func (t ScanTarget) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// ScanResult 单个开放端口的探测结果
// 只有 open 状态会被物化为结果；Service / Banner 缺失时为 nil (JSON 输出 null)
type ScanResult struct {
	Host    string    `json:"host" yaml:"host"`
	Port    int       `json:"port" yaml:"port"`
	State   PortState `json:"state" yaml:"state"`
	Service *string   `json:"service" yaml:"service"`
	Banner  *string   `json:"banner" yaml:"banner"`
}

// ServiceName 返回服务名，缺失时返回空串
func (r ScanResult) ServiceName() string {
	if r.Service == nil {
		return ""
	}
	return *r.Service
}

// BannerText 返回 Banner，缺失时返回空串
func (r ScanResult) BannerText() string {
	if r.Banner == nil {
		return ""
	}
	return *r.Banner
}

// Headers 实现 TabularData 接口
// HOST      | PORT | STATE | SERVICE | BANNER
// 127.0.0.1 | 22   | open  | SSH     | SSH-2.0-OpenSSH_9.6
func (r ScanResult) Headers() []string {
	return []string{"HOST", "PORT", "STATE", "SERVICE", "BANNER"}
}

// Rows 实现 TabularData 接口
func (r ScanResult) Rows() [][]string {
	return [][]string{{r.Host, strconv.Itoa(r.Port), string(r.State), r.ServiceName(), r.BannerText()}}
}

// ScanResults 结果列表
type ScanResults []ScanResult

func (rs ScanResults) Headers() []string {
	return ScanResult{}.Headers()
}

func (rs ScanResults) Rows() [][]string {
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, r.Rows()...)
	}
	return rows
}

// SortResults 按 (host 原始字符串, port 整数) 升序原地排序
// 完成顺序取决于并发调度，输出前必须调用
func SortResults(results []ScanResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Host != results[j].Host {
			return results[i].Host < results[j].Host
		}
		return results[i].Port < results[j].Port
	})
}
